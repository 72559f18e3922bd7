package assist

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/amonks/orbit/task"
)

// Endpoint paths served by Handler.
const (
	ParsePath     = "/functions/v1/ai-task-parse"
	DailyPlanPath = "/functions/v1/ai-daily-plan"
	SchedulePath  = "/functions/v1/ai-schedule-optimize"
)

// CORS headers sent on every assist response.
const (
	corsAllowOrigin  = "*"
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, X-Client-Info, Apikey"
)

// breakdownType selects the breakdown operation on ParsePath.
const breakdownType = "breakdown"

// Handler serves the assist endpoints over HTTP. Bearer credentials sent by
// browsers are accepted but not inspected.
type Handler struct {
	assistant Assistant
	logger    *zap.SugaredLogger
	router    *mux.Router
}

// NewHandler creates a handler backed by assistant.
func NewHandler(assistant Assistant, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	h := &Handler{assistant: assistant, logger: logger}
	router := mux.NewRouter()
	h.Register(router)
	router.MethodNotAllowedHandler = http.HandlerFunc(h.methodNotAllowed)
	h.router = router
	return h
}

// Register adds the assist routes to router.
func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc(ParsePath, h.withCORS(h.handleParse)).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc(DailyPlanPath, h.withCORS(h.handleDailyPlan)).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc(SchedulePath, h.withCORS(h.handleSchedule)).Methods(http.MethodPost, http.MethodOptions)
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// SetCORSHeaders writes the cross-origin headers browsers need to call the
// assist endpoints.
func SetCORSHeaders(header http.Header) {
	header.Set("Access-Control-Allow-Origin", corsAllowOrigin)
	header.Set("Access-Control-Allow-Methods", corsAllowMethods)
	header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
}

func (h *Handler) withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		SetCORSHeaders(w.Header())
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	SetCORSHeaders(w.Header())
	h.writeError(w, r, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
}

type parseRequest struct {
	Type  string            `json:"type,omitempty"`
	Input json.RawMessage   `json:"input,omitempty"`
	Task  *BreakdownRequest `json:"task,omitempty"`
}

type breakdownResponse struct {
	Subtasks []string `json:"subtasks"`
}

type dailyPlanRequest struct {
	Tasks []task.Task `json:"tasks"`
}

type scheduleRequest struct {
	CompletedTasks []task.Task `json:"completedTasks"`
	PendingTasks   []task.Task `json:"pendingTasks"`
}

func (h *Handler) handleParse(w http.ResponseWriter, r *http.Request) {
	var payload parseRequest
	if err := decodeJSON(r, &payload); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if payload.Type == breakdownType {
		req := BreakdownRequest{}
		if payload.Task != nil {
			req = *payload.Task
		}
		subtasks, err := h.assistant.Breakdown(r.Context(), req)
		if err != nil {
			h.writeError(w, r, StatusCode(err), err)
			return
		}
		writeJSON(w, http.StatusOK, breakdownResponse{Subtasks: subtasks})
		return
	}

	var input string
	if len(payload.Input) == 0 || json.Unmarshal(payload.Input, &input) != nil {
		h.writeError(w, r, http.StatusBadRequest, ErrMissingInput)
		return
	}
	draft, err := h.assistant.ParseTask(r.Context(), input)
	if err != nil {
		h.writeError(w, r, StatusCode(err), err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) handleDailyPlan(w http.ResponseWriter, r *http.Request) {
	var payload dailyPlanRequest
	if err := decodeJSON(r, &payload); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	plan, err := h.assistant.DailyPlan(r.Context(), payload.Tasks)
	if err != nil {
		h.writeError(w, r, StatusCode(err), err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var payload scheduleRequest
	if err := decodeJSON(r, &payload); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	schedule, err := h.assistant.OptimizeSchedule(r.Context(), payload.CompletedTasks, payload.PendingTasks)
	if err != nil {
		h.writeError(w, r, StatusCode(err), err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if decoder.More() {
		return errors.New("unexpected extra JSON data")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	h.logger.Warnw("assist request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
