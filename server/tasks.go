package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/amonks/orbit/task"
)

type createTaskRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DueDate     string         `json:"dueDate"`
	Priority    string         `json:"priority"`
	Status      string         `json:"status"`
	Subtasks    []task.Subtask `json:"subtasks"`
}

type updateTaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	DueDate     *string         `json:"dueDate"`
	Priority    *string         `json:"priority"`
	Status      *string         `json:"status"`
	Subtasks    *[]task.Subtask `json:"subtasks"`
}

type tasksResponse struct {
	Tasks []task.Task `json:"tasks"`
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

func (s *Server) handleTasksList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter, err := task.ParsePriorityFilter(query.Get("priority"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	tasks := s.store.View(filter, query.Get("q"))
	s.mu.Unlock()

	if tasks == nil {
		tasks = []task.Task{}
	}
	writeJSON(w, http.StatusOK, tasksResponse{Tasks: tasks})
}

func (s *Server) handleTasksCreate(w http.ResponseWriter, r *http.Request) {
	var payload createTaskRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	fields, err := payload.fields()
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	created, err := s.store.Create(fields)
	s.mu.Unlock()

	if err != nil {
		s.writeError(w, r, statusForTaskError(err), err)
		return
	}
	s.logger.Infow("task created", "id", created.ID, "title", created.Title)
	writeJSON(w, http.StatusCreated, created)
}

func (payload createTaskRequest) fields() (task.Fields, error) {
	fields := task.Fields{
		Title:       payload.Title,
		Description: payload.Description,
		DueDate:     payload.DueDate,
		Subtasks:    payload.Subtasks,
	}
	if payload.Priority != "" {
		priority, err := task.ParsePriority(payload.Priority)
		if err != nil {
			return task.Fields{}, err
		}
		fields.Priority = priority
	}
	if payload.Status != "" {
		status, err := task.ParseStatus(payload.Status)
		if err != nil {
			return task.Fields{}, err
		}
		fields.Status = status
	}
	return fields, nil
}

func (s *Server) handleTasksStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := task.Summarize(s.store.Tasks(), s.now())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleTaskShow(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.store.Resolve(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, statusForTaskError(err), err)
		return
	}
	item, _ := s.store.Get(id)
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	var payload updateTaskRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	opts, err := payload.options()
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.store.Resolve(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, statusForTaskError(err), err)
		return
	}
	updated, err := s.store.Update(id, opts)
	if err != nil {
		s.writeError(w, r, statusForTaskError(err), err)
		return
	}
	if updated == nil {
		s.writeError(w, r, http.StatusNotFound, fmt.Errorf("%w: %s", task.ErrTaskNotFound, id))
		return
	}
	s.logger.Infow("task updated", "id", updated.ID, "status", updated.Status)
	writeJSON(w, http.StatusOK, updated)
}

func (payload updateTaskRequest) options() (task.UpdateOptions, error) {
	opts := task.UpdateOptions{
		Title:       payload.Title,
		Description: payload.Description,
		DueDate:     payload.DueDate,
		Subtasks:    payload.Subtasks,
	}
	if payload.Priority != nil {
		priority, err := task.ParsePriority(*payload.Priority)
		if err != nil {
			return task.UpdateOptions{}, err
		}
		opts.Priority = &priority
	}
	if payload.Status != nil {
		status, err := task.ParseStatus(*payload.Status)
		if err != nil {
			return task.UpdateOptions{}, err
		}
		opts.Status = &status
	}
	return opts, nil
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.store.Resolve(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, statusForTaskError(err), err)
		return
	}
	deleted, err := s.store.Delete(id)
	if err != nil {
		s.writeError(w, r, statusForTaskError(err), err)
		return
	}
	s.logger.Infow("task deleted", "id", id)
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: deleted})
}

func statusForTaskError(err error) int {
	switch {
	case errors.Is(err, task.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, task.ErrAmbiguousTaskIDPrefix),
		errors.Is(err, task.ErrEmptyTitle),
		errors.Is(err, task.ErrTitleTooLong),
		errors.Is(err, task.ErrEmptySubtaskTitle),
		errors.Is(err, task.ErrInvalidStatus),
		errors.Is(err, task.ErrInvalidPriority),
		errors.Is(err, task.ErrInvalidDueDate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	if decoder.More() {
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
