package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	internalstrings "github.com/amonks/orbit/internal/strings"
	"github.com/amonks/orbit/task"
)

// Client calls the assist endpoints of a running orbit server.
//
// Each call belongs to a scope: the operation, plus the task ID for
// breakdowns. When a call starts while an earlier call in the same scope
// is still in flight, the earlier call returns ErrSuperseded once it
// finishes instead of its result.
type Client struct {
	baseURL string
	client  *http.Client

	mu          sync.Mutex
	generations map[string]uint64
}

// NewClient creates a client for the given address or URL. A nil
// httpClient uses http.DefaultClient.
func NewClient(addr string, httpClient *http.Client) *Client {
	baseURL := internalstrings.TrimTrailingSlash(strings.TrimSpace(addr))
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:     baseURL,
		client:      httpClient,
		generations: make(map[string]uint64),
	}
}

// ParseTask implements Assistant.
func (c *Client) ParseTask(ctx context.Context, input string) (TaskDraft, error) {
	if err := validateParseInput(input); err != nil {
		return TaskDraft{}, err
	}
	var draft TaskDraft
	if err := c.post(ctx, "task-parse", ParsePath, map[string]string{"input": input}, &draft); err != nil {
		return TaskDraft{}, err
	}
	return draft, nil
}

// Breakdown implements Assistant.
func (c *Client) Breakdown(ctx context.Context, req BreakdownRequest) ([]string, error) {
	if err := validateBreakdown(req); err != nil {
		return nil, err
	}
	payload := parseRequest{Type: breakdownType, Task: &req}
	var response breakdownResponse
	if err := c.post(ctx, "task-breakdown:"+req.TaskID, ParsePath, payload, &response); err != nil {
		return nil, err
	}
	return response.Subtasks, nil
}

// DailyPlan implements Assistant.
func (c *Client) DailyPlan(ctx context.Context, pending []task.Task) (DailyPlan, error) {
	if err := validateDailyPlan(pending); err != nil {
		return DailyPlan{}, err
	}
	var plan DailyPlan
	if err := c.post(ctx, "daily-plan", DailyPlanPath, dailyPlanRequest{Tasks: pending}, &plan); err != nil {
		return DailyPlan{}, err
	}
	return plan, nil
}

// OptimizeSchedule implements Assistant.
func (c *Client) OptimizeSchedule(ctx context.Context, completed, pending []task.Task) (Schedule, error) {
	if err := validateSchedule(completed, pending); err != nil {
		return Schedule{}, err
	}
	payload := scheduleRequest{CompletedTasks: completed, PendingTasks: pending}
	var schedule Schedule
	if err := c.post(ctx, "schedule-optimize", SchedulePath, payload, &schedule); err != nil {
		return Schedule{}, err
	}
	return schedule, nil
}

func (c *Client) begin(scope string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[scope]++
	return c.generations[scope]
}

func (c *Client) isCurrent(scope string, generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[scope] == generation
}

func (c *Client) post(ctx context.Context, scope, path string, payload any, dest any) error {
	generation := c.begin(scope)
	err := c.do(ctx, path, payload, dest)
	if !c.isCurrent(scope, generation) {
		return ErrSuperseded
	}
	return err
}

func (c *Client) do(ctx context.Context, path string, payload any, dest any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readErrorResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func readErrorResponse(resp *http.Response) error {
	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		if message, ok := payload["error"]; ok {
			return &RemoteError{StatusCode: resp.StatusCode, Message: message}
		}
	}
	return &RemoteError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("orbit server error: %s", resp.Status)}
}
