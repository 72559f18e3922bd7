package assist

import (
	"errors"
	"fmt"
	"net/http"

	internalstrings "github.com/amonks/orbit/internal/strings"
)

var (
	// ErrMissingInput indicates a blank natural-language task description.
	ErrMissingInput = errors.New("Missing or invalid input")

	// ErrMissingTask indicates a breakdown request without a task title.
	ErrMissingTask = errors.New("Missing task information")

	// ErrNoTasksToPlan indicates a daily plan request with no tasks.
	ErrNoTasksToPlan = errors.New("No tasks to plan")

	// ErrNotEnoughHistory indicates fewer completed tasks than
	// MinCompletedForSchedule.
	ErrNotEnoughHistory = errors.New("Need at least 5 completed tasks for optimization")

	// ErrNoPendingTasks indicates a schedule request with nothing to schedule.
	ErrNoPendingTasks = errors.New("No pending tasks to optimize")

	// ErrEmptyCompletion indicates the provider returned no text.
	ErrEmptyCompletion = errors.New("No response from Claude")

	// ErrUnparseableReply indicates the model reply held no usable JSON.
	ErrUnparseableReply = errors.New("failed to parse AI response")

	// ErrNoSubtasks indicates a breakdown reply without any subtask titles.
	ErrNoSubtasks = errors.New("no subtasks suggested")

	// ErrMissingAPIKey indicates no provider credential is configured.
	ErrMissingAPIKey = errors.New("no API key configured")

	// ErrSuperseded is returned by Client when a newer request for the same
	// scope started before this one finished.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// maxErrorBodyLength bounds how much of an upstream error body is reported.
const maxErrorBodyLength = 200

// UpstreamError is a non-2xx reply from the model provider.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Claude API error: %d - %s", e.StatusCode, e.Body)
}

func newUpstreamError(status int, body []byte) *UpstreamError {
	return &UpstreamError{
		StatusCode: status,
		Body:       internalstrings.Truncate(string(body), maxErrorBodyLength),
	}
}

// RemoteError is an error reported by an orbit server.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Is reports whether target is the sentinel the server reported, so
// errors.Is works across the wire.
func (e *RemoteError) Is(target error) bool {
	for _, sentinel := range remoteSentinels {
		if target == sentinel {
			return e.Message == sentinel.Error()
		}
	}
	return false
}

var remoteSentinels = []error{
	ErrMissingInput,
	ErrMissingTask,
	ErrNoTasksToPlan,
	ErrNotEnoughHistory,
	ErrNoPendingTasks,
	ErrEmptyCompletion,
	ErrUnparseableReply,
	ErrNoSubtasks,
}

// StatusCode returns the HTTP status an error should be reported with.
// Validation failures are 400, upstream failures keep the upstream status,
// and everything else is 500.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrMissingInput),
		errors.Is(err, ErrMissingTask),
		errors.Is(err, ErrNoTasksToPlan),
		errors.Is(err, ErrNotEnoughHistory),
		errors.Is(err, ErrNoPendingTasks):
		return http.StatusBadRequest
	}

	var upstream *UpstreamError
	if errors.As(err, &upstream) && upstream.StatusCode >= 400 {
		return upstream.StatusCode
	}
	var remote *RemoteError
	if errors.As(err, &remote) && remote.StatusCode >= 400 {
		return remote.StatusCode
	}
	return http.StatusInternalServerError
}
