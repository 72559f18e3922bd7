package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/amonks/orbit/task"
	"github.com/spf13/pflag"
)

// priorityValue is a pflag.Value accepting high, medium, or low.
type priorityValue struct {
	value task.Priority
}

var _ pflag.Value = (*priorityValue)(nil)

func newPriorityValue(initial task.Priority) *priorityValue {
	return &priorityValue{value: initial}
}

func (v *priorityValue) String() string { return string(v.value) }
func (v *priorityValue) Type() string   { return "priority" }

func (v *priorityValue) Set(raw string) error {
	priority, err := task.ParsePriority(raw)
	if err != nil {
		return err
	}
	v.value = priority
	return nil
}

// statusValue is a pflag.Value accepting todo, in-progress, or done.
type statusValue struct {
	value task.Status
}

var _ pflag.Value = (*statusValue)(nil)

func (v *statusValue) String() string { return string(v.value) }
func (v *statusValue) Type() string   { return "status" }

func (v *statusValue) Set(raw string) error {
	status, err := task.ParseStatus(raw)
	if err != nil {
		return err
	}
	v.value = status
	return nil
}

// priorityFilterValue is a pflag.Value accepting all or a priority name.
type priorityFilterValue struct {
	value task.PriorityFilter
}

var _ pflag.Value = (*priorityFilterValue)(nil)

func (v *priorityFilterValue) String() string {
	if v.value == "" {
		return string(task.FilterAll)
	}
	return string(v.value)
}

func (v *priorityFilterValue) Type() string { return "filter" }

func (v *priorityFilterValue) Set(raw string) error {
	filter, err := task.ParsePriorityFilter(raw)
	if err != nil {
		return err
	}
	v.value = filter
	return nil
}

// resolveDueDate accepts YYYY-MM-DD, "today", "tomorrow", or "" to clear.
func resolveDueDate(raw string, now time.Time) (string, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "", "none":
		return "", nil
	case "today":
		return task.Today(now), nil
	case "tomorrow":
		return task.Today(now.AddDate(0, 0, 1)), nil
	}
	if err := task.ValidateDueDate(value); err != nil {
		return "", err
	}
	return value, nil
}

// parseMonth parses YYYY-MM into the first day of that month.
func parseMonth(raw string) (time.Time, error) {
	month, err := time.Parse("2006-01", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("month must be YYYY-MM: %q", raw)
	}
	return month, nil
}
