package task

import "time"

// LegacyCompletionOffset is added to CreatedAt to backfill the completion
// time of done tasks stored before completion times were recorded.
const LegacyCompletionOffset = time.Hour

// Transition returns the completion time a task should carry after its
// status changes from one value to another.
//
// Entering done stamps now. Leaving done clears the stamp. Any other
// change, including done to done, keeps completedAt as it was.
func Transition(from, to Status, completedAt *time.Time, now time.Time) *time.Time {
	switch {
	case to == StatusDone && from != StatusDone:
		stamp := toMillis(now)
		return &stamp
	case from == StatusDone && to != StatusDone:
		return nil
	default:
		return completedAt
	}
}

// backfillCompletedAt stamps done tasks that lack a completion time.
func backfillCompletedAt(tasks []Task) {
	for i := range tasks {
		if tasks[i].Status != StatusDone || tasks[i].CompletedAt != nil {
			continue
		}
		completed := tasks[i].CreatedAt.Add(LegacyCompletionOffset)
		tasks[i].CompletedAt = &completed
	}
}
