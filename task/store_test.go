package task

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestStore_Create(t *testing.T) {
	store, storage, clock := openTestStore(t)

	created, err := store.Create(Fields{Title: "  Read chapter 4  "})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	if created.ID != "id-0001" {
		t.Errorf("expected id-0001, got %q", created.ID)
	}
	if created.Title != "Read chapter 4" {
		t.Errorf("expected trimmed title, got %q", created.Title)
	}
	if created.Priority != PriorityMedium {
		t.Errorf("expected default priority medium, got %q", created.Priority)
	}
	if created.Status != StatusTodo {
		t.Errorf("expected default status todo, got %q", created.Status)
	}
	if !created.CreatedAt.Equal(clock.now) {
		t.Errorf("expected createdAt %v, got %v", clock.now, created.CreatedAt)
	}
	if created.CompletedAt != nil {
		t.Errorf("expected no completedAt, got %v", created.CompletedAt)
	}
	if storage.saves != 1 {
		t.Errorf("expected 1 save, got %d", storage.saves)
	}
	if got := store.Tasks(); len(got) != 1 || got[0].ID != created.ID {
		t.Errorf("expected store to hold the new task, got %+v", got)
	}
}

func TestStore_CreateAppendsInCreationOrder(t *testing.T) {
	store, _, _ := openTestStore(t)

	mustCreate(t, store, Fields{Title: "first", Priority: PriorityLow})
	mustCreate(t, store, Fields{Title: "second", Priority: PriorityHigh})

	tasks := store.Tasks()
	if len(tasks) != 2 || tasks[0].Title != "first" || tasks[1].Title != "second" {
		t.Fatalf("expected creation order, got %+v", tasks)
	}
}

func TestStore_CreateAssignsSubtaskIDs(t *testing.T) {
	store, _, _ := openTestStore(t)

	created := mustCreate(t, store, Fields{
		Title:    "Essay",
		Subtasks: []Subtask{{Title: "outline"}, {ID: "keep", Title: "draft", Completed: true}},
	})

	if created.Subtasks[0].ID == "" {
		t.Error("expected generated subtask ID")
	}
	if created.Subtasks[1].ID != "keep" || !created.Subtasks[1].Completed {
		t.Errorf("expected existing subtask preserved, got %+v", created.Subtasks[1])
	}
}

func TestStore_CreateDoneStampsCompletedAt(t *testing.T) {
	store, _, clock := openTestStore(t)

	created := mustCreate(t, store, Fields{Title: "Already done", Status: StatusDone})

	if created.CompletedAt == nil || !created.CompletedAt.Equal(clock.now) {
		t.Fatalf("expected completedAt %v, got %v", clock.now, created.CompletedAt)
	}
}

func TestStore_CreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		want   error
	}{
		{name: "empty title", fields: Fields{Title: ""}, want: ErrEmptyTitle},
		{name: "blank title", fields: Fields{Title: "   "}, want: ErrEmptyTitle},
		{name: "long title", fields: Fields{Title: strings.Repeat("x", MaxTitleLength+1)}, want: ErrTitleTooLong},
		{name: "bad priority", fields: Fields{Title: "x", Priority: "urgent"}, want: ErrInvalidPriority},
		{name: "bad status", fields: Fields{Title: "x", Status: "closed"}, want: ErrInvalidStatus},
		{name: "bad due date", fields: Fields{Title: "x", DueDate: "next week"}, want: ErrInvalidDueDate},
		{name: "blank subtask", fields: Fields{Title: "x", Subtasks: []Subtask{{Title: " "}}}, want: ErrEmptySubtaskTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, storage, _ := openTestStore(t)

			_, err := store.Create(tt.fields)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if storage.saves != 0 {
				t.Fatalf("expected no save, got %d", storage.saves)
			}
			if len(store.Tasks()) != 0 {
				t.Fatal("expected collection unchanged")
			}
		})
	}
}

func TestStore_CreateWriteFailure(t *testing.T) {
	store, storage, _ := openTestStore(t)
	storage.saveErr = errDiskFull

	_, err := store.Create(Fields{Title: "x"})
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("expected write error, got %v", err)
	}
	if len(store.Tasks()) != 0 {
		t.Fatal("expected failed write to leave the collection unchanged")
	}
}

func TestStore_Update(t *testing.T) {
	store, _, _ := openTestStore(t)
	created := mustCreate(t, store, Fields{Title: "Quiz prep", Description: "ch 1"})

	title := "Quiz prep v2"
	due := "2024-03-05"
	updated, err := store.Update(created.ID, UpdateOptions{
		Title:    &title,
		DueDate:  &due,
		Priority: PriorityPtr(PriorityHigh),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated task")
	}
	if updated.Title != title || updated.DueDate != due || updated.Priority != PriorityHigh {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if updated.Description != "ch 1" {
		t.Fatalf("expected untouched description, got %q", updated.Description)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) || updated.ID != created.ID {
		t.Fatal("expected id and createdAt to be immutable")
	}
}

func TestStore_UpdateMissingIDIsNoop(t *testing.T) {
	store, storage, _ := openTestStore(t)
	mustCreate(t, store, Fields{Title: "x"})
	saves := storage.saves

	updated, err := store.Update("missing", UpdateOptions{Status: StatusPtr(StatusDone)})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated != nil {
		t.Fatalf("expected nil result, got %+v", updated)
	}
	if storage.saves != saves {
		t.Fatal("expected no write for a missing id")
	}
}

func TestStore_UpdateReplacesSubtasks(t *testing.T) {
	store, _, _ := openTestStore(t)
	created := mustCreate(t, store, Fields{Title: "x", Subtasks: []Subtask{{Title: "a"}, {Title: "b"}}})

	replacement := []Subtask{{ID: created.Subtasks[1].ID, Title: "b", Completed: true}, {Title: "c"}}
	updated, err := store.Update(created.ID, UpdateOptions{Subtasks: &replacement})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Subtasks) != 2 {
		t.Fatalf("expected 2 subtasks, got %d", len(updated.Subtasks))
	}
	if updated.Subtasks[0].ID != created.Subtasks[1].ID || !updated.Subtasks[0].Completed {
		t.Fatalf("unexpected first subtask %+v", updated.Subtasks[0])
	}
	if updated.Subtasks[1].ID == "" {
		t.Fatal("expected new subtask to receive an ID")
	}
}

func TestStore_Lifecycle(t *testing.T) {
	store, _, clock := openTestStore(t)
	created := mustCreate(t, store, Fields{Title: "x"})

	clock.Advance(time.Minute)
	started, err := store.Start(created.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != StatusInProgress || started.CompletedAt != nil {
		t.Fatalf("unexpected started task %+v", started)
	}

	clock.Advance(time.Minute)
	finishedAt := clock.now
	finished, err := store.Finish(created.ID)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if finished.CompletedAt == nil || !finished.CompletedAt.Equal(finishedAt) {
		t.Fatalf("expected completedAt %v, got %v", finishedAt, finished.CompletedAt)
	}

	clock.Advance(time.Minute)
	again, err := store.Finish(created.ID)
	if err != nil {
		t.Fatalf("finish again: %v", err)
	}
	if again.CompletedAt == nil || !again.CompletedAt.Equal(finishedAt) {
		t.Fatalf("expected done to done to keep %v, got %v", finishedAt, again.CompletedAt)
	}

	title := "renamed"
	renamed, err := store.Update(created.ID, UpdateOptions{Title: &title})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.CompletedAt == nil || !renamed.CompletedAt.Equal(finishedAt) {
		t.Fatal("expected update without status change to keep completedAt")
	}

	reopened, err := store.Reopen(created.ID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Status != StatusTodo || reopened.CompletedAt != nil {
		t.Fatalf("expected reopened task without completedAt, got %+v", reopened)
	}
}

func TestStore_Delete(t *testing.T) {
	store, storage, _ := openTestStore(t)
	first := mustCreate(t, store, Fields{Title: "first"})
	second := mustCreate(t, store, Fields{Title: "second"})

	removed, err := store.Delete(first.ID)
	if err != nil || !removed {
		t.Fatalf("expected delete to succeed, got %v %v", removed, err)
	}
	tasks := store.Tasks()
	if len(tasks) != 1 || tasks[0].ID != second.ID {
		t.Fatalf("expected only second task, got %+v", tasks)
	}

	saves := storage.saves
	removed, err = store.Delete("missing")
	if err != nil || removed {
		t.Fatalf("expected missing delete to be a no-op, got %v %v", removed, err)
	}
	if storage.saves != saves {
		t.Fatal("expected no write for a missing id")
	}
}

func TestStore_PersistsWholeCollection(t *testing.T) {
	store, storage, _ := openTestStore(t)
	mustCreate(t, store, Fields{Title: "a"})
	created := mustCreate(t, store, Fields{Title: "b", DueDate: "2024-03-09"})
	if _, err := store.Finish(created.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(storage.data[SnapshotKey], &raw); err != nil {
		t.Fatalf("snapshot is not a JSON array: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("expected 2 stored tasks, got %d", len(raw))
	}
	if _, ok := raw[0]["completedAt"]; ok {
		t.Error("expected completedAt omitted for a todo task")
	}
	if _, ok := raw[1]["completedAt"].(float64); !ok {
		t.Errorf("expected numeric completedAt, got %v", raw[1]["completedAt"])
	}
	if raw[1]["dueDate"] != "2024-03-09" {
		t.Errorf("expected dueDate, got %v", raw[1]["dueDate"])
	}

	reloaded := Open(storage, Options{})
	if got := reloaded.Tasks(); len(got) != 2 || got[1].Status != StatusDone {
		t.Fatalf("expected reload to restore the collection, got %+v", got)
	}
}

func TestStore_TasksReturnsCopies(t *testing.T) {
	store, _, _ := openTestStore(t)
	mustCreate(t, store, Fields{Title: "x", Subtasks: []Subtask{{Title: "a"}}})

	tasks := store.Tasks()
	tasks[0].Title = "mutated"
	tasks[0].Subtasks[0].Completed = true

	fresh := store.Tasks()
	if fresh[0].Title != "x" || fresh[0].Subtasks[0].Completed {
		t.Fatal("expected store to be unaffected by caller mutation")
	}
}

func TestStore_Resolve(t *testing.T) {
	storage := newMemoryStorage()
	ids := []string{"abc-111", "abd-222"}
	next := 0
	store := Open(storage, Options{NewID: func() string {
		id := ids[next]
		next++
		return id
	}})
	mustCreate(t, store, Fields{Title: "one"})
	mustCreate(t, store, Fields{Title: "two"})

	got, err := store.Resolve("ABD")
	if err != nil || got != "abd-222" {
		t.Fatalf("expected abd-222, got %q %v", got, err)
	}
	if _, err := store.Resolve("ab"); !errors.Is(err, ErrAmbiguousTaskIDPrefix) {
		t.Fatalf("expected ambiguous error, got %v", err)
	}
	if _, err := store.Resolve("zz"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	lengths := store.PrefixLengths()
	if lengths["abc-111"] != 3 {
		t.Fatalf("expected prefix length 3, got %d", lengths["abc-111"])
	}
}

func TestLoadAll(t *testing.T) {
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	createdMs := created.UnixMilli()

	t.Run("missing data", func(t *testing.T) {
		tasks, err := LoadAll(newMemoryStorage())
		if err != nil || len(tasks) != 0 || tasks == nil {
			t.Fatalf("expected empty collection, got %v %v", tasks, err)
		}
	})

	t.Run("backfills legacy done tasks", func(t *testing.T) {
		storage := newMemoryStorage()
		storage.data[SnapshotKey] = []byte(`[
			{"id":"a","title":"old","description":"","dueDate":"","priority":"low","status":"done","subtasks":[],"createdAt":` + jsonInt(createdMs) + `},
			{"id":"b","title":"open","description":"","dueDate":"","priority":"low","status":"todo","createdAt":` + jsonInt(createdMs) + `}
		]`)

		tasks, err := LoadAll(storage)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		want := created.Add(time.Hour)
		if tasks[0].CompletedAt == nil || !tasks[0].CompletedAt.Equal(want) {
			t.Fatalf("expected backfilled completedAt %v, got %v", want, tasks[0].CompletedAt)
		}
		if tasks[1].CompletedAt != nil {
			t.Fatal("expected todo task to stay without completedAt")
		}
		if tasks[1].Subtasks == nil {
			t.Fatal("expected missing subtasks to load as an empty list")
		}
	})

	t.Run("keeps recorded completion", func(t *testing.T) {
		storage := newMemoryStorage()
		completedMs := createdMs + 5000
		storage.data[SnapshotKey] = []byte(`[{"id":"a","title":"t","description":"","dueDate":"","priority":"high","status":"done","subtasks":[],"createdAt":` + jsonInt(createdMs) + `,"completedAt":` + jsonInt(completedMs) + `}]`)

		tasks, err := LoadAll(storage)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if tasks[0].CompletedAt.UnixMilli() != completedMs {
			t.Fatalf("expected completedAt %d, got %d", completedMs, tasks[0].CompletedAt.UnixMilli())
		}
	})

	t.Run("corrupt data", func(t *testing.T) {
		storage := newMemoryStorage()
		storage.data[SnapshotKey] = []byte(`{not json`)

		_, err := LoadAll(storage)
		if !errors.Is(err, ErrCorruptSnapshot) {
			t.Fatalf("expected ErrCorruptSnapshot, got %v", err)
		}
	})
}

func TestOpenDegradesToEmptyOnLoadError(t *testing.T) {
	storage := newMemoryStorage()
	storage.data[SnapshotKey] = []byte(`garbage`)

	var reported error
	store := Open(storage, Options{OnLoadError: func(err error) { reported = err }})

	if !errors.Is(reported, ErrCorruptSnapshot) {
		t.Fatalf("expected load error to be reported, got %v", reported)
	}
	if len(store.Tasks()) != 0 {
		t.Fatal("expected empty collection")
	}

	storage.loadErr = errDiskFull
	reported = nil
	Open(storage, Options{OnLoadError: func(err error) { reported = err }})
	if !errors.Is(reported, errDiskFull) {
		t.Fatalf("expected storage error to be reported, got %v", reported)
	}
}

func jsonInt(value int64) string {
	data, _ := json.Marshal(value)
	return string(data)
}
