package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/amonks/orbit/internal/ids"
)

// SnapshotKey is the storage key holding the serialized task collection.
const SnapshotKey = "tasks"

// Storage persists named byte snapshots.
type Storage interface {
	// Load returns the bytes stored under key, or nil if nothing is stored.
	Load(key string) ([]byte, error)

	// Save replaces the bytes stored under key.
	Save(key string, data []byte) error
}

// Options configures a Store.
type Options struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// NewID generates task and subtask IDs. Defaults to ids.New.
	NewID func() string

	// OnLoadError is called when the stored snapshot cannot be loaded.
	// The store starts empty either way.
	OnLoadError func(error)
}

// Store owns the in-memory task collection and writes it through to
// Storage on every mutation. A Store is not safe for concurrent use.
type Store struct {
	storage Storage
	now     func() time.Time
	newID   func() string
	tasks   []Task
}

// Open loads the collection from storage.
//
// A snapshot that cannot be read or parsed is reported to
// opts.OnLoadError and the store starts with an empty collection.
func Open(storage Storage, opts Options) *Store {
	store := &Store{
		storage: storage,
		now:     opts.Now,
		newID:   opts.NewID,
	}
	if store.now == nil {
		store.now = time.Now
	}
	if store.newID == nil {
		store.newID = ids.New
	}

	tasks, err := LoadAll(storage)
	if err != nil {
		if opts.OnLoadError != nil {
			opts.OnLoadError(err)
		}
		tasks = []Task{}
	}
	store.tasks = tasks
	return store
}

// LoadAll reads the collection from storage and backfills completion times
// of legacy done tasks. Missing data yields an empty collection.
func LoadAll(storage Storage) ([]Task, error) {
	data, err := storage.Load(SnapshotKey)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Task{}, nil
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if tasks == nil {
		tasks = []Task{}
	}
	backfillCompletedAt(tasks)
	return tasks, nil
}

// Fields describes a new task.
type Fields struct {
	Title       string
	Description string

	// DueDate is "" or YYYY-MM-DD.
	DueDate string

	// Priority defaults to PriorityMedium.
	Priority Priority

	// Status defaults to StatusTodo.
	Status Status

	// Subtasks without an ID are assigned one.
	Subtasks []Subtask
}

// Create validates fields, appends a new task, and persists the collection.
func (s *Store) Create(fields Fields) (Task, error) {
	if err := ValidateTitle(fields.Title); err != nil {
		return Task{}, err
	}
	if fields.Priority == "" {
		fields.Priority = PriorityMedium
	}
	if !fields.Priority.IsValid() {
		return Task{}, fmt.Errorf("%w: %q", ErrInvalidPriority, fields.Priority)
	}
	if fields.Status == "" {
		fields.Status = StatusTodo
	}
	if !fields.Status.IsValid() {
		return Task{}, fmt.Errorf("%w: %q", ErrInvalidStatus, fields.Status)
	}
	if err := ValidateDueDate(fields.DueDate); err != nil {
		return Task{}, err
	}
	if err := ValidateSubtasks(fields.Subtasks); err != nil {
		return Task{}, err
	}

	now := toMillis(s.now())
	created := Task{
		ID:          s.newID(),
		Title:       strings.TrimSpace(fields.Title),
		Description: fields.Description,
		DueDate:     fields.DueDate,
		Priority:    fields.Priority,
		Status:      fields.Status,
		Subtasks:    s.assignSubtaskIDs(fields.Subtasks),
		CreatedAt:   now,
	}
	created.CompletedAt = Transition(StatusTodo, created.Status, nil, now)

	next := append(s.snapshot(), created)
	if err := s.commit(next); err != nil {
		return Task{}, err
	}
	return created.Clone(), nil
}

// UpdateOptions configures fields to update on a task.
// Nil pointers mean "don't update this field".
type UpdateOptions struct {
	Title       *string
	Description *string
	DueDate     *string
	Priority    *Priority
	Status      *Status

	// Subtasks replaces the whole checklist.
	Subtasks *[]Subtask
}

// Update merges opts into the task with the given ID and persists the
// collection. It returns nil without error when no task has that ID.
//
// A status change applies Transition against the status held before the
// update.
func (s *Store) Update(id string, opts UpdateOptions) (*Task, error) {
	if err := validateUpdate(&opts); err != nil {
		return nil, err
	}

	index := s.indexOf(id)
	if index < 0 {
		return nil, nil
	}

	next := s.snapshot()
	item := next[index]
	previousStatus := item.Status

	if opts.Title != nil {
		item.Title = strings.TrimSpace(*opts.Title)
	}
	if opts.Description != nil {
		item.Description = *opts.Description
	}
	if opts.DueDate != nil {
		item.DueDate = *opts.DueDate
	}
	if opts.Priority != nil {
		item.Priority = *opts.Priority
	}
	if opts.Subtasks != nil {
		item.Subtasks = s.assignSubtaskIDs(*opts.Subtasks)
	}
	if opts.Status != nil {
		item.Status = *opts.Status
		item.CompletedAt = Transition(previousStatus, item.Status, item.CompletedAt, s.now())
	}
	next[index] = item

	if err := s.commit(next); err != nil {
		return nil, err
	}
	updated := item.Clone()
	return &updated, nil
}

func validateUpdate(opts *UpdateOptions) error {
	if opts.Title != nil {
		if err := ValidateTitle(*opts.Title); err != nil {
			return err
		}
	}
	if opts.DueDate != nil {
		if err := ValidateDueDate(*opts.DueDate); err != nil {
			return err
		}
	}
	if opts.Priority != nil && !opts.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, *opts.Priority)
	}
	if opts.Status != nil && !opts.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *opts.Status)
	}
	if opts.Subtasks != nil {
		if err := ValidateSubtasks(*opts.Subtasks); err != nil {
			return err
		}
	}
	return nil
}

// Start marks a task as in progress.
func (s *Store) Start(id string) (*Task, error) {
	return s.Update(id, UpdateOptions{Status: StatusPtr(StatusInProgress)})
}

// Finish marks a task as done.
func (s *Store) Finish(id string) (*Task, error) {
	return s.Update(id, UpdateOptions{Status: StatusPtr(StatusDone)})
}

// Reopen marks a task as todo.
func (s *Store) Reopen(id string) (*Task, error) {
	return s.Update(id, UpdateOptions{Status: StatusPtr(StatusTodo)})
}

// Delete removes the task with the given ID and persists the collection.
// It reports whether a task was removed; an unknown ID is not an error.
func (s *Store) Delete(id string) (bool, error) {
	index := s.indexOf(id)
	if index < 0 {
		return false, nil
	}

	next := s.snapshot()
	next = append(next[:index], next[index+1:]...)
	if err := s.commit(next); err != nil {
		return false, err
	}
	return true, nil
}

// Tasks returns a copy of the collection in creation order.
func (s *Store) Tasks() []Task {
	return cloneTasks(s.tasks)
}

// Get returns the task with the given ID.
func (s *Store) Get(id string) (Task, bool) {
	index := s.indexOf(id)
	if index < 0 {
		return Task{}, false
	}
	return s.tasks[index].Clone(), true
}

// Resolve returns the full ID of the task whose ID starts with prefix.
func (s *Store) Resolve(prefix string) (string, error) {
	resolved, err := NewIDIndex(s.tasks).Resolve(prefix)
	if err != nil {
		return "", err
	}
	for _, item := range s.tasks {
		if strings.EqualFold(item.ID, resolved) {
			return item.ID, nil
		}
	}
	return resolved, nil
}

// PrefixLengths returns the shortest unique prefix length for each task ID.
func (s *Store) PrefixLengths() map[string]int {
	return NewIDIndex(s.tasks).PrefixLengths()
}

// View returns DeriveView over the current collection.
func (s *Store) View(filter PriorityFilter, query string) []Task {
	return DeriveView(s.Tasks(), filter, query)
}

// NewSubtask returns an incomplete subtask with a fresh ID.
func (s *Store) NewSubtask(title string) Subtask {
	return Subtask{ID: s.newID(), Title: strings.TrimSpace(title)}
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) assignSubtaskIDs(subtasks []Subtask) []Subtask {
	assigned := make([]Subtask, 0, len(subtasks))
	for _, subtask := range subtasks {
		if subtask.ID == "" {
			subtask.ID = s.newID()
		}
		subtask.Title = strings.TrimSpace(subtask.Title)
		assigned = append(assigned, subtask)
	}
	return assigned
}

func (s *Store) snapshot() []Task {
	return cloneTasks(s.tasks)
}

// commit persists next and then makes it the current collection, so a
// failed write leaves the store unchanged.
func (s *Store) commit(next []Task) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	if err := s.storage.Save(SnapshotKey, data); err != nil {
		return fmt.Errorf("write tasks: %w", err)
	}
	s.tasks = next
	return nil
}

func cloneTasks(tasks []Task) []Task {
	cloned := make([]Task, 0, len(tasks))
	for _, item := range tasks {
		cloned = append(cloned, item.Clone())
	}
	return cloned
}
