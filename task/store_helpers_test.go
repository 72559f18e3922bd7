package task

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

type memoryStorage struct {
	data    map[string][]byte
	saves   int
	saveErr error
	loadErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{data: make(map[string][]byte)}
}

func (m *memoryStorage) Load(key string) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data[key], nil
}

func (m *memoryStorage) Save(key string, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data[key] = append([]byte(nil), data...)
	return nil
}

var errDiskFull = errors.New("disk full")

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func sequentialIDs() func() string {
	next := 0
	return func() string {
		next++
		return fmt.Sprintf("id-%04d", next)
	}
}

func openTestStore(t *testing.T) (*Store, *memoryStorage, *testClock) {
	t.Helper()

	storage := newMemoryStorage()
	clock := &testClock{now: time.Date(2024, 3, 2, 9, 12, 0, 0, time.UTC)}
	store := Open(storage, Options{
		Now:   clock.Now,
		NewID: sequentialIDs(),
		OnLoadError: func(err error) {
			t.Fatalf("unexpected load error: %v", err)
		},
	})
	return store, storage, clock
}

func mustCreate(t *testing.T, store *Store, fields Fields) Task {
	t.Helper()

	created, err := store.Create(fields)
	if err != nil {
		t.Fatalf("create %q: %v", fields.Title, err)
	}
	return created
}
