package slot

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amonks/orbit/internal/config"
	"github.com/amonks/orbit/task"
)

// exerciseSlot checks the contract shared by every backend.
func exerciseSlot(t *testing.T, s Slot) {
	t.Helper()

	data, err := s.Load("missing")
	if err != nil {
		t.Fatalf("load missing key: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil for missing key, got %q", data)
	}

	if err := s.Save("tasks", []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save("tasks", []byte(`[]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	data, err = s.Load("tasks")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(data, []byte(`[]`)) {
		t.Fatalf("expected overwritten value, got %q", data)
	}
}

// exerciseTaskRoundTrip checks that a task store written through s can be
// reopened from s.
func exerciseTaskRoundTrip(t *testing.T, s Slot) {
	t.Helper()

	store := task.Open(s, task.Options{})
	created, err := store.Create(task.Fields{Title: "Study for quiz", Priority: task.PriorityHigh, DueDate: "2024-03-05"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Finish(created.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}

	reopened := task.Open(s, task.Options{OnLoadError: func(err error) {
		t.Fatalf("unexpected load error: %v", err)
	}})
	got, ok := reopened.Get(created.ID)
	if !ok {
		t.Fatalf("expected task %s after reopen", created.ID)
	}
	if got.Status != task.StatusDone {
		t.Fatalf("expected done, got %q", got.Status)
	}
	if got.CompletedAt == nil {
		t.Fatal("expected completedAt to survive reopen")
	}
}

func TestMemorySlot(t *testing.T) {
	exerciseSlot(t, NewMemory())
	exerciseTaskRoundTrip(t, NewMemory())
}

func TestMemorySlotCopiesData(t *testing.T) {
	m := NewMemory()
	buf := []byte("abc")
	if err := m.Save("k", buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	buf[0] = 'x'

	data, _ := m.Load("k")
	if string(data) != "abc" {
		t.Fatalf("expected stored copy to be unaffected, got %q", data)
	}
	data[1] = 'y'
	again, _ := m.Load("k")
	if string(again) != "abc" {
		t.Fatalf("expected loaded copy to be independent, got %q", again)
	}
}

func TestFileSlot(t *testing.T) {
	exerciseSlot(t, NewFile(filepath.Join(t.TempDir(), "state")))
	exerciseTaskRoundTrip(t, NewFile(t.TempDir()))
}

func TestFileSlotWritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(dir)

	if err := f.Save("tasks", []byte("[]")); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "tasks.json"))
	if err != nil {
		t.Fatalf("read snapshot file: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("expected snapshot contents, got %q", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp") {
			t.Fatalf("expected temp file to be renamed, found %s", entry.Name())
		}
	}
}

func TestFileSlotCorruptSnapshotDegrades(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(dir)
	if err := os.WriteFile(f.Path(task.SnapshotKey), []byte("{not json"), 0644); err != nil {
		t.Fatalf("write corrupt snapshot: %v", err)
	}

	var loadErr error
	store := task.Open(f, task.Options{OnLoadError: func(err error) { loadErr = err }})
	if loadErr == nil {
		t.Fatal("expected load error to be reported")
	}
	if len(store.Tasks()) != 0 {
		t.Fatalf("expected empty store, got %d tasks", len(store.Tasks()))
	}
}

func TestSQLiteSlot(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "orbit.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	exerciseSlot(t, db)

	db2, err := OpenSQLite(filepath.Join(t.TempDir(), "orbit.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db2.Close()
	exerciseTaskRoundTrip(t, db2)
}

func TestSQLiteSlotPersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbit.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Save("tasks", []byte("[]")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	defer db.Close()
	data, err := db.Load("tasks")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("expected persisted value, got %q", data)
	}
}

func TestRedisSlot(t *testing.T) {
	addr := os.Getenv("ORBIT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ORBIT_TEST_REDIS_ADDR not set")
	}

	r, err := OpenRedis(RedisOptions{Addr: addr, Prefix: "orbit-test:" + t.Name() + ":"})
	if err != nil {
		t.Fatalf("open redis: %v", err)
	}
	defer r.Close()
	exerciseSlot(t, r)
}

func TestRedisKeyPrefix(t *testing.T) {
	r := &Redis{prefix: "orbit:"}
	if got := r.Key("tasks"); got != "orbit:tasks" {
		t.Fatalf("expected prefixed key, got %q", got)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(config.Storage{Backend: BackendFile, Path: dir})
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	f, ok := s.(*File)
	if !ok {
		t.Fatalf("expected *File, got %T", s)
	}
	if f.Dir() != dir {
		t.Fatalf("expected dir %q, got %q", dir, f.Dir())
	}

	s, err = Open(config.Storage{Backend: BackendMemory})
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Fatalf("expected *Memory, got %T", s)
	}

	s, err = Open(config.Storage{Backend: BackendSQLite, Path: filepath.Join(dir, "orbit.db")})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*SQLite); !ok {
		t.Fatalf("expected *SQLite, got %T", s)
	}
}

func TestOpenDefaultsToStateDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s, err := Open(config.Storage{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	f, ok := s.(*File)
	if !ok {
		t.Fatalf("expected *File, got %T", s)
	}
	want := filepath.Join(home, ".local", "state", "orbit")
	if f.Dir() != want {
		t.Fatalf("expected %q, got %q", want, f.Dir())
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open(config.Storage{Backend: "floppy"})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if !strings.Contains(err.Error(), "floppy") {
		t.Fatalf("expected backend name in error, got %v", err)
	}
}
