package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amonks/orbit/internal/slot"
	"github.com/amonks/orbit/internal/testsupport"
	"github.com/amonks/orbit/task"
)

// fakeProvider answers Anthropic Messages requests with canned replies
// chosen by prompt prefix.
func fakeProvider(t *testing.T, replies map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		prompt := req.Messages[0].Content
		for prefix, reply := range replies {
			if strings.HasPrefix(prompt, prefix) {
				payload, _ := json.Marshal(map[string]any{
					"content": []map[string]string{{"type": "text", "text": reply}},
				})
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write(payload)
				return
			}
		}
		http.Error(w, "unexpected prompt", http.StatusTeapot)
	}))
	t.Cleanup(server.Close)
	return server
}

func setupAIHome(t *testing.T, providerURL string) string {
	t.Helper()
	home := testsupport.SetupTestHome(t)
	chdirForTest(t, t.TempDir())
	config := fmt.Sprintf("[assist]\napi-key = \"sk-test\"\nbase-url = %q\n", providerURL)
	if err := os.WriteFile(filepath.Join(home, ".config", "orbit", "config.toml"), []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return home
}

func runOrbit(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		aiBreakdownApply = false
		aiOptimizeApply = false
	})
	return rootCmd.Execute()
}

func loadSavedTasks(t *testing.T, home string) []task.Task {
	t.Helper()
	tasks, err := task.LoadAll(slot.NewFile(filepath.Join(home, ".local", "state", "orbit")))
	if err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	return tasks
}

func TestAIAddCreatesParsedTask(t *testing.T) {
	provider := fakeProvider(t, map[string]string{
		"Today's date is": "```json\n{\"title\":\"Read chapter 4\",\"description\":null,\"dueDate\":\"2030-05-03T00:00:00Z\",\"priority\":\"high\",\"status\":\"todo\"}\n```",
	})
	home := setupAIHome(t, provider.URL)

	if err := runOrbit(t, "ai", "add", "read", "chapter", "4", "by", "friday,", "urgent"); err != nil {
		t.Fatalf("ai add: %v", err)
	}

	tasks := loadSavedTasks(t, home)
	if len(tasks) != 1 {
		t.Fatalf("expected one task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Title != "Read chapter 4" || got.Priority != task.PriorityHigh || got.DueDate != "2030-05-03" {
		t.Fatalf("unexpected task %+v", got)
	}
	if got.Status != task.StatusTodo {
		t.Fatalf("expected todo status, got %q", got.Status)
	}
}

func TestAIBreakdownApplyAppendsSubtasks(t *testing.T) {
	provider := fakeProvider(t, map[string]string{
		"Break down this task": `Here you go: ["Outline", "Draft", " ", "Edit"]`,
	})
	home := setupAIHome(t, provider.URL)

	store := task.Open(slot.NewFile(filepath.Join(home, ".local", "state", "orbit")), task.Options{})
	created, err := store.Create(task.Fields{
		Title:    "Essay",
		Subtasks: []task.Subtask{{Title: "Pick topic", Completed: true}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := runOrbit(t, "ai", "breakdown", created.ID[:8], "--apply"); err != nil {
		t.Fatalf("ai breakdown: %v", err)
	}

	tasks := loadSavedTasks(t, home)
	subtasks := tasks[0].Subtasks
	if len(subtasks) != 4 {
		t.Fatalf("expected 4 subtasks, got %+v", subtasks)
	}
	if subtasks[0].Title != "Pick topic" || !subtasks[0].Completed {
		t.Fatalf("expected existing subtask kept, got %+v", subtasks[0])
	}
	for i, want := range []string{"Outline", "Draft", "Edit"} {
		got := subtasks[i+1]
		if got.Title != want || got.Completed || got.ID == "" {
			t.Fatalf("unexpected subtask %d: %+v", i+1, got)
		}
	}
}

func TestAIOptimizeRequiresHistory(t *testing.T) {
	provider := fakeProvider(t, nil)
	home := setupAIHome(t, provider.URL)

	store := task.Open(slot.NewFile(filepath.Join(home, ".local", "state", "orbit")), task.Options{})
	if _, err := store.Create(task.Fields{Title: "Pending"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := runOrbit(t, "ai", "optimize")
	if err == nil || !strings.Contains(err.Error(), "Need at least 5 completed tasks") {
		t.Fatalf("expected history error, got %v", err)
	}
}

func TestAIWithoutAPIKey(t *testing.T) {
	testsupport.SetupTestHome(t)
	chdirForTest(t, t.TempDir())

	err := runOrbit(t, "ai", "plan")
	if err == nil || !strings.Contains(err.Error(), "no API key configured") {
		t.Fatalf("expected missing key error, got %v", err)
	}
	if !strings.Contains(err.Error(), "ANTHROPIC_API_KEY") {
		t.Fatalf("expected env var hint, got %v", err)
	}
}

// chdirForTest changes the working directory for the duration of the test
// and restores it on cleanup (equivalent to testing.T.Chdir, which requires
// Go 1.24).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
