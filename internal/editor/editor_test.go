package editor

import (
	"slices"
	"testing"
)

func TestEditorCommand(t *testing.T) {
	cases := []struct {
		name        string
		env         map[string]string
		wantProgram string
		wantArgs    []string
	}{
		{name: "fallback", env: nil, wantProgram: "vi"},
		{name: "editor", env: map[string]string{"EDITOR": "nano"}, wantProgram: "nano"},
		{
			name:        "visual wins",
			env:         map[string]string{"VISUAL": "code --wait", "EDITOR": "nano"},
			wantProgram: "code",
			wantArgs:    []string{"--wait"},
		},
		{name: "blank visual", env: map[string]string{"VISUAL": "  ", "EDITOR": "hx"}, wantProgram: "hx"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			program, args := editorCommand(func(key string) string { return tc.env[key] })
			if program != tc.wantProgram {
				t.Fatalf("expected program %q, got %q", tc.wantProgram, program)
			}
			if !slices.Equal(args, tc.wantArgs) {
				t.Fatalf("expected args %v, got %v", tc.wantArgs, args)
			}
		})
	}
}

func TestEditReportsExitStatus(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "false")

	err := Edit(t.TempDir() + "/task.md")
	if err == nil {
		t.Fatal("expected error from failing editor")
	}
	if got := err.Error(); got != "editor false exited with status 1" {
		t.Fatalf("unexpected error: %q", got)
	}
}
