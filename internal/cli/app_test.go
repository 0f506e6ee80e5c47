package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/existflow/tasksync/internal/config"
)

func setupTestApp(t *testing.T) *app {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	c := config.DefaultConfig()
	c.DBPath = filepath.Join(t.TempDir(), "tasks.db")
	c.Offline = true

	a, err := openApp(context.Background(), c, nil)
	if err != nil {
		t.Fatalf("openApp() failed: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestOpenAppOffline(t *testing.T) {
	a := setupTestApp(t)
	if a.prober != nil {
		t.Error("offline app should not probe")
	}
	if a.monitor.IsOnline() {
		t.Error("offline app reports online")
	}

	task, err := a.engine.AddTask(context.Background(), "write report")
	if err != nil {
		t.Fatalf("AddTask() failed: %v", err)
	}
	if !task.IsPending() {
		t.Error("task added offline should be pending")
	}
}

func TestResolveTask(t *testing.T) {
	a := setupTestApp(t)
	ctx := context.Background()

	first, err := a.engine.AddTask(ctx, "first")
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.engine.AddTask(ctx, "second")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr string
	}{
		{"full id", first.ID, first.ID, ""},
		{"short id", shortID(second.ID), second.ID, ""},
		{"unknown", "zzzzzzzz", "", "not found"},
		{"ambiguous", "0", "", "matches 2 tasks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.resolveTask(ctx, tt.ref)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveTask(%q) failed: %v", tt.ref, err)
			}
			if got.ID != tt.want {
				t.Errorf("resolved %s, want %s", got.ID, tt.want)
			}
		})
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID(abc) = %q", got)
	}
	if got := shortID("0199c1de-3f9c-7a1b-8d2e-4f5a6b7c8d9e"); got != "6b7c8d9e" {
		t.Errorf("shortID = %q", got)
	}
}
