package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/existflow/tasksync/internal/model"
)

// setupTestDB opens a fresh database in a temporary directory
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "nested", "tasks.db")
	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})
	return database
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	if err := first.Put(context.Background(), model.Task{ID: "a", Text: "keep me", CreatedAt: 1}); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	_ = first.Close()

	second, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer second.Close()

	got, err := second.Get(context.Background(), "a")
	if err != nil {
		t.Fatalf("Get() after reopen failed: %v", err)
	}
	if got.Text != "keep me" {
		t.Errorf("Text = %q, want %q", got.Text, "keep me")
	}
	if second.Path() != path {
		t.Errorf("Path() = %q, want %q", second.Path(), path)
	}
}

func TestPutGetReplace(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	task := model.Task{ID: "t1", Text: "buy milk", CreatedAt: 100, SyncStatus: model.SyncPending}
	if err := database.Put(ctx, task); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	got, err := database.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != task {
		t.Errorf("Get() = %+v, want %+v", got, task)
	}

	task.Completed = true
	task.SyncStatus = model.SyncSynced
	if err := database.Put(ctx, task); err != nil {
		t.Fatalf("second Put() failed: %v", err)
	}

	got, _ = database.Get(ctx, "t1")
	if !got.Completed || got.SyncStatus != model.SyncSynced {
		t.Errorf("replace not applied: %+v", got)
	}

	all, err := database.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("GetAll() returned %d tasks, want 1", len(all))
	}
}

func TestGetMissing(t *testing.T) {
	database := setupTestDB(t)

	_, err := database.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	_ = database.Put(ctx, model.Task{ID: "t1", Text: "x", CreatedAt: 1})

	for i := 0; i < 2; i++ {
		if err := database.Delete(ctx, "t1"); err != nil {
			t.Fatalf("Delete() #%d failed: %v", i+1, err)
		}
	}

	all, _ := database.GetAll(ctx)
	if len(all) != 0 {
		t.Errorf("expected empty store, got %d tasks", len(all))
	}
}

func TestTombstones(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	_ = database.Put(ctx, model.Task{ID: "t1", Text: "x", CreatedAt: 1})
	_ = database.Put(ctx, model.Task{ID: "t2", Text: "y", CreatedAt: 2})

	at := time.UnixMilli(5000)
	if err := database.DeleteWithTombstone(ctx, "t1", at); err != nil {
		t.Fatalf("DeleteWithTombstone() failed: %v", err)
	}
	// A tombstone for a row that never existed locally is still recorded
	if err := database.DeleteWithTombstone(ctx, "ghost", at.Add(time.Second)); err != nil {
		t.Fatalf("DeleteWithTombstone(ghost) failed: %v", err)
	}

	if _, err := database.Get(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("t1 should be gone, got err=%v", err)
	}

	stones, err := database.Tombstones(ctx)
	if err != nil {
		t.Fatalf("Tombstones() failed: %v", err)
	}
	if len(stones) != 2 || stones[0].ID != "t1" || stones[1].ID != "ghost" {
		t.Fatalf("Tombstones() = %+v", stones)
	}
	if !stones[0].DeletedAt.Equal(at) {
		t.Errorf("DeletedAt = %v, want %v", stones[0].DeletedAt, at)
	}

	if err := database.ClearTombstone(ctx, "t1"); err != nil {
		t.Fatalf("ClearTombstone() failed: %v", err)
	}
	stones, _ = database.Tombstones(ctx)
	if len(stones) != 1 || stones[0].ID != "ghost" {
		t.Errorf("after clear, Tombstones() = %+v", stones)
	}
}

func TestClear(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	_ = database.Put(ctx, model.Task{ID: "t1", Text: "x", CreatedAt: 1})
	_ = database.DeleteWithTombstone(ctx, "t2", time.Now())

	if err := database.Clear(ctx); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}

	all, _ := database.GetAll(ctx)
	stones, _ := database.Tombstones(ctx)
	if len(all) != 0 || len(stones) != 0 {
		t.Errorf("Clear() left %d tasks and %d tombstones", len(all), len(stones))
	}
}

func TestState(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	v, err := database.State(ctx, "last_reconcile")
	if err != nil || v != "" {
		t.Fatalf("State() on unset key = %q, %v", v, err)
	}

	if err := database.SetState(ctx, "last_reconcile", "123"); err != nil {
		t.Fatalf("SetState() failed: %v", err)
	}
	if err := database.SetState(ctx, "last_reconcile", "456"); err != nil {
		t.Fatalf("SetState() overwrite failed: %v", err)
	}

	v, _ = database.State(ctx, "last_reconcile")
	if v != "456" {
		t.Errorf("State() = %q, want 456", v)
	}
}

func TestStorageErrorAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	_ = database.Close()

	err = database.Put(context.Background(), model.Task{ID: "x", Text: "y"})
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("Put() on closed db error = %v, want *StorageError", err)
	}
	if se.Op != "put" || se.ID != "x" {
		t.Errorf("StorageError = %+v", se)
	}
}
