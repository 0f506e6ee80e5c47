package model

import (
	"testing"
	"time"
)

func TestParseSyncStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    SyncStatus
		wantErr bool
	}{
		{"pending", SyncPending, false},
		{"synced", SyncSynced, false},
		{"", SyncPending, true},
		{"SYNCED", SyncPending, true},
	}

	for _, tt := range tests {
		got, err := ParseSyncStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSyncStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSyncStatus(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !tt.wantErr && got.String() != tt.in {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
}

func TestNewTaskDefaults(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	task := NewTask("id-1", "buy milk", now)

	if task.Completed {
		t.Error("new task should not be completed")
	}
	if !task.IsPending() {
		t.Errorf("new task status = %v, want pending", task.SyncStatus)
	}
	if task.CreatedAt != 1700000000123 {
		t.Errorf("CreatedAt = %d, want 1700000000123", task.CreatedAt)
	}
	if !task.Created().Equal(now) {
		t.Errorf("Created() = %v, want %v", task.Created(), now)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	task := Task{ID: "a", Text: "x", Completed: true, CreatedAt: 42, SyncStatus: SyncPending}

	doc := task.Document()
	if doc.ID != "a" || doc.Task != "x" || !doc.Completed || doc.Timestamp != 42 {
		t.Fatalf("unexpected document: %+v", doc)
	}

	back := doc.ToTask()
	if back.SyncStatus != SyncSynced {
		t.Errorf("tasks built from documents should be synced, got %v", back.SyncStatus)
	}
	back.SyncStatus = task.SyncStatus
	if back != task {
		t.Errorf("round trip = %+v, want %+v", back, task)
	}
}

func TestSortTasks(t *testing.T) {
	tasks := []Task{
		{ID: "a", CreatedAt: 10},
		{ID: "c", CreatedAt: 30},
		{ID: "b", CreatedAt: 30},
		{ID: "d", CreatedAt: 20},
	}

	SortTasks(tasks)

	want := []string{"c", "b", "d", "a"}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, tasks[i].ID, id)
		}
	}
}
