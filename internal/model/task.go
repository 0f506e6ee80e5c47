package model

import (
	"fmt"
	"sort"
	"time"
)

// SyncStatus records whether the remote store reflects a task's local content
type SyncStatus int

const (
	SyncPending SyncStatus = iota // Local change not yet written remotely
	SyncSynced                    // Remote write for this exact state succeeded
)

// String returns the value stored in the local database
func (s SyncStatus) String() string {
	switch s {
	case SyncPending:
		return "pending"
	case SyncSynced:
		return "synced"
	default:
		return "unknown"
	}
}

// ParseSyncStatus converts a stored value back into a SyncStatus
func ParseSyncStatus(s string) (SyncStatus, error) {
	switch s {
	case "pending":
		return SyncPending, nil
	case "synced":
		return SyncSynced, nil
	default:
		return SyncPending, fmt.Errorf("unknown sync status %q", s)
	}
}

// Task represents a single todo item as kept in the local store
type Task struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Completed  bool       `json:"completed"`
	CreatedAt  int64      `json:"created_at"` // Unix milliseconds
	SyncStatus SyncStatus `json:"sync_status"`
}

// NewTask creates a pending task with defaults
func NewTask(id, text string, createdAt time.Time) Task {
	return Task{
		ID:         id,
		Text:       text,
		Completed:  false,
		CreatedAt:  createdAt.UnixMilli(),
		SyncStatus: SyncPending,
	}
}

// Created returns the creation time
func (t Task) Created() time.Time {
	return time.UnixMilli(t.CreatedAt)
}

// IsPending returns true if the task still needs a remote write
func (t Task) IsPending() bool {
	return t.SyncStatus == SyncPending
}

// Document converts the task into its remote representation.
// The sync status is local bookkeeping and is never included.
func (t Task) Document() Document {
	return Document{
		ID:        t.ID,
		Task:      t.Text,
		Completed: t.Completed,
		Timestamp: t.CreatedAt,
	}
}

// Document is a task as stored in the remote collection
type Document struct {
	ID        string `json:"id" bson:"_id"`
	Task      string `json:"task" bson:"task"`
	Completed bool   `json:"completed" bson:"completed"`
	Timestamp int64  `json:"timestamp" bson:"timestamp"`
}

// ToTask converts a remote document into a synced local task
func (d Document) ToTask() Task {
	return Task{
		ID:         d.ID,
		Text:       d.Task,
		Completed:  d.Completed,
		CreatedAt:  d.Timestamp,
		SyncStatus: SyncSynced,
	}
}

// SortTasks orders tasks newest first, breaking ties by ID
func SortTasks(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt != tasks[j].CreatedAt {
			return tasks[i].CreatedAt > tasks[j].CreatedAt
		}
		return tasks[i].ID > tasks[j].ID
	})
}

// Tombstone marks a locally deleted task whose remote delete is outstanding
type Tombstone struct {
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deleted_at"`
}
