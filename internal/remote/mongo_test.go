package remote

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/existflow/tasksync/internal/model"
)

// TASKSYNC_TEST_MONGO_URI points the test at a disposable MongoDB
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("TASKSYNC_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TASKSYNC_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	coll := "tasks_" + uuid.NewString()[:8]
	s, err := NewMongoStore(ctx, uri, "tasksync_test", coll, 5*time.Second)
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Clear(context.Background())
		_ = s.Close()
	})

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	doc := model.Document{ID: "m1", Task: "mongo", Timestamp: 7}
	if err := s.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	doc.Completed = true
	if err := s.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert replace: %v", err)
	}

	got, err := s.Get(ctx, "m1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != doc {
		t.Errorf("Get = %+v, want %+v", got, doc)
	}

	list, err := s.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v, %v", list, err)
	}

	if err := s.Delete(ctx, "m1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "m1"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
	if _, err := s.Get(ctx, "m1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: %v", err)
	}
}
