package remote

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/existflow/tasksync/internal/model"
	"github.com/existflow/tasksync/server"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(server.New(server.NewMemoryStore()).Router())
	t.Cleanup(srv.Close)
	return srv
}

func loggedInStore(t *testing.T, serverURL, username string) *HTTPStore {
	t.Helper()
	creds := NewCredentialsFile(filepath.Join(t.TempDir(), "auth.json"))
	s, err := NewHTTPStore(serverURL, creds, 5*time.Second)
	if err != nil {
		t.Fatalf("NewHTTPStore: %v", err)
	}
	if err := s.Register(context.Background(), username, username+"@example.com", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return s
}

func TestHTTPStoreDocuments(t *testing.T) {
	srv := setupTestServer(t)
	s := loggedInStore(t, srv.URL, "alice")
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	doc := model.Document{ID: "a1", Task: "write tests", Timestamp: 42}
	if err := s.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.Upsert(ctx, doc); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	got, err := s.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != doc {
		t.Errorf("Get = %+v, want %+v", got, doc)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("List returned %d docs, want 1", len(list))
	}

	if err := s.Delete(ctx, "a1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "a1"); err != nil {
		t.Errorf("Delete of missing id should succeed, got %v", err)
	}
	if _, err := s.Get(ctx, "a1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: got %v, want ErrNotFound", err)
	}
}

func TestHTTPStoreClear(t *testing.T) {
	srv := setupTestServer(t)
	s := loggedInStore(t, srv.URL, "bob")
	ctx := context.Background()

	for _, id := range []string{"x", "y"} {
		if err := s.Upsert(ctx, model.Document{ID: id, Task: id, Timestamp: 1}); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("List after Clear returned %d docs", len(list))
	}
}

func TestHTTPStoreUnauthorized(t *testing.T) {
	srv := setupTestServer(t)
	s, err := NewHTTPStore(srv.URL, nil, time.Second)
	if err != nil {
		t.Fatalf("NewHTTPStore: %v", err)
	}

	_, err = s.List(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("List without login: got %v, want ErrUnauthorized", err)
	}
	if IsUnavailable(err) {
		t.Error("unauthorized must not be reported as unavailable")
	}
}

func TestHTTPStoreUnavailable(t *testing.T) {
	srv := setupTestServer(t)
	s := loggedInStore(t, srv.URL, "carol")
	srv.Close()

	ctx := context.Background()
	if err := s.Ping(ctx); !IsUnavailable(err) {
		t.Errorf("Ping on closed server: got %v, want unavailable", err)
	}
	if err := s.Upsert(ctx, model.Document{ID: "z", Task: "z"}); !IsUnavailable(err) {
		t.Errorf("Upsert on closed server: got %v, want unavailable", err)
	}
}

func TestHTTPStoreSessionPersistence(t *testing.T) {
	srv := setupTestServer(t)
	path := filepath.Join(t.TempDir(), "auth.json")
	creds := NewCredentialsFile(path)

	s, err := NewHTTPStore(srv.URL, creds, time.Second)
	if err != nil {
		t.Fatalf("NewHTTPStore: %v", err)
	}
	if err := s.Register(context.Background(), "dave", "dave@example.com", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	reopened, err := NewHTTPStore(srv.URL+"/", NewCredentialsFile(path), time.Second)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !reopened.IsLoggedIn() || reopened.UserID() != s.UserID() {
		t.Fatalf("session not restored: logged in %v, user %q", reopened.IsLoggedIn(), reopened.UserID())
	}
	if _, err := reopened.List(context.Background()); err != nil {
		t.Errorf("List with restored session: %v", err)
	}

	other, err := NewHTTPStore("http://other.invalid", NewCredentialsFile(path), time.Second)
	if err != nil {
		t.Fatalf("other server: %v", err)
	}
	if other.IsLoggedIn() {
		t.Error("session for a different server must not be reused")
	}

	if err := reopened.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	saved, err := NewCredentialsFile(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if saved.Token != "" {
		t.Errorf("token still saved after logout")
	}
}

func TestCredentialsFileMissing(t *testing.T) {
	c, err := NewCredentialsFile(filepath.Join(t.TempDir(), "none.json")).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Token != "" || c.ServerURL != "" {
		t.Errorf("expected empty credentials, got %+v", c)
	}
}
