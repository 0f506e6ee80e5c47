package server

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/existflow/tasksync/internal/model"
)

var (
	// ErrNotFound is returned for unknown users, sessions and tasks
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a username or email is taken
	ErrConflict = errors.New("already exists")
)

// Store persists accounts, sessions and per-user task documents
type Store interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (string, error)
	FindUserByUsername(ctx context.Context, username string) (model.User, error)
	FindUserByID(ctx context.Context, id string) (model.User, error)

	CreateSession(ctx context.Context, s model.Session) error
	FindSession(ctx context.Context, token string) (model.Session, error)
	DeleteSession(ctx context.Context, token string) error

	UpsertTask(ctx context.Context, userID string, doc model.Document) error
	GetTask(ctx context.Context, userID, id string) (model.Document, error)
	ListTasks(ctx context.Context, userID string) ([]model.Document, error)
	DeleteTask(ctx context.Context, userID, id string) error
	ClearTasks(ctx context.Context, userID string) error

	Ping(ctx context.Context) error
	Close() error
}

// MemoryStore is an in-process Store for development and tests
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]model.User // id -> user
	sessions map[string]model.Session
	tasks    map[string]map[string]model.Document // user id -> task id -> doc
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]model.User),
		sessions: make(map[string]model.Session),
		tasks:    make(map[string]map[string]model.Document),
	}
}

func (m *MemoryStore) CreateUser(ctx context.Context, username, email, passwordHash string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return "", ErrConflict
		}
	}

	id := uuid.NewString()
	m.users[id] = model.User{ID: id, Username: username, Email: email, PasswordHash: passwordHash}
	return id, nil
}

func (m *MemoryStore) FindUserByUsername(ctx context.Context, username string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (m *MemoryStore) FindUserByID(ctx context.Context, id string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (m *MemoryStore) CreateSession(ctx context.Context, s model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
	return nil
}

func (m *MemoryStore) FindSession(ctx context.Context, token string) (model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[token]
	if !ok {
		return model.Session{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) DeleteSession(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *MemoryStore) UpsertTask(ctx context.Context, userID string, doc model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tasks[userID] == nil {
		m.tasks[userID] = make(map[string]model.Document)
	}
	m.tasks[userID][doc.ID] = doc
	return nil
}

func (m *MemoryStore) GetTask(ctx context.Context, userID, id string) (model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.tasks[userID][id]
	if !ok {
		return model.Document{}, ErrNotFound
	}
	return doc, nil
}

func (m *MemoryStore) ListTasks(ctx context.Context, userID string) ([]model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]model.Document, 0, len(m.tasks[userID]))
	for _, doc := range m.tasks[userID] {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Timestamp != docs[j].Timestamp {
			return docs[i].Timestamp > docs[j].Timestamp
		}
		return docs[i].ID > docs[j].ID
	})
	return docs, nil
}

func (m *MemoryStore) DeleteTask(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[userID][id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks[userID], id)
	return nil
}

func (m *MemoryStore) ClearTasks(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, userID)
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
