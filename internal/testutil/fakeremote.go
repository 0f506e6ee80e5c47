// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/existflow/tasksync/internal/model"
	"github.com/existflow/tasksync/internal/remote"
)

// FakeRemote is an in-memory implementation of remote.Store for testing.
type FakeRemote struct {
	mu      sync.Mutex
	docs    map[string]model.Document
	offline bool

	// Error injection, keyed by operation
	upsertErr map[string]error // id -> error
	listErr   error
	deleteErr error

	upserts int
	deletes int
	lists   int
}

// NewFakeRemote creates an empty, reachable FakeRemote.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		docs:      make(map[string]model.Document),
		upsertErr: make(map[string]error),
	}
}

// SetOffline makes every call fail with remote.ErrUnavailable.
func (f *FakeRemote) SetOffline(offline bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = offline
}

// FailUpsert makes Upsert of id return err. A nil err clears the failure.
func (f *FakeRemote) FailUpsert(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.upsertErr, id)
		return
	}
	f.upsertErr[id] = err
}

// FailList makes List return err.
func (f *FakeRemote) FailList(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

// FailDelete makes Delete return err.
func (f *FakeRemote) FailDelete(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteErr = err
}

// Put stores a document directly, as another client would.
func (f *FakeRemote) Put(doc model.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[doc.ID] = doc
}

// Remove deletes a document directly, as another client would.
func (f *FakeRemote) Remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
}

// Doc returns the stored document for id.
func (f *FakeRemote) Doc(id string) (model.Document, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	return doc, ok
}

// Len returns the number of stored documents.
func (f *FakeRemote) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

// Calls returns how many Upsert, Delete and List calls were made.
func (f *FakeRemote) Calls() (upserts, deletes, lists int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts, f.deletes, f.lists
}

func (f *FakeRemote) unreachable(op string) error {
	if f.offline {
		return fmt.Errorf("%w: fake %s while offline", remote.ErrUnavailable, op)
	}
	return nil
}

// Upsert implements remote.Store.
func (f *FakeRemote) Upsert(ctx context.Context, doc model.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if err := f.unreachable("upsert"); err != nil {
		return err
	}
	if err := f.upsertErr[doc.ID]; err != nil {
		return err
	}
	f.docs[doc.ID] = doc
	return nil
}

// Get implements remote.Store.
func (f *FakeRemote) Get(ctx context.Context, id string) (model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.unreachable("get"); err != nil {
		return model.Document{}, err
	}
	doc, ok := f.docs[id]
	if !ok {
		return model.Document{}, remote.ErrNotFound
	}
	return doc, nil
}

// List implements remote.Store.
func (f *FakeRemote) List(ctx context.Context) ([]model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if err := f.unreachable("list"); err != nil {
		return nil, err
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	docs := make([]model.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Delete implements remote.Store.
func (f *FakeRemote) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if err := f.unreachable("delete"); err != nil {
		return err
	}
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.docs, id)
	return nil
}

// Ping implements remote.Store.
func (f *FakeRemote) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unreachable("ping")
}

// Close implements remote.Store.
func (f *FakeRemote) Close() error { return nil }
