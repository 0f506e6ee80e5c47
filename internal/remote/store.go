// Package remote provides the remote document collection the sync engine
// mirrors local tasks into.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/existflow/tasksync/internal/model"
)

var (
	// ErrUnavailable wraps any failure to reach the remote store
	ErrUnavailable = errors.New("remote store unavailable")

	// ErrNotFound is returned by Get for an unknown id
	ErrNotFound = errors.New("document not found")

	// ErrUnauthorized is returned when the server rejects the credentials
	ErrUnauthorized = errors.New("not authorized")
)

// Store is a remote task collection keyed by task id.
// Every call may fail; callers treat a failure as "still pending".
type Store interface {
	// Upsert creates or replaces the document with doc.ID. Repeating it is safe.
	Upsert(ctx context.Context, doc model.Document) error

	// Get returns the document with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (model.Document, error)

	// List returns the whole collection.
	List(ctx context.Context) ([]model.Document, error)

	// Delete removes a document. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// Ping reports whether the store is reachable right now.
	Ping(ctx context.Context) error

	// Close releases connections held by the store.
	Close() error
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// IsUnavailable reports whether err means the store could not be reached
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
