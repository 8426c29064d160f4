// Package storage persists rendered ticket artifacts. Objects are
// content-addressed by registration id, so overwriting an existing name is
// always safe.
package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned by Fetch when the named object does not
// exist in the store.
var ErrObjectNotFound = errors.New("object not found")

// Store is the artifact store consumed by the registration workflow.
type Store interface {
	// Store persists data under name and returns a retrievable URL.
	Store(ctx context.Context, name string, data []byte, contentType string) (string, error)
	// Fetch returns the stored bytes for name, or ErrObjectNotFound.
	Fetch(ctx context.Context, name string) ([]byte, error)
	// Exists reports whether name is present in the store.
	Exists(ctx context.Context, name string) (bool, error)
	// Delete removes name, reporting whether anything was removed.
	Delete(ctx context.Context, name string) (bool, error)
}
