// Package prompt composes the system turn sent ahead of every conversation:
// a base instruction followed by any fragments found in a prompt store.
package prompt

import (
	"context"
	"errors"
)

// Sentinel errors for fragment loading.
var (
	ErrFragmentNotFound = errors.New("prompt fragment not found")
	ErrLoadFailed       = errors.New("prompt load failed")
)

// Fragment is one named block of system prompt text.
type Fragment struct {
	Key  string
	Text string
}

// Store lists and loads prompt fragments. Keys are /-separated paths.
type Store interface {
	// List returns all fragment keys, sorted.
	List(ctx context.Context) ([]string, error)
	// Load retrieves fragments for the given keys, in the order given.
	Load(ctx context.Context, keys ...string) ([]Fragment, error)
}
