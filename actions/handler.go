package actions

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/CerealNotFound/function-calling-server/core/protocol"
)

// Handler performs one action with arguments that already passed
// validation. Failures are reported in the returned Outcome, never by panic.
type Handler interface {
	Execute(ctx context.Context, args Arguments) protocol.Outcome
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, args Arguments) protocol.Outcome

// Execute calls f.
func (f HandlerFunc) Execute(ctx context.Context, args Arguments) protocol.Outcome {
	return f(ctx, args)
}

// HandlerSet maps action names to the handlers that perform them.
// Thread-safe for concurrent access.
type HandlerSet struct {
	handlers map[string]Handler
	mu       sync.RWMutex
}

// NewHandlerSet creates an empty HandlerSet.
func NewHandlerSet() *HandlerSet {
	return &HandlerSet{handlers: make(map[string]Handler)}
}

// Register binds a handler to an action name.
// Returns ErrDuplicateHandler if the name is already bound.
func (s *HandlerSet) Register(name string, h Handler) error {
	if name == "" {
		return ErrEmptyName
	}
	if h == nil {
		return fmt.Errorf("nil handler for %s", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.handlers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, name)
	}
	s.handlers[name] = h
	return nil
}

// Lookup returns the handler bound to name.
func (s *HandlerSet) Lookup(name string) (Handler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.handlers[name]
	return h, ok
}

// Names returns the bound action names, sorted.
func (s *HandlerSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.handlers))
}
