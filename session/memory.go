package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/CerealNotFound/function-calling-server/core/protocol"
)

type memorySession struct {
	id       string
	messages []protocol.Message
	mu       sync.RWMutex
}

// NewMemorySession creates a Session backed by an in-memory slice.
// The session is assigned a unique UUIDv7 identifier.
func NewMemorySession() Session {
	return newMemorySession(uuid.Must(uuid.NewV7()).String())
}

func newMemorySession(id string) *memorySession {
	return &memorySession{id: id}
}

func (s *memorySession) ID() string {
	return s.id
}

func (s *memorySession) Append(msg protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg.Clone())
}

func (s *memorySession) Snapshot() []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]protocol.Message, len(s.messages))
	for i, msg := range s.messages {
		copied[i] = msg.Clone()
	}
	return copied
}

func (s *memorySession) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}
