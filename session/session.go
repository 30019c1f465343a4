// Package session holds conversation state: the ordered, append-only record
// of turns the dispatcher replays to the model on every cycle.
package session

import (
	"errors"

	"github.com/CerealNotFound/function-calling-server/core/protocol"
)

// Sentinel errors for session lookup and construction.
var (
	ErrNotFound       = errors.New("conversation not found")
	ErrUnknownBackend = errors.New("unknown session backend")
)

// Session holds an ordered sequence of conversation turns. Turns are only
// ever appended; earlier turns are never edited or removed. Implementations
// must be safe for concurrent use.
type Session interface {
	// ID returns the conversation identifier.
	ID() string
	// Append adds a turn to the end of the history.
	Append(msg protocol.Message)
	// Snapshot returns a deep copy of the history in append order.
	Snapshot() []protocol.Message
	// Len returns the number of turns recorded.
	Len() int
}
