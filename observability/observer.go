// Package observability carries the relay's structured events from the
// dispatcher and its collaborators to logs and metrics. Level values align
// with OpenTelemetry SeverityNumbers so events forward to OTel collectors
// without translation.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level represents event severity aligned with OTel SeverityNumber ranges.
type Level int

const (
	LevelVerbose Level = 5  // OTel DEBUG (5-8)
	LevelInfo    Level = 9  // OTel INFO (9-12)
	LevelWarning Level = 13 // OTel WARN (13-16)
	LevelError   Level = 17 // OTel ERROR (17-20)
)

// String returns the OTel severity text for the level.
func (l Level) String() string {
	switch {
	case l <= 4:
		return "TRACE"
	case l <= 8:
		return "DEBUG"
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	case l <= 20:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// SlogLevel maps this level to the corresponding slog.Level.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// EventType identifies the kind of event. Each subsystem defines its own
// constants, e.g. "dispatch.cycle.start" or "dispatch.action.complete".
type EventType string

// Well-known Data keys. Observers that aggregate (metrics) read these.
const (
	KeyConversation = "conversation_id"
	KeyAction       = "action"
	KeyStatus       = "status"
	KeyDuration     = "duration_ms"
	KeyError        = "error"
)

// Event is an observability event. Fields map to OTel LogRecord fields:
// Type→EventName, Level→SeverityNumber, Timestamp→Timestamp,
// Source→InstrumentationScope, Data→Attributes.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// NewEvent stamps an event with the current time.
func NewEvent(typ EventType, level Level, source string, data map[string]any) Event {
	return Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	}
}

// Observer receives events for logging, tracing, or metrics.
// Implementations must be safe for concurrent use.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

type conversationKey struct{}

// WithConversation tags ctx with a conversation id that observers attach
// to every event emitted under it.
func WithConversation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, conversationKey{}, id)
}

// Conversation returns the conversation id carried by ctx, if any.
func Conversation(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(conversationKey{}).(string)
	return id, ok && id != ""
}
