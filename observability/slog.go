package observability

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

// SlogObserver emits events to a slog.Logger. The event type becomes the
// log message and Data keys become attributes in sorted order. A
// conversation id carried by the context is attached when the event does
// not already name one.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver creates a SlogObserver that emits to the given logger.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	level := event.Level.SlogLevel()
	if !o.logger.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, len(event.Data)+2)
	attrs = append(attrs, slog.String("source", event.Source))
	if id, ok := Conversation(ctx); ok {
		if _, named := event.Data[KeyConversation]; !named {
			attrs = append(attrs, slog.String(KeyConversation, id))
		}
	}
	for _, k := range slices.Sorted(maps.Keys(event.Data)) {
		attrs = append(attrs, slog.Any(k, event.Data[k]))
	}

	o.logger.LogAttrs(ctx, level, string(event.Type), attrs...)
}
