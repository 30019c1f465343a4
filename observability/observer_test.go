package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/CerealNotFound/function-calling-server/observability"
)

type recorder struct {
	mu     sync.Mutex
	events []observability.Event
}

func (r *recorder) OnEvent(_ context.Context, e observability.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level observability.Level
		want  string
	}{
		{1, "TRACE"},
		{observability.LevelVerbose, "DEBUG"},
		{observability.LevelInfo, "INFO"},
		{observability.LevelWarning, "WARN"},
		{observability.LevelError, "ERROR"},
		{21, "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level observability.Level
		want  slog.Level
	}{
		{observability.LevelVerbose, slog.LevelDebug},
		{observability.LevelInfo, slog.LevelInfo},
		{observability.LevelWarning, slog.LevelWarn},
		{observability.LevelError, slog.LevelError},
	}

	for _, tt := range tests {
		if got := tt.level.SlogLevel(); got != tt.want {
			t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNewEvent_StampsTime(t *testing.T) {
	e := observability.NewEvent("dispatch.reply", observability.LevelInfo, "test", nil)

	if e.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
	if e.Type != "dispatch.reply" || e.Source != "test" {
		t.Errorf("event = %+v", e)
	}
}

func TestSlogObserver_AttrsAndConversation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := observability.NewSlogObserver(logger)

	ctx := observability.WithConversation(context.Background(), "conv-7")
	obs.OnEvent(ctx, observability.NewEvent("dispatch.action.complete", observability.LevelInfo, "dispatch", map[string]any{
		observability.KeyStatus: "success",
		observability.KeyAction: "createContact",
	}))

	out := buf.String()
	for _, want := range []string{"msg=dispatch.action.complete", "source=dispatch", "conversation_id=conv-7", "action=createContact", "status=success"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if strings.Index(out, "action=") > strings.Index(out, "status=") {
		t.Error("data attributes should be sorted by key")
	}
}

func TestSlogObserver_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	obs := observability.NewSlogObserver(logger)

	obs.OnEvent(context.Background(), observability.NewEvent("dispatch.model.call", observability.LevelVerbose, "dispatch", nil))

	if buf.Len() != 0 {
		t.Errorf("verbose event logged at info level: %q", buf.String())
	}
}

func TestMultiObserver_FansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	multi := observability.NewMultiObserver(a, nil, b)

	if multi.Len() != 2 {
		t.Errorf("Len() = %d, want 2", multi.Len())
	}

	multi.OnEvent(context.Background(), observability.NewEvent("x", observability.LevelInfo, "test", nil))

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("events delivered: %d, %d", len(a.events), len(b.events))
	}
}

func TestNoOpObserver(t *testing.T) {
	var obs observability.Observer = observability.NoOpObserver{}
	obs.OnEvent(context.Background(), observability.Event{})
}

func TestRegistry(t *testing.T) {
	if _, err := observability.GetObserver("missing"); !errors.Is(err, observability.ErrUnknownObserver) {
		t.Errorf("GetObserver error = %v, want %v", err, observability.ErrUnknownObserver)
	}

	rec := &recorder{}
	observability.RegisterObserver("test-recorder", rec)

	got, err := observability.GetObserver("test-recorder")
	if err != nil {
		t.Fatal(err)
	}
	if got != rec {
		t.Error("GetObserver returned a different observer")
	}
}

func TestResolve(t *testing.T) {
	obs, err := observability.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := obs.(observability.NoOpObserver); !ok {
		t.Errorf("Resolve() = %T, want NoOpObserver", obs)
	}

	obs, err = observability.Resolve("noop", "slog")
	if err != nil {
		t.Fatal(err)
	}
	if m, ok := obs.(*observability.MultiObserver); !ok || m.Len() != 2 {
		t.Errorf("Resolve(noop, slog) = %T", obs)
	}

	if _, err := observability.Resolve("slog", "bogus"); !errors.Is(err, observability.ErrUnknownObserver) {
		t.Errorf("Resolve error = %v", err)
	}
}
