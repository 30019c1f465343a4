package actions_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/CerealNotFound/function-calling-server/actions"
	"github.com/CerealNotFound/function-calling-server/core/protocol"
)

func newExecutor(t *testing.T, timeout time.Duration, handlers map[string]actions.Handler) *actions.Executor {
	t.Helper()

	r := actions.NewRegistry()
	for _, s := range []actions.Schema{contactSchema(), meetingSchema()} {
		if err := r.Register(s); err != nil {
			t.Fatal(err)
		}
	}
	r.Freeze()

	hs := actions.NewHandlerSet()
	for name, h := range handlers {
		if err := hs.Register(name, h); err != nil {
			t.Fatal(err)
		}
	}
	return actions.NewExecutor(r, hs, timeout)
}

func TestHandlerSet_Duplicate(t *testing.T) {
	hs := actions.NewHandlerSet()
	h := actions.HandlerFunc(func(context.Context, actions.Arguments) protocol.Outcome { return protocol.Outcome{} })

	if err := hs.Register("a", h); err != nil {
		t.Fatal(err)
	}
	if err := hs.Register("a", h); !errors.Is(err, actions.ErrDuplicateHandler) {
		t.Errorf("Register() error = %v, want %v", err, actions.ErrDuplicateHandler)
	}
	if _, ok := hs.Lookup("a"); !ok {
		t.Error("Lookup() should find registered handler")
	}
	if _, ok := hs.Lookup("b"); ok {
		t.Error("Lookup() should miss unregistered handler")
	}
}

func TestExecute_Success(t *testing.T) {
	var got actions.Arguments
	exec := newExecutor(t, 0, map[string]actions.Handler{
		"createContact": actions.HandlerFunc(func(_ context.Context, args actions.Arguments) protocol.Outcome {
			got = args
			return protocol.Success("createContact", map[string]string{"id": "101"})
		}),
	})

	out := exec.Execute(context.Background(), protocol.NewToolCall("call_1", "createContact", `{"firstname":"Jane","email":"j@x.io"}`))

	if !out.Succeeded() {
		t.Fatalf("outcome = %+v, want success", out)
	}
	if out.CallID != "call_1" || out.Action != "createContact" {
		t.Errorf("outcome identity = %q/%q", out.CallID, out.Action)
	}
	if got["email"] != "j@x.io" {
		t.Errorf("handler args = %v", got)
	}
}

func TestExecute_Failures(t *testing.T) {
	var calls atomic.Int32
	counting := actions.HandlerFunc(func(context.Context, actions.Arguments) protocol.Outcome {
		calls.Add(1)
		return protocol.Success("createContact", nil)
	})

	tests := []struct {
		name      string
		call      protocol.ToolCall
		wantKind  protocol.ErrorKind
		wantField string
	}{
		{
			name:     "unknown action",
			call:     protocol.NewToolCall("c1", "deleteEverything", `{}`),
			wantKind: protocol.KindUnknownAction,
		},
		{
			name:      "schema violation",
			call:      protocol.NewToolCall("c2", "createContact", `{"firstname":"Jane"}`),
			wantKind:  protocol.KindSchemaViolation,
			wantField: "email",
		},
		{
			name:     "no handler",
			call:     protocol.NewToolCall("c3", "scheduleMeeting", `{"summary":"s"}`),
			wantKind: protocol.KindHandlerFailure,
		},
	}

	exec := newExecutor(t, 0, map[string]actions.Handler{"createContact": counting})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := exec.Execute(context.Background(), tt.call)

			if out.Succeeded() || out.Error == nil {
				t.Fatalf("outcome = %+v, want failure", out)
			}
			if out.Error.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", out.Error.Kind, tt.wantKind)
			}
			if out.Error.Field != tt.wantField {
				t.Errorf("field = %q, want %q", out.Error.Field, tt.wantField)
			}
			if out.CallID != tt.call.ID {
				t.Errorf("call id = %q, want %q", out.CallID, tt.call.ID)
			}
		})
	}

	if n := calls.Load(); n != 0 {
		t.Errorf("handler called %d times, want 0", n)
	}
}

func TestExecute_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	exec := newExecutor(t, 20*time.Millisecond, map[string]actions.Handler{
		"scheduleMeeting": actions.HandlerFunc(func(context.Context, actions.Arguments) protocol.Outcome {
			<-release
			return protocol.Success("scheduleMeeting", nil)
		}),
	})

	out := exec.Execute(context.Background(), protocol.NewToolCall("c1", "scheduleMeeting", `{"summary":"s"}`))

	if out.Succeeded() {
		t.Fatal("expected timeout failure")
	}
	if out.Error.Kind != protocol.KindHandlerFailure || out.Error.Cause != protocol.CauseTimeout {
		t.Errorf("error = %+v", out.Error)
	}
}

func TestExecute_PanicBecomesFailure(t *testing.T) {
	exec := newExecutor(t, time.Second, map[string]actions.Handler{
		"scheduleMeeting": actions.HandlerFunc(func(context.Context, actions.Arguments) protocol.Outcome {
			panic("boom")
		}),
	})

	out := exec.Execute(context.Background(), protocol.NewToolCall("c1", "scheduleMeeting", `{"summary":"s"}`))

	if out.Succeeded() || out.Error.Kind != protocol.KindHandlerFailure {
		t.Errorf("outcome = %+v, want handler failure", out)
	}
}

func TestExecutor_List(t *testing.T) {
	exec := newExecutor(t, 0, nil)

	tools := exec.List()
	if len(tools) != 2 || tools[0].Name != "createContact" {
		t.Errorf("List() = %v", tools)
	}
}
