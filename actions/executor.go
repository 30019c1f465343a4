package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CerealNotFound/function-calling-server/core/protocol"
)

// Executor routes action requests through the registry and handler set:
// resolve, validate, look up the handler, then run it under a timeout.
// Every request yields exactly one Outcome; nothing is returned as an error.
type Executor struct {
	registry *Registry
	handlers *HandlerSet
	timeout  time.Duration
}

// NewExecutor creates an Executor. A zero timeout leaves handlers bounded
// only by the caller's context.
func NewExecutor(registry *Registry, handlers *HandlerSet, timeout time.Duration) *Executor {
	return &Executor{
		registry: registry,
		handlers: handlers,
		timeout:  timeout,
	}
}

// Registry returns the registry the executor resolves against.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// List returns the tool definitions declared to the model.
func (e *Executor) List() []protocol.Tool {
	return e.registry.Tools()
}

// Execute performs one action request and records its outcome.
// The outcome's CallID and Action always echo the request.
func (e *Executor) Execute(ctx context.Context, call protocol.ToolCall) protocol.Outcome {
	out := e.execute(ctx, call)
	out.CallID = call.ID
	out.Action = call.Name
	return out
}

func (e *Executor) execute(ctx context.Context, call protocol.ToolCall) protocol.Outcome {
	if _, err := e.registry.Resolve(call.Name); err != nil {
		return protocol.Fail(call.Name, protocol.KindUnknownAction, fmt.Sprintf("action %q is not registered", call.Name))
	}

	args, err := e.registry.Validate(call.Name, []byte(call.Arguments))
	if err != nil {
		var v *SchemaViolation
		if errors.As(err, &v) {
			o := protocol.Fail(call.Name, protocol.KindSchemaViolation, fmt.Sprintf("%s: %s", v.Reason, v.Detail))
			o.Error.Field = v.Field
			return o
		}
		return protocol.Fail(call.Name, protocol.KindSchemaViolation, err.Error())
	}

	h, ok := e.handlers.Lookup(call.Name)
	if !ok {
		return protocol.Fail(call.Name, protocol.KindHandlerFailure, fmt.Sprintf("no handler registered for %s", call.Name))
	}

	return e.invoke(ctx, call.Name, h, args)
}

func (e *Executor) invoke(ctx context.Context, name string, h Handler, args Arguments) protocol.Outcome {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	done := make(chan protocol.Outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- protocol.Fail(name, protocol.KindHandlerFailure, fmt.Sprintf("handler panicked: %v", r))
			}
		}()
		done <- h.Execute(ctx, args)
	}()

	select {
	case out := <-done:
		return out
	case <-ctx.Done():
		return protocol.HandlerFailure(name, protocol.CauseTimeout, fmt.Sprintf("action %s did not complete: %v", name, ctx.Err()))
	}
}
