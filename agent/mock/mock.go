// Package mock provides a scripted Agent for tests.
package mock

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CerealNotFound/function-calling-server/agent"
	"github.com/CerealNotFound/function-calling-server/core/protocol"
	"github.com/CerealNotFound/function-calling-server/core/response"
)

// ProviderName is the provider key the mock registers under.
const ProviderName = "mock"

// ErrExhausted is returned when the agent is called more times than it
// was scripted for.
var ErrExhausted = errors.New("mock agent has no scripted replies left")

func init() {
	if err := agent.RegisterProvider(ProviderName, func(cfg *agent.Config) (agent.Agent, error) {
		return New(WithModel(cfg.Model)), nil
	}); err != nil {
		panic(err)
	}
}

// Reply is one scripted answer. Delay holds the reply back, honouring
// context cancellation.
type Reply struct {
	Response *response.ToolsResponse
	Err      error
	Delay    time.Duration
}

// Text scripts a plain reply.
func Text(content string) Reply {
	return Reply{Response: response.NewText("mock", content)}
}

// Calls scripts a reply requesting actions.
func Calls(calls ...protocol.ToolCall) Reply {
	return Reply{Response: response.NewToolCalls("mock", calls...)}
}

// Fail scripts an error.
func Fail(err error) Reply {
	return Reply{Err: err}
}

// Empty scripts a response with no choices.
func Empty() Reply {
	return Reply{Response: &response.ToolsResponse{Model: "mock"}}
}

// Call records one request the agent received.
type Call struct {
	Messages []protocol.Message
	Tools    []protocol.Tool
	Choice   protocol.ToolChoice
}

// Agent replays scripted replies in order and records every call.
type Agent struct {
	id      string
	model   string
	replies []Reply
	calls   []Call
	mu      sync.Mutex
}

// Option configures a mock Agent.
type Option func(*Agent)

// WithModel sets the reported model name.
func WithModel(model string) Option {
	return func(a *Agent) { a.model = model }
}

// WithReplies scripts the replies in call order.
func WithReplies(replies ...Reply) Option {
	return func(a *Agent) { a.replies = append(a.replies, replies...) }
}

// New creates a mock Agent.
func New(opts ...Option) *Agent {
	a := &Agent{
		id:    uuid.Must(uuid.NewV7()).String(),
		model: "mock",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) ID() string    { return a.id }
func (a *Agent) Model() string { return a.model }

// Script appends replies to the queue.
func (a *Agent) Script(replies ...Reply) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.replies = append(a.replies, replies...)
}

// Tools records the call and returns the next scripted reply.
func (a *Agent) Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool, choice protocol.ToolChoice) (*response.ToolsResponse, error) {
	a.mu.Lock()
	msgs := make([]protocol.Message, len(messages))
	for i, m := range messages {
		msgs[i] = m.Clone()
	}
	a.calls = append(a.calls, Call{Messages: msgs, Tools: slices.Clone(tools), Choice: choice})

	if len(a.replies) == 0 {
		a.mu.Unlock()
		return nil, ErrExhausted
	}
	next := a.replies[0]
	a.replies = a.replies[1:]
	a.mu.Unlock()

	if next.Delay > 0 {
		timer := time.NewTimer(next.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return next.Response, next.Err
}

// Calls returns the recorded calls in order.
func (a *Agent) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.calls)
}
