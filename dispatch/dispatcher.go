// Package dispatch runs the relay's dispatch cycle: record the user turn,
// ask the model, route any action requests through the executor, record
// their outcomes and produce the final reply.
//
//	d, err := dispatch.New(&cfg, agent, executor)
//	result, err := d.Handle(ctx, sess, "Schedule a sync with bob@example.com at 10")
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/CerealNotFound/function-calling-server/agent"
	"github.com/CerealNotFound/function-calling-server/core/protocol"
	"github.com/CerealNotFound/function-calling-server/core/response"
	"github.com/CerealNotFound/function-calling-server/observability"
	"github.com/CerealNotFound/function-calling-server/session"
)

// Result holds the outcome of one dispatch cycle.
type Result struct {
	ConversationID string             `json:"conversation_id"`
	Reply          string             `json:"reply"`
	Actions        []protocol.Outcome `json:"actions"`
}

// Executor lists the action catalogue and performs action requests.
// Execute never fails; every request yields an outcome.
type Executor interface {
	List() []protocol.Tool
	Execute(ctx context.Context, call protocol.ToolCall) protocol.Outcome
}

// Option configures a Dispatcher after config-driven initialization.
type Option func(*Dispatcher)

// WithObserver replaces the default NoOpObserver.
func WithObserver(o observability.Observer) Option {
	return func(d *Dispatcher) { d.observer = o }
}

// WithSystemPrompt overrides the configured system prompt, typically with
// one composed from prompt fragments.
func WithSystemPrompt(p string) Option {
	return func(d *Dispatcher) { d.systemPrompt = p }
}

// Dispatcher runs dispatch cycles against sessions supplied by the caller.
// It holds no conversation state of its own; callers serialise cycles on
// the same session.
type Dispatcher struct {
	agent    agent.Agent
	executor Executor
	observer observability.Observer

	systemPrompt  string
	modelTimeout  time.Duration
	maxConcurrent int
	summary       Summary
	choice        protocol.ToolChoice
}

// New creates a Dispatcher from configuration.
func New(cfg *Config, a agent.Agent, exec Executor, opts ...Option) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if a == nil || exec == nil {
		return nil, fmt.Errorf("%w: agent and executor are required", ErrInvalidConfig)
	}

	summary := cfg.Summary
	if summary == "" {
		summary = SummaryLocal
	}

	d := &Dispatcher{
		agent:         a,
		executor:      exec,
		observer:      observability.NoOpObserver{},
		systemPrompt:  cfg.SystemPrompt,
		modelTimeout:  cfg.ModelTimeout,
		maxConcurrent: cfg.MaxConcurrentActions,
		summary:       summary,
		choice:        protocol.ParseToolChoice(cfg.ToolChoice),
	}
	if d.choice.Mode == protocol.ToolChoiceFunction && !declares(exec.List(), d.choice.Name) {
		return nil, fmt.Errorf("%w: tool_choice names unknown action %q", ErrInvalidConfig, d.choice.Name)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func declares(tools []protocol.Tool, name string) bool {
	for _, t := range tools {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Handle runs one dispatch cycle for prompt on sess.
//
// A plain model reply is recorded and returned. Action requests are routed
// in model order; each yields one outcome, recorded as its own action-result
// turn, and the cycle ends with a summary assistant turn. When the model
// capability fails, Handle returns a *ModelError carrying sess.ID() and
// sess holds only the new user turn for this cycle.
func (d *Dispatcher) Handle(ctx context.Context, sess session.Session, prompt string) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	ctx = observability.WithConversation(ctx, sess.ID())
	start := time.Now()

	sess.Append(protocol.NewMessage(protocol.RoleUser, prompt))

	tools := d.executor.List()
	d.emit(ctx, EventCycleStart, observability.LevelInfo, map[string]any{
		"prompt_length": len(prompt),
		"turns":         sess.Len(),
		"tools":         len(tools),
	})

	msg, err := d.callModel(ctx, sess, tools, d.choice)
	if err != nil {
		var me *ModelError
		if errors.As(err, &me) {
			me.ConversationID = sess.ID()
		}
		d.emit(ctx, EventError, observability.LevelError, map[string]any{
			observability.KeyError: err.Error(),
		})
		return nil, err
	}

	result := &Result{ConversationID: sess.ID()}

	if len(msg.ToolCalls) == 0 {
		sess.Append(protocol.NewMessage(protocol.RoleAssistant, msg.Content))
		result.Reply = msg.Content
		d.complete(ctx, start, result)
		return result, nil
	}

	calls := withIDs(msg.ToolCalls)
	sess.Append(protocol.Message{
		Role:      protocol.RoleAssistant,
		Content:   msg.Content,
		ToolCalls: calls,
	})

	result.Actions = d.route(ctx, calls)
	for _, out := range result.Actions {
		sess.Append(protocol.NewOutcomeMessage(out))
	}

	result.Reply = d.finalReply(ctx, sess, tools, msg.Content, result.Actions)
	sess.Append(protocol.NewMessage(protocol.RoleAssistant, result.Reply))

	d.complete(ctx, start, result)
	return result, nil
}

// callModel sends the system turn plus the session history. Errors,
// timeouts and replies without choices come back as *ModelError.
func (d *Dispatcher) callModel(ctx context.Context, sess session.Session, tools []protocol.Tool, choice protocol.ToolChoice) (response.ToolsMessage, error) {
	if d.modelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.modelTimeout)
		defer cancel()
	}

	messages := d.messages(sess)
	d.emit(ctx, EventModelCall, observability.LevelVerbose, map[string]any{
		"model":    d.agent.Model(),
		"messages": len(messages),
		"choice":   string(choice.Mode),
	})

	start := time.Now()
	resp, err := d.agent.Tools(ctx, messages, tools, choice)
	if err != nil {
		reason := ReasonError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reason = ReasonTimeout
		}
		return response.ToolsMessage{}, &ModelError{Reason: reason, Err: err}
	}

	msg, ok := resp.First()
	if !ok {
		return response.ToolsMessage{}, &ModelError{Reason: ReasonEmpty}
	}

	d.emit(ctx, EventModelCall, observability.LevelVerbose, map[string]any{
		"model":                   d.agent.Model(),
		"tool_calls":              len(msg.ToolCalls),
		observability.KeyDuration: time.Since(start).Milliseconds(),
	})
	return msg, nil
}

func (d *Dispatcher) messages(sess session.Session) []protocol.Message {
	history := sess.Snapshot()
	if d.systemPrompt == "" {
		return history
	}

	messages := make([]protocol.Message, 0, len(history)+1)
	messages = append(messages, protocol.NewMessage(protocol.RoleSystem, d.systemPrompt))
	return append(messages, history...)
}

// route executes every call on a bounded worker group. Outcomes are stored
// by index so they come back in request order regardless of completion order.
func (d *Dispatcher) route(ctx context.Context, calls []protocol.ToolCall) []protocol.Outcome {
	outcomes := make([]protocol.Outcome, len(calls))

	var g errgroup.Group
	if d.maxConcurrent > 0 {
		g.SetLimit(d.maxConcurrent)
	}

	for i, call := range calls {
		g.Go(func() error {
			d.emit(ctx, EventActionStart, observability.LevelVerbose, map[string]any{
				"call_id": call.ID,
				"name":    call.Name,
			})

			start := time.Now()
			out := d.executor.Execute(ctx, call)
			outcomes[i] = out

			data := map[string]any{
				"call_id":                 call.ID,
				observability.KeyAction:   call.Name,
				observability.KeyStatus:   string(out.Status),
				observability.KeyDuration: time.Since(start).Milliseconds(),
			}
			level := observability.LevelInfo
			if out.Error != nil {
				level = observability.LevelWarning
				data["kind"] = string(out.Error.Kind)
				data[observability.KeyError] = out.Error.Detail
			}
			d.emit(ctx, EventActionComplete, level, data)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// finalReply produces the assistant turn closing an action cycle. The
// follow-up policy asks the model with actions disabled; if that call
// fails the local summary is used instead, since the actions already ran.
func (d *Dispatcher) finalReply(ctx context.Context, sess session.Session, tools []protocol.Tool, preface string, outcomes []protocol.Outcome) string {
	if d.summary == SummaryFollowUp {
		msg, err := d.callModel(ctx, sess, tools, protocol.ToolChoice{Mode: protocol.ToolChoiceNone})
		if err == nil && strings.TrimSpace(msg.Content) != "" {
			return msg.Content
		}
		if err == nil {
			err = &ModelError{Reason: ReasonEmpty}
		}
		d.emit(ctx, EventFollowUpFailed, observability.LevelWarning, map[string]any{
			observability.KeyError: err.Error(),
		})
	}
	return Summarize(preface, outcomes)
}

func (d *Dispatcher) complete(ctx context.Context, start time.Time, result *Result) {
	d.emit(ctx, EventReply, observability.LevelVerbose, map[string]any{
		"reply_length": len(result.Reply),
	})

	failed := 0
	for _, out := range result.Actions {
		if !out.Succeeded() {
			failed++
		}
	}
	d.emit(ctx, EventCycleComplete, observability.LevelInfo, map[string]any{
		"actions":                 len(result.Actions),
		"failed":                  failed,
		observability.KeyDuration: time.Since(start).Milliseconds(),
	})
}

func (d *Dispatcher) emit(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	d.observer.OnEvent(ctx, observability.NewEvent(typ, level, "dispatch.Handle", data))
}

// withIDs fills in call IDs the model left empty so every action-result
// turn can be correlated with its request.
func withIDs(calls []protocol.ToolCall) []protocol.ToolCall {
	out := make([]protocol.ToolCall, len(calls))
	for i, c := range calls {
		if c.ID == "" {
			c.ID = "call_" + uuid.NewString()
		}
		out[i] = c
	}
	return out
}
