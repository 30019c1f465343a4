// Package protocol defines the wire-level types shared by every subsystem:
// conversation turns, action requests, declared tools and action outcomes.
package protocol

import (
	"encoding/json"
	"slices"
)

// Role identifies the sender of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleTool marks an action-result turn. The wire value matches the
	// chat completion API's tool message role.
	RoleTool Role = "tool"
)

// ToolCall is a structured action request produced by the model.
// Fields are flat (ID, Name, Arguments) for direct use across the relay.
// UnmarshalJSON transparently handles the nested LLM API format
// (function.name, function.arguments) so provider responses decode correctly.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// NewToolCall creates a ToolCall from its flat fields.
func NewToolCall(id, name, arguments string) ToolCall {
	return ToolCall{ID: id, Name: name, Arguments: arguments}
}

type wireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// MarshalJSON serializes to the nested LLM API format ({type, function: {name, arguments}}).
func (tc ToolCall) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID       string       `json:"id"`
		Type     string       `json:"type"`
		Function wireFunction `json:"function"`
	}{
		ID:       tc.ID,
		Type:     "function",
		Function: wireFunction{Name: tc.Name, Arguments: tc.Arguments},
	})
}

// UnmarshalJSON handles both the nested LLM API format ({function: {name, arguments}})
// and the flat format ({name, arguments}).
func (tc *ToolCall) UnmarshalJSON(data []byte) error {
	var nested struct {
		ID       string       `json:"id"`
		Function wireFunction `json:"function"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		return err
	}

	if nested.Function.Name != "" {
		tc.ID = nested.ID
		tc.Name = nested.Function.Name
		tc.Arguments = nested.Function.Arguments
		return nil
	}

	type plain ToolCall
	return json.Unmarshal(data, (*plain)(tc))
}

// Message is a single turn in a conversation.
//
// Assistant turns that request actions carry ToolCalls. Action-result turns
// (RoleTool) carry the structured Outcome and a ToolCallID correlating them
// back to the request; their Content holds the outcome rendered as JSON so
// the turn can be replayed to the model verbatim.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	Outcome    *Outcome   `json:"outcome,omitempty"`
}

// NewMessage creates a text Message with the given role and content.
// Use struct literals directly when setting tool call fields.
//
// Example:
//
//	msg := protocol.NewMessage(protocol.RoleUser, "Hello, world!")
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// NewOutcomeMessage creates the action-result turn for an outcome.
func NewOutcomeMessage(o Outcome) Message {
	out := o.Clone()
	return Message{
		Role:       RoleTool,
		Content:    out.String(),
		ToolCallID: out.CallID,
		Outcome:    &out,
	}
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	c := m
	c.ToolCalls = slices.Clone(m.ToolCalls)
	if m.Outcome != nil {
		o := m.Outcome.Clone()
		c.Outcome = &o
	}
	return c
}
