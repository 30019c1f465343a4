// Package response holds the model capability's reply to a tools request.
package response

import (
	"encoding/json"
	"fmt"

	"github.com/CerealNotFound/function-calling-server/core/protocol"
)

// ToolsResponse represents the response from a tools (function calling) request.
// Contains the assistant message, including any action requests, along with
// metadata and token usage.
type ToolsResponse struct {
	ID      string       `json:"id,omitempty"`
	Object  string       `json:"object,omitempty"`
	Created int64        `json:"created,omitempty"`
	Model   string       `json:"model"`
	Choices []ToolChoice `json:"choices"`
	Usage   *TokenUsage  `json:"usage,omitempty"`
}

// ToolChoice is one candidate completion.
type ToolChoice struct {
	Index        int          `json:"index"`
	Message      ToolsMessage `json:"message"`
	FinishReason string       `json:"finish_reason,omitempty"`
}

// ToolsMessage is the assistant message inside a choice.
type ToolsMessage struct {
	Role      string              `json:"role"`
	Content   string              `json:"content"`
	ToolCalls []protocol.ToolCall `json:"tool_calls,omitempty"`
}

// TokenUsage reports token accounting for a request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NewText builds a single-choice response carrying a plain reply.
func NewText(model, content string) *ToolsResponse {
	return &ToolsResponse{
		Model: model,
		Choices: []ToolChoice{{
			Message:      ToolsMessage{Role: string(protocol.RoleAssistant), Content: content},
			FinishReason: "stop",
		}},
	}
}

// NewToolCalls builds a single-choice response requesting actions.
func NewToolCalls(model string, calls ...protocol.ToolCall) *ToolsResponse {
	return &ToolsResponse{
		Model: model,
		Choices: []ToolChoice{{
			Message:      ToolsMessage{Role: string(protocol.RoleAssistant), ToolCalls: calls},
			FinishReason: "tool_calls",
		}},
	}
}

// First returns the first choice's message. ok is false when the response
// carries no choices.
func (r *ToolsResponse) First() (msg ToolsMessage, ok bool) {
	if r == nil || len(r.Choices) == 0 {
		return ToolsMessage{}, false
	}
	return r.Choices[0].Message, true
}

// ParseTools parses a tools response from JSON bytes.
// Returns the parsed ToolsResponse or an error if parsing fails.
func ParseTools(body []byte) (*ToolsResponse, error) {
	var response ToolsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse tools response: %w", err)
	}
	return &response, nil
}
