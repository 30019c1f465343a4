// Package agent defines the model capability the dispatcher talks to:
// given the conversation and the action catalogue, return either a plain
// reply or a list of action requests.
//
// Providers register a Factory under their name; New builds the configured
// one. Import a provider package for its side effect to make it available:
//
//	import _ "github.com/CerealNotFound/function-calling-server/agent/openai"
//
//	a, err := agent.New(&cfg)
package agent

import (
	"context"

	"github.com/CerealNotFound/function-calling-server/core/protocol"
	"github.com/CerealNotFound/function-calling-server/core/response"
)

// Agent is a model endpoint that supports function calling.
type Agent interface {
	// ID identifies the agent instance in events and logs.
	ID() string
	// Model returns the model name requests are sent to.
	Model() string
	// Tools sends the conversation with the declared tools and selection
	// policy, returning the model's reply.
	Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool, choice protocol.ToolChoice) (*response.ToolsResponse, error)
}
