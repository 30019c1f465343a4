// Package openai adapts OpenAI-compatible chat completion endpoints to
// agent.Agent using github.com/sashabaranov/go-openai.
package openai

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/CerealNotFound/function-calling-server/agent"
	"github.com/CerealNotFound/function-calling-server/core/protocol"
	"github.com/CerealNotFound/function-calling-server/core/response"
)

// ProviderName is the provider key the adapter registers under.
const ProviderName = "openai"

func init() {
	if err := agent.RegisterProvider(ProviderName, func(cfg *agent.Config) (agent.Agent, error) {
		return New(cfg)
	}); err != nil {
		panic(err)
	}
}

// Agent sends tools requests to an OpenAI-compatible API. A custom BaseURL
// targets any compatible endpoint.
type Agent struct {
	api *openai.Client
	cfg agent.Config
	id  string
}

// New creates an Agent from configuration.
func New(cfg *agent.Config) (*Agent, error) {
	if cfg.Model == "" {
		return nil, agent.ErrMissingModel
	}
	if cfg.APIKey == "" {
		return nil, agent.ErrMissingAPIKey
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Agent{
		api: openai.NewClientWithConfig(clientCfg),
		cfg: *cfg,
		id:  uuid.Must(uuid.NewV7()).String(),
	}, nil
}

func (a *Agent) ID() string    { return a.id }
func (a *Agent) Model() string { return a.cfg.Model }

// Tools performs one chat completion with the declared tools.
func (a *Agent) Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool, choice protocol.ToolChoice) (*response.ToolsResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		Messages:    toMessages(messages),
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	}
	if len(tools) > 0 {
		req.Tools = toTools(tools)
		req.ToolChoice = toToolChoice(choice)
	}

	resp, err := a.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	return fromResponse(resp), nil
}

func toMessages(messages []protocol.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		if len(m.ToolCalls) > 0 {
			msg.ToolCalls = make([]openai.ToolCall, len(m.ToolCalls))
			for j, tc := range m.ToolCalls {
				msg.ToolCalls[j] = openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				}
			}
		}
		out[i] = msg
	}
	return out
}

func toTools(tools []protocol.Tool) []openai.Tool {
	out := make([]openai.Tool, len(tools))
	for i, t := range tools {
		out[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return out
}

func toToolChoice(choice protocol.ToolChoice) any {
	switch choice.Mode {
	case protocol.ToolChoiceNone:
		return "none"
	case protocol.ToolChoiceRequired:
		return "required"
	case protocol.ToolChoiceFunction:
		return openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: choice.Name},
		}
	}
	return "auto"
}

func fromResponse(resp openai.ChatCompletionResponse) *response.ToolsResponse {
	out := &response.ToolsResponse{
		ID:      resp.ID,
		Object:  resp.Object,
		Created: resp.Created,
		Model:   resp.Model,
		Choices: make([]response.ToolChoice, len(resp.Choices)),
		Usage: &response.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	for i, c := range resp.Choices {
		msg := response.ToolsMessage{
			Role:    c.Message.Role,
			Content: c.Message.Content,
		}
		for _, tc := range c.Message.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, protocol.NewToolCall(tc.ID, tc.Function.Name, tc.Function.Arguments))
		}
		out.Choices[i] = response.ToolChoice{
			Index:        c.Index,
			Message:      msg,
			FinishReason: string(c.FinishReason),
		}
	}
	return out
}
