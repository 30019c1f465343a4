package dispatch

import (
	"fmt"
	"time"
)

// Summary selects how the final assistant turn of an action cycle is built.
type Summary string

const (
	// SummaryLocal renders the turn from the recorded outcomes.
	SummaryLocal Summary = "summarize"
	// SummaryFollowUp asks the model once more, with actions disabled.
	SummaryFollowUp Summary = "follow_up"
)

// Defaults for a dispatch cycle.
const (
	DefaultSystemPrompt         = "You are a helpful assistant"
	DefaultModelTimeout         = 60 * time.Second
	DefaultActionTimeout        = 30 * time.Second
	DefaultMaxConcurrentActions = 4
)

// Config holds dispatch cycle parameters.
type Config struct {
	SystemPrompt         string        `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	ModelTimeout         time.Duration `json:"model_timeout,omitempty" yaml:"model_timeout,omitempty"`
	ActionTimeout        time.Duration `json:"action_timeout,omitempty" yaml:"action_timeout,omitempty"`
	MaxConcurrentActions int           `json:"max_concurrent_actions,omitempty" yaml:"max_concurrent_actions,omitempty"`
	Summary              Summary       `json:"summary,omitempty" yaml:"summary,omitempty"`
	ToolChoice           string        `json:"tool_choice,omitempty" yaml:"tool_choice,omitempty"` // auto, none, required or an action name
}

// DefaultConfig returns the default dispatch configuration.
func DefaultConfig() Config {
	return Config{
		SystemPrompt:         DefaultSystemPrompt,
		ModelTimeout:         DefaultModelTimeout,
		ActionTimeout:        DefaultActionTimeout,
		MaxConcurrentActions: DefaultMaxConcurrentActions,
		Summary:              SummaryLocal,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
	if source.ModelTimeout > 0 {
		c.ModelTimeout = source.ModelTimeout
	}
	if source.ActionTimeout > 0 {
		c.ActionTimeout = source.ActionTimeout
	}
	if source.MaxConcurrentActions > 0 {
		c.MaxConcurrentActions = source.MaxConcurrentActions
	}
	if source.Summary != "" {
		c.Summary = source.Summary
	}
	if source.ToolChoice != "" {
		c.ToolChoice = source.ToolChoice
	}
}

// Validate checks the summary policy and the numeric limits.
func (c *Config) Validate() error {
	switch c.Summary {
	case "", SummaryLocal, SummaryFollowUp:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSummary, c.Summary)
	}
	if c.ModelTimeout < 0 || c.ActionTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	if c.MaxConcurrentActions < 0 {
		return fmt.Errorf("%w: max_concurrent_actions must not be negative", ErrInvalidConfig)
	}
	return nil
}
