package dispatch_test

import (
	"errors"
	"testing"
	"time"

	"github.com/CerealNotFound/function-calling-server/agent/mock"
	"github.com/CerealNotFound/function-calling-server/dispatch"
)

func TestDefaultConfig(t *testing.T) {
	cfg := dispatch.DefaultConfig()

	if cfg.SystemPrompt != dispatch.DefaultSystemPrompt {
		t.Errorf("SystemPrompt = %q", cfg.SystemPrompt)
	}
	if cfg.Summary != dispatch.SummaryLocal {
		t.Errorf("Summary = %q, want %q", cfg.Summary, dispatch.SummaryLocal)
	}
	if cfg.MaxConcurrentActions != dispatch.DefaultMaxConcurrentActions {
		t.Errorf("MaxConcurrentActions = %d", cfg.MaxConcurrentActions)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() failed: %v", err)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := dispatch.DefaultConfig()
	cfg.Merge(&dispatch.Config{
		ModelTimeout: 5 * time.Second,
		Summary:      dispatch.SummaryFollowUp,
		ToolChoice:   "required",
	})

	if cfg.ModelTimeout != 5*time.Second {
		t.Errorf("ModelTimeout = %v", cfg.ModelTimeout)
	}
	if cfg.ActionTimeout != dispatch.DefaultActionTimeout {
		t.Errorf("ActionTimeout = %v, want default kept", cfg.ActionTimeout)
	}
	if cfg.Summary != dispatch.SummaryFollowUp || cfg.ToolChoice != "required" {
		t.Errorf("merged = %+v", cfg)
	}
	if cfg.SystemPrompt != dispatch.DefaultSystemPrompt {
		t.Errorf("SystemPrompt = %q, want default kept", cfg.SystemPrompt)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*dispatch.Config)
		wantErr error
	}{
		{"unknown summary", func(c *dispatch.Config) { c.Summary = "haiku" }, dispatch.ErrUnknownSummary},
		{"negative timeout", func(c *dispatch.Config) { c.ModelTimeout = -time.Second }, dispatch.ErrInvalidConfig},
		{"negative workers", func(c *dispatch.Config) { c.MaxConcurrentActions = -1 }, dispatch.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := dispatch.DefaultConfig()
			tt.mutate(&cfg)

			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := dispatch.New(&cfg, mock.New(), nil); !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	cfg := dispatch.DefaultConfig()
	if _, err := dispatch.New(&cfg, mock.New(), nil); !errors.Is(err, dispatch.ErrInvalidConfig) {
		t.Errorf("New() error = %v, want %v", err, dispatch.ErrInvalidConfig)
	}
}
