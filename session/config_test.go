package session_test

import (
	"errors"
	"testing"

	"github.com/CerealNotFound/function-calling-server/session"
)

func TestDefaultConfig(t *testing.T) {
	cfg := session.DefaultConfig()

	if cfg.Backend != session.BackendMemory {
		t.Errorf("got backend %q, want %q", cfg.Backend, session.BackendMemory)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := session.DefaultConfig()

	cfg.Merge(&session.Config{})
	if cfg.Backend != session.BackendMemory {
		t.Errorf("empty merge changed backend to %q", cfg.Backend)
	}

	cfg.Merge(&session.Config{Backend: "other"})
	if cfg.Backend != "other" {
		t.Errorf("got backend %q, want %q", cfg.Backend, "other")
	}
}

func TestNew_FromConfig(t *testing.T) {
	cfg := session.DefaultConfig()

	s, err := session.New(&cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.ID() == "" {
		t.Error("session ID is empty")
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := session.Config{Backend: "redis"}

	if _, err := session.New(&cfg); !errors.Is(err, session.ErrUnknownBackend) {
		t.Errorf("New error = %v, want %v", err, session.ErrUnknownBackend)
	}
	if _, err := session.NewManager(&cfg); !errors.Is(err, session.ErrUnknownBackend) {
		t.Errorf("NewManager error = %v, want %v", err, session.ErrUnknownBackend)
	}
}
