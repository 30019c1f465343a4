package session

import "fmt"

// BackendMemory keeps conversations in process memory.
const BackendMemory = "memory"

// Config holds session initialization parameters.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{Backend: BackendMemory}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
}

// New creates a Session from configuration.
func New(cfg *Config) (Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return NewMemorySession(), nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case "", BackendMemory:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownBackend, c.Backend)
}
