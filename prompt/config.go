package prompt

// Config locates system prompt fragments.
type Config struct {
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"` // fragment directory; empty disables fragments
}

// DefaultConfig returns the default prompt configuration (no fragments).
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Dir != "" {
		c.Dir = source.Dir
	}
}

// NewStore creates a Store from configuration. Returns a nil Store when Dir
// is empty.
func NewStore(cfg *Config) Store {
	if cfg.Dir == "" {
		return nil
	}
	return NewFileStore(cfg.Dir)
}
