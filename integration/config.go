package integration

import "time"

const defaultTimeout = 30 * time.Second

// Config parameterises one downstream service.
type Config struct {
	BaseURL   string        `json:"base_url" yaml:"base_url"`
	Token     string        `json:"token,omitempty" yaml:"token,omitempty"`
	RateLimit float64       `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"` // requests per second; 0 disables limiting
	Burst     int           `json:"burst,omitempty" yaml:"burst,omitempty"`
	Timeout   time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DefaultConfig returns a configuration for the service at baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		RateLimit: 5,
		Burst:     5,
		Timeout:   defaultTimeout,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.Token != "" {
		c.Token = source.Token
	}
	if source.RateLimit > 0 {
		c.RateLimit = source.RateLimit
	}
	if source.Burst > 0 {
		c.Burst = source.Burst
	}
	if source.Timeout > 0 {
		c.Timeout = source.Timeout
	}
}
