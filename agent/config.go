package agent

// Default provider and model.
const (
	DefaultProvider = "openai"
	DefaultModel    = "gpt-3.5-turbo-1106"
)

// Config selects and parameterises the model endpoint.
type Config struct {
	Provider    string  `json:"provider" yaml:"provider"`
	Model       string  `json:"model" yaml:"model"`
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Temperature float32 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

// DefaultConfig returns the default agent configuration.
func DefaultConfig() Config {
	return Config{
		Provider: DefaultProvider,
		Model:    DefaultModel,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Provider != "" {
		c.Provider = source.Provider
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.Temperature > 0 {
		c.Temperature = source.Temperature
	}
	if source.MaxTokens > 0 {
		c.MaxTokens = source.MaxTokens
	}
}
