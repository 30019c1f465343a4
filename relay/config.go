package relay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/CerealNotFound/function-calling-server/agent"
	"github.com/CerealNotFound/function-calling-server/dispatch"
	"github.com/CerealNotFound/function-calling-server/handlers/calendar"
	"github.com/CerealNotFound/function-calling-server/handlers/contact"
	"github.com/CerealNotFound/function-calling-server/handlers/sheets"
	"github.com/CerealNotFound/function-calling-server/integration"
	"github.com/CerealNotFound/function-calling-server/prompt"
	"github.com/CerealNotFound/function-calling-server/session"
)

// Environment variables consulted when the config file leaves a secret empty.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvHubSpotToken = "HUBSPOT_ACCESS_TOKEN"
	EnvGoogleToken  = "GOOGLE_ACCESS_TOKEN"
)

const (
	defaultAddr      = ":3000"
	defaultNamespace = "relay"
)

// Config holds initialization parameters for every relay subsystem.
// Each section delegates to that subsystem's Config.
type Config struct {
	Agent        agent.Config       `json:"agent" yaml:"agent"`
	Dispatch     dispatch.Config    `json:"dispatch" yaml:"dispatch"`
	Session      session.Config     `json:"session" yaml:"session"`
	Prompt       prompt.Config      `json:"prompt" yaml:"prompt"`
	Catalog      CatalogConfig      `json:"catalog" yaml:"catalog"`
	Integrations IntegrationsConfig `json:"integrations" yaml:"integrations"`
	Server       ServerConfig       `json:"server" yaml:"server"`
	Observer     ObserverConfig     `json:"observer" yaml:"observer"`
}

// CatalogConfig locates the action catalogue. An empty File uses the
// embedded catalogue.
type CatalogConfig struct {
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// IntegrationsConfig holds one client configuration per downstream service.
type IntegrationsConfig struct {
	HubSpot    integration.Config `json:"hubspot" yaml:"hubspot"`
	Calendar   integration.Config `json:"calendar" yaml:"calendar"`
	Sheets     integration.Config `json:"sheets" yaml:"sheets"`
	CalendarID string             `json:"calendar_id,omitempty" yaml:"calendar_id,omitempty"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// ObserverConfig selects observers by name. "prometheus" builds a metrics
// observer exposed through Relay.Metrics; other names resolve through the
// observability registry.
type ObserverConfig struct {
	Names     []string `json:"names,omitempty" yaml:"names,omitempty"`
	Namespace string   `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// DefaultConfig returns a Config with defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Agent:    agent.DefaultConfig(),
		Dispatch: dispatch.DefaultConfig(),
		Session:  session.DefaultConfig(),
		Prompt:   prompt.DefaultConfig(),
		Integrations: IntegrationsConfig{
			HubSpot:    integration.DefaultConfig(contact.DefaultBaseURL),
			Calendar:   integration.DefaultConfig(calendar.DefaultBaseURL),
			Sheets:     integration.DefaultConfig(sheets.DefaultBaseURL),
			CalendarID: calendar.DefaultCalendar,
		},
		Server:   ServerConfig{Addr: defaultAddr},
		Observer: ObserverConfig{Names: []string{"slog", "prometheus"}, Namespace: defaultNamespace},
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Agent.Merge(&source.Agent)
	c.Dispatch.Merge(&source.Dispatch)
	c.Session.Merge(&source.Session)
	c.Prompt.Merge(&source.Prompt)

	if source.Catalog.File != "" {
		c.Catalog.File = source.Catalog.File
	}

	c.Integrations.HubSpot.Merge(&source.Integrations.HubSpot)
	c.Integrations.Calendar.Merge(&source.Integrations.Calendar)
	c.Integrations.Sheets.Merge(&source.Integrations.Sheets)
	if source.Integrations.CalendarID != "" {
		c.Integrations.CalendarID = source.Integrations.CalendarID
	}

	if source.Server.Addr != "" {
		c.Server.Addr = source.Server.Addr
	}
	if len(source.Observer.Names) > 0 {
		c.Observer.Names = source.Observer.Names
	}
	if source.Observer.Namespace != "" {
		c.Observer.Namespace = source.Observer.Namespace
	}
}

// ApplyEnv fills empty secrets from the environment.
func (c *Config) ApplyEnv() {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	fill(&c.Agent.APIKey, EnvOpenAIKey)
	fill(&c.Integrations.HubSpot.Token, EnvHubSpotToken)
	fill(&c.Integrations.Calendar.Token, EnvGoogleToken)
	fill(&c.Integrations.Sheets.Token, EnvGoogleToken)
}

// LoadConfig reads a JSON or YAML config file, expands ${VAR} references,
// merges it over the defaults and fills remaining secrets from the
// environment. An empty filename yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		loaded, err := ParseConfig(data)
		if err != nil {
			return nil, err
		}
		cfg.Merge(loaded)
	}

	cfg.ApplyEnv()
	return &cfg, nil
}

// ParseConfig decodes a JSON or YAML document after expanding environment
// references. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)

	var loaded Config
	if err := dec.Decode(&loaded); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &loaded, nil
}
