package agent

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Factory builds an Agent from configuration.
type Factory func(cfg *Config) (Agent, error)

var providers = struct {
	factories map[string]Factory
	mu        sync.RWMutex
}{
	factories: make(map[string]Factory),
}

// RegisterProvider makes a provider available to New.
// Returns ErrProviderExists if the name is already taken.
func RegisterProvider(name string, f Factory) error {
	providers.mu.Lock()
	defer providers.mu.Unlock()

	if _, exists := providers.factories[name]; exists {
		return fmt.Errorf("%w: %s", ErrProviderExists, name)
	}
	providers.factories[name] = f
	return nil
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	providers.mu.RLock()
	defer providers.mu.RUnlock()
	return slices.Sorted(maps.Keys(providers.factories))
}

// New creates the Agent for cfg.Provider.
func New(cfg *Config) (Agent, error) {
	if cfg.Model == "" {
		return nil, ErrMissingModel
	}

	providers.mu.RLock()
	f, exists := providers.factories[cfg.Provider]
	providers.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}

	a, err := f(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s agent: %w", cfg.Provider, err)
	}
	return a, nil
}
