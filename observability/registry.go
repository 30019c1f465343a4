package observability

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// ErrUnknownObserver is returned when a name has no registered observer.
var ErrUnknownObserver = errors.New("unknown observer")

var (
	observers = map[string]Observer{
		"noop": NoOpObserver{},
		"slog": NewSlogObserver(slog.Default()),
	}
	mutex sync.RWMutex
)

// GetObserver returns a registered observer by name.
// Pre-registered observers: "noop" and "slog" (default logger).
func GetObserver(name string) (Observer, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	obs, exists := observers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownObserver, name)
	}
	return obs, nil
}

// RegisterObserver adds or replaces a named observer in the global registry.
func RegisterObserver(name string, observer Observer) {
	mutex.Lock()
	defer mutex.Unlock()

	observers[name] = observer
}

// Observers returns the registered observer names, sorted.
func Observers() []string {
	mutex.RLock()
	defer mutex.RUnlock()
	return slices.Sorted(maps.Keys(observers))
}

// Resolve looks up each name and combines the observers. A single name
// returns that observer unwrapped; no names returns NoOpObserver.
func Resolve(names ...string) (Observer, error) {
	resolved := make([]Observer, 0, len(names))
	for _, name := range names {
		obs, err := GetObserver(name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, obs)
	}

	switch len(resolved) {
	case 0:
		return NoOpObserver{}, nil
	case 1:
		return resolved[0], nil
	}
	return NewMultiObserver(resolved...), nil
}
