package actions

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/CerealNotFound/function-calling-server/core/protocol"
)

// Registry is the catalogue of actions the model may request. Entries are
// kept in registration order so the catalogue is presented to the model
// identically on every call. Freeze makes the catalogue immutable once
// startup wiring is done. Thread-safe for concurrent access.
type Registry struct {
	schemas map[string]Schema
	order   []string
	frozen  bool
	mu      sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]Schema),
	}
}

// Register adds a schema to the catalogue.
// Returns ErrDuplicateAction if the name is already present, ErrInvalidSchema
// if the parameter tree is not a closed object description, and ErrFrozen
// after Freeze.
func (r *Registry) Register(schema Schema) error {
	if schema.Name == "" {
		return ErrEmptyName
	}
	if schema.Parameters.Type != KindObject {
		return fmt.Errorf("%w: %s: parameters must be an object", ErrInvalidSchema, schema.Name)
	}
	if err := schema.Parameters.check(""); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSchema, schema.Name, err)
	}
	if err := CheckJSONSchema(schema.Parameters.JSONSchema()); err != nil {
		return fmt.Errorf("%s: %w", schema.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("%w: cannot register %s", ErrFrozen, schema.Name)
	}
	if _, exists := r.schemas[schema.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAction, schema.Name)
	}

	r.schemas[schema.Name] = schema.clone()
	r.order = append(r.order, schema.Name)
	return nil
}

// Freeze rejects any further registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Resolve returns the schema registered under name.
// Returns ErrUnknownAction if absent.
func (r *Registry) Resolve(name string) (Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.schemas[name]
	if !exists {
		return Schema{}, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	return s.clone(), nil
}

// List returns every schema in registration order.
func (r *Registry) List() []Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Schema, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.schemas[name].clone())
	}
	return list
}

// Tools returns the catalogue rendered for the model, in registration order.
func (r *Registry) Tools() []protocol.Tool {
	schemas := r.List()
	tools := make([]protocol.Tool, len(schemas))
	for i, s := range schemas {
		tools[i] = s.Tool()
	}
	return tools
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Validate decodes raw against the named action's parameter tree.
// Returns ErrUnknownAction if the action is absent, or a *SchemaViolation
// describing the first rule broken.
func (r *Registry) Validate(name string, raw json.RawMessage) (Arguments, error) {
	r.mu.RLock()
	s, exists := r.schemas[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	return s.Validate(raw)
}
