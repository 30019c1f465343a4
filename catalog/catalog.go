// Package catalog loads the action catalogue declared to the model.
//
// The default catalogue is embedded from actions.yaml. A deployment may
// replace it with its own file in the same format.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/CerealNotFound/function-calling-server/actions"
)

//go:embed actions.yaml
var defaultCatalog []byte

// ErrEmptyCatalog is returned when a catalogue declares no actions.
var ErrEmptyCatalog = errors.New("catalog declares no actions")

type document struct {
	Actions []actions.Schema `yaml:"actions"`
}

// Parse decodes a YAML catalogue. Unknown keys are rejected so a typo in a
// parameter tree does not silently open it up.
func Parse(data []byte) ([]actions.Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(doc.Actions) == 0 {
		return nil, ErrEmptyCatalog
	}
	return doc.Actions, nil
}

// Default returns the embedded catalogue.
func Default() []actions.Schema {
	schemas, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return schemas
}

// Load reads the catalogue at path, or the embedded one when path is empty.
func Load(path string) ([]actions.Schema, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Register adds every schema to the registry in catalogue order.
func Register(r *actions.Registry, schemas []actions.Schema) error {
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			return err
		}
	}
	return nil
}
