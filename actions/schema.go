// Package actions holds the catalogue of actions the model may request, the
// closed argument contracts they are validated against, and the handlers
// that carry them out.
package actions

import (
	"fmt"
	"maps"
	"slices"

	"github.com/CerealNotFound/function-calling-server/core/protocol"
)

// Kind is the structural type of a parameter node.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

func (k Kind) valid() bool {
	switch k {
	case KindString, KindInteger, KindNumber, KindBoolean, KindObject, KindArray:
		return true
	}
	return false
}

// Param describes one node of an action's argument tree. Objects declare a
// closed property set, arrays a single item spec, and strings may restrict
// their values with Enum. There is no open-ended kind.
type Param struct {
	Type        Kind             `json:"type" yaml:"type"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Enum        []string         `json:"enum,omitempty" yaml:"enum,omitempty"`
	Properties  map[string]Param `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required    []string         `json:"required,omitempty" yaml:"required,omitempty"`
	Items       *Param           `json:"items,omitempty" yaml:"items,omitempty"`
}

// Schema is one entry of the action catalogue.
type Schema struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Parameters  Param  `json:"parameters" yaml:"parameters"`
}

// Tool renders the schema as the tool definition declared to the model.
func (s Schema) Tool() protocol.Tool {
	return protocol.Tool{
		Name:        s.Name,
		Description: s.Description,
		Parameters:  s.Parameters.JSONSchema(),
	}
}

// JSONSchema renders the parameter tree in JSON Schema form.
func (p Param) JSONSchema() map[string]any {
	out := map[string]any{"type": string(p.Type)}
	if p.Description != "" {
		out["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		out["enum"] = slices.Clone(p.Enum)
	}

	switch p.Type {
	case KindObject:
		props := make(map[string]any, len(p.Properties))
		for name, child := range p.Properties {
			props[name] = child.JSONSchema()
		}
		out["properties"] = props
		if len(p.Required) > 0 {
			out["required"] = slices.Clone(p.Required)
		}
		out["additionalProperties"] = false
	case KindArray:
		if p.Items != nil {
			out["items"] = p.Items.JSONSchema()
		}
	}
	return out
}

// check verifies the tree is closed and internally consistent.
func (p Param) check(path string) error {
	where := path
	if where == "" {
		where = "parameters"
	}

	if !p.Type.valid() {
		return fmt.Errorf("%s: unsupported type %q", where, p.Type)
	}
	if len(p.Enum) > 0 && p.Type != KindString {
		return fmt.Errorf("%s: enum is only allowed on string parameters", where)
	}
	if p.Type != KindObject && (len(p.Properties) > 0 || len(p.Required) > 0) {
		return fmt.Errorf("%s: properties declared on %s parameter", where, p.Type)
	}
	if p.Type != KindArray && p.Items != nil {
		return fmt.Errorf("%s: items declared on %s parameter", where, p.Type)
	}

	switch p.Type {
	case KindArray:
		if p.Items == nil {
			return fmt.Errorf("%s: array parameter needs an items spec", where)
		}
		return p.Items.check(path + "[]")
	case KindObject:
		seen := make(map[string]bool, len(p.Required))
		for _, name := range p.Required {
			if _, ok := p.Properties[name]; !ok {
				return fmt.Errorf("%s: required field %q is not a declared property", where, name)
			}
			if seen[name] {
				return fmt.Errorf("%s: required field %q listed twice", where, name)
			}
			seen[name] = true
		}
		for _, name := range slices.Sorted(maps.Keys(p.Properties)) {
			if err := p.Properties[name].check(joinField(path, name)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p Param) clone() Param {
	c := p
	c.Enum = slices.Clone(p.Enum)
	c.Required = slices.Clone(p.Required)
	if p.Properties != nil {
		c.Properties = make(map[string]Param, len(p.Properties))
		for name, child := range p.Properties {
			c.Properties[name] = child.clone()
		}
	}
	if p.Items != nil {
		items := p.Items.clone()
		c.Items = &items
	}
	return c
}

func (s Schema) clone() Schema {
	c := s
	c.Parameters = s.Parameters.clone()
	return c
}

func joinField(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
