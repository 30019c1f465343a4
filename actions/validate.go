package actions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Arguments is a validated argument payload. Integers decode as int64,
// numbers as float64, objects as map[string]any and arrays as []any.
// Optional fields sent as JSON null are dropped.
type Arguments map[string]any

// Decode copies the arguments into out, matching fields by their json tags.
func (a Arguments) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(a))
}

// Validate decodes raw against the schema's parameter tree.
// Required fields are checked in declared order before present fields,
// which are visited in sorted order, depth first. The first broken rule is
// returned as a *SchemaViolation; the same input always yields the same
// violation. An empty payload is treated as an empty object.
func (s Schema) Validate(raw json.RawMessage) (Arguments, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		trimmed = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, s.violation("", ReasonMalformed, fmt.Sprintf("arguments are not valid JSON: %v", err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, s.violation("", ReasonMalformed, "arguments contain trailing data")
	}
	if _, ok := decoded.(map[string]any); !ok {
		return nil, s.violation("", ReasonMalformed, "arguments must be a JSON object")
	}

	value, v := s.Parameters.validate("", decoded)
	if v != nil {
		v.Action = s.Name
		return nil, v
	}
	return Arguments(value.(map[string]any)), nil
}

func (s Schema) violation(field string, reason Reason, detail string) *SchemaViolation {
	return &SchemaViolation{Action: s.Name, Field: field, Reason: reason, Detail: detail}
}

func violate(field string, reason Reason, format string, args ...any) *SchemaViolation {
	return &SchemaViolation{Field: field, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

func (p Param) validate(path string, value any) (any, *SchemaViolation) {
	switch p.Type {
	case KindString:
		s, ok := value.(string)
		if !ok {
			return nil, violate(path, ReasonWrongType, "expected string, got %s", describe(value))
		}
		if len(p.Enum) > 0 && !slices.Contains(p.Enum, s) {
			return nil, violate(path, ReasonNotInEnum, "%q is not one of %s", s, strings.Join(p.Enum, ", "))
		}
		return s, nil

	case KindInteger:
		n, ok := value.(json.Number)
		if !ok {
			return nil, violate(path, ReasonWrongType, "expected integer, got %s", describe(value))
		}
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return nil, violate(path, ReasonWrongType, "expected integer, got %s", n.String())
		}
		return int64(f), nil

	case KindNumber:
		n, ok := value.(json.Number)
		if !ok {
			return nil, violate(path, ReasonWrongType, "expected number, got %s", describe(value))
		}
		f, err := n.Float64()
		if err != nil {
			return nil, violate(path, ReasonWrongType, "expected number, got %s", n.String())
		}
		return f, nil

	case KindBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, violate(path, ReasonWrongType, "expected boolean, got %s", describe(value))
		}
		return b, nil

	case KindArray:
		items, ok := value.([]any)
		if !ok {
			return nil, violate(path, ReasonMalformed, "expected array, got %s", describe(value))
		}
		out := make([]any, len(items))
		for i, item := range items {
			v, err := p.Items.validate(fmt.Sprintf("%s[%d]", path, i), item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case KindObject:
		fields, ok := value.(map[string]any)
		if !ok {
			return nil, violate(path, ReasonMalformed, "expected object, got %s", describe(value))
		}
		for _, name := range p.Required {
			if v, present := fields[name]; !present || v == nil {
				return nil, violate(joinField(path, name), ReasonMissingRequired, "required field is missing")
			}
		}

		out := make(map[string]any, len(fields))
		for _, name := range slices.Sorted(maps.Keys(fields)) {
			child, declared := p.Properties[name]
			if !declared {
				return nil, violate(joinField(path, name), ReasonUnknownField, "field is not declared")
			}
			if fields[name] == nil {
				continue
			}
			v, err := child.validate(joinField(path, name), fields[name])
			if err != nil {
				return nil, err
			}
			out[name] = v
		}
		return out, nil
	}

	return nil, violate(path, ReasonMalformed, "unsupported parameter type %q", p.Type)
}

func describe(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", value)
}
