package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// CheckJSONSchema reports whether doc is a well-formed JSON Schema as read
// by OpenAPI 3 tooling. Register runs it on every rendered tool definition
// before the definition can reach the model or an MCP client.
func CheckJSONSchema(doc map[string]any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	var schema openapi3.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if err := schema.Validate(context.Background()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return nil
}
