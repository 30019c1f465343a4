package actions

import (
	"errors"
	"fmt"
)

// Sentinel errors for the action registry and handler set.
var (
	ErrUnknownAction    = errors.New("unknown action")
	ErrDuplicateAction  = errors.New("action already registered")
	ErrEmptyName        = errors.New("action name is empty")
	ErrInvalidSchema    = errors.New("invalid action schema")
	ErrFrozen           = errors.New("action registry is frozen")
	ErrSchemaViolation  = errors.New("schema violation")
	ErrDuplicateHandler = errors.New("handler already registered")
)

// Reason names the rule an argument payload broke.
type Reason string

const (
	ReasonMissingRequired Reason = "missing_required"
	ReasonWrongType       Reason = "wrong_type"
	ReasonNotInEnum       Reason = "not_in_enum"
	ReasonMalformed       Reason = "malformed"
	ReasonUnknownField    Reason = "unknown_field"
)

// SchemaViolation is the first rule an argument payload broke.
// Field is a path such as "attendees[1].email"; it is empty when the payload
// as a whole could not be decoded.
type SchemaViolation struct {
	Action string
	Field  string
	Reason Reason
	Detail string
}

func (v *SchemaViolation) Error() string {
	if v.Field == "" {
		return fmt.Sprintf("schema violation in %s: %s: %s", v.Action, v.Reason, v.Detail)
	}
	return fmt.Sprintf("schema violation in %s: field %q: %s: %s", v.Action, v.Field, v.Reason, v.Detail)
}

// Is lets errors.Is match ErrSchemaViolation.
func (v *SchemaViolation) Is(target error) bool {
	return target == ErrSchemaViolation
}
