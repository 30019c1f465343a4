package dispatch

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Handle and New.
var (
	// ErrModelCapability matches every *ModelError.
	ErrModelCapability = errors.New("function calling failed")
	ErrEmptyPrompt     = errors.New("prompt is empty")
	ErrUnknownSummary  = errors.New("unknown summary policy")
	ErrInvalidConfig   = errors.New("invalid dispatch config")
)

// Model failure reasons.
const (
	ReasonError   = "error"
	ReasonTimeout = "timeout"
	ReasonEmpty   = "empty_response"
)

// ModelError reports that the model capability could not produce a usable
// reply. The cycle is aborted and only the user turn was recorded in the
// conversation named by ConversationID.
type ModelError struct {
	ConversationID string
	Reason         string
	Err            error
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrModelCapability, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", ErrModelCapability, e.Reason, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrModelCapability.
func (e *ModelError) Is(target error) bool {
	return target == ErrModelCapability
}
