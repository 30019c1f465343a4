package protocol

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Status is the result of attempting one requested action.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// ErrorKind classifies a failed outcome.
type ErrorKind string

const (
	// KindUnknownAction: the model referenced an action that is not registered.
	KindUnknownAction ErrorKind = "unknown_action"
	// KindSchemaViolation: arguments failed structural validation.
	KindSchemaViolation ErrorKind = "schema_violation"
	// KindHandlerFailure: the handler or its downstream call failed.
	KindHandlerFailure ErrorKind = "handler_failure"
)

// Causes refine a handler failure.
const (
	CauseNetwork           = "network"
	CauseRejected          = "rejected"
	CauseMalformedResponse = "malformed_response"
	CauseInvalidArguments  = "invalid_arguments"
	CauseTimeout           = "timeout"
)

// Failure describes why an action did not succeed.
type Failure struct {
	Kind   ErrorKind `json:"kind"`
	Detail string    `json:"detail"`
	Field  string    `json:"field,omitempty"`
	Cause  string    `json:"cause,omitempty"`
}

// Outcome is the recorded result of one requested action.
// Payload holds the JSON-encoded success result; it is nil for failures.
type Outcome struct {
	CallID  string          `json:"call_id,omitempty"`
	Action  string          `json:"action"`
	Status  Status          `json:"status"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *Failure        `json:"error,omitempty"`
}

// Success builds a success outcome. The payload is JSON-encoded; an
// unencodable payload degrades to a handler failure.
func Success(action string, payload any) Outcome {
	data, err := json.Marshal(payload)
	if err != nil {
		return Fail(action, KindHandlerFailure, fmt.Sprintf("encode result: %v", err))
	}
	return Outcome{Action: action, Status: StatusSuccess, Payload: data}
}

// Fail builds a failure outcome.
func Fail(action string, kind ErrorKind, detail string) Outcome {
	return Outcome{
		Action: action,
		Status: StatusFailure,
		Error:  &Failure{Kind: kind, Detail: detail},
	}
}

// HandlerFailure builds a handler failure outcome with a cause.
func HandlerFailure(action, cause, detail string) Outcome {
	o := Fail(action, KindHandlerFailure, detail)
	o.Error.Cause = cause
	return o
}

// Succeeded reports whether the outcome is a success.
func (o Outcome) Succeeded() bool {
	return o.Status == StatusSuccess
}

// Clone returns a deep copy of the outcome.
func (o Outcome) Clone() Outcome {
	c := o
	c.Payload = slices.Clone(o.Payload)
	if o.Error != nil {
		f := *o.Error
		c.Error = &f
	}
	return c
}

// String renders the outcome as the JSON text replayed to the model.
func (o Outcome) String() string {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Sprintf(`{"action":%q,"status":%q}`, o.Action, o.Status)
	}
	return string(data)
}
