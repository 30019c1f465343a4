package integration

import (
	"errors"
	"fmt"

	"github.com/CerealNotFound/function-calling-server/core/protocol"
)

// ErrMissingBaseURL is returned when a client is configured without a base URL.
var ErrMissingBaseURL = errors.New("integration base url is not configured")

// Error is a classified downstream failure. Cause is one of the
// protocol.Cause* values; Status is the HTTP status when a response arrived.
type Error struct {
	Service string
	Cause   string
	Status  int
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Service, e.Cause, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", e.Service, e.Cause, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fail converts err into a handler failure outcome for action, keeping the
// cause when err is an *Error.
func Fail(action string, err error) protocol.Outcome {
	var ie *Error
	if errors.As(err, &ie) {
		return protocol.HandlerFailure(action, ie.Cause, ie.Error())
	}
	return protocol.HandlerFailure(action, protocol.CauseNetwork, err.Error())
}
