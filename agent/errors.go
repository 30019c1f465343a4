package agent

import "errors"

// Sentinel errors for provider registration and agent construction.
var (
	ErrUnknownProvider = errors.New("unknown agent provider")
	ErrProviderExists  = errors.New("agent provider already registered")
	ErrMissingModel    = errors.New("agent model is not configured")
	ErrMissingAPIKey   = errors.New("agent api key is not configured")
)
