package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure an external provider call can produce.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindConfig
	KindAuthentication
	KindRateLimit
	KindAPI
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config_error"
	case KindAuthentication:
		return "authentication_error"
	case KindRateLimit:
		return "rate_limit_error"
	case KindAPI:
		return "api_error"
	default:
		return "unknown_error"
	}
}

// Provider error kinds. Match with errors.Is, never on message text.
var (
	ErrConfig         = errors.New("required setting missing")
	ErrAuthentication = errors.New("provider authentication failed")
	ErrRateLimit      = errors.New("provider rate limit exceeded")
	ErrAPI            = errors.New("provider request failed")
)

// Session related errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Loan offer fetch errors
var (
	ErrFetchInProgress = errors.New("loan offer fetch already in progress")
)

// ProviderError is returned by the search and chat clients.
// Kind decides how callers degrade; Message is for logs and the chat fallback text.
type ProviderError struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrRateLimit) and friends match on kind.
func (e *ProviderError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindConfig:
		return ErrConfig
	case KindAuthentication:
		return ErrAuthentication
	case KindRateLimit:
		return ErrRateLimit
	case KindAPI:
		return ErrAPI
	}
	return nil
}

// NewConfigError reports a missing required setting.
func NewConfigError(name string) *ProviderError {
	return &ProviderError{
		Kind:    KindConfig,
		Message: fmt.Sprintf("missing required environment variable: %s", name),
	}
}

// KindOf returns the taxonomy kind carried by err, or KindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	switch {
	case errors.Is(err, ErrConfig):
		return KindConfig
	case errors.Is(err, ErrAuthentication):
		return KindAuthentication
	case errors.Is(err, ErrRateLimit):
		return KindRateLimit
	case errors.Is(err, ErrAPI):
		return KindAPI
	}
	return KindUnknown
}
