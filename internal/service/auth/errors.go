package auth

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("username already taken")
	ErrUnauthenticated   = errors.New("invalid credentials")
	ErrStoreUnavailable  = errors.New("credential store unavailable")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTTLTooShort       = errors.New("token ttl must be at least 1s")
	ErrTokenGenerateFail = errors.New("failed to generate token")
)

// ValidationError lists caller-correctable problems per input field.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Errors[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
