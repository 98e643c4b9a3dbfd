package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned when the presented token is not on the allow-list.
	ErrUnauthorized = errors.New("invalid token")
	// ErrValidation marks malformed requests, wrong media types and oversized payloads.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a referenced session does not exist.
	ErrNotFound = errors.New("session not found")
	// ErrConflict is returned when a new session would reuse a folder that already holds one.
	ErrConflict = errors.New("session already exists")
	// ErrCorruptState marks an unreadable metadata document. Stores recover from it.
	ErrCorruptState = errors.New("corrupt session state")
)

// Validation wraps ErrValidation with a caller-facing message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// SequentialViolationError rejects an upload whose earlier questions are missing.
// Missing is always the smallest absent index.
type SequentialViolationError struct {
	Target  int
	Missing int
}

func (e *SequentialViolationError) Error() string {
	return fmt.Sprintf("Q%d rejected: Q%d has not been uploaded yet", e.Target, e.Missing)
}

// ExternalProcessError reports a failed or timed out pipeline stage.
type ExternalProcessError struct {
	Stage   string
	Command string
	Timeout bool
	Err     error
}

func (e *ExternalProcessError) Error() string {
	verb := "failed"
	if e.Timeout {
		verb = "timed out"
	}
	if e.Command != "" {
		return fmt.Sprintf("%s: %s %s: %v", e.Stage, e.Command, verb, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, verb, e.Err)
}

func (e *ExternalProcessError) Unwrap() error { return e.Err }

// Retryable reports whether a caller may sensibly resubmit the same clip.
func (e *ExternalProcessError) Retryable() bool { return true }

// Code returns the short machine-readable error code used in API responses.
func Code(err error) string {
	var seq *SequentialViolationError
	var ext *ExternalProcessError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &seq):
		return "sequential_violation"
	case errors.As(err, &ext):
		if ext.Timeout {
			return "external_timeout"
		}
		return "external_process"
	case errors.Is(err, ErrUnauthorized):
		return "invalid_token"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

// HTTPStatus maps an error from the core to the status code reported by the API.
func HTTPStatus(err error) int {
	switch Code(err) {
	case "":
		return http.StatusOK
	case "sequential_violation", "conflict":
		return http.StatusConflict
	case "external_timeout":
		return http.StatusGatewayTimeout
	case "external_process":
		return http.StatusBadGateway
	case "invalid_token":
		return http.StatusUnauthorized
	case "validation":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
