package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		want int
	}{
		{"nil", nil, "", http.StatusOK},
		{"unauthorized", fmt.Errorf("start: %w", ErrUnauthorized), "invalid_token", http.StatusUnauthorized},
		{"validation", Validation("wrong media type %q", "video/mp4"), "validation", http.StatusBadRequest},
		{"not found", ErrNotFound, "not_found", http.StatusNotFound},
		{"conflict", ErrConflict, "conflict", http.StatusConflict},
		{"sequential", &SequentialViolationError{Target: 3, Missing: 1}, "sequential_violation", http.StatusConflict},
		{"external", &ExternalProcessError{Stage: "extract", Err: errors.New("exit 1")}, "external_process", http.StatusBadGateway},
		{"timeout", &ExternalProcessError{Stage: "transcribe", Timeout: true, Err: context.DeadlineExceeded}, "external_timeout", http.StatusGatewayTimeout},
		{"other", errors.New("disk full"), "internal", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.code {
				t.Errorf("Code() = %q, want %q", got, tt.code)
			}
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExternalProcessErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("analyze: %w", &ExternalProcessError{Stage: "transcribe", Timeout: true, Err: context.DeadlineExceeded})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("errors.Is should reach the wrapped deadline error")
	}
	var ext *ExternalProcessError
	if !errors.As(err, &ext) || !ext.Retryable() {
		t.Error("external process errors should be retryable")
	}
}

func TestValidationMessage(t *testing.T) {
	err := Validation("clip exceeds %d MB", 50)
	if err.Error() != "validation failed: clip exceeds 50 MB" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestExternalProcessErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *ExternalProcessError
		want string
	}{
		{"command failed", &ExternalProcessError{Stage: "extract", Command: "ffmpeg", Err: errors.New("exit status 1")}, "extract: ffmpeg failed: exit status 1"},
		{"command timed out", &ExternalProcessError{Stage: "transcribe", Command: "whisper-cli", Timeout: true, Err: context.DeadlineExceeded}, "transcribe: whisper-cli timed out: context deadline exceeded"},
		{"no command", &ExternalProcessError{Stage: "summarize", Err: errors.New("empty output")}, "summarize failed: empty output"},
		{"no command timed out", &ExternalProcessError{Stage: "transcribe", Timeout: true, Err: context.DeadlineExceeded}, "transcribe timed out: context deadline exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
