package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is wrapped into the error of any command killed by its deadline
var ErrTimeout = errors.New("command timed out")

// maxStderr caps how much stderr is folded into an error message
const maxStderr = 4096

type implExecutor struct {
	timeout time.Duration
}

// New creates a new Executor instance. A positive timeout bounds every command it runs.
func New(timeout time.Duration) Executor {
	return &implExecutor{timeout: timeout}
}

// Execute runs an external command with the given arguments
func (e *implExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return e.run(ctx, "", nil, name, args...)
}

// ExecuteInDir runs an external command in a specific working directory
func (e *implExecutor) ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error) {
	return e.run(ctx, dir, nil, name, args...)
}

// ExecuteWithInput runs an external command feeding stdin from the given reader.
// Untrusted text goes through here instead of the argument list.
func (e *implExecutor) ExecuteWithInput(ctx context.Context, stdin io.Reader, name string, args ...string) (string, error) {
	return e.run(ctx, "", stdin, name, args...)
}

func (e *implExecutor) run(ctx context.Context, dir string, stdin io.Reader, name string, args ...string) (string, error) {
	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = stdin
	// Children that inherit our pipes must not keep Wait blocked after the kill
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("command '%s': %w after %s", name, ErrTimeout, e.timeout)
		}
		// Include stderr in error message for debugging
		stderrStr := strings.TrimSpace(stderr.String())
		if len(stderrStr) > maxStderr {
			stderrStr = stderrStr[len(stderrStr)-maxStderr:]
		}
		if stderrStr != "" {
			return "", fmt.Errorf("command '%s' failed: %w\nstderr: %s", name, err, stderrStr)
		}
		return "", fmt.Errorf("command '%s' failed: %w", name, err)
	}

	return stdout.String(), nil
}
