package executor

import (
	"context"
	"io"
)

// Executor runs external commands as argument vectors, never through a shell
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
	ExecuteWithInput(ctx context.Context, stdin io.Reader, name string, args ...string) (string, error)
}
