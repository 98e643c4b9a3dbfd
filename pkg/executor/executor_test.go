package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestExecute(t *testing.T) {
	exec := New(5 * time.Second)

	out, err := exec.Execute(context.Background(), "echo", "hello", "; rm -rf /")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	// Arguments are passed verbatim, never interpreted by a shell
	if strings.TrimSpace(out) != "hello ; rm -rf /" {
		t.Errorf("Execute() = %q", out)
	}
}

func TestExecuteFailure(t *testing.T) {
	exec := New(5 * time.Second)

	_, err := exec.Execute(context.Background(), "false")
	if err == nil {
		t.Fatal("Execute() should fail for a non-zero exit")
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("a plain failure must not be reported as a timeout")
	}
}

func TestExecuteTimeout(t *testing.T) {
	exec := New(50 * time.Millisecond)

	start := time.Now()
	_, err := exec.Execute(context.Background(), "sleep", "5")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Execute() error = %v, want ErrTimeout", err)
	}
	if time.Since(start) > 4*time.Second {
		t.Error("command was not killed at its deadline")
	}
}

func TestExecuteWithInput(t *testing.T) {
	exec := New(5 * time.Second)
	input := "$(whoami) `id` \"quoted\" 'single'"

	out, err := exec.ExecuteWithInput(context.Background(), strings.NewReader(input), "cat")
	if err != nil {
		t.Fatalf("ExecuteWithInput() error = %v", err)
	}
	if out != input {
		t.Errorf("ExecuteWithInput() = %q, want %q", out, input)
	}
}

func TestExecuteInDir(t *testing.T) {
	dir := t.TempDir()
	exec := New(5 * time.Second)

	if _, err := exec.ExecuteInDir(context.Background(), dir, "touch", "marker"); err != nil {
		t.Fatalf("ExecuteInDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "marker")); err != nil {
		t.Errorf("marker not created in working directory: %v", err)
	}
}
