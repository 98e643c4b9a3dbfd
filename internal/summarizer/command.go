package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/interview-clips/internal/apperr"
	"github.com/nguyentantai21042004/interview-clips/pkg/executor"
)

// commandSummarizer pipes the transcript into a local program and takes its stdout as the summary
type commandSummarizer struct {
	binary   string
	args     []string
	executor executor.Executor
}

func (s *commandSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	out, err := s.executor.ExecuteWithInput(ctx, strings.NewReader(transcript), s.binary, s.args...)
	if err != nil {
		return "", &apperr.ExternalProcessError{Stage: "summarize", Command: s.binary, Err: err}
	}

	summary := strings.TrimSpace(out)
	if summary == "" {
		return "", &apperr.ExternalProcessError{
			Stage:   "summarize",
			Command: s.binary,
			Err:     fmt.Errorf("empty output"),
		}
	}
	return summary, nil
}
