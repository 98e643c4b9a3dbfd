package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/nguyentantai21042004/interview-clips/internal/apperr"
	"github.com/nguyentantai21042004/interview-clips/internal/processor"
	"github.com/nguyentantai21042004/interview-clips/pkg/fileutil"
)

// inbox files are named <sessionId>--Q<n>.<ext>
var inboxName = regexp.MustCompile(`^([a-z0-9][a-z0-9_]*)--Q(\d+)\.[A-Za-z0-9]+$`)

// ParseInboxName extracts the session binding from an inbox file name
func ParseInboxName(name string) (sessionID string, q int, ok bool) {
	m := inboxName.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return "", 0, false
	}
	q, err := strconv.Atoi(m[2])
	if errors.Is(err, strconv.ErrRange) {
		// still bound, the range check rejects it
		return m[1], math.MaxInt, true
	}
	if err != nil || q < 1 {
		return "", 0, false
	}
	return m[1], q, true
}

func (s *implService) AnalyzeClip(ctx context.Context, req ClipRequest) (processor.Result, error) {
	if req.Bound() {
		if err := s.sessions.Authorize(ctx, req.Token, req.SessionID); err != nil {
			s.discard(ctx, req.ClipPath)
			return processor.Result{}, err
		}
		if err := s.checkQuestion(req.Question); err != nil {
			s.discard(ctx, req.ClipPath)
			return processor.Result{}, err
		}
	}

	return s.run(ctx, req.SessionID, req.Question, req.ClipPath)
}

func (s *implService) HandleInboxFile(ctx context.Context, path string) error {
	name := filepath.Base(path)
	sessionID, q, bound := ParseInboxName(path)
	if bound {
		// the inbox is a local trust boundary, so no token is needed; the session must exist
		if _, err := s.sessions.Get(ctx, sessionID); err != nil {
			s.discard(ctx, path)
			return fmt.Errorf("inbox clip %s: %w", name, err)
		}
		if err := s.checkQuestion(q); err != nil {
			s.discard(ctx, path)
			return fmt.Errorf("inbox clip %s: %w", name, err)
		}
	}

	// the pipeline consumes its input, so the inbox file survives a failed run
	staged, err := fileutil.CopyToDir(path, s.opts.TempDir, "inbox")
	if err != nil {
		return fmt.Errorf("inbox clip %s: %w", name, err)
	}

	res, err := s.run(ctx, sessionID, q, staged)
	if err != nil {
		s.logger.Warn(ctx, "Inbox clip %s kept for retry: %v", name, err)
		return fmt.Errorf("inbox clip %s: %w", name, err)
	}
	s.discard(ctx, path)

	if !bound {
		s.logger.Info(ctx, "Inbox clip %s analyzed (unbound): %s", name, res.Summary)
	}
	return nil
}

func (s *implService) checkQuestion(q int) error {
	if q < 1 {
		return apperr.Validation("question index is required when analyzing for a session")
	}
	if s.opts.MaxQuestions > 0 && q > s.opts.MaxQuestions {
		return apperr.Validation("question index %d outside 1..%d", q, s.opts.MaxQuestions)
	}
	return nil
}

// run analyzes clipPath and records the result when sessionID is set
func (s *implService) run(ctx context.Context, sessionID string, q int, clipPath string) (processor.Result, error) {
	res, err := s.processor.Analyze(ctx, clipPath)
	if err != nil {
		return processor.Result{}, err
	}
	if sessionID == "" {
		return res, nil
	}

	if err := s.sessions.RecordAnalysis(ctx, sessionID, q, res.Transcript, res.Summary); err != nil {
		return processor.Result{}, fmt.Errorf("record analysis: %w", err)
	}
	s.logger.Info(ctx, "Analysis recorded for %s Q%d", sessionID, q)
	return res, nil
}

// discard removes a clip that will not reach the pipeline
func (s *implService) discard(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn(ctx, "Failed to remove clip %s: %v", path, err)
	}
}
