package analysis

import (
	"context"

	"github.com/nguyentantai21042004/interview-clips/internal/metadata"
	"github.com/nguyentantai21042004/interview-clips/internal/processor"
)

// Service runs clips through the pipeline and folds results into session state
type Service interface {
	// AnalyzeClip takes ownership of req.ClipPath. A request with a SessionID is bound:
	// it must authenticate and its result is recorded on that session.
	AnalyzeClip(ctx context.Context, req ClipRequest) (processor.Result, error)
	// HandleInboxFile analyzes a copy of a file dropped into the inbox folder.
	// The inbox file is removed once it is handled or known to be unusable; a clip
	// whose run fails or is cancelled stays in place for the next scan.
	HandleInboxFile(ctx context.Context, path string) error
}

// Sessions is the part of the session manager the service needs
type Sessions interface {
	Authorize(ctx context.Context, token, sessionID string) error
	Get(ctx context.Context, sessionID string) (*metadata.Document, error)
	RecordAnalysis(ctx context.Context, sessionID string, q int, transcript, summary string) error
}

// ClipRequest describes one clip to analyze
type ClipRequest struct {
	Token     string
	SessionID string
	Question  int
	ClipPath  string
}

// Bound reports whether the result belongs to a session
func (r ClipRequest) Bound() bool {
	return r.SessionID != ""
}
