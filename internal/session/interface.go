package session

import (
	"context"
	"io"
	"time"

	"github.com/nguyentantai21042004/interview-clips/internal/metadata"
)

// Manager owns the lifecycle of interview sessions: start, ordered uploads, analysis results, finish
type Manager interface {
	Start(ctx context.Context, token, displayName string) (Handle, error)
	Upload(ctx context.Context, req UploadRequest) (UploadResult, error)
	Finish(ctx context.Context, token, sessionID string, questionsCount *int) error
	RecordAnalysis(ctx context.Context, sessionID string, q int, transcript, summary string) error
	Authorize(ctx context.Context, token, sessionID string) error
	Get(ctx context.Context, sessionID string) (*metadata.Document, error)
	List(ctx context.Context) ([]Summary, error)
}

// Authenticator validates shared-secret tokens
type Authenticator interface {
	Authenticate(token string) bool
}

// Reporter renders a finished session into a document stored next to its clips
type Reporter interface {
	Write(ctx context.Context, sessionID string, doc *metadata.Document) (string, error)
}

// Handle identifies a started session
type Handle struct {
	ID        string
	Dir       string
	StartedAt time.Time
}

// UploadRequest carries one clip submission
type UploadRequest struct {
	Token         string
	SessionID     string
	FileName      string
	QuestionIndex string
	ContentType   string
	Body          io.Reader
}

// UploadResult describes an accepted clip
type UploadResult struct {
	Q       int
	SavedAs string
	Size    int64
}

// Summary is a one-line view of a session for listings
type Summary struct {
	ID         string
	UserName   string
	StartedAt  *time.Time
	FinishedAt *time.Time
	Uploaded   int
	Analyzed   int
}
