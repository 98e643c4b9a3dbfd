package artifact

import (
	"context"
	"io"
)

// Store persists one clip per question index under a session folder
type Store interface {
	Save(ctx context.Context, sessionID string, q int, r io.Reader, contentType string) (Saved, error)
	Exists(sessionID string, q int) bool
	Path(sessionID string, q int) (string, error)
	FileName(q int) string
}

// Saved describes a persisted artifact
type Saved struct {
	FileName string
	Path     string
	Size     int64
}
