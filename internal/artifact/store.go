package artifact

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/interview-clips/internal/apperr"
	"github.com/nguyentantai21042004/interview-clips/pkg/fileutil"
)

var errTooLarge = errors.New("artifact too large")

// FileName is the deterministic name of the clip for question q
func (s *implStore) FileName(q int) string {
	return fmt.Sprintf("Q%d.%s", q, s.opts.Extension)
}

// Path returns where the clip for question q lives
func (s *implStore) Path(sessionID string, q int) (string, error) {
	dir, err := s.dir(sessionID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, s.FileName(q)), nil
}

// Exists reports whether the clip for question q has been persisted
func (s *implStore) Exists(sessionID string, q int) bool {
	path, err := s.Path(sessionID, q)
	if err != nil {
		return false
	}
	return fileutil.Exists(path)
}

// Save validates the declared media type and writes the clip, replacing any earlier one.
// The previous clip stays intact if the write fails or the body is over the ceiling.
func (s *implStore) Save(ctx context.Context, sessionID string, q int, r io.Reader, contentType string) (Saved, error) {
	if !s.acceptsType(contentType) {
		return Saved{}, apperr.Validation("invalid mime %q, expected %s", contentType, s.opts.ContentType)
	}

	path, err := s.Path(sessionID, q)
	if err != nil {
		return Saved{}, err
	}

	br := bufio.NewReader(r)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return Saved{}, apperr.Validation("no file")
		}
		return Saved{}, fmt.Errorf("read clip: %w", err)
	}

	var body io.Reader = br
	if s.opts.MaxBytes > 0 {
		body = &limitedReader{r: br, remaining: s.opts.MaxBytes}
	}

	n, err := fileutil.WriteFileAtomic(path, body, 0644)
	if err != nil {
		if errors.Is(err, errTooLarge) {
			return Saved{}, apperr.Validation("clip exceeds %d MB", s.opts.MaxBytes/(1024*1024))
		}
		return Saved{}, fmt.Errorf("save %s: %w", s.FileName(q), err)
	}
	s.logger.Info(ctx, "Saved %s for session %s (%d bytes)", s.FileName(q), sessionID, n)
	return Saved{FileName: s.FileName(q), Path: path, Size: n}, nil
}

func (s *implStore) acceptsType(declared string) bool {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(declared))
	if err != nil {
		return false
	}
	return strings.EqualFold(mediaType, s.opts.ContentType)
}

// limitedReader fails once more than remaining bytes have been read
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, errTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, errTooLarge
	}
	return n, err
}
