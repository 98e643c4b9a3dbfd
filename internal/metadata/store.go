package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/gofrs/flock"

	"github.com/nguyentantai21042004/interview-clips/internal/apperr"
	"github.com/nguyentantai21042004/interview-clips/pkg/fileutil"
)

var validID = regexp.MustCompile(`^[a-z0-9][a-z0-9_]*$`)

// ValidID reports whether id is safe to use as a folder name under the storage root
func ValidID(id string) bool {
	return len(id) <= 128 && validID.MatchString(id)
}

// Dir returns the folder of a session
func (s *implStore) Dir(sessionID string) (string, error) {
	if !ValidID(sessionID) {
		return "", apperr.Validation("invalid session id %q", sessionID)
	}
	return filepath.Join(s.root, sessionID), nil
}

// Create makes the session folder. An existing folder is not an error.
func (s *implStore) Create(ctx context.Context, sessionID string) error {
	dir, err := s.Dir(sessionID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return nil
}

// Exists reports whether the session folder exists
func (s *implStore) Exists(ctx context.Context, sessionID string) bool {
	dir, err := s.Dir(sessionID)
	if err != nil {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// Get reads a session document without locking. Writers replace the file by rename,
// so a reader never observes a partial document.
func (s *implStore) Get(ctx context.Context, sessionID string) (*Document, error) {
	if !s.Exists(ctx, sessionID) {
		return nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, sessionID)
	}
	dir, _ := s.Dir(sessionID)
	doc, err := s.load(dir)
	if err != nil {
		s.logger.Warn(ctx, "Session %s has unreadable metadata, treating as empty: %v", sessionID, err)
		return &Document{}, nil
	}
	return doc, nil
}

// Merge loads the document, applies fn and writes the result back in full
func (s *implStore) Merge(ctx context.Context, sessionID string, fn MergeFunc) (*Document, error) {
	if !s.Exists(ctx, sessionID) {
		return nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, sessionID)
	}
	dir, _ := s.Dir(sessionID)

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	fl := flock.New(filepath.Join(dir, lockFileName))
	locked, err := fl.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("lock session %s: %w", sessionID, err)
	}
	if !locked {
		return nil, fmt.Errorf("lock session %s: not acquired", sessionID)
	}
	defer fl.Unlock()

	doc, err := s.load(dir)
	if err != nil {
		s.logger.Warn(ctx, "Session %s has unreadable metadata, resetting: %v", sessionID, err)
		s.quarantine(ctx, dir)
		doc = &Document{}
	}

	if err := fn(doc); err != nil {
		return nil, err
	}

	if err := s.write(dir, doc); err != nil {
		return nil, fmt.Errorf("write metadata for %s: %w", sessionID, err)
	}
	return doc, nil
}

// List returns the IDs of all session folders, sorted
func (s *implStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read storage root: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() && ValidID(e.Name()) {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// load returns an empty document when meta.json is absent and ErrCorruptState when it cannot be parsed
func (s *implStore) load(dir string) (*Document, error) {
	data, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Document{}, nil
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrCorruptState, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &Document{}, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrCorruptState, err)
	}
	return &doc, nil
}

func (s *implStore) write(dir string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = fileutil.WriteFileAtomic(filepath.Join(dir, fileName), bytes.NewReader(data), 0644)
	return err
}

// quarantine keeps the unreadable document around for inspection before it is replaced
func (s *implStore) quarantine(ctx context.Context, dir string) {
	src := filepath.Join(dir, fileName)
	if err := os.Rename(src, filepath.Join(dir, corruptName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn(ctx, "Failed to keep corrupt metadata %s: %v", src, err)
	}
}
