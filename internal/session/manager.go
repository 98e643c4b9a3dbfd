package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/interview-clips/internal/apperr"
	"github.com/nguyentantai21042004/interview-clips/internal/config"
	"github.com/nguyentantai21042004/interview-clips/internal/metadata"
)

// maxCollisionSuffix bounds how many _N variants are tried for one folder name
const maxCollisionSuffix = 100

var errFolderTaken = errors.New("folder already holds a session")

// Start creates the session folder and its initial metadata. A folder that already
// holds a started session is never reused: it gets a _2, _3... suffix or the start
// is rejected, depending on the collision policy.
func (m *implManager) Start(ctx context.Context, token, displayName string) (Handle, error) {
	if !m.Auth.Authenticate(token) {
		return Handle{}, apperr.ErrUnauthorized
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = defaultName
	}
	now := m.opts.Now().In(m.opts.Location)
	base := FolderName(now, name)
	startedAt := now.UTC()

	for n := 1; n <= maxCollisionSuffix; n++ {
		id := base
		if n > 1 {
			id = fmt.Sprintf("%s_%d", base, n)
		}

		if err := m.Store.Create(ctx, id); err != nil {
			return Handle{}, err
		}

		_, err := m.Store.Merge(ctx, id, func(doc *metadata.Document) error {
			if doc.Started() {
				return errFolderTaken
			}
			doc.UserName = name
			doc.TimeZone = m.opts.TimeZone
			if doc.Uploaded == nil {
				doc.Uploaded = []metadata.UploadRecord{}
			}
			doc.StartedAt = &startedAt
			doc.FinishedAt = nil
			return nil
		})
		if errors.Is(err, errFolderTaken) {
			if m.opts.OnCollision == config.CollisionReject {
				return Handle{}, fmt.Errorf("%w: %s", apperr.ErrConflict, id)
			}
			m.Logger.Warn(ctx, "Session folder %s already in use, trying next suffix", id)
			continue
		}
		if err != nil {
			return Handle{}, fmt.Errorf("init metadata: %w", err)
		}

		dir, _ := m.Store.Dir(id)
		m.Logger.Info(ctx, "Session started: %s (%s)", id, name)
		return Handle{ID: id, Dir: dir, StartedAt: startedAt}, nil
	}

	return Handle{}, fmt.Errorf("%w: no free folder for %s", apperr.ErrConflict, base)
}

// Upload authenticates, enforces question order, stores the clip and records it.
// The order check and the write run under the session's lock.
func (m *implManager) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	if err := m.Authorize(ctx, req.Token, req.SessionID); err != nil {
		return UploadResult{}, err
	}
	if req.Body == nil {
		return UploadResult{}, apperr.Validation("no file")
	}

	q := m.Guard.ResolveIndex(req.FileName, req.QuestionIndex)
	m.Logger.Debug(ctx, "Upload for %s: filename=%q questionIndex=%q -> Q%d",
		req.SessionID, req.FileName, req.QuestionIndex, q)

	unlock := m.locks.Lock(req.SessionID)
	defer unlock()

	if err := m.Guard.Check(req.SessionID, q); err != nil {
		m.Logger.Warn(ctx, "Upload rejected for %s: %v", req.SessionID, err)
		return UploadResult{}, err
	}

	saved, err := m.Artifacts.Save(ctx, req.SessionID, q, req.Body, req.ContentType)
	if err != nil {
		return UploadResult{}, err
	}

	contentType := strings.TrimSpace(req.ContentType)
	_, err = m.Store.Merge(ctx, req.SessionID, func(doc *metadata.Document) error {
		doc.UpsertUpload(metadata.UploadRecord{
			Q:           q,
			File:        saved.FileName,
			UploadedAt:  m.opts.Now().UTC(),
			Size:        saved.Size,
			ContentType: contentType,
		})
		return nil
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("record upload: %w", err)
	}

	return UploadResult{Q: q, SavedAs: saved.FileName, Size: saved.Size}, nil
}

// Finish stamps finishedAt and the question count. A missing count falls back to
// the stored one, then to 0.
func (m *implManager) Finish(ctx context.Context, token, sessionID string, questionsCount *int) error {
	if err := m.Authorize(ctx, token, sessionID); err != nil {
		return err
	}
	if questionsCount != nil && *questionsCount < 0 {
		return apperr.Validation("questionsCount must not be negative")
	}

	doc, err := m.Store.Merge(ctx, sessionID, func(doc *metadata.Document) error {
		count := 0
		switch {
		case questionsCount != nil:
			count = *questionsCount
		case doc.QuestionsCount != nil:
			count = *doc.QuestionsCount
		}
		finishedAt := m.opts.Now().UTC()
		doc.QuestionsCount = &count
		doc.FinishedAt = &finishedAt
		return nil
	})
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}

	m.Logger.Info(ctx, "Session finished: %s (%d questions, %d clips)", sessionID, *doc.QuestionsCount, len(doc.Uploaded))

	if m.Reporter != nil {
		if path, err := m.Reporter.Write(ctx, sessionID, doc); err != nil {
			m.Logger.Warn(ctx, "Failed to write report for %s: %v", sessionID, err)
		} else {
			m.Logger.Info(ctx, "Report written: %s", path)
		}
	}
	return nil
}

// RecordAnalysis stores the transcript and summary of question q in the session document
func (m *implManager) RecordAnalysis(ctx context.Context, sessionID string, q int, transcript, summary string) error {
	if q < 1 || q > m.Guard.MaxQuestions() {
		return apperr.Validation("question index %d outside 1..%d", q, m.Guard.MaxQuestions())
	}
	_, err := m.Store.Merge(ctx, sessionID, func(doc *metadata.Document) error {
		doc.UpsertAnalysis(metadata.AnalysisRecord{
			Q:          q,
			Transcript: transcript,
			Summary:    summary,
			AnalyzedAt: m.opts.Now().UTC(),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("record analysis: %w", err)
	}
	return nil
}

// Authorize checks the token and that the session exists
func (m *implManager) Authorize(ctx context.Context, token, sessionID string) error {
	if !m.Auth.Authenticate(token) {
		return apperr.ErrUnauthorized
	}
	if strings.TrimSpace(sessionID) == "" {
		return apperr.Validation("missing folder")
	}
	if !metadata.ValidID(sessionID) {
		return apperr.Validation("invalid session id %q", sessionID)
	}
	if !m.Store.Exists(ctx, sessionID) {
		return fmt.Errorf("%w: %s", apperr.ErrNotFound, sessionID)
	}
	return nil
}

func (m *implManager) Get(ctx context.Context, sessionID string) (*metadata.Document, error) {
	return m.Store.Get(ctx, sessionID)
}

func (m *implManager) List(ctx context.Context) ([]Summary, error) {
	ids, err := m.Store.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(ids))
	for _, id := range ids {
		doc, err := m.Store.Get(ctx, id)
		if err != nil {
			m.Logger.Warn(ctx, "Skipping session %s: %v", id, err)
			continue
		}
		summaries = append(summaries, Summary{
			ID:         id,
			UserName:   doc.UserName,
			StartedAt:  doc.StartedAt,
			FinishedAt: doc.FinishedAt,
			Uploaded:   len(doc.Uploaded),
			Analyzed:   len(doc.Analysis),
		})
	}
	return summaries, nil
}
