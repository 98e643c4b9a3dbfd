// Package report exports a session document as report.docx inside its folder.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nguyentantai21042004/interview-clips/internal/logger"
	"github.com/nguyentantai21042004/interview-clips/internal/metadata"
)

// FileName is the report written next to the clips
const FileName = "report.docx"

// DirFunc resolves the folder of a session
type DirFunc func(sessionID string) (string, error)

// Writer renders session documents with godocx
type Writer struct {
	dir    DirFunc
	logger logger.Logger
}

// New creates a Writer storing reports in the folders returned by dir
func New(dir DirFunc, log logger.Logger) *Writer {
	return &Writer{dir: dir, logger: log}
}

// Write renders doc to <session dir>/report.docx and returns the path.
// The file is built under a temporary name and renamed into place.
func (w *Writer) Write(ctx context.Context, sessionID string, doc *metadata.Document) (string, error) {
	dir, err := w.dir(sessionID)
	if err != nil {
		return "", err
	}

	b, err := newBuilder()
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	render(b, sessionID, doc)

	path := filepath.Join(dir, FileName)
	tmp := filepath.Join(dir, ".report.tmp.docx")
	if err := b.save(tmp); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("save report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("save report: %w", err)
	}

	w.logger.Debug(ctx, "Report for %s: %d questions", sessionID, questionCount(doc))
	return path, nil
}

func render(b *builder, sessionID string, doc *metadata.Document) {
	loc := location(doc.TimeZone)

	b.heading("Interview session "+sessionID, 18)
	b.line("Candidate", orDash(doc.UserName))
	b.line("Started", formatTime(doc.StartedAt, loc))
	b.line("Finished", formatTime(doc.FinishedAt, loc))
	if doc.QuestionsCount != nil {
		b.line("Questions", strconv.Itoa(*doc.QuestionsCount))
	}
	b.line("Clips uploaded", strconv.Itoa(len(doc.Uploaded)))

	for q := 1; q <= questionCount(doc); q++ {
		up, uploaded := doc.Upload(q)
		res, analyzed := doc.AnalysisFor(q)
		if !uploaded && !analyzed {
			continue
		}

		b.heading(fmt.Sprintf("Question %d", q), 16)
		if uploaded {
			b.line("Clip", fmt.Sprintf("%s (%d bytes, %s)", up.File, up.Size, up.UploadedAt.In(loc).Format("02/01/2006 15:04")))
		}
		if !analyzed {
			b.plain("Not analyzed.")
			continue
		}
		b.heading("Transcript", 14)
		b.plain(orDash(res.Transcript))
		b.heading("Summary", 14)
		b.markdown(orDash(res.Summary))
	}
}

// questionCount is the highest index seen in any list
func questionCount(doc *metadata.Document) int {
	n := 0
	for _, u := range doc.Uploaded {
		n = max(n, u.Q)
	}
	for _, a := range doc.Analysis {
		n = max(n, a.Q)
	}
	return n
}

func location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func formatTime(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "-"
	}
	return t.In(loc).Format("02/01/2006 15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
