package analysis

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nguyentantai21042004/interview-clips/internal/apperr"
	"github.com/nguyentantai21042004/interview-clips/internal/logger"
	"github.com/nguyentantai21042004/interview-clips/internal/metadata"
	"github.com/nguyentantai21042004/interview-clips/internal/processor"
)

type fakeProcessor struct {
	err   error
	block bool
	clips []string
}

func (f *fakeProcessor) Analyze(ctx context.Context, clipPath string) (processor.Result, error) {
	f.clips = append(f.clips, clipPath)
	defer os.Remove(clipPath)
	if f.block {
		<-ctx.Done()
		return processor.Result{}, &apperr.ExternalProcessError{Stage: processor.StageTranscribe, Timeout: true, Err: ctx.Err()}
	}
	if f.err != nil {
		return processor.Result{}, f.err
	}
	return processor.Result{Transcript: "hello", Summary: "greeting"}, nil
}

type record struct {
	id string
	q  int
}

type fakeSessions struct {
	known    map[string]bool
	recorded []record
}

func (f *fakeSessions) Authorize(ctx context.Context, token, sessionID string) error {
	if token != "secret" {
		return apperr.ErrUnauthorized
	}
	if !f.known[sessionID] {
		return apperr.ErrNotFound
	}
	return nil
}

func (f *fakeSessions) Get(ctx context.Context, sessionID string) (*metadata.Document, error) {
	if !f.known[sessionID] {
		return nil, apperr.ErrNotFound
	}
	return &metadata.Document{}, nil
}

func (f *fakeSessions) RecordAnalysis(ctx context.Context, sessionID string, q int, transcript, summary string) error {
	f.recorded = append(f.recorded, record{sessionID, q})
	return nil
}

func newService(t *testing.T, proc processor.Processor, sessions Sessions) Service {
	t.Helper()
	return New(proc, sessions, Options{TempDir: t.TempDir(), MaxQuestions: 5}, logger.Discard())
}

func newClip(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("webm"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAnalyzeClip(t *testing.T) {
	tests := []struct {
		name         string
		req          ClipRequest
		procErr      error
		wantErr      error
		wantPipeline bool
		wantRecorded bool
	}{
		{"unbound", ClipRequest{}, nil, nil, true, false},
		{"bound", ClipRequest{Token: "secret", SessionID: "s1", Question: 2}, nil, nil, true, true},
		{"bound bad token", ClipRequest{Token: "x", SessionID: "s1", Question: 1}, nil, apperr.ErrUnauthorized, false, false},
		{"bound unknown session", ClipRequest{Token: "secret", SessionID: "nope", Question: 1}, nil, apperr.ErrNotFound, false, false},
		{"bound without question", ClipRequest{Token: "secret", SessionID: "s1"}, nil, apperr.ErrValidation, false, false},
		{"bound question beyond max", ClipRequest{Token: "secret", SessionID: "s1", Question: 6}, nil, apperr.ErrValidation, false, false},
		{"pipeline failure", ClipRequest{Token: "secret", SessionID: "s1", Question: 1},
			&apperr.ExternalProcessError{Stage: "extract", Err: errors.New("boom")}, nil, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeProcessor{err: tt.procErr}
			sessions := &fakeSessions{known: map[string]bool{"s1": true}}
			svc := newService(t, proc, sessions)

			req := tt.req
			req.ClipPath = newClip(t, "clip.webm")
			res, err := svc.AnalyzeClip(context.Background(), req)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("AnalyzeClip() error = %v, want %v", err, tt.wantErr)
				}
			case tt.procErr != nil:
				if apperr.HTTPStatus(err) != 502 {
					t.Errorf("AnalyzeClip() error = %v, want external failure", err)
				}
			default:
				if err != nil {
					t.Fatalf("AnalyzeClip() error = %v", err)
				}
				if res.Transcript != "hello" || res.Summary != "greeting" {
					t.Errorf("AnalyzeClip() = %+v", res)
				}
			}

			if (len(proc.clips) > 0) != tt.wantPipeline {
				t.Errorf("pipeline ran = %v, want %v", len(proc.clips) > 0, tt.wantPipeline)
			}
			if (len(sessions.recorded) > 0) != tt.wantRecorded {
				t.Errorf("recorded = %v, want %v", sessions.recorded, tt.wantRecorded)
			}
			if _, err := os.Stat(req.ClipPath); !os.IsNotExist(err) {
				t.Errorf("clip was not removed")
			}
		})
	}
}

func TestParseInboxName(t *testing.T) {
	tests := []struct {
		name   string
		wantID string
		wantQ  int
		wantOK bool
	}{
		{"/inbox/09_03_2025_14_05_anna_lee--Q2.webm", "09_03_2025_14_05_anna_lee", 2, true},
		{"s1--Q10.mp4", "s1", 10, true},
		{"s1--Q99999999999999999999.webm", "s1", math.MaxInt, true},
		{"s1--Q0.webm", "", 0, false},
		{"Anna--Q1.webm", "", 0, false},
		{"random.webm", "", 0, false},
		{"s1-Q1.webm", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, q, ok := ParseInboxName(tt.name)
			if id != tt.wantID || q != tt.wantQ || ok != tt.wantOK {
				t.Errorf("ParseInboxName(%q) = %q, %d, %v", tt.name, id, q, ok)
			}
		})
	}
}

func TestHandleInboxFile(t *testing.T) {
	t.Run("bound", func(t *testing.T) {
		proc := &fakeProcessor{}
		sessions := &fakeSessions{known: map[string]bool{"s1": true}}
		svc := newService(t, proc, sessions)
		clip := newClip(t, "s1--Q3.webm")

		if err := svc.HandleInboxFile(context.Background(), clip); err != nil {
			t.Fatal(err)
		}
		if len(sessions.recorded) != 1 || sessions.recorded[0] != (record{"s1", 3}) {
			t.Errorf("recorded = %v", sessions.recorded)
		}
		if len(proc.clips) != 1 || proc.clips[0] == clip {
			t.Errorf("pipeline got %v, want a working copy of %s", proc.clips, clip)
		}
		if _, err := os.Stat(clip); !os.IsNotExist(err) {
			t.Error("inbox clip was not removed after success")
		}
	})

	t.Run("unbound", func(t *testing.T) {
		proc := &fakeProcessor{}
		sessions := &fakeSessions{}
		svc := newService(t, proc, sessions)

		if err := svc.HandleInboxFile(context.Background(), newClip(t, "talk.mp4")); err != nil {
			t.Fatal(err)
		}
		if len(proc.clips) != 1 || len(sessions.recorded) != 0 {
			t.Errorf("clips = %v, recorded = %v", proc.clips, sessions.recorded)
		}
	})

	rejected := []struct {
		name    string
		file    string
		wantErr error
	}{
		{"unknown session", "gone--Q1.webm", apperr.ErrNotFound},
		{"question beyond max", "s1--Q10.mp4", apperr.ErrValidation},
		{"oversized question", "s1--Q99999999999999999999.webm", apperr.ErrValidation},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeProcessor{}
			svc := newService(t, proc, &fakeSessions{known: map[string]bool{"s1": true}})
			clip := newClip(t, tt.file)

			if err := svc.HandleInboxFile(context.Background(), clip); !errors.Is(err, tt.wantErr) {
				t.Errorf("HandleInboxFile() error = %v, want %v", err, tt.wantErr)
			}
			if len(proc.clips) != 0 {
				t.Error("pipeline ran for a rejected clip")
			}
			if _, err := os.Stat(clip); !os.IsNotExist(err) {
				t.Error("rejected clip was not removed")
			}
		})
	}

	t.Run("cancelled run keeps inbox clip", func(t *testing.T) {
		proc := &fakeProcessor{block: true}
		sessions := &fakeSessions{known: map[string]bool{"s1": true}}
		svc := newService(t, proc, sessions)
		clip := newClip(t, "s1--Q1.webm")

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := svc.HandleInboxFile(ctx, clip)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("HandleInboxFile() error = %v, want deadline exceeded", err)
		}
		if _, err := os.Stat(clip); err != nil {
			t.Errorf("inbox clip should survive a cancelled run: %v", err)
		}
		if len(sessions.recorded) != 0 {
			t.Errorf("recorded = %v", sessions.recorded)
		}
	})

	t.Run("failed run keeps inbox clip", func(t *testing.T) {
		proc := &fakeProcessor{err: &apperr.ExternalProcessError{Stage: processor.StageExtract, Command: "ffmpeg", Err: errors.New("exit status 1")}}
		svc := newService(t, proc, &fakeSessions{known: map[string]bool{"s1": true}})
		clip := newClip(t, "s1--Q1.webm")

		if err := svc.HandleInboxFile(context.Background(), clip); apperr.Code(err) != "external_process" {
			t.Errorf("HandleInboxFile() error = %v", err)
		}
		if _, err := os.Stat(clip); err != nil {
			t.Errorf("inbox clip should survive a failed run: %v", err)
		}
	})
}
