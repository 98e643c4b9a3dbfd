package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/interview-clips/internal/apperr"
	"github.com/nguyentantai21042004/interview-clips/internal/logger"
)

func newTestStore(t *testing.T) (Store, string) {
	t.Helper()
	root := t.TempDir()
	return New(root, logger.Discard()), root
}

func mustCreate(t *testing.T, s Store, id string) {
	t.Helper()
	if err := s.Create(context.Background(), id); err != nil {
		t.Fatalf("Create(%s) error = %v", id, err)
	}
}

func TestMergeMissingDocumentStartsEmpty(t *testing.T) {
	s, root := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "s1")

	doc, err := s.Merge(ctx, "s1", func(d *Document) error {
		if d.Started() || len(d.Uploaded) != 0 {
			t.Errorf("fresh document not empty: %+v", d)
		}
		d.UserName = "Anna Lee"
		return nil
	})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if doc.UserName != "Anna Lee" {
		t.Errorf("UserName = %q", doc.UserName)
	}

	data, err := os.ReadFile(filepath.Join(root, "s1", "meta.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"uploaded": []`) {
		t.Errorf("uploaded should be written as an empty list:\n%s", data)
	}
}

func TestMergeSequentialUpdatesUnion(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "s1")

	now := time.Now().UTC()
	if _, err := s.Merge(ctx, "s1", func(d *Document) error {
		d.UpsertUpload(UploadRecord{Q: 1, File: "Q1.webm", UploadedAt: now})
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Merge(ctx, "s1", func(d *Document) error {
		count := 2
		d.QuestionsCount = &count
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	doc, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Uploaded) != 1 || doc.QuestionsCount == nil || *doc.QuestionsCount != 2 {
		t.Errorf("document = %+v, want both updates applied", doc)
	}
}

func TestMergeConcurrentUpdatesAreNotLost(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "s1")

	const writers = 40
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 1; i <= writers; i++ {
		wg.Add(1)
		go func(q int) {
			defer wg.Done()
			_, err := s.Merge(ctx, "s1", func(d *Document) error {
				d.UpsertAnalysis(AnalysisRecord{Q: q, Transcript: fmt.Sprintf("t%d", q)})
				return nil
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Merge() error = %v", err)
		}
	}

	doc, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Analysis) != writers {
		t.Fatalf("len(Analysis) = %d, want %d", len(doc.Analysis), writers)
	}
	for i, a := range doc.Analysis {
		if a.Q != i+1 {
			t.Errorf("Analysis[%d].Q = %d, want sorted order", i, a.Q)
		}
	}
}

func TestMergeAbortDoesNotWrite(t *testing.T) {
	s, root := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "s1")

	errStop := errors.New("stop")
	_, err := s.Merge(ctx, "s1", func(d *Document) error {
		d.UserName = "ghost"
		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Fatalf("Merge() error = %v, want errStop", err)
	}
	if _, err := os.Stat(filepath.Join(root, "s1", "meta.json")); !os.IsNotExist(err) {
		t.Error("aborted merge must not write meta.json")
	}
}

func TestMergeRecoversCorruptDocument(t *testing.T) {
	s, root := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "s1")

	metaPath := filepath.Join(root, "s1", "meta.json")
	if err := os.WriteFile(metaPath, []byte(`{"userName": "Anna", "uploaded": [`), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := s.Get(ctx, "s1")
	if err != nil || doc.UserName != "" {
		t.Fatalf("Get() = %+v, %v; want empty document and no error", doc, err)
	}

	if _, err := s.Merge(ctx, "s1", func(d *Document) error {
		d.UserName = "Recovered"
		return nil
	}); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	doc, _ = s.Get(ctx, "s1")
	if doc.UserName != "Recovered" {
		t.Errorf("UserName = %q, want Recovered", doc.UserName)
	}
	if _, err := os.Stat(filepath.Join(root, "s1", "meta.json.corrupt")); err != nil {
		t.Errorf("corrupt document should be kept aside: %v", err)
	}
}

func TestMergePreservesUnknownFields(t *testing.T) {
	s, root := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "s1")

	metaPath := filepath.Join(root, "s1", "meta.json")
	if err := os.WriteFile(metaPath, []byte(`{"userName":"Anna","reviewer":"hr-team","uploaded":[]}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Merge(ctx, "s1", func(d *Document) error {
		d.TimeZone = "UTC"
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	data, _ := os.ReadFile(metaPath)
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["reviewer"] != "hr-team" || raw["timeZone"] != "UTC" || raw["userName"] != "Anna" {
		t.Errorf("document after merge = %v", raw)
	}
}

func TestUnknownSession(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if _, err := s.Merge(ctx, "missing", func(*Document) error { return nil }); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Merge() error = %v, want ErrNotFound", err)
	}
}

func TestInvalidSessionID(t *testing.T) {
	s, _ := newTestStore(t)

	for _, id := range []string{"", "../etc", "a/b", "Upper", "_leading", "with space"} {
		if err := s.Create(context.Background(), id); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Create(%q) error = %v, want ErrValidation", id, err)
		}
	}
}

func TestList(t *testing.T) {
	s, root := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "b_session")
	mustCreate(t, s, "a_session")
	if err := os.WriteFile(filepath.Join(root, "stray.txt"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	ids, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "a_session" || ids[1] != "b_session" {
		t.Errorf("List() = %v", ids)
	}
}
