package httpapi

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/interview-clips/internal/analysis"
	"github.com/nguyentantai21042004/interview-clips/internal/apperr"
	"github.com/nguyentantai21042004/interview-clips/internal/session"
	"github.com/nguyentantai21042004/interview-clips/pkg/fileutil"
)

var clipExt = regexp.MustCompile(`^\.[a-z0-9]{1,7}$`)

type healthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Time    string `json:"time"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type startResponse struct {
	OK        bool   `json:"ok"`
	SessionID string `json:"sessionId"`
	Folder    string `json:"folder"`
}

type uploadResponse struct {
	OK      bool   `json:"ok"`
	SavedAs string `json:"savedAs"`
	Q       int    `json:"q"`
	Size    int64  `json:"size"`
}

type analyzeResponse struct {
	OK         bool   `json:"ok"`
	Transcript string `json:"transcript"`
	Summary    string `json:"summary"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, healthResponse{
		OK:      true,
		Service: serviceName,
		Time:    s.opts.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

func (s *Server) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.Auth.Authenticate(f.first("token")) {
		s.writeError(w, r, apperr.ErrUnauthorized)
		return
	}
	s.writeJSON(w, r, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	h, err := s.Sessions.Start(r.Context(), f.first("token"), f.first("userName", "displayName"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, startResponse{OK: true, SessionID: h.ID, Folder: h.ID})
}

func (s *Server) handleUploadOne(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, s.opts.MaxUploadBytes); err != nil {
		s.writeError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := session.UploadRequest{
		Token:         formValue(r, "token"),
		SessionID:     formValue(r, "sessionId", "folder"),
		FileName:      formValue(r, "filename"),
		QuestionIndex: formValue(r, "questionIndex"),
	}

	// a missing file is reported by the manager after the token and session checks
	file, header, err := r.FormFile("video")
	switch {
	case err == nil:
		defer file.Close()
		req.Body = file
		req.ContentType = header.Header.Get("Content-Type")
		if header.Filename != "" {
			req.FileName = header.Filename
		}
	case !errors.Is(err, http.ErrMissingFile):
		s.writeError(w, r, missingFile(err))
		return
	}

	res, err := s.Sessions.Upload(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, uploadResponse{OK: true, SavedAs: res.SavedAs, Q: res.Q, Size: res.Size})
}

func (s *Server) handleSessionFinish(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	count, err := f.optionalInt("questionsCount")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sessionID := f.first("sessionId", "folder")
	if err := s.Sessions.Finish(r.Context(), f.first("token"), sessionID, count); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, okResponse{OK: true})
}

// handleAIAnalyze stages the clip under the temp dir and hands it to the analysis service,
// which owns and removes it
func (s *Server) handleAIAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, s.opts.MaxUploadBytes); err != nil {
		s.writeError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("video")
	if err != nil {
		s.writeError(w, r, missingFile(err))
		return
	}
	defer file.Close()

	req := analysis.ClipRequest{
		Token:     formValue(r, "token"),
		SessionID: formValue(r, "sessionId", "folder"),
	}
	if req.Bound() {
		req.Question = s.Index.ResolveIndex(header.Filename, formValue(r, "questionIndex"))
	}

	if err := os.MkdirAll(s.opts.TempDir, 0755); err != nil {
		s.writeError(w, r, err)
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !clipExt.MatchString(ext) {
		ext = ".webm"
	}
	req.ClipPath = filepath.Join(s.opts.TempDir, "upload-"+uuid.NewString()+ext)
	if _, err := fileutil.WriteFileAtomic(req.ClipPath, file, 0644); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.Analysis.AnalyzeClip(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, analyzeResponse{OK: true, Transcript: res.Transcript, Summary: res.Summary})
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}

	if err := s.Sessions.Authorize(r.Context(), token, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.Sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, doc)
}
