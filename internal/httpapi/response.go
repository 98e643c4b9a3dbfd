package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nguyentantai21042004/interview-clips/internal/apperr"
)

type errorResponse struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	Missing   int    `json:"missing,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.Logger.Error(r.Context(), "Failed to encode response: %v", err)
	}
}

// writeError maps err onto the status code and error body of the API
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	resp := errorResponse{Error: err.Error(), Code: apperr.Code(err)}

	var seq *apperr.SequentialViolationError
	var ext *apperr.ExternalProcessError
	switch {
	case errors.As(err, &seq):
		resp.Error = "sequential_violation"
		resp.Message = seq.Error() + ". Upload questions in order."
		resp.Missing = seq.Missing
	case errors.As(err, &ext):
		resp.Error = "analysis failed at " + ext.Stage
		resp.Message = ext.Error()
		resp.Retryable = ext.Retryable()
	case status == http.StatusInternalServerError:
		s.Logger.Error(r.Context(), "Request %s %s failed: %v", r.Method, r.URL.Path, err)
		resp.Error = "internal error"
	}

	if status != http.StatusInternalServerError {
		s.Logger.Warn(r.Context(), "Request %s %s rejected: %v", r.Method, r.URL.Path, err)
	}
	s.writeJSON(w, r, status, resp)
}
