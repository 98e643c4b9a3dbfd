package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/interview-clips/internal/apperr"
)

// maxFormBytes bounds JSON and urlencoded bodies
const maxFormBytes = 1 << 20

// fields is a flat view of a JSON object or form body
type fields map[string]string

// first returns the first non-empty value among keys
func (f fields) first(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(f[k]); v != "" {
			return v
		}
	}
	return ""
}

// optionalInt parses key when present
func (f fields) optionalInt(key string) (*int, error) {
	raw := strings.TrimSpace(f[key])
	if raw == "" || raw == "null" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.Validation("%s must be an integer", key)
	}
	return &n, nil
}

// readFields accepts application/json and form encodings
func readFields(w http.ResponseWriter, r *http.Request) (fields, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		if err := r.ParseForm(); err != nil {
			return nil, apperr.Validation("invalid form body")
		}
		out := make(fields, len(r.PostForm))
		for k := range r.PostForm {
			out[k] = r.PostForm.Get(k)
		}
		return out, nil
	}

	var raw map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Validation("request body too large")
		}
		return nil, apperr.Validation("invalid JSON body")
	}

	out := make(fields, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			out[k] = val
		case json.Number:
			out[k] = val.String()
		case bool:
			out[k] = strconv.FormatBool(val)
		default:
			var buf bytes.Buffer
			_ = json.NewEncoder(&buf).Encode(val)
			out[k] = strings.TrimSpace(buf.String())
		}
	}
	return out, nil
}

// parseMultipart reads a multipart body whose file part may hold up to limit bytes
func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit+maxFormBytes)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("clip exceeds %d MB", limit>>20)
		}
		return apperr.Validation("invalid multipart body: %v", err)
	}
	return nil
}

func formValue(r *http.Request, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r.FormValue(k)); v != "" {
			return v
		}
	}
	return ""
}

func missingFile(err error) error {
	if errors.Is(err, http.ErrMissingFile) {
		return apperr.Validation("no file")
	}
	return fmt.Errorf("read uploaded file: %w", err)
}
