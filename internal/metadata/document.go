package metadata

import (
	"encoding/json"
	"sort"
	"time"
)

// UploadRecord is the accepted artifact for one question index
type UploadRecord struct {
	Q           int       `json:"q"`
	File        string    `json:"file"`
	UploadedAt  time.Time `json:"uploadedAt"`
	Size        int64     `json:"size,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
}

// AnalysisRecord is the transcript and summary produced for one question index
type AnalysisRecord struct {
	Q          int       `json:"q"`
	Transcript string    `json:"transcript"`
	Summary    string    `json:"summary"`
	AnalyzedAt time.Time `json:"analyzedAt"`
}

// Document is the content of a session's meta.json
type Document struct {
	UserName       string           `json:"userName,omitempty"`
	TimeZone       string           `json:"timeZone,omitempty"`
	Uploaded       []UploadRecord   `json:"uploaded"`
	Analysis       []AnalysisRecord `json:"analysis,omitempty"`
	StartedAt      *time.Time       `json:"startedAt"`
	FinishedAt     *time.Time       `json:"finishedAt"`
	QuestionsCount *int             `json:"questionsCount"`

	// fields written by other tools, carried through merges untouched
	extra map[string]json.RawMessage
}

type documentFields Document

var knownFields = []string{"userName", "timeZone", "uploaded", "analysis", "startedAt", "finishedAt", "questionsCount"}

func (d *Document) UnmarshalJSON(data []byte) error {
	var fields documentFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range knownFields {
		delete(raw, k)
	}
	*d = Document(fields)
	if len(raw) > 0 {
		d.extra = raw
	}
	return nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	fields := documentFields(d)
	if fields.Uploaded == nil {
		fields.Uploaded = []UploadRecord{}
	}
	data, err := json.Marshal(fields)
	if err != nil || len(d.extra) == 0 {
		return data, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range d.extra {
		if _, known := merged[k]; !known {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// Started reports whether a session has been started in this document
func (d *Document) Started() bool {
	return d.StartedAt != nil
}

// Finished reports whether the session has been finished
func (d *Document) Finished() bool {
	return d.FinishedAt != nil
}

// UpsertUpload replaces any record for rec.Q and keeps the list sorted by index
func (d *Document) UpsertUpload(rec UploadRecord) {
	list := make([]UploadRecord, 0, len(d.Uploaded)+1)
	for _, u := range d.Uploaded {
		if u.Q != rec.Q {
			list = append(list, u)
		}
	}
	list = append(list, rec)
	sort.Slice(list, func(i, j int) bool { return list[i].Q < list[j].Q })
	d.Uploaded = list
}

// UpsertAnalysis replaces any analysis for rec.Q and keeps the list sorted by index
func (d *Document) UpsertAnalysis(rec AnalysisRecord) {
	list := make([]AnalysisRecord, 0, len(d.Analysis)+1)
	for _, a := range d.Analysis {
		if a.Q != rec.Q {
			list = append(list, a)
		}
	}
	list = append(list, rec)
	sort.Slice(list, func(i, j int) bool { return list[i].Q < list[j].Q })
	d.Analysis = list
}

// Upload returns the record for question q
func (d *Document) Upload(q int) (UploadRecord, bool) {
	for _, u := range d.Uploaded {
		if u.Q == q {
			return u, true
		}
	}
	return UploadRecord{}, false
}

// AnalysisFor returns the analysis for question q
func (d *Document) AnalysisFor(q int) (AnalysisRecord, bool) {
	for _, a := range d.Analysis {
		if a.Q == q {
			return a, true
		}
	}
	return AnalysisRecord{}, false
}
