package processor

import "context"

// Processor turns an interview clip into a transcript and a summary
type Processor interface {
	// Analyze takes ownership of clipPath: the clip is removed when the run ends.
	Analyze(ctx context.Context, clipPath string) (Result, error)
}

// AudioExtractor converts a clip into a 16kHz mono WAV inside workDir
type AudioExtractor interface {
	Extract(ctx context.Context, clipPath, workDir string) (string, error)
}

// Transcriber converts a WAV file into plain text
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (string, error)
}

// Summarizer condenses a transcript
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Result is the output of one pipeline run
type Result struct {
	Transcript string `json:"transcript"`
	Summary    string `json:"summary"`
}
