package processor

import (
	"os"
	"time"

	"github.com/nguyentantai21042004/interview-clips/internal/logger"
)

// Stages are the three external steps of a run
type Stages struct {
	Extractor   AudioExtractor
	Transcriber Transcriber
	Summarizer  Summarizer
}

// Options bound the resources of the pipeline
type Options struct {
	TempDir       string
	MaxConcurrent int
	StageTimeout  time.Duration
}

type implProcessor struct {
	stages Stages
	opts   Options
	sem    *semaphore
	logger logger.Logger
	remove func(path string) error
}

// New creates a new Processor instance
func New(stages Stages, opts Options, log logger.Logger) Processor {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	return &implProcessor{
		stages: stages,
		opts:   opts,
		sem:    newSemaphore(opts.MaxConcurrent),
		logger: log,
		remove: os.RemoveAll,
	}
}
