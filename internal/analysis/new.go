package analysis

import (
	"os"

	"github.com/nguyentantai21042004/interview-clips/internal/logger"
	"github.com/nguyentantai21042004/interview-clips/internal/processor"
)

// Options tunes the service
type Options struct {
	// TempDir receives the working copy of each inbox clip
	TempDir string
	// MaxQuestions bounds the question index of session-bound clips. Zero means unbounded.
	MaxQuestions int
}

type implService struct {
	processor processor.Processor
	sessions  Sessions
	opts      Options
	logger    logger.Logger
	remove    func(string) error
}

// New creates a new Service instance
func New(proc processor.Processor, sessions Sessions, opts Options, log logger.Logger) Service {
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	return &implService{
		processor: proc,
		sessions:  sessions,
		opts:      opts,
		logger:    log,
		remove:    os.Remove,
	}
}
