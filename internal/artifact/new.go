package artifact

import (
	"github.com/nguyentantai21042004/interview-clips/internal/logger"
)

// Options configures the accepted media and size ceiling
type Options struct {
	ContentType string
	Extension   string
	MaxBytes    int64
}

// DirFunc resolves the folder of a session
type DirFunc func(sessionID string) (string, error)

type implStore struct {
	dir    DirFunc
	opts   Options
	logger logger.Logger
}

// New creates a Store writing into the folders returned by dir
func New(dir DirFunc, opts Options, log logger.Logger) Store {
	return &implStore{
		dir:    dir,
		opts:   opts,
		logger: log,
	}
}
