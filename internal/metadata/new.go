package metadata

import (
	"github.com/nguyentantai21042004/interview-clips/internal/logger"
	"github.com/nguyentantai21042004/interview-clips/pkg/keylock"
)

const (
	fileName     = "meta.json"
	lockFileName = ".meta.lock"
	corruptName  = "meta.json.corrupt"
)

type implStore struct {
	root   string
	logger logger.Logger
	locks  *keylock.Locker
}

// New creates a Store keeping one directory per session under root
func New(root string, log logger.Logger) Store {
	return &implStore{
		root:   root,
		logger: log,
		locks:  keylock.New(),
	}
}
