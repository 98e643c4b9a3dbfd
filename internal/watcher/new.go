package watcher

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/interview-clips/internal/logger"
)

// defaultSettle is how long a new file is left alone before it is handled
const defaultSettle = 500 * time.Millisecond

// New creates a Watcher on inboxDir. Handlers run concurrently; the handler bounds its own work.
func New(inboxDir string, handler EventHandler, log logger.Logger) (Watcher, error) {
	if err := os.MkdirAll(inboxDir, 0755); err != nil {
		return nil, fmt.Errorf("create inbox dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(inboxDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	return &implWatcher{
		inboxDir: inboxDir,
		handler:  handler,
		logger:   log,
		watcher:  watcher,
		settle:   defaultSettle,
		pending:  make(map[string]bool),
	}, nil
}
