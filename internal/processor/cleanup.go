package processor

import (
	"context"
	"errors"
	"os"
)

// cleanupList removes the artifacts of one run in reverse creation order.
// Each path is handed to remove at most once.
type cleanupList struct {
	paths  []string
	remove func(string) error
}

func (c *cleanupList) add(path string) {
	c.paths = append(c.paths, path)
}

func (p *implProcessor) runCleanup(ctx context.Context, c *cleanupList) {
	for i := len(c.paths) - 1; i >= 0; i-- {
		path := c.paths[i]
		if err := c.remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.logger.Warn(ctx, "Failed to cleanup %s: %v", path, err)
		} else {
			p.logger.Debug(ctx, "Cleaned up: %s", path)
		}
	}
	c.paths = nil
}
