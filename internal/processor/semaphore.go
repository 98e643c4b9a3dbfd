package processor

import (
	"context"
	"sync"
)

// semaphore bounds concurrent pipeline runs
type semaphore struct {
	slots chan struct{}
}

func newSemaphore(capacity int) *semaphore {
	return &semaphore{slots: make(chan struct{}, capacity)}
}

// acquire blocks until a slot is free or ctx is done. The returned func frees the
// slot and is safe to call more than once.
func (s *semaphore) acquire(ctx context.Context) (func(), error) {
	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	var once sync.Once
	return func() { once.Do(func() { <-s.slots }) }, nil
}

// inUse reports the number of held slots
func (s *semaphore) inUse() int {
	return len(s.slots)
}

func (s *semaphore) capacity() int {
	return cap(s.slots)
}
