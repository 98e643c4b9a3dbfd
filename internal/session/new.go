package session

import (
	"time"

	"github.com/nguyentantai21042004/interview-clips/internal/artifact"
	"github.com/nguyentantai21042004/interview-clips/internal/config"
	"github.com/nguyentantai21042004/interview-clips/internal/guard"
	"github.com/nguyentantai21042004/interview-clips/internal/logger"
	"github.com/nguyentantai21042004/interview-clips/internal/metadata"
	"github.com/nguyentantai21042004/interview-clips/pkg/keylock"
)

// Deps are the collaborators of a Manager. Reporter is optional.
type Deps struct {
	Auth      Authenticator
	Store     metadata.Store
	Artifacts artifact.Store
	Guard     *guard.Guard
	Reporter  Reporter
	Logger    logger.Logger
}

// Options tune folder naming and collision handling
type Options struct {
	TimeZone    string
	Location    *time.Location
	OnCollision string
	Now         func() time.Time
}

type implManager struct {
	Deps
	opts  Options
	locks *keylock.Locker
}

// New creates a new Manager instance
func New(deps Deps, opts Options) Manager {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.TimeZone == "" {
		opts.TimeZone = opts.Location.String()
	}
	if opts.OnCollision == "" {
		opts.OnCollision = config.CollisionSuffix
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &implManager{
		Deps:  deps,
		opts:  opts,
		locks: keylock.New(),
	}
}
