package metadata

import "context"

// MergeFunc transforms a session document in place. Returning an error aborts the write.
type MergeFunc func(doc *Document) error

// Store persists session documents. Mutations of one session are serialised.
type Store interface {
	Create(ctx context.Context, sessionID string) error
	Exists(ctx context.Context, sessionID string) bool
	Get(ctx context.Context, sessionID string) (*Document, error)
	Merge(ctx context.Context, sessionID string, fn MergeFunc) (*Document, error)
	List(ctx context.Context) ([]string, error)
	Dir(sessionID string) (string, error)
}
