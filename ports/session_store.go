package ports

import (
	"context"

	"dataportal/domain/core"
	"dataportal/domain/dataset"
)

// SessionStore keeps the uploaded dataset of each browser session
type SessionStore interface {
	// Create registers a new session with no dataset
	Create(ctx context.Context) (core.SessionID, error)

	// Get returns the session's dataset. Unknown or expired sessions give
	// core.ErrSessionNotFound, sessions without an upload core.ErrNoTable.
	Get(ctx context.Context, id core.SessionID) (*dataset.Dataset, error)

	// Put stores the dataset, creating the session if needed
	Put(ctx context.Context, id core.SessionID, ds *dataset.Dataset) error

	// Delete drops the session and its dataset
	Delete(ctx context.Context, id core.SessionID) error

	// Len returns the number of live sessions
	Len() int
}
