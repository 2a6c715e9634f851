package relay

import (
	"context"
	"time"

	"github.com/minus-twelve/relay/types"
)

// Store holds the canonical copy of every session. Implementations must be
// safe for concurrent use; expiry is judged by the SessionManager, so Get
// may return a session that is already past its expiry.
type Store interface {
	// Create inserts a new session and fails with storage.ErrExists if the
	// id is already taken.
	Create(ctx context.Context, session *types.Session) error
	// Save updates a stored session. It never re-inserts one that was
	// deleted or swept and reports storage.ErrNotFound instead.
	Save(ctx context.Context, session *types.Session) error
	Get(ctx context.Context, id string) (*types.Session, error)
	Delete(ctx context.Context, id string) error
	// Cleanup removes every session expired at now and reports how many
	// were removed.
	Cleanup(ctx context.Context, now time.Time) (int, error)
	Len(ctx context.Context) (int, error)
}
