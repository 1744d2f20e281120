package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/graphmail/internal/core/domain"
)

// TokenProvider owns an application access token and its expiry.
// Refresh is synchronous; nothing refreshes in the background.
type TokenProvider interface {
	// Acquire exchanges the client credentials for a new token unconditionally.
	// Failures are fatal and must not be retried by callers.
	Acquire(ctx context.Context) (*domain.Token, error)

	// IsStale reports whether the held token expires within buffer.
	// True when no token has been acquired yet.
	IsStale(buffer time.Duration) bool

	// EnsureFresh acquires a new token when the held one is stale.
	EnsureFresh(ctx context.Context) error

	// AccessToken returns a token that is fresh at the time of the call.
	AccessToken(ctx context.Context) (*domain.Token, error)
}
