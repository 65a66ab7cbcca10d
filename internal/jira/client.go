package jira

import (
	"context"
	"time"

	"github.com/riptano/argus/internal/model"
)

// Diff is the result of an incremental updated-since fetch.
type Diff struct {
	// Updated holds everything changed since the cutoff that still matches
	// the base query.
	Updated []model.Issue

	// Removed lists issue keys that changed since the cutoff but dropped
	// out of the base query's scope. The cache soft-retains these.
	Removed []string
}

// RemoteClient is the capability the sync and view layers need from a
// tracker. Implementations must bound every call by the context deadline and
// return the typed errors from this package so callers can tell auth,
// network and not-found failures apart.
type RemoteClient interface {
	// FetchUpdatedSince returns issues in the project updated after the
	// cutoff. A zero cutoff fetches everything matching baseQuery. When
	// baseQuery is non-empty it also reports keys that fell out of its
	// scope since the cutoff.
	FetchUpdatedSince(ctx context.Context, project string, since time.Time, baseQuery string) (*Diff, error)

	// FetchByQuery runs a raw tracker query and converts the results.
	FetchByQuery(ctx context.Context, query string) ([]model.Issue, error)

	// Validate makes a cheap authenticated call to prove the connection
	// works.
	Validate(ctx context.Context) error
}
