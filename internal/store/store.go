package store

import (
	"time"

	"github.com/riptano/argus/internal/model"
)

// MergeResult reports what a diff merge changed.
type MergeResult struct {
	// UpdatedKeys are issue keys inserted or replaced by the merge.
	UpdatedKeys []string

	// RemovedKeys are issue keys the remote reported resolved or out of
	// scope. They are marked stale, not deleted.
	RemovedKeys []string
}

// IssueStore is the local cache of tracker issues, keyed per
// (connection, project). Implementations must apply MergeDiff atomically:
// either every change in the diff becomes visible or none does, and the
// last-synced timestamp moves only on success.
type IssueStore interface {
	Ping() error
	Close() error

	// MergeDiff applies an incremental sync result for one project.
	// Updated issues replace cached copies last-write-wins by their
	// remote Updated timestamp; removed keys are soft-retained as stale.
	// The project's last-synced timestamp advances to syncedAt in the
	// same transaction, and never moves backwards.
	MergeDiff(connection, project string, updated []model.Issue, removed []string, syncedAt time.Time) (*MergeResult, error)

	// Issues returns every cached issue for the project, sorted by key.
	Issues(connection, project string) ([]model.Issue, error)

	// Issue fetches one cached issue, or nil when absent.
	Issue(connection, project, key string) (*model.Issue, error)

	// LastSynced returns the zero time when the project was never synced.
	LastSynced(connection, project string) (time.Time, error)

	// Projects lists project keys with cached data for a connection.
	Projects(connection string) ([]string, error)

	// DeleteProject drops a project's cache and sync marker entirely.
	DeleteProject(connection, project string) error
}
