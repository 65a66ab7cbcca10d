package sync

import "fmt"

// SyncError indicates a sync attempt failed without corrupting the cache.
// The last-synced timestamp is unchanged and the whole sync may be retried.
type SyncError struct {
	Connection string
	Project    string
	Err        error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s/%s: %v", e.Connection, e.Project, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }
