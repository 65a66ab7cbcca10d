// Package sync orchestrates incremental refresh of the local issue cache.
//
// [Manager.Sync] asks a connection's remote client for everything updated
// since the project's last successful sync and merges the diff into the
// store. Overlapping syncs on the same (connection, project) pair are
// serialized by a per-pair mutex; a failed fetch leaves the last-synced
// timestamp untouched so the whole sync can simply be retried.
package sync
