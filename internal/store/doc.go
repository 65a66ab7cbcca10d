// Package store implements the local issue cache.
//
// The [IssueStore] interface abstracts the cache; [Bolt] is the bbolt-backed
// implementation. Issues live under composite connection/project/key keys so
// a project's contents are one contiguous prefix scan, and each project
// carries a last-synced timestamp advanced only by successful merges.
//
// MergeDiff runs inside a single bbolt write transaction. A merge therefore
// either commits completely or leaves the cache exactly as it was; readers
// never observe a half-applied diff.
package store
