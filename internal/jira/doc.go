// Package jira talks to remote Jira instances on behalf of the sync and
// view layers.
//
// [RemoteClient] is the narrow capability interface the core consumes;
// [Client] implements it with the go-jira cloud client. Failures come back
// as [*AuthError], [*NotFoundError] or [*NetworkError] so callers can decide
// what is retryable.
package jira
