package jira

import "fmt"

// AuthError indicates the tracker rejected our credentials.
type AuthError struct {
	Connection string
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("connection %s: authentication failed (status %d): %v",
		e.Connection, e.StatusCode, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NotFoundError indicates the project or issue does not exist remotely.
type NotFoundError struct {
	Connection string
	What       string
	Err        error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("connection %s: %s not found: %v", e.Connection, e.What, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// NetworkError wraps transient transport failures, including timeouts.
// These are retryable.
type NetworkError struct {
	Connection string
	Operation  string
	Err        error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("connection %s: %s failed: %v", e.Connection, e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
