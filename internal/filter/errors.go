package filter

import "fmt"

// Error indicates a malformed predicate or query. It surfaces at parse or
// view-resolve time; evaluation itself never fails.
type Error struct {
	View   string // set by the view layer when known
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Reason
	if e.View != "" {
		msg = fmt.Sprintf("view %s: %s", e.View, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}
