package model

import "fmt"

// ConfigError indicates a bad or missing connection, view, dashboard or
// team definition. It is fatal to the operation that needed the definition
// and nothing else.
type ConfigError struct {
	What string // the offending definition, e.g. `view "triage"`
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.What, e.Err)
	}
	return e.What
}

func (e *ConfigError) Unwrap() error { return e.Err }
