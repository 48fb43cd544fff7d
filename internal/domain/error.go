package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig marks a pattern source that could not be read.
	ErrConfig = errors.New("config error")

	// ErrQuery marks a failed process or window enumeration.
	ErrQuery = errors.New("query error")

	// ErrControl marks a failed mute or unmute.
	ErrControl = errors.New("control error")

	// ErrInvalidInterval indicates that a loop interval is not positive.
	ErrInvalidInterval = errors.New("intervals must be positive")

	// ErrNoTargetProcess indicates that no process name was configured.
	ErrNoTargetProcess = errors.New("target process name is required")

	// ErrNoSources indicates that no pattern files were configured.
	ErrNoSources = errors.New("at least one pattern file is required")

	// ErrUnsupported is returned by adapters on platforms they cannot serve.
	ErrUnsupported = errors.New("not supported on this platform")
)

// ConfigError reports a pattern source that was skipped.
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("pattern source %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() []error {
	return []error{ErrConfig, e.Err}
}

// QueryError reports a failed liveness or window lookup.
type QueryError struct {
	Op     string
	Target string
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Target, e.Err)
}

func (e *QueryError) Unwrap() []error {
	return []error{ErrQuery, e.Err}
}

// ControlError reports a failed mute change. The state is re-asserted next tick.
type ControlError struct {
	Process string
	Mute    bool
	Err     error
}

func (e *ControlError) Error() string {
	return fmt.Sprintf("set mute=%t for %s: %v", e.Mute, e.Process, e.Err)
}

func (e *ControlError) Unwrap() []error {
	return []error{ErrControl, e.Err}
}
