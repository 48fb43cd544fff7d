package domain

import "context"

// PatternSource is a secondary port that reads pattern lines from a file.
// Implementations return trimmed, non-empty lines in file order.
type PatternSource interface {
	ReadLines(path string) ([]string, error)
}

// ProcessLiveness is a secondary port that reports whether a process is running.
// Names are compared case-insensitively.
type ProcessLiveness interface {
	IsRunning(ctx context.Context, name string) (bool, error)
}

// WindowQuery is a secondary port that looks for an open top-level window
// whose title matches a pattern.
type WindowQuery interface {
	FindMatchingTitle(ctx context.Context, pattern Pattern) (Window, bool, error)
}

// AudioControl is a secondary port that mutes every audio session owned by
// a process name. Repeated identical calls must be harmless.
type AudioControl interface {
	SetMute(ctx context.Context, process string, mute bool) error
}
