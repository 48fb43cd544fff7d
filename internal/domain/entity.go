package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultTargetProcess is the media player executable watched when none is given.
	DefaultTargetProcess = "Spotify.exe"
	// DefaultConfigFile is the pattern file read when no paths are given.
	DefaultConfigFile = "ads.cfg"
)

// Settings represents the runtime configuration of the monitor.
// This is a pure domain model with no dependencies on external concerns.
type Settings struct {
	TargetProcess  string
	Sources        []string
	TickInterval   time.Duration
	PatternDelay   time.Duration
	ReloadInterval time.Duration
}

// DefaultSettings returns the default configuration values.
func DefaultSettings() Settings {
	return Settings{
		TargetProcess:  DefaultTargetProcess,
		Sources:        []string{DefaultConfigFile},
		TickInterval:   time.Second,
		PatternDelay:   10 * time.Millisecond,
		ReloadInterval: 5 * time.Minute,
	}
}

// Validate checks if the settings are usable by the monitor.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.TargetProcess) == "" {
		return ErrNoTargetProcess
	}
	if len(s.Sources) == 0 {
		return ErrNoSources
	}
	if s.TickInterval <= 0 || s.ReloadInterval <= 0 {
		return ErrInvalidInterval
	}
	if s.PatternDelay < 0 {
		return fmt.Errorf("%w: pattern delay %s", ErrInvalidInterval, s.PatternDelay)
	}
	return nil
}

// State is the position of the detection loop after a tick.
type State int

const (
	// StateIdle means the target process is not running.
	StateIdle State = iota
	// StateScanning means patterns are being tested against window titles.
	StateScanning
	// StateAdPlaying means a pattern matched and mute was applied.
	StateAdPlaying
	// StateClear means no pattern matched and unmute was applied.
	StateClear
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateAdPlaying:
		return "ad-playing"
	case StateClear:
		return "clear"
	default:
		return "unknown"
	}
}

// MuteAction is the audio change requested at the end of a tick.
type MuteAction int

const (
	MuteUnchanged MuteAction = iota
	MuteOn
	MuteOff
)

func (a MuteAction) String() string {
	switch a {
	case MuteOn:
		return "mute"
	case MuteOff:
		return "unmute"
	default:
		return "unchanged"
	}
}

// Window is a top-level window whose title matched a pattern.
type Window struct {
	Handle uintptr
	Title  string
}

// TickResult describes the outcome of a single loop iteration.
type TickResult struct {
	State   State
	Action  MuteAction
	Pattern string
	Window  Window
	Checked int
	Err     error
	At      time.Time
}

// Status represents a complete view of the monitor for CLI and API clients.
type Status struct {
	TargetProcess string
	State         State
	Patterns      int
	Ticks         uint64
	LastTick      time.Time
	LastPattern   string
	LastTitle     string
	LastError     error
	LastReload    time.Time
	Reloads       uint64
}
