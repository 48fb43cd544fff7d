//go:build linux

package audio

import "admute/internal/domain"

// NewSystemController returns the audio controller for this platform.
func NewSystemController(string) domain.AudioControl {
	return NewPactlController()
}
