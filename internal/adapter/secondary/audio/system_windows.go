//go:build windows

package audio

import "admute/internal/domain"

// NewSystemController returns the audio controller for this platform.
func NewSystemController(tool string) domain.AudioControl {
	return NewNircmdController(tool)
}
