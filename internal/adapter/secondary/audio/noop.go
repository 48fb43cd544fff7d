package audio

import (
	"context"

	"admute/internal/domain"
	"admute/internal/logging"
)

// NoopController implements domain.AudioControl with no-op behavior.
// Useful for dry runs and platforms without per-process mute.
type NoopController struct{}

// NewNoopController creates a new no-op audio controller.
func NewNoopController() domain.AudioControl {
	return &NoopController{}
}

// SetMute logs the request and always succeeds.
func (n *NoopController) SetMute(ctx context.Context, process string, mute bool) error {
	logging.Debugf("dry run: set mute=%t for %s", mute, process)
	return nil
}

// unsupportedController reports that this platform cannot mute per process.
type unsupportedController struct{}

func (unsupportedController) SetMute(ctx context.Context, process string, mute bool) error {
	return domain.ErrUnsupported
}
