package audio

import (
	"context"
	"errors"

	"admute/internal/domain"
)

// NircmdController implements domain.AudioControl with NirSoft's nircmd,
// which mutes every audio session owned by an executable name.
// This is a secondary adapter.
type NircmdController struct {
	path string
	run  runFunc
}

// NewNircmdController creates a controller that runs the nircmd binary at path.
// An empty path looks nircmd.exe up on PATH.
func NewNircmdController(path string) domain.AudioControl {
	if path == "" {
		path = "nircmd.exe"
	}
	return &NircmdController{path: path, run: runCommand}
}

// SetMute runs `nircmd muteappvolume <process> 1|0`.
func (n *NircmdController) SetMute(ctx context.Context, process string, mute bool) error {
	if process == "" {
		return errors.New("process name is required")
	}
	_, err := n.run(ctx, n.path, "muteappvolume", process, muteFlag(mute))
	return err
}
