package audio

import (
	"context"
	"fmt"
	"os/exec"
)

// runFunc runs an external command and returns its combined output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s failed: %w, output: %s", name, err, string(output))
	}
	return output, nil
}

func muteFlag(mute bool) string {
	if mute {
		return "1"
	}
	return "0"
}
