package window

import (
	"context"
	"fmt"
	"os/exec"
)

// runFunc runs an external command and returns its standard output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("%s failed: %w, output: %s", name, err, string(ee.Stderr))
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return out, nil
}
