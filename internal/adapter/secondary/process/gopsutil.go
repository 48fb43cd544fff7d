package process

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"admute/internal/domain"
)

// GopsutilLiveness implements domain.ProcessLiveness by scanning the process
// table. This is a secondary adapter.
type GopsutilLiveness struct{}

// NewGopsutilLiveness creates a new process liveness checker.
func NewGopsutilLiveness() domain.ProcessLiveness {
	return &GopsutilLiveness{}
}

// IsRunning reports whether any process name contains name, ignoring case.
func (g *GopsutilLiveness) IsRunning(ctx context.Context, name string) (bool, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false, fmt.Errorf("list processes: %w", err)
	}
	for _, p := range procs {
		procName, err := p.NameWithContext(ctx)
		if err != nil {
			continue // exited or access denied
		}
		if NameMatches(procName, name) {
			return true, nil
		}
	}
	return false, nil
}

// NameMatches compares a running process name against the configured one.
// A configured "Player.exe" also matches a bare "player" so the same
// setting works on platforms without executable suffixes.
func NameMatches(procName, want string) bool {
	procName = strings.ToLower(procName)
	want = strings.ToLower(strings.TrimSpace(want))
	if want == "" {
		return false
	}
	if strings.Contains(procName, want) {
		return true
	}
	if base, ok := strings.CutSuffix(want, ".exe"); ok && base != "" {
		return procName == base
	}
	return false
}
