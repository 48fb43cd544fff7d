package window

import (
	"context"
	"strings"

	"admute/internal/domain"
)

const listWindowsScript = `
set out to ""
tell application "System Events"
	repeat with p in (every process whose background only is false)
		try
			repeat with w in (every window of p)
				set out to out & (name of w) & linefeed
			end repeat
		end try
	end repeat
end tell
return out`

// OSAScriptEnumerator lists window names through System Events on macOS.
// macOS does not expose window handles here; Handle is the list position.
type OSAScriptEnumerator struct {
	run runFunc
}

// NewOSAScriptEnumerator creates an enumerator that shells out to osascript.
func NewOSAScriptEnumerator() *OSAScriptEnumerator {
	return &OSAScriptEnumerator{run: runCommand}
}

func (e *OSAScriptEnumerator) Windows(ctx context.Context) ([]domain.Window, error) {
	out, err := e.run(ctx, "osascript", "-e", listWindowsScript)
	if err != nil {
		return nil, err
	}
	var wins []domain.Window
	for _, line := range strings.Split(string(out), "\n") {
		title := strings.TrimSpace(line)
		if title == "" || title == "missing value" {
			continue
		}
		wins = append(wins, domain.Window{Handle: uintptr(len(wins) + 1), Title: title})
	}
	return wins, nil
}
