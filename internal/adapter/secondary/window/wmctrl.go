package window

import (
	"context"
	"strconv"
	"strings"

	"admute/internal/domain"
)

// WmctrlEnumerator lists X11 windows through `wmctrl -l`.
type WmctrlEnumerator struct {
	run runFunc
}

// NewWmctrlEnumerator creates an enumerator that shells out to wmctrl.
func NewWmctrlEnumerator() *WmctrlEnumerator {
	return &WmctrlEnumerator{run: runCommand}
}

func (e *WmctrlEnumerator) Windows(ctx context.Context) ([]domain.Window, error) {
	out, err := e.run(ctx, "wmctrl", "-l")
	if err != nil {
		return nil, err
	}
	return parseWmctrl(string(out)), nil
}

// parseWmctrl parses lines of the form
//
//	0x03a00003  0 hostname Window Title
//
// Windows without a title ("N/A" or nothing) are returned with an empty title.
func parseWmctrl(out string) []domain.Window {
	var wins []domain.Window
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		handle, err := strconv.ParseUint(fields[0], 0, 64)
		if err != nil {
			continue
		}
		title := ""
		if len(fields) > 3 {
			// Title is everything after the third field, spacing preserved.
			rest := line
			for i := 0; i < 3; i++ {
				rest = strings.TrimLeft(rest, " \t")
				rest = rest[len(fields[i]):]
			}
			title = strings.TrimLeft(rest, " \t")
		}
		if title == "N/A" {
			title = ""
		}
		wins = append(wins, domain.Window{Handle: uintptr(handle), Title: title})
	}
	return wins
}
