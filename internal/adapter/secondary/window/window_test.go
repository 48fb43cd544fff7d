package window

import (
	"context"
	"errors"
	"testing"

	"admute/internal/domain"
)

type staticEnumerator struct {
	wins []domain.Window
	err  error
}

func (s staticEnumerator) Windows(ctx context.Context) ([]domain.Window, error) {
	return s.wins, s.err
}

func TestFinder_FindMatchingTitle(t *testing.T) {
	enum := staticEnumerator{wins: []domain.Window{
		{Handle: 1, Title: ""},
		{Handle: 2, Title: "Song Name - Artist"},
		{Handle: 3, Title: "Advertisement - Spotify"},
		{Handle: 4, Title: "Advertisement"},
	}}
	f := NewFinder(enum)

	tests := []struct {
		pattern    string
		wantOK     bool
		wantHandle uintptr
	}{
		{"Advertisement", true, 3},
		{"advertisement$", true, 4},
		{"Song", true, 2},
		{"Artist", false, 0},
		{"", true, 2},
	}
	for _, tt := range tests {
		w, ok, err := f.FindMatchingTitle(context.Background(), domain.NewPattern(tt.pattern))
		if err != nil {
			t.Fatalf("FindMatchingTitle(%q): %v", tt.pattern, err)
		}
		if ok != tt.wantOK || w.Handle != tt.wantHandle {
			t.Errorf("FindMatchingTitle(%q) = %d,%v want %d,%v", tt.pattern, w.Handle, ok, tt.wantHandle, tt.wantOK)
		}
	}
}

func TestFinder_EnumerationError(t *testing.T) {
	boom := errors.New("boom")
	f := NewFinder(staticEnumerator{err: boom})
	_, ok, err := f.FindMatchingTitle(context.Background(), domain.NewPattern("x"))
	if ok || !errors.Is(err, boom) {
		t.Errorf("got ok=%v err=%v", ok, err)
	}
}

func TestParseWmctrl(t *testing.T) {
	out := "0x03a00003  0 myhost Advertisement - Spotify\n" +
		"0x01e00007 -1 myhost N/A\n" +
		"0x04400001  1 myhost   Song  Name - Artist\n" +
		"0x02000002  0 myhost\n" +
		"garbage\n" +
		"\n"

	wins := parseWmctrl(out)
	if len(wins) != 4 {
		t.Fatalf("parsed %d windows, want 4: %+v", len(wins), wins)
	}
	if wins[0].Handle != 0x03a00003 || wins[0].Title != "Advertisement - Spotify" {
		t.Errorf("wins[0] = %+v", wins[0])
	}
	if wins[1].Title != "" {
		t.Errorf("N/A title = %q, want empty", wins[1].Title)
	}
	if wins[2].Title != "Song  Name - Artist" {
		t.Errorf("wins[2] title = %q", wins[2].Title)
	}
	if wins[3].Title != "" {
		t.Errorf("wins[3] title = %q", wins[3].Title)
	}
}

func TestWmctrlEnumerator_UsesRunner(t *testing.T) {
	e := &WmctrlEnumerator{run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if name != "wmctrl" || len(args) != 1 || args[0] != "-l" {
			t.Errorf("ran %s %v", name, args)
		}
		return []byte("0x1 0 host Advertisement\n"), nil
	}}
	wins, err := e.Windows(context.Background())
	if err != nil || len(wins) != 1 || wins[0].Title != "Advertisement" {
		t.Errorf("Windows = %+v, %v", wins, err)
	}
}

func TestOSAScriptEnumerator_ParsesLines(t *testing.T) {
	e := &OSAScriptEnumerator{run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("Advertisement\nmissing value\n\n  Spotify Free  \n"), nil
	}}
	wins, err := e.Windows(context.Background())
	if err != nil {
		t.Fatalf("Windows: %v", err)
	}
	if len(wins) != 2 || wins[0].Title != "Advertisement" || wins[1].Title != "Spotify Free" {
		t.Errorf("Windows = %+v", wins)
	}
	if wins[1].Handle != 2 {
		t.Errorf("handle = %d, want 2", wins[1].Handle)
	}
}
