package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"admute/internal/adapter/secondary/window"
	"admute/internal/domain"
	"admute/internal/logging"
)

type fakeLiveness struct{ running bool }

func (f fakeLiveness) IsRunning(ctx context.Context, name string) (bool, error) {
	return f.running, nil
}

type fakeEnumerator struct{ wins []domain.Window }

func (f fakeEnumerator) Windows(ctx context.Context) ([]domain.Window, error) {
	return f.wins, nil
}

type recordedMute struct {
	process string
	mute    bool
}

type fakeAudio struct {
	mu    sync.Mutex
	calls []recordedMute
	err   error
}

func (f *fakeAudio) SetMute(ctx context.Context, process string, mute bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedMute{process, mute})
	return f.err
}

// useFakes swaps the secondary adapter constructors for the test's lifetime.
func useFakes(t *testing.T, running bool, titles ...string) *fakeAudio {
	t.Helper()
	var wins []domain.Window
	for i, title := range titles {
		wins = append(wins, domain.Window{Handle: uintptr(i + 1), Title: title})
	}
	fa := &fakeAudio{}
	origL, origE, origA := newLiveness, newEnumerator, newAudio
	newLiveness = func() domain.ProcessLiveness { return fakeLiveness{running: running} }
	newEnumerator = func() window.Enumerator { return fakeEnumerator{wins: wins} }
	newAudio = func(string, bool) domain.AudioControl { return fa }
	t.Cleanup(func() {
		newLiveness, newEnumerator, newAudio = origL, origE, origA
		logging.SetVerbosity(0)
	})
	return fa
}

func writePatterns(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ads.cfg")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write patterns: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	useFakes(t, false)
	cfg := writePatterns(t, "Advertisement", "Spotify$")

	out, err := execute(t, "-c", cfg, "check", "advertisement - break")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, `match: "Advertisement"`) {
		t.Errorf("output = %q", out)
	}

	out, err = execute(t, "-c", cfg, "check", "Artist - Song")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, "no match") {
		t.Errorf("output = %q", out)
	}
}

func TestCheckMergesFilesAndSkipsMissing(t *testing.T) {
	useFakes(t, false)
	a := writePatterns(t, "First")
	b := writePatterns(t, "Second")
	missing := filepath.Join(t.TempDir(), "missing.cfg")

	out, err := execute(t, "-c", a, "-c", missing, "--config-files", b, "check", "Second ad")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, `match: "Second"`) {
		t.Errorf("output = %q", out)
	}
}

func TestPatternsAddListRemove(t *testing.T) {
	useFakes(t, false)
	cfg := writePatterns(t, "Advertisement")

	if _, err := execute(t, "-c", cfg, "patterns", "add", "Spotify Free"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, err := execute(t, "-c", cfg, "patterns", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Spotify Free") || !strings.Contains(out, "2 pattern(s)") {
		t.Errorf("list output = %q", out)
	}

	out, err = execute(t, "-c", cfg, "patterns", "remove", "Advertisement")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !strings.Contains(out, "removed 1 line(s)") {
		t.Errorf("remove output = %q", out)
	}
	if _, err := execute(t, "-c", cfg, "patterns", "remove", "Advertisement"); err == nil {
		t.Error("removing an absent pattern should fail")
	}

	data, err := os.ReadFile(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != "Spotify Free" {
		t.Errorf("file = %q", got)
	}
}

func TestPatternsListMarksLiteralFallback(t *testing.T) {
	useFakes(t, false)
	cfg := writePatterns(t, "Ad (break")

	out, err := execute(t, "-c", cfg, "patterns", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "(literal)") {
		t.Errorf("output = %q", out)
	}
}

func TestOnceMutesOnMatch(t *testing.T) {
	fa := useFakes(t, true, "Some window", "Advertisement - Spotify")
	cfg := writePatterns(t, "Nothing here", "Advertisement")

	out, err := execute(t, "-c", cfg, "--process", "Player.exe", "once", "--pattern-delay", "0s")
	if err != nil {
		t.Fatalf("once: %v", err)
	}
	if !strings.Contains(out, "state: ad-playing") || !strings.Contains(out, "action: mute") {
		t.Errorf("output = %q", out)
	}
	if len(fa.calls) != 1 || fa.calls[0] != (recordedMute{"Player.exe", true}) {
		t.Errorf("audio calls = %+v", fa.calls)
	}
}

func TestOnceIdleWhenNotRunning(t *testing.T) {
	fa := useFakes(t, false, "Advertisement")
	cfg := writePatterns(t, "Advertisement")

	out, err := execute(t, "-c", cfg, "once")
	if err != nil {
		t.Fatalf("once: %v", err)
	}
	if !strings.Contains(out, "state: idle") {
		t.Errorf("output = %q", out)
	}
	if len(fa.calls) != 0 {
		t.Errorf("audio touched while idle: %+v", fa.calls)
	}
}

func TestMuteCommands(t *testing.T) {
	fa := useFakes(t, false)

	if _, err := execute(t, "--process", "Player.exe", "mute"); err != nil {
		t.Fatalf("mute: %v", err)
	}
	if _, err := execute(t, "--process", "Player.exe", "unmute"); err != nil {
		t.Fatalf("unmute: %v", err)
	}
	want := []recordedMute{{"Player.exe", true}, {"Player.exe", false}}
	if len(fa.calls) != 2 || fa.calls[0] != want[0] || fa.calls[1] != want[1] {
		t.Errorf("audio calls = %+v", fa.calls)
	}

	fa.err = errors.New("no session")
	_, err := execute(t, "mute")
	if !errors.Is(err, domain.ErrControl) {
		t.Errorf("mute error = %v, want ErrControl", err)
	}
}

func TestWindowsCommand(t *testing.T) {
	useFakes(t, false, "", "Editor", "Advertisement")

	out, err := execute(t, "windows")
	if err != nil {
		t.Fatalf("windows: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasSuffix(lines[1], "\tAdvertisement") {
		t.Errorf("output = %q", out)
	}
}

func TestLogFileFlag(t *testing.T) {
	useFakes(t, false)
	cfg := writePatterns(t, "Advertisement")
	logPath := filepath.Join(t.TempDir(), "admute.log")

	if _, err := execute(t, "-c", cfg, "--log-file", logPath, "check", "Advertisement"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func scriptedLines(lines ...string) func() (string, error) {
	return func() (string, error) {
		if len(lines) == 0 {
			return "", io.EOF
		}
		line := lines[0]
		lines = lines[1:]
		return line, nil
	}
}

func TestShellSession(t *testing.T) {
	useFakes(t, false)
	cfg := writePatterns(t, "Advertisement")

	opts := defaultOptions()
	opts.sources = []string{cfg}
	var out bytes.Buffer
	err := runShell(scriptedLines(
		"help",
		"log --level debug",
		`check "Advertisement break"`,
		"shell",
		`check "unterminated`,
		"nosuchcommand",
		"exit",
		"check never-reached",
	), &out, &opts)
	if err != nil {
		t.Fatalf("runShell: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Examples:",
		"log level set to debug",
		`match: "Advertisement"`,
		"Already in the shell",
		"parse error",
		"command error",
		"Bye!",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("shell output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "never-reached") {
		t.Error("shell kept reading after exit")
	}
	if logging.Verbosity() != 2 {
		t.Errorf("verbosity = %d, want 2", logging.Verbosity())
	}
}

func TestShellEndsOnEOF(t *testing.T) {
	useFakes(t, false)
	opts := defaultOptions()
	var out bytes.Buffer
	if err := runShell(scriptedLines(), &out, &opts); err != nil {
		t.Fatalf("runShell: %v", err)
	}
}

func TestPositionalPatternFilesAreRead(t *testing.T) {
	useFakes(t, false)
	a := writePatterns(t, "First")
	b := writePatterns(t, "Second")

	out, err := execute(t, "patterns", "list", "-c", a, b)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Second") || !strings.Contains(out, "2 pattern(s) from 2 file(s)") {
		t.Errorf("output = %q", out)
	}
}

func TestOnceReadsPositionalPatternFiles(t *testing.T) {
	fa := useFakes(t, true, "Sponsored session")
	a := writePatterns(t, "Advertisement")
	b := writePatterns(t, "Sponsored")

	out, err := execute(t, "once", "--pattern-delay", "0s", "-c", a, b)
	if err != nil {
		t.Fatalf("once: %v", err)
	}
	if !strings.Contains(out, "state: ad-playing") || len(fa.calls) != 1 {
		t.Errorf("output = %q, audio calls = %+v", out, fa.calls)
	}
}

func TestCommandsRejectStrayArguments(t *testing.T) {
	useFakes(t, false)
	for _, args := range [][]string{
		{"windows", "extra"},
		{"mute", "extra"},
		{"unmute", "extra"},
		{"check", "one", "two"},
		{"patterns", "add", "one", "two"},
	} {
		if _, err := execute(t, args...); err == nil {
			t.Errorf("%v: expected an argument error", args)
		}
	}
}
