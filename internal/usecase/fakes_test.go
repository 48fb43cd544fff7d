package usecase

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"admute/internal/domain"
)

type fakeSource struct {
	mu    sync.Mutex
	files map[string][]string
}

func newFakeSource(files map[string][]string) *fakeSource {
	return &fakeSource{files: files}
}

func (f *fakeSource) ReadLines(path string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines, ok := f.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return append([]string(nil), lines...), nil
}

func (f *fakeSource) set(path string, lines ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = lines
}

type fakeProcess struct {
	mu      sync.Mutex
	running bool
	err     error
	calls   int
}

func (f *fakeProcess) IsRunning(ctx context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.running, f.err
}

type fakeWindows struct {
	mu      sync.Mutex
	titles  []string
	failOn  map[string]error
	queries []string
}

func (f *fakeWindows) FindMatchingTitle(ctx context.Context, p domain.Pattern) (domain.Window, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, p.String())
	if err := f.failOn[p.String()]; err != nil {
		return domain.Window{}, false, err
	}
	for i, title := range f.titles {
		if p.Match(title) {
			return domain.Window{Handle: uintptr(i + 1), Title: title}, true, nil
		}
	}
	return domain.Window{}, false, nil
}

func (f *fakeWindows) queried() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

type fakeAudio struct {
	mu     sync.Mutex
	calls  []bool
	err    error
	notify chan bool
}

func (f *fakeAudio) SetMute(ctx context.Context, process string, mute bool) error {
	f.mu.Lock()
	f.calls = append(f.calls, mute)
	err := f.err
	notify := f.notify
	f.mu.Unlock()
	if notify != nil {
		notify <- mute
	}
	return err
}

func (f *fakeAudio) recorded() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.calls...)
}

// fakeClock never waits: After fires immediately and tickers only fire when
// the test sends on them.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	slept   []time.Duration
	tickers map[time.Duration]*fakeTicker
	created chan time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:     time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		tickers: make(map[time.Duration]*fakeTicker),
		created: make(chan time.Duration, 8),
	}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.slept = append(c.slept, d)
	now := c.now
	c.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	t := &fakeTicker{ch: make(chan time.Time)}
	c.mu.Lock()
	c.tickers[d] = t
	c.mu.Unlock()
	c.created <- d
	return t
}

func (c *fakeClock) sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.slept...)
}

// waitTicker blocks until a ticker with period d has been created.
func (c *fakeClock) waitTicker(t *testing.T, d time.Duration) *fakeTicker {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		c.mu.Lock()
		tk := c.tickers[d]
		c.mu.Unlock()
		if tk != nil {
			return tk
		}
		select {
		case <-c.created:
		case <-deadline:
			t.Fatalf("ticker with period %s was never created", d)
		}
	}
}

type fakeTicker struct {
	ch chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               {}

func (t *fakeTicker) fire() { t.ch <- time.Now() }

var errBoom = errors.New("boom")

const reloadIntervalForTest = 5 * time.Minute

func contextWithCancel(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithCancel(context.Background())
}

func expectSet(t *testing.T, ch <-chan domain.PatternSet, want ...string) {
	t.Helper()
	select {
	case set := <-ch:
		if got := set.Strings(); !equalStrings(got, want) {
			t.Fatalf("published %v, want %v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no reload published, want %v", want)
	}
}
