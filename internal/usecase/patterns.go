package usecase

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"admute/internal/domain"
	"admute/internal/logging"
)

// PatternStore owns the active pattern set. Readers get an immutable
// snapshot; reloads publish a whole new set with a single pointer swap.
type PatternStore struct {
	source  domain.PatternSource
	sources []string
	clock   Clock

	current    atomic.Pointer[domain.PatternSet]
	lastReload atomic.Int64
	group      singleflight.Group
	requests   atomic.Uint64

	mu        sync.Mutex
	observers []func(domain.PatternSet)
}

// NewPatternStore creates a store over the given files. The store starts
// empty; call Init to perform the startup load.
func NewPatternStore(source domain.PatternSource, sources []string, clock Clock) *PatternStore {
	if clock == nil {
		clock = SystemClock{}
	}
	s := &PatternStore{
		source:  source,
		sources: append([]string(nil), sources...),
		clock:   clock,
	}
	empty := domain.NewPatternSet()
	s.current.Store(&empty)
	return s
}

// Init performs the startup load and publishes the result unconditionally.
// Skipped sources are reported in the returned error but never prevent the
// store from being usable.
func (s *PatternStore) Init() error {
	set, errs := s.Load(s.sources)
	s.publish(set)
	if set.Len() == 0 {
		logging.Warnf("no ad patterns loaded from %v; ads will not be detected", s.sources)
	} else {
		logging.Infof("loaded %d ad patterns from %d file(s)", set.Len(), len(s.sources))
	}
	return errors.Join(errs...)
}

// Load reads every source in order and concatenates their lines. A source
// that cannot be read is logged, skipped and reported in errs.
func (s *PatternStore) Load(sources []string) (domain.PatternSet, []error) {
	var (
		lines []string
		errs  []error
	)
	for _, path := range sources {
		got, err := s.source.ReadLines(path)
		if err != nil {
			cerr := &domain.ConfigError{Source: path, Err: err}
			logging.Warnf("%v", cerr)
			errs = append(errs, cerr)
			continue
		}
		lines = append(lines, got...)
	}
	set := domain.NewPatternSet(lines...)
	for _, p := range set.All() {
		if p.Literal() {
			logging.Warnf("pattern %q is not a valid regular expression; matching it as plain text", p.String())
		}
	}
	return set, errs
}

// Snapshot returns the active pattern set.
func (s *PatternStore) Snapshot() domain.PatternSet {
	return *s.current.Load()
}

// LastReload returns when a set was last published.
func (s *PatternStore) LastReload() time.Time {
	ns := s.lastReload.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// OnChange registers fn to be called after a reload publishes a new set.
func (s *PatternStore) OnChange(fn func(domain.PatternSet)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// ReloadIfChanged re-reads the sources and publishes the result if it
// differs from the active set. Concurrent calls share one reload, but a
// caller never settles for a load that started before its request.
func (s *PatternStore) ReloadIfChanged() (bool, error) {
	requested := s.requests.Add(1)
	for {
		v, err, _ := s.group.Do("reload", func() (any, error) {
			covers := s.requests.Load()
			set, errs := s.Load(s.sources)
			if set.Equal(s.Snapshot()) {
				logging.Tracef("ad patterns unchanged (%d)", set.Len())
				return reloadResult{covers: covers}, errors.Join(errs...)
			}
			s.publish(set)
			logging.Infof("ad patterns updated: %q", set.Strings())
			s.notify(set)
			return reloadResult{changed: true, covers: covers}, errors.Join(errs...)
		})
		res, _ := v.(reloadResult)
		if res.covers >= requested {
			return res.changed, err
		}
	}
}

type reloadResult struct {
	changed bool
	covers  uint64
}

func (s *PatternStore) publish(set domain.PatternSet) {
	s.current.Store(&set)
	s.lastReload.Store(s.clock.Now().UnixNano())
}

func (s *PatternStore) notify(set domain.PatternSet) {
	s.mu.Lock()
	observers := make([]func(domain.PatternSet), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()
	for _, fn := range observers {
		fn(set)
	}
}
