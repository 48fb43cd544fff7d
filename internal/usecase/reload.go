package usecase

import (
	"context"
	"time"

	"admute/internal/logging"
)

// ReloadTask periodically asks the PatternStore to reload. It also accepts
// out-of-band triggers, e.g. from a file watcher.
type ReloadTask struct {
	store    *PatternStore
	interval time.Duration
	clock    Clock
	trigger  chan struct{}
}

// NewReloadTask creates a reload task with the given interval.
func NewReloadTask(store *PatternStore, interval time.Duration, clock Clock) *ReloadTask {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ReloadTask{
		store:    store,
		interval: interval,
		clock:    clock,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests a reload as soon as possible. It never blocks; triggers
// arriving while one is pending are merged.
func (r *ReloadTask) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run reloads on every interval and on every trigger until ctx is done.
func (r *ReloadTask) Run(ctx context.Context) {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			r.reload("interval")
		case <-r.trigger:
			r.reload("trigger")
		}
	}
}

func (r *ReloadTask) reload(reason string) {
	changed, err := r.store.ReloadIfChanged()
	if err != nil {
		logging.Debugf("reload (%s) skipped sources: %v", reason, err)
	}
	logging.Tracef("reload (%s) done, changed=%t", reason, changed)
}
