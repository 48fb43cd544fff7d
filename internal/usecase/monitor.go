package usecase

import (
	"context"
	"errors"
	"sync"

	"admute/internal/domain"
	"admute/internal/logging"
)

// MonitorUseCase is the primary port for the ad mute loop.
type MonitorUseCase interface {
	Start(ctx context.Context)
	Tick(ctx context.Context) domain.TickResult
	Status() domain.Status
	Patterns() domain.PatternSet
	Reload() (bool, error)
	TriggerReload()
	Match(title string) (domain.Pattern, bool)
	SetMute(ctx context.Context, mute bool) error
}

// Ports bundles the secondary ports the monitor drives.
type Ports struct {
	Patterns domain.PatternSource
	Process  domain.ProcessLiveness
	Windows  domain.WindowQuery
	Audio    domain.AudioControl
	Clock    Clock
}

// monitorInteractor implements MonitorUseCase.
// It depends only on domain layer and secondary ports.
type monitorInteractor struct {
	settings domain.Settings
	process  domain.ProcessLiveness
	windows  domain.WindowQuery
	audio    domain.AudioControl
	clock    Clock
	service  *domain.DetectionService

	store    *PatternStore
	reloader *ReloadTask

	mu      sync.RWMutex
	status  domain.Status
	settled domain.State
	started bool
}

// NewMonitorUseCase validates settings and performs the initial pattern
// load. Unreadable pattern files are logged and skipped, not returned.
func NewMonitorUseCase(settings domain.Settings, ports Ports) (MonitorUseCase, error) {
	if ports.Patterns == nil || ports.Process == nil || ports.Windows == nil || ports.Audio == nil {
		return nil, errors.New("all monitor ports are required")
	}
	service := domain.NewDetectionService()
	settings, err := service.ValidateAndNormalize(settings)
	if err != nil {
		return nil, err
	}
	clock := ports.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	store := NewPatternStore(ports.Patterns, settings.Sources, clock)
	if err := store.Init(); err != nil {
		logging.Debugf("initial pattern load skipped sources: %v", err)
	}

	m := &monitorInteractor{
		settings: settings,
		process:  ports.Process,
		windows:  ports.Windows,
		audio:    ports.Audio,
		clock:    clock,
		service:  service,
		store:    store,
		reloader: NewReloadTask(store, settings.ReloadInterval, clock),
		status: domain.Status{
			TargetProcess: settings.TargetProcess,
			State:         domain.StateIdle,
		},
	}
	store.OnChange(m.patternsChanged)
	return m, nil
}

func (m *monitorInteractor) patternsChanged(set domain.PatternSet) {
	m.mu.Lock()
	m.status.Reloads++
	m.mu.Unlock()
	logging.Debugf("monitor now scanning %d pattern(s)", set.Len())
}

// Start launches the tick loop and the reload task. Both stop when ctx is done.
func (m *monitorInteractor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	go m.loop(ctx)
	go m.reloader.Run(ctx)
}

func (m *monitorInteractor) loop(ctx context.Context) {
	ticker := m.clock.NewTicker(m.settings.TickInterval)
	defer ticker.Stop()

	m.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			m.Tick(ctx)
		}
	}
}

// Tick runs one detection pass: liveness, pattern scan, mute decision.
// Errors are logged and folded into the result; they never end the loop.
func (m *monitorInteractor) Tick(ctx context.Context) domain.TickResult {
	target := m.settings.TargetProcess
	res := domain.TickResult{At: m.clock.Now()}

	running, err := m.process.IsRunning(ctx, target)
	if err != nil {
		qerr := &domain.QueryError{Op: "process lookup", Target: target, Err: err}
		logging.Errorf("%v", qerr)
		res.Err = qerr
		running = false
	}
	if !running {
		res.State, res.Action = m.service.Decide(false, false)
		m.record(res)
		return res
	}

	m.setState(domain.StateScanning)
	set := m.store.Snapshot()
	matched := false
	for i := 0; i < set.Len(); i++ {
		if i > 0 {
			if err := sleep(ctx, m.clock, m.settings.PatternDelay); err != nil {
				res.State = domain.StateScanning
				res.Err = err
				m.record(res)
				return res
			}
		}
		p := set.At(i)
		res.Checked++
		win, ok, err := m.windows.FindMatchingTitle(ctx, p)
		if err != nil {
			qerr := &domain.QueryError{Op: "window lookup", Target: p.String(), Err: err}
			logging.Warnf("%v", qerr)
			res.Err = qerr
			continue
		}
		if ok {
			matched = true
			res.Pattern = p.String()
			res.Window = win
			break
		}
	}

	res.State, res.Action = m.service.Decide(true, matched)
	if err := m.apply(ctx, res.Action); err != nil {
		res.Err = err
	}
	if matched {
		logging.Debugf("ad title: %s (pattern %q)", res.Window.Title, res.Pattern)
	}
	m.record(res)
	return res
}

func (m *monitorInteractor) apply(ctx context.Context, action domain.MuteAction) error {
	if action == domain.MuteUnchanged {
		return nil
	}
	return m.SetMute(ctx, action == domain.MuteOn)
}

// SetMute applies the mute state to the target process once.
func (m *monitorInteractor) SetMute(ctx context.Context, mute bool) error {
	target := m.settings.TargetProcess
	if err := m.audio.SetMute(ctx, target, mute); err != nil {
		cerr := &domain.ControlError{Process: target, Mute: mute, Err: err}
		logging.Errorf("%v", cerr)
		return cerr
	}
	logging.Tracef("set mute=%t for %s", mute, target)
	return nil
}

func (m *monitorInteractor) setState(state domain.State) {
	m.mu.Lock()
	m.status.State = state
	m.mu.Unlock()
}

func (m *monitorInteractor) record(res domain.TickResult) {
	m.mu.Lock()
	first := m.status.Ticks == 0
	prev := m.settled
	if res.State != domain.StateScanning {
		m.settled = res.State
	}
	m.status.State = res.State
	m.status.Ticks++
	m.status.LastTick = res.At
	m.status.LastError = res.Err
	switch res.State {
	case domain.StateAdPlaying:
		m.status.LastPattern = res.Pattern
		m.status.LastTitle = res.Window.Title
	case domain.StateClear, domain.StateIdle:
		m.status.LastPattern = ""
		m.status.LastTitle = ""
	}
	m.mu.Unlock()

	if res.State == domain.StateScanning || (!first && prev == res.State) {
		return
	}
	switch res.State {
	case domain.StateIdle:
		logging.Infof("%s is closed", m.settings.TargetProcess)
	case domain.StateAdPlaying:
		logging.Infof("ads detected or %s is paused", m.settings.TargetProcess)
	case domain.StateClear:
		logging.Infof("no ads detected")
	}
}

// Status returns a copy of the current loop state.
func (m *monitorInteractor) Status() domain.Status {
	m.mu.RLock()
	status := m.status
	m.mu.RUnlock()
	status.Patterns = m.store.Snapshot().Len()
	status.LastReload = m.store.LastReload()
	return status
}

// Patterns returns the active pattern snapshot.
func (m *monitorInteractor) Patterns() domain.PatternSet {
	return m.store.Snapshot()
}

// Reload reloads the pattern files immediately.
func (m *monitorInteractor) Reload() (bool, error) {
	return m.store.ReloadIfChanged()
}

// TriggerReload asks the reload task to reload without waiting for it.
func (m *monitorInteractor) TriggerReload() {
	m.reloader.Trigger()
}

// Match reports which active pattern, if any, matches title.
func (m *monitorInteractor) Match(title string) (domain.Pattern, bool) {
	return m.store.Snapshot().FirstMatch(title)
}
