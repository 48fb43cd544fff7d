package domain

// DetectionService provides pure decision logic for the detection loop.
// This service has no side effects and no dependencies on external concerns.
type DetectionService struct{}

// NewDetectionService creates a new detection service.
func NewDetectionService() *DetectionService {
	return &DetectionService{}
}

// Decide maps the observations of a tick to the resulting state and the
// audio change to apply. An absent process leaves the mute state alone.
func (s *DetectionService) Decide(running, matched bool) (State, MuteAction) {
	if !running {
		return StateIdle, MuteUnchanged
	}
	if matched {
		return StateAdPlaying, MuteOn
	}
	return StateClear, MuteOff
}

// ValidateAndNormalize validates settings and returns a normalized copy.
// Duplicate sources are dropped so a file is never read twice per load.
func (s *DetectionService) ValidateAndNormalize(settings Settings) (Settings, error) {
	if len(settings.Sources) == 0 {
		settings.Sources = []string{DefaultConfigFile}
	}
	// A path given twice is read once. Duplicate patterns across
	// different files are still kept.
	seen := make(map[string]bool, len(settings.Sources))
	sources := make([]string, 0, len(settings.Sources))
	for _, src := range settings.Sources {
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true
		sources = append(sources, src)
	}
	settings.Sources = sources
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}
