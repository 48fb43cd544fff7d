package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"admute/internal/domain"
)

// PactlController implements domain.AudioControl for PulseAudio and
// PipeWire by muting every sink input whose owning binary matches.
// This is a secondary adapter.
type PactlController struct {
	run runFunc
}

// NewPactlController creates a controller that shells out to pactl.
func NewPactlController() domain.AudioControl {
	return &PactlController{run: runCommand}
}

type sinkInput struct {
	Index      uint32            `json:"index"`
	Properties map[string]string `json:"properties"`
}

// SetMute mutes or unmutes all sink inputs of process. A process that is
// not currently playing anything has no sink inputs and nothing to do.
func (p *PactlController) SetMute(ctx context.Context, process string, mute bool) error {
	if process == "" {
		return errors.New("process name is required")
	}
	out, err := p.run(ctx, "pactl", "-f", "json", "list", "sink-inputs")
	if err != nil {
		return err
	}
	inputs, err := parseSinkInputs(out)
	if err != nil {
		return err
	}

	var errs []error
	for _, in := range matchingInputs(inputs, process) {
		idx := strconv.FormatUint(uint64(in.Index), 10)
		if _, err := p.run(ctx, "pactl", "set-sink-input-mute", idx, muteFlag(mute)); err != nil {
			errs = append(errs, fmt.Errorf("sink input %s: %w", idx, err))
		}
	}
	return errors.Join(errs...)
}

func parseSinkInputs(out []byte) ([]sinkInput, error) {
	var inputs []sinkInput
	if err := json.Unmarshal(out, &inputs); err != nil {
		return nil, fmt.Errorf("parse pactl output: %w", err)
	}
	return inputs, nil
}

func matchingInputs(inputs []sinkInput, process string) []sinkInput {
	want := strings.TrimSuffix(strings.ToLower(process), ".exe")
	var out []sinkInput
	for _, in := range inputs {
		binary := strings.TrimSuffix(strings.ToLower(in.Properties["application.process.binary"]), ".exe")
		name := strings.ToLower(in.Properties["application.name"])
		if binary == want || (binary == "" && name == want) {
			out = append(out, in)
		}
	}
	return out
}
