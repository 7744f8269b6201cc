package voice

import (
	"time"

	"github.com/osa030/quizsound/internal/domain/cue"
	"github.com/osa030/quizsound/internal/infra/synth"
)

// Defaults returns the built-in voice set, one voice per cue plus the
// background music pad.
func Defaults() []synth.VoiceSpec {
	return []synth.VoiceSpec{
		{
			Name:      string(cue.Click),
			Waveform:  synth.Triangle,
			Envelope:  synth.Envelope{Attack: time.Millisecond, Decay: 100 * time.Millisecond, Sustain: 0, Release: 100 * time.Millisecond},
			Polyphony: 1,
		},
		{
			Name:      string(cue.Success),
			Waveform:  synth.Sine,
			Envelope:  synth.Envelope{Attack: 20 * time.Millisecond, Decay: 200 * time.Millisecond, Sustain: 0.3, Release: 500 * time.Millisecond},
			Polyphony: 6,
		},
		{
			Name:      string(cue.Error),
			Waveform:  synth.Sawtooth,
			Envelope:  synth.Envelope{Attack: 10 * time.Millisecond, Decay: 200 * time.Millisecond, Sustain: 0.1, Release: 300 * time.Millisecond},
			Polyphony: 2,
		},
		{
			Name:      string(cue.Celebration),
			Waveform:  synth.Triangle,
			Envelope:  synth.Envelope{Attack: 10 * time.Millisecond, Decay: 150 * time.Millisecond, Sustain: 0.4, Release: 800 * time.Millisecond},
			Polyphony: 8,
		},
		{
			Name:      string(cue.Timer),
			Waveform:  synth.Square,
			Envelope:  synth.Envelope{Attack: time.Millisecond, Decay: 50 * time.Millisecond, Sustain: 0, Release: 50 * time.Millisecond},
			Polyphony: 1,
		},
		{
			Name:      string(cue.BackgroundMusic),
			Waveform:  synth.Sine,
			Envelope:  synth.Envelope{Attack: time.Second, Decay: 500 * time.Millisecond, Sustain: 0.6, Release: 2 * time.Second},
			Polyphony: 8,
		},
	}
}
