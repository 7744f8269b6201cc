// Package voice builds synthesizer voice definitions from configuration.
package voice

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/quizsound/internal/infra/config"
	"github.com/osa030/quizsound/internal/infra/synth"
)

// Voice types.
const (
	TypeMono = "mono"
	TypePoly = "poly"
)

// Settings is the decoded form of a voice's free-form settings map.
type Settings struct {
	Waveform  string  `yaml:"waveform" mapstructure:"waveform" default:"sine" validate:"oneof=sine triangle square sawtooth"`
	AttackMs  float64 `yaml:"attack_ms" mapstructure:"attack_ms" default:"5" validate:"gte=0,lte=10000"`
	DecayMs   float64 `yaml:"decay_ms" mapstructure:"decay_ms" default:"100" validate:"gte=0,lte=10000"`
	Sustain   float64 `yaml:"sustain" mapstructure:"sustain" validate:"gte=0,lte=1"`
	ReleaseMs float64 `yaml:"release_ms" mapstructure:"release_ms" default:"100" validate:"gte=0,lte=20000"`
	Polyphony int     `yaml:"polyphony" mapstructure:"polyphony" default:"8" validate:"gte=1,lte=32"`
}

// NewSpec builds a voice spec from a single voice configuration.
func NewSpec(vc config.VoiceConfig) (synth.VoiceSpec, error) {
	// Defaults first so explicit zeros in settings survive decoding.
	var s Settings
	if err := defaults.Set(&s); err != nil {
		return synth.VoiceSpec{}, errors.Wrapf(err, "voice %s: failed to set defaults", vc.Name)
	}
	if err := mapstructure.Decode(vc.Settings, &s); err != nil {
		return synth.VoiceSpec{}, errors.Wrapf(err, "voice %s: failed to decode settings", vc.Name)
	}
	if err := validator.New().Struct(s); err != nil {
		return synth.VoiceSpec{}, errors.Wrapf(err, "voice %s: validation failed", vc.Name)
	}

	polyphony := s.Polyphony
	switch vc.Type {
	case TypeMono:
		polyphony = 1
	case TypePoly:
	default:
		return synth.VoiceSpec{}, errors.Newf("voice %s: unsupported voice type: %s", vc.Name, vc.Type)
	}

	spec := synth.VoiceSpec{
		Name:     vc.Name,
		Waveform: synth.Waveform(s.Waveform),
		Envelope: synth.Envelope{
			Attack:  msToDuration(s.AttackMs),
			Decay:   msToDuration(s.DecayMs),
			Sustain: s.Sustain,
			Release: msToDuration(s.ReleaseMs),
		},
		Polyphony: polyphony,
	}
	if err := spec.Validate(); err != nil {
		return synth.VoiceSpec{}, err
	}
	return spec, nil
}

// NewSpecsFromConfig returns the built-in voices with configured voices
// replacing built-ins of the same name and appending new ones.
func NewSpecsFromConfig(cfg *config.Config) ([]synth.VoiceSpec, error) {
	specs := Defaults()
	index := make(map[string]int, len(specs))
	for i, s := range specs {
		index[s.Name] = i
	}

	for i, vc := range cfg.Voices {
		spec, err := NewSpec(vc)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create voice (index %d)", i)
		}
		if j, ok := index[spec.Name]; ok {
			specs[j] = spec
			zlog.Debug().Msgf("voice: overriding built-in voice: name=%s waveform=%s", spec.Name, spec.Waveform)
			continue
		}
		index[spec.Name] = len(specs)
		specs = append(specs, spec)
		zlog.Debug().Msgf("voice: registered voice: name=%s waveform=%s", spec.Name, spec.Waveform)
	}

	return specs, nil
}

func msToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
