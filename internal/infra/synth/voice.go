// Package synth renders scheduled oscillator notes to PCM and streams them
// through oto.
package synth

import (
	"math"
	"time"

	"github.com/cockroachdb/errors"
)

// Errors
var (
	ErrUnknownVoice = errors.New("unknown voice")
	ErrInvalidVoice = errors.New("invalid voice")
	ErrClosed       = errors.New("synth engine closed")
)

// Waveform is the oscillator shape of a voice.
type Waveform string

const (
	Sine     Waveform = "sine"
	Triangle Waveform = "triangle"
	Square   Waveform = "square"
	Sawtooth Waveform = "sawtooth"
)

// Valid reports whether w is a supported waveform.
func (w Waveform) Valid() bool {
	switch w {
	case Sine, Triangle, Square, Sawtooth:
		return true
	default:
		return false
	}
}

// sample returns the oscillator value in [-1, 1] at phase in [0, 1).
func (w Waveform) sample(phase float64) float64 {
	switch w {
	case Triangle:
		return 1 - 4*math.Abs(phase-0.5)
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case Sawtooth:
		return 2*phase - 1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// Envelope is an ADSR amplitude envelope.
type Envelope struct {
	Attack  time.Duration
	Decay   time.Duration
	Sustain float64 // Level 0.0 to 1.0 held until release
	Release time.Duration
}

// held returns the envelope level t seconds after the attack while the note is held.
func (e Envelope) held(t float64) float64 {
	attack := e.Attack.Seconds()
	decay := e.Decay.Seconds()

	switch {
	case t < attack:
		return t / attack
	case t < attack+decay:
		return 1 - (t-attack)/decay*(1-e.Sustain)
	default:
		return e.Sustain
	}
}

// level returns the envelope level t seconds after the attack for a note
// whose release stage begins releaseAt seconds after the attack.
// done is true once the release stage has fully decayed.
func (e Envelope) level(t, releaseAt float64) (lvl float64, done bool) {
	if t < releaseAt {
		return e.held(t), false
	}
	rel := e.Release.Seconds()
	since := t - releaseAt
	if since >= rel {
		return 0, true
	}
	return e.held(releaseAt) * (1 - since/rel), false
}

// VoiceSpec describes a named sound generator.
type VoiceSpec struct {
	Name      string
	Waveform  Waveform
	Envelope  Envelope
	Polyphony int // Maximum simultaneously held notes; 1 for a mono voice
}

// Validate checks that the spec can be rendered.
func (s VoiceSpec) Validate() error {
	if s.Name == "" {
		return errors.Wrap(ErrInvalidVoice, "name is required")
	}
	if !s.Waveform.Valid() {
		return errors.Wrapf(ErrInvalidVoice, "voice %s: unsupported waveform %q", s.Name, s.Waveform)
	}
	if s.Envelope.Sustain < 0 || s.Envelope.Sustain > 1 {
		return errors.Wrapf(ErrInvalidVoice, "voice %s: sustain %v out of range", s.Name, s.Envelope.Sustain)
	}
	if s.Envelope.Attack < 0 || s.Envelope.Decay < 0 || s.Envelope.Release < 0 {
		return errors.Wrapf(ErrInvalidVoice, "voice %s: negative envelope stage", s.Name)
	}
	if s.Polyphony < 1 {
		return errors.Wrapf(ErrInvalidVoice, "voice %s: polyphony must be at least 1", s.Name)
	}
	return nil
}

// DBToGain converts decibels to a linear amplitude factor.
func DBToGain(db float64) float64 {
	return math.Pow(10, db/20)
}
