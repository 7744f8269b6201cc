package synth

import (
	"math"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	channelCount  = 2
	bytesPerFrame = channelCount * 4 // float32 LE per channel
	headroom      = 0.5              // Mix attenuation before saturation
)

// scheduledNote is a single oscillator instance on the audio clock.
type scheduledNote struct {
	voice    *VoiceSpec
	freq     float64
	gain     float64
	start    int64 // Frame of the attack
	release  int64 // Frame at which the release stage begins
	phase    float64
	released bool // Released early (stolen or release-all)
	done     bool
}

// heldAt reports whether the note is still in its attack/decay/sustain stage at frame f.
func (n *scheduledNote) heldAt(f int64) bool {
	return !n.done && !n.released && n.release > f
}

// Mixer owns the audio clock and mixes scheduled notes into interleaved
// stereo float32 PCM. It implements io.Reader so it can be handed to an oto player.
type Mixer struct {
	mu         sync.Mutex
	sampleRate int
	frame      int64 // Frames rendered so far; the audio clock
	voices     map[string]*VoiceSpec
	notes      []*scheduledNote
}

// NewMixer creates a mixer running at sampleRate frames per second.
func NewMixer(sampleRate int) *Mixer {
	return &Mixer{
		sampleRate: sampleRate,
		voices:     make(map[string]*VoiceSpec),
		notes:      make([]*scheduledNote, 0),
	}
}

// AddVoice registers a voice. Names must be unique.
func (m *Mixer) AddVoice(spec VoiceSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.voices[spec.Name]; exists {
		return errors.Wrapf(ErrInvalidVoice, "voice %s already registered", spec.Name)
	}
	s := spec
	m.voices[spec.Name] = &s
	return nil
}

// HasVoice reports whether a voice is registered.
func (m *Mixer) HasVoice(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.voices[name]
	return ok
}

// Now returns the current audio clock time.
func (m *Mixer) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frameToTime(m.frame)
}

// Schedule adds one note per frequency on the named voice, attacking at the
// absolute clock time at and releasing after duration. Times in the past are
// clamped to now.
func (m *Mixer) Schedule(voice string, freqs []float64, duration, at time.Duration, db float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	spec, ok := m.voices[voice]
	if !ok {
		return errors.Wrapf(ErrUnknownVoice, "voice %s", voice)
	}

	start := m.timeToFrame(at)
	if start < m.frame {
		start = m.frame
	}
	length := m.timeToFrame(duration)
	if length < 1 {
		length = 1
	}
	gain := DBToGain(db)

	for _, f := range freqs {
		m.stealLocked(spec, start)
		m.notes = append(m.notes, &scheduledNote{
			voice:   spec,
			freq:    f,
			gain:    gain,
			start:   start,
			release: start + length,
		})
	}
	return nil
}

// ReleaseAll moves every note of the voice into its release stage now and
// drops notes of the voice that have not started yet.
func (m *Mixer) ReleaseAll(voice string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	spec, ok := m.voices[voice]
	if !ok {
		return errors.Wrapf(ErrUnknownVoice, "voice %s", voice)
	}
	for _, n := range m.notes {
		if n.voice == spec {
			m.releaseLocked(n, m.frame)
		}
	}
	return nil
}

// Sounding returns the number of notes of the voice that are audible or
// scheduled to become audible.
func (m *Mixer) Sounding(voice string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, n := range m.notes {
		if n.voice.Name == voice && !n.done {
			count++
		}
	}
	return count
}

// Read renders len(p)/8 stereo frames and advances the clock. It never
// returns io.EOF; silence is rendered when nothing is scheduled.
func (m *Mixer) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	frames := len(p) / bytesPerFrame
	for i := 0; i < frames; i++ {
		v := math.Float32bits(float32(m.sampleLocked()))
		off := i * bytesPerFrame
		for c := 0; c < channelCount; c++ {
			p[off+c*4] = byte(v)
			p[off+c*4+1] = byte(v >> 8)
			p[off+c*4+2] = byte(v >> 16)
			p[off+c*4+3] = byte(v >> 24)
		}
		m.frame++
	}
	m.pruneLocked()
	return frames * bytesPerFrame, nil
}

// sampleLocked mixes all notes at the current frame.
func (m *Mixer) sampleLocked() float64 {
	sr := float64(m.sampleRate)
	sum := 0.0
	for _, n := range m.notes {
		if n.done || m.frame < n.start {
			continue
		}
		t := float64(m.frame-n.start) / sr
		releaseAt := float64(n.release-n.start) / sr
		lvl, done := n.voice.Envelope.level(t, releaseAt)
		if done {
			n.done = true
			continue
		}
		sum += n.voice.Waveform.sample(n.phase) * lvl * n.gain
		n.phase += n.freq / sr
		if n.phase >= 1 {
			n.phase -= math.Floor(n.phase)
		}
	}
	return softSat(sum * headroom)
}

// stealLocked releases the oldest held notes of the voice until a new note fits.
func (m *Mixer) stealLocked(spec *VoiceSpec, at int64) {
	for {
		var oldest *scheduledNote
		held := 0
		for _, n := range m.notes {
			if n.voice != spec || !n.heldAt(at) {
				continue
			}
			held++
			if oldest == nil || n.start < oldest.start {
				oldest = n
			}
		}
		if held < spec.Polyphony || oldest == nil {
			return
		}
		m.releaseLocked(oldest, at)
	}
}

// releaseLocked starts the release stage of n at frame at.
func (m *Mixer) releaseLocked(n *scheduledNote, at int64) {
	if n.done {
		return
	}
	n.released = true
	if n.start >= at {
		n.done = true
		return
	}
	if n.release > at {
		n.release = at
	}
}

func (m *Mixer) pruneLocked() {
	kept := m.notes[:0]
	for _, n := range m.notes {
		if !n.done {
			kept = append(kept, n)
		}
	}
	for i := len(kept); i < len(m.notes); i++ {
		m.notes[i] = nil
	}
	m.notes = kept
}

func (m *Mixer) timeToFrame(d time.Duration) int64 {
	return int64(math.Round(d.Seconds() * float64(m.sampleRate)))
}

func (m *Mixer) frameToTime(f int64) time.Duration {
	sr := int64(m.sampleRate)
	return time.Duration(f/sr)*time.Second + time.Duration(f%sr)*time.Second/time.Duration(sr)
}

// softSat applies gentle saturation instead of hard clipping.
func softSat(x float64) float64 {
	return math.Tanh(x)
}
