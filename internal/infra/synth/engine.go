package synth

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ebitengine/oto/v3"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/quizsound/internal/domain/note"
)

// Options holds engine configuration.
type Options struct {
	SampleRate   int
	BufferSize   time.Duration // Device buffer; also the latency of scheduling at "now"
	MasterVolume float64       // 0.0 to 1.0
}

// Engine streams a Mixer to the default audio device through oto.
// Voices and notes can be registered before Start; the clock only advances
// once the device is pulling samples.
type Engine struct {
	opts  Options
	mixer *Mixer

	mu     sync.Mutex
	otoCtx *oto.Context
	player *oto.Player
	closed bool
}

// NewEngine creates a new engine. No device is opened until Start.
func NewEngine(opts Options) *Engine {
	return &Engine{
		opts:  opts,
		mixer: NewMixer(opts.SampleRate),
	}
}

// Start opens the audio device and begins playback of the mixer.
// Calling Start on a running engine is a no-op.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.player != nil {
		return nil
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   e.opts.SampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatFloat32LE,
		BufferSize:   e.opts.BufferSize,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create audio context")
	}

	select {
	case <-ready:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "audio context not ready")
	}

	player := otoCtx.NewPlayer(e.mixer)
	player.SetVolume(e.opts.MasterVolume)
	player.Play()

	e.otoCtx = otoCtx
	e.player = player

	zlog.Debug().Msgf("synth: audio context started: sample_rate=%d buffer=%v volume=%.2f",
		e.opts.SampleRate, e.opts.BufferSize, e.opts.MasterVolume)
	return nil
}

// AddVoice registers a voice on the mixer.
func (e *Engine) AddVoice(spec VoiceSpec) error {
	if e.isClosed() {
		return ErrClosed
	}
	return e.mixer.AddVoice(spec)
}

// Now returns the audio clock time.
func (e *Engine) Now() time.Duration {
	return e.mixer.Now()
}

// TriggerAttackRelease schedules the pitches on the voice at clock time at,
// held for duration, at the given level in decibels.
func (e *Engine) TriggerAttackRelease(voice string, pitches []note.Pitch, duration, at time.Duration, db float64) error {
	if e.isClosed() {
		return ErrClosed
	}
	freqs := make([]float64, len(pitches))
	for i, p := range pitches {
		freqs[i] = p.Freq
	}
	return e.mixer.Schedule(voice, freqs, duration, at, db)
}

// ReleaseAll releases every sounding or pending note of the voice.
func (e *Engine) ReleaseAll(voice string) error {
	if e.isClosed() {
		return ErrClosed
	}
	return e.mixer.ReleaseAll(voice)
}

// Close stops playback and suspends the audio context.
// oto allows a single context per process, so a closed engine cannot be restarted.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	var errs error
	if e.player != nil {
		if err := e.player.Close(); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrap(err, "failed to close player"))
		}
		e.player = nil
	}
	if e.otoCtx != nil {
		if err := e.otoCtx.Suspend(); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrap(err, "failed to suspend audio context"))
		}
	}
	return errs
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
