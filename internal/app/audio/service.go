// Package audio provides the quiz sound cue scheduler.
package audio

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/quizsound/internal/app/music"
	"github.com/osa030/quizsound/internal/app/notification"
	"github.com/osa030/quizsound/internal/domain/cue"
	"github.com/osa030/quizsound/internal/infra/synth"
)

// ErrClosed is returned internally once the service has been closed.
var ErrClosed = errors.New("audio service is closed")

// Synthesizer is the engine surface the service needs.
type Synthesizer interface {
	music.Synthesizer
	Start(ctx context.Context) error
	AddVoice(spec synth.VoiceSpec) error
	Close() error
}

// Option configures a Service.
type Option func(*Service)

// WithMusicOptions passes options through to the background sequencer.
func WithMusicOptions(opts ...music.Option) Option {
	return func(s *Service) {
		s.musicOpts = append(s.musicOpts, opts...)
	}
}

// Service schedules sound cues and background music on a synthesizer.
// Public methods never return errors: failures are logged and published
// as events, and the service degrades to silence.
type Service struct {
	mu sync.Mutex

	engine    Synthesizer
	voices    []synth.VoiceSpec
	config    Config
	patterns  map[cue.Name]pattern
	hub       *notification.Hub
	musicOpts []music.Option

	// Initialization gate
	initOnce sync.Once
	ready    atomic.Bool
	known    map[string]bool // Registered voice names; written once during init

	sequencer *music.Sequencer
	timers    map[*time.Timer]struct{} // Pending real-time follow-ups
	closed    bool
}

// New creates an uninitialized service. Nothing touches the engine until
// Initialize or the first cue.
func New(engine Synthesizer, voices []synth.VoiceSpec, config Config, opts ...Option) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid audio config")
	}
	s := &Service{
		engine:   engine,
		voices:   voices,
		config:   config,
		patterns: newPatterns(config),
		hub:      notification.NewHub(),
		known:    make(map[string]bool, len(voices)),
		timers:   make(map[*time.Timer]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Initialize starts the engine and registers every voice. Only the first
// call does any work; concurrent callers wait for it. A failed attempt is
// final and leaves the service silent.
func (s *Service) Initialize(ctx context.Context) {
	var event *notification.Event
	s.initOnce.Do(func() {
		if err := s.initialize(ctx); err != nil {
			zlog.Warn().Msgf("audio: initialization failed, sound disabled: %v", err)
			event = &notification.Event{Type: notification.EventInitFailed, Err: err}
			return
		}
		s.ready.Store(true)
		zlog.Info().Msgf("audio: initialized: voices=%d", len(s.known))
		event = &notification.Event{Type: notification.EventInitialized, At: s.engine.Now()}
	})
	// Published outside the gate so handlers may call back into the service.
	if event != nil {
		s.hub.Publish(*event)
	}
}

func (s *Service) initialize(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("panic during initialization: %v", r)
		}
	}()

	if s.isClosed() {
		return ErrClosed
	}

	if s.config.InitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.InitTimeout)
		defer cancel()
	}

	if err := s.engine.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start synthesizer")
	}

	for _, v := range s.voices {
		if err := s.engine.AddVoice(v); err != nil {
			return errors.Wrapf(err, "failed to add voice %s", v.Name)
		}
		s.known[v.Name] = true
		zlog.Debug().Msgf("audio: voice ready: name=%s waveform=%s polyphony=%d", v.Name, v.Waveform, v.Polyphony)
	}

	if !s.known[s.config.Music.Voice] {
		zlog.Warn().Msgf("audio: music voice not defined, background music disabled: voice=%s", s.config.Music.Voice)
		return nil
	}

	seq, err := music.NewSequencer(s.engine, s.hub, s.config.Music, s.musicOpts...)
	if err != nil {
		return errors.Wrap(err, "failed to create sequencer")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.sequencer = seq
	return nil
}

// Initialized reports whether initialization succeeded.
func (s *Service) Initialized() bool {
	return s.ready.Load()
}

// Subscribe registers an event handler and returns its subscription ID.
func (s *Service) Subscribe(handler notification.Handler) string {
	return s.hub.Subscribe(handler)
}

// Unsubscribe removes an event handler.
func (s *Service) Unsubscribe(subscriptionID string) {
	s.hub.Unsubscribe(subscriptionID)
}

// Close stops music, cancels pending follow-up cues, closes the engine and
// drops all subscribers. Safe to call more than once.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for t := range s.timers {
		t.Stop()
	}
	s.timers = nil
	seq := s.sequencer
	s.mu.Unlock()

	if seq != nil {
		seq.Close()
	}
	err := s.engine.Close()
	s.hub.Close()

	zlog.Debug().Msg("audio: service closed")
	return errors.Wrap(err, "failed to close synthesizer")
}

func (s *Service) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// active reports whether cues may be scheduled.
func (s *Service) active() bool {
	return s.ready.Load() && !s.isClosed()
}

// after runs f once d has elapsed unless the service is closed first.
func (s *Service) after(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		_, pending := s.timers[t]
		delete(s.timers, t)
		s.mu.Unlock()

		if pending {
			f()
		}
	})
	s.timers[t] = struct{}{}
}
