package music

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/quizsound/internal/app/notification"
	"github.com/osa030/quizsound/internal/domain/note"
)

// Synthesizer is the subset of the synth engine the sequencer drives.
type Synthesizer interface {
	Now() time.Duration
	TriggerAttackRelease(voice string, pitches []note.Pitch, duration, at time.Duration, db float64) error
	ReleaseAll(voice string) error
}

// Ticker delivers the repeating wake-ups of the loop.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct {
	*time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.Ticker.C
}

// NewTimeTicker returns a Ticker backed by time.Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

// Config holds sequencer configuration.
type Config struct {
	Voice        string        // Voice the chords are played on
	Chords       []note.Chord  // Progression, played in order and wrapped
	Interval     time.Duration // Time between chord onsets
	NoteDuration time.Duration // How long each chord is held
	Volume       float64       // Level in decibels
	Policy       ChordPolicy
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Voice == "" {
		return errors.New("music voice is required")
	}
	if len(c.Chords) == 0 {
		return errors.New("chord progression is empty")
	}
	for i, ch := range c.Chords {
		if len(ch) == 0 {
			return errors.Newf("chord %d is empty", i)
		}
	}
	if c.Interval <= 0 {
		return errors.Newf("interval must be positive: %v", c.Interval)
	}
	if c.NoteDuration <= 0 {
		return errors.Newf("note duration must be positive: %v", c.NoteDuration)
	}
	return nil
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithTicker replaces the wall-clock ticker.
func WithTicker(f TickerFunc) Option {
	return func(s *Sequencer) {
		s.newTicker = f
	}
}

// Sequencer loops a chord progression on a voice.
// At most one loop (chain) is alive at a time.
type Sequencer struct {
	mu sync.Mutex

	synth     Synthesizer
	hub       *notification.Hub
	config    Config
	newTicker TickerFunc

	state   State
	cursor  int    // Index of the next chord to fire
	chainID string // Identifies the active loop; empty when stopped
	sounded bool   // A chord of the active chain has been triggered

	// Loop
	loopCancel context.CancelFunc // Cancel handle of the active loop
	loopDone   chan struct{}      // Closed when the active loop goroutine exits
	delivering atomic.Bool        // The loop goroutine is inside a handler
}

// NewSequencer creates a stopped sequencer.
func NewSequencer(synth Synthesizer, hub *notification.Hub, config Config, opts ...Option) (*Sequencer, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid music config")
	}
	s := &Sequencer{
		synth:     synth,
		hub:       hub,
		config:    config,
		newTicker: NewTimeTicker,
		state:     StateStopped,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start begins the loop if it is not running. The chord under the cursor
// fires immediately. Returns the running flag.
func (s *Sequencer) Start() bool {
	s.mu.Lock()
	if s.state == StateRunning {
		s.mu.Unlock()
		return true
	}
	events := s.startLocked()
	s.mu.Unlock()

	s.publish(events)
	return true
}

// Stop cancels the loop and releases every note of the music voice.
// A tick racing with Stop never fires a chord.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	events := s.stopLocked()
	s.mu.Unlock()

	s.publish(events)
}

// Toggle stops a running loop or starts a stopped one and returns the
// resulting running flag.
func (s *Sequencer) Toggle() bool {
	s.mu.Lock()
	var events []notification.Event
	running := s.state != StateRunning
	if running {
		events = s.startLocked()
	} else {
		events = s.stopLocked()
	}
	s.mu.Unlock()

	s.publish(events)
	return running
}

// State returns the current state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Running reports whether the loop is active.
func (s *Sequencer) Running() bool {
	return s.State() == StateRunning
}

// Cursor returns the index of the next chord to fire.
func (s *Sequencer) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// ChainID returns the identifier of the active loop, or "" when stopped.
func (s *Sequencer) ChainID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chainID
}

// Close stops the loop and waits for its goroutine to exit.
// When called from a handler running on the loop goroutine, Close returns
// without waiting; the loop exits as soon as the handler returns.
func (s *Sequencer) Close() {
	s.mu.Lock()
	done := s.loopDone
	events := s.stopLocked()
	s.mu.Unlock()

	s.publish(events)
	if done != nil && !s.delivering.Load() {
		<-done
	}
}

// startLocked arms a new chain. Must be called with lock held.
func (s *Sequencer) startLocked() []notification.Event {
	ctx, cancel := context.WithCancel(context.Background())
	chain := uuid.New().String()

	s.state = StateRunning
	s.chainID = chain
	s.sounded = false
	s.loopCancel = cancel

	zlog.Debug().Msgf("music: starting loop: chain=%s voice=%s chords=%d interval=%v policy=%s",
		chain, s.config.Voice, len(s.config.Chords), s.config.Interval, s.config.Policy)

	events := []notification.Event{{
		Type:    notification.EventMusicStarted,
		Cue:     s.config.Voice,
		ChainID: chain,
	}}
	events = append(events, s.fireLocked(chain))

	done := make(chan struct{})
	s.loopDone = done
	go s.loop(ctx, chain, s.newTicker(s.config.Interval), done)

	return events
}

// stopLocked cancels the active chain. Must be called with lock held.
func (s *Sequencer) stopLocked() []notification.Event {
	wasRunning := s.state == StateRunning
	chain := s.chainID

	if s.loopCancel != nil {
		s.loopCancel()
		s.loopCancel = nil
	}
	s.state = StateStopped
	s.chainID = ""
	s.sounded = false

	if err := s.synth.ReleaseAll(s.config.Voice); err != nil {
		zlog.Warn().Msgf("music: failed to release voice: voice=%s error=%v", s.config.Voice, err)
	}

	if !wasRunning {
		return nil
	}
	zlog.Debug().Msgf("music: loop stopped: chain=%s", chain)
	return []notification.Event{{
		Type:    notification.EventMusicStopped,
		Cue:     s.config.Voice,
		ChainID: chain,
	}}
}

// loop fires a chord on every tick until its chain is cancelled.
func (s *Sequencer) loop(ctx context.Context, chain string, ticker Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.mu.Lock()
			// Re-check under the lock: Stop may have won the race for this tick.
			if ctx.Err() != nil || s.state != StateRunning || s.chainID != chain {
				s.mu.Unlock()
				return
			}
			e := s.fireLocked(chain)
			s.mu.Unlock()

			s.delivering.Store(true)
			s.publish([]notification.Event{e})
			s.delivering.Store(false)
		}
	}
}

// fireLocked plays the chord under the cursor at the current clock instant
// and advances the cursor. Must be called with lock held.
func (s *Sequencer) fireLocked(chain string) notification.Event {
	idx := s.cursor
	chord := s.config.Chords[idx]
	s.cursor = (s.cursor + 1) % len(s.config.Chords)

	if s.config.Policy == PolicyStaccato && s.sounded {
		if err := s.synth.ReleaseAll(s.config.Voice); err != nil {
			zlog.Warn().Msgf("music: failed to release previous chord: error=%v", err)
		}
	}

	at := s.synth.Now()
	err := s.synth.TriggerAttackRelease(s.config.Voice, chord, s.config.NoteDuration, at, s.config.Volume)
	s.sounded = true
	if err != nil {
		zlog.Warn().Msgf("music: failed to fire chord: index=%d chord=%s error=%v", idx, chord, err)
		return notification.Event{
			Type:    notification.EventChordFailed,
			Cue:     s.config.Voice,
			Chord:   chord.Names(),
			Cursor:  idx,
			ChainID: chain,
			At:      at,
			Err:     err,
		}
	}

	zlog.Debug().Msgf("music: chord fired: index=%d chord=%s at=%v", idx, chord, at)
	return notification.Event{
		Type:    notification.EventChordFired,
		Cue:     s.config.Voice,
		Chord:   chord.Names(),
		Cursor:  idx,
		ChainID: chain,
		At:      at,
	}
}

func (s *Sequencer) publish(events []notification.Event) {
	for _, e := range events {
		s.hub.Publish(e)
	}
}
