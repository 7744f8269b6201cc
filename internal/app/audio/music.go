package audio

import (
	"context"

	"github.com/osa030/quizsound/internal/app/music"
)

// StartBackgroundMusic starts the chord loop, initializing the service
// first if needed. Returns whether music is playing.
func (s *Service) StartBackgroundMusic(ctx context.Context) bool {
	s.Initialize(ctx)
	seq := s.activeSequencer()
	if seq == nil {
		return false
	}
	return seq.Start()
}

// StopBackgroundMusic stops the chord loop and silences held chords.
func (s *Service) StopBackgroundMusic() {
	if seq := s.activeSequencer(); seq != nil {
		seq.Stop()
	}
}

// ToggleBackgroundMusic flips the chord loop and returns whether music is
// now playing.
func (s *Service) ToggleBackgroundMusic(ctx context.Context) bool {
	s.Initialize(ctx)
	seq := s.activeSequencer()
	if seq == nil {
		return false
	}
	return seq.Toggle()
}

// MusicPlaying reports whether the chord loop is running.
func (s *Service) MusicPlaying() bool {
	seq := s.activeSequencer()
	return seq != nil && seq.Running()
}

func (s *Service) activeSequencer() *music.Sequencer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.sequencer
}
