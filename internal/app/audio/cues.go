package audio

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/quizsound/internal/app/notification"
	"github.com/osa030/quizsound/internal/domain/cue"
)

// Convenience cue levels.
const (
	buttonClickVolume         = 0.3
	correctAnswerVolume       = 0.5
	wrongAnswerVolume         = 0.4
	quizCompleteVolume        = 0.6
	timeWarningVolume         = 0.3
	navigationVolume          = 0.2
	achievementVolume         = 0.7
	achievementFollowUpVolume = 0.5
)

// PlaySound schedules a cue, initializing the service first if needed.
// Unknown cues and engine failures are reported through events only.
func (s *Service) PlaySound(ctx context.Context, name cue.Name, opts ...cue.Option) {
	s.Initialize(ctx)
	if !s.active() {
		return
	}
	s.dispatch(cue.NewRequest(name, opts...))
}

func (s *Service) dispatch(req cue.Request) {
	p, ok := s.patterns[req.Name]
	if !ok || !s.known[string(req.Name)] {
		zlog.Debug().Msgf("audio: unknown cue ignored: name=%s", req.Name)
		s.hub.Publish(notification.Event{Type: notification.EventCueUnknown, Cue: string(req.Name)})
		return
	}

	voice := string(req.Name)
	db := cue.VolumeToDB(req.Volume, s.config.MinDB)
	at := s.engine.Now() + req.Delay

	if err := s.trigger(voice, p.steps, at, db); err != nil {
		return
	}
	zlog.Debug().Msgf("audio: cue dispatched: name=%s volume=%.2f db=%.1f at=%v", voice, req.Volume, db, at)
	s.hub.Publish(notification.Event{
		Type:  notification.EventCueDispatched,
		Cue:   voice,
		Chord: p.names(),
		At:    at,
	})

	if len(p.followUp) == 0 {
		return
	}
	s.after(p.followUpDelay, func() {
		_ = s.trigger(voice, p.followUp, s.engine.Now()+req.Delay, db)
	})
}

// trigger schedules steps relative to at, stopping at the first failure.
func (s *Service) trigger(voice string, steps []step, at time.Duration, db float64) error {
	for _, st := range steps {
		if err := s.engine.TriggerAttackRelease(voice, st.chord, st.length, at+st.offset, db); err != nil {
			zlog.Warn().Msgf("audio: cue failed: name=%s chord=%s error=%v", voice, st.chord, err)
			s.hub.Publish(notification.Event{
				Type:  notification.EventCueFailed,
				Cue:   voice,
				Chord: st.chord.Names(),
				At:    at + st.offset,
				Err:   err,
			})
			return err
		}
	}
	return nil
}

// ButtonClick plays a soft click.
func (s *Service) ButtonClick(ctx context.Context) {
	s.PlaySound(ctx, cue.Click, cue.WithVolume(buttonClickVolume))
}

// CorrectAnswer plays the success chords.
func (s *Service) CorrectAnswer(ctx context.Context) {
	s.PlaySound(ctx, cue.Success, cue.WithVolume(correctAnswerVolume))
}

// WrongAnswer plays the error interval.
func (s *Service) WrongAnswer(ctx context.Context) {
	s.PlaySound(ctx, cue.Error, cue.WithVolume(wrongAnswerVolume))
}

// QuizComplete plays the celebration arpeggio.
func (s *Service) QuizComplete(ctx context.Context) {
	s.PlaySound(ctx, cue.Celebration, cue.WithVolume(quizCompleteVolume))
}

// TimeWarning plays the timer beep.
func (s *Service) TimeWarning(ctx context.Context) {
	s.PlaySound(ctx, cue.Timer, cue.WithVolume(timeWarningVolume))
}

// Navigation plays a quiet click.
func (s *Service) Navigation(ctx context.Context) {
	s.PlaySound(ctx, cue.Click, cue.WithVolume(navigationVolume))
}

// Achievement plays the celebration arpeggio followed by a quieter success cue.
func (s *Service) Achievement(ctx context.Context) {
	s.PlaySound(ctx, cue.Celebration, cue.WithVolume(achievementVolume))
	if !s.active() {
		return
	}
	s.after(s.config.AchievementDelay, func() {
		s.dispatch(cue.NewRequest(cue.Success, cue.WithVolume(achievementFollowUpVolume)))
	})
}
