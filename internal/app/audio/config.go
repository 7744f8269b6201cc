package audio

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/quizsound/internal/app/music"
	"github.com/osa030/quizsound/internal/domain/cue"
	"github.com/osa030/quizsound/internal/infra/config"
)

// Config holds service configuration.
type Config struct {
	MinDB            float64       // Level of the quietest non-silent cue, in decibels
	BPM              float64       // Tempo used to size cue note values
	SuccessFollowUp  time.Duration // Real-time delay before the second success chord
	ArpeggioStep     time.Duration // Clock offset between celebration notes
	AchievementDelay time.Duration // Real-time delay before the achievement success cue
	InitTimeout      time.Duration // Upper bound on initialization; zero disables it
	Music            music.Config
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MinDB >= 0 {
		return errors.Newf("min dB must be negative: %v", c.MinDB)
	}
	if c.BPM <= 0 {
		return errors.Newf("tempo must be positive: %v", c.BPM)
	}
	if c.SuccessFollowUp < 0 || c.ArpeggioStep < 0 || c.AchievementDelay < 0 {
		return errors.New("cue delays must not be negative")
	}
	if err := c.Music.Validate(); err != nil {
		return errors.Wrap(err, "invalid music config")
	}
	return nil
}

// NewConfig derives the service configuration from the application configuration.
func NewConfig(cfg *config.Config) (Config, error) {
	chords, err := cfg.ParseMusicChords()
	if err != nil {
		return Config{}, err
	}
	noteDuration, err := cfg.ParseMusicNoteDuration()
	if err != nil {
		return Config{}, err
	}
	policy, err := music.ParseChordPolicy(cfg.Music.ChordPolicy)
	if err != nil {
		return Config{}, err
	}

	return Config{
		MinDB:            cfg.Audio.MinDB,
		BPM:              cfg.Cues.BPM,
		SuccessFollowUp:  cfg.Cues.SuccessFollowUp(),
		ArpeggioStep:     cfg.Cues.ArpeggioStep(),
		AchievementDelay: cfg.Cues.AchievementDelay(),
		InitTimeout:      cfg.Audio.InitTimeout(),
		Music: music.Config{
			Voice:        cfg.Music.Voice,
			Chords:       chords,
			Interval:     cfg.Music.Interval(),
			NoteDuration: noteDuration,
			Volume:       cue.VolumeToDB(cfg.Music.Volume, cfg.Audio.MinDB),
			Policy:       policy,
		},
	}, nil
}
