// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/quizsound/internal/domain/note"
)

// Config represents the application configuration.
type Config struct {
	Audio  AudioConfig   `yaml:"audio"`
	Cues   CuesConfig    `yaml:"cues"`
	Music  MusicConfig   `yaml:"music"`
	Voices []VoiceConfig `yaml:"voices" validate:"dive"`
}

// AudioConfig represents audio device and level configuration.
type AudioConfig struct {
	SampleRate    int     `yaml:"sample_rate" default:"44100" validate:"oneof=22050 44100 48000"`
	BufferSizeMs  int     `yaml:"buffer_size_ms" default:"50" validate:"gte=10,lte=500"`
	MasterVolume  float64 `yaml:"master_volume" default:"0.8" validate:"gte=0,lte=1"`
	Muted         bool    `yaml:"muted"`
	MinDB         float64 `yaml:"min_db" default:"-20" validate:"gte=-96,lt=0"`
	InitTimeoutMs int     `yaml:"init_timeout_ms" default:"3000" validate:"gte=100,lte=30000"`
}

// CuesConfig represents cue timing configuration.
type CuesConfig struct {
	BPM                float64 `yaml:"bpm" default:"120" validate:"gt=0,lte=300"`
	SuccessFollowUpMs  int     `yaml:"success_follow_up_ms" default:"150" validate:"gte=0,lte=5000"`
	ArpeggioStepMs     int     `yaml:"arpeggio_step_ms" default:"100" validate:"gte=0,lte=2000"`
	AchievementDelayMs int     `yaml:"achievement_delay_ms" default:"500" validate:"gte=0,lte=10000"`
}

// MusicConfig represents background music configuration.
type MusicConfig struct {
	Voice       string     `yaml:"voice" default:"backgroundMusic" validate:"required"`
	IntervalMs  int        `yaml:"interval_ms" default:"3000" validate:"gte=100,lte=60000"`
	NoteValue   string     `yaml:"note_value" default:"1n" validate:"required"`
	Volume      float64    `yaml:"volume" default:"0.3" validate:"gte=0,lte=1"`
	ChordPolicy string     `yaml:"chord_policy" default:"legato" validate:"oneof=legato staccato"`
	Chords      [][]string `yaml:"chords" default:"[[\"C3\",\"E3\",\"G3\"],[\"A2\",\"C3\",\"E3\"],[\"F2\",\"A2\",\"C3\"],[\"G2\",\"B2\",\"D3\"]]" validate:"min=1,dive,min=1,dive,required"`
}

// VoiceConfig represents a single voice definition.
// Settings are decoded by the voice factory according to Type.
type VoiceConfig struct {
	Name     string         `yaml:"name" validate:"required"`
	Type     string         `yaml:"type" validate:"required,oneof=mono poly"`
	Settings map[string]any `yaml:"settings"`
}

// Load loads configuration from a YAML file.
// A missing file yields the built-in defaults.
// Defaults are applied first so explicit zero values in the file or the
// environment are kept. Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	cfg, err := newDefaults()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	case errors.Is(err, os.ErrNotExist):
		// keep defaults
	default:
		return nil, errors.Wrap(err, "failed to read config file")
	}

	return finalize(cfg)
}

// Default returns the built-in configuration with environment overrides applied.
func Default() (*Config, error) {
	cfg, err := newDefaults()
	if err != nil {
		return nil, err
	}
	return finalize(cfg)
}

// newDefaults returns a config populated by creasty/defaults.
func newDefaults() (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	return &cfg, nil
}

func finalize(cfg *Config) (*Config, error) {
	// Override with environment variables
	if err := cfg.overrideFromEnv(); err != nil {
		return nil, errors.Wrap(err, "invalid environment override")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() error {
	if v := os.Getenv("QUIZSOUND_MUTED"); v != "" {
		muted, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, "QUIZSOUND_MUTED")
		}
		c.Audio.Muted = muted
	}
	if v := os.Getenv("QUIZSOUND_MASTER_VOLUME"); v != "" {
		vol, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrap(err, "QUIZSOUND_MASTER_VOLUME")
		}
		c.Audio.MasterVolume = vol
	}
	if v := os.Getenv("QUIZSOUND_CHORD_POLICY"); v != "" {
		c.Music.ChordPolicy = strings.ToLower(v)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	// Validate musical values
	if _, err := c.ParseMusicChords(); err != nil {
		return err
	}
	if _, err := c.ParseMusicNoteDuration(); err != nil {
		return err
	}

	// Validate unique voice names
	seen := make(map[string]bool, len(c.Voices))
	for _, v := range c.Voices {
		if seen[v.Name] {
			return errors.Newf("duplicate voice name: %s", v.Name)
		}
		seen[v.Name] = true
	}

	return nil
}

// ParseMusicChords parses the background chord progression.
func (c *Config) ParseMusicChords() ([]note.Chord, error) {
	chords, err := note.ParseProgression(c.Music.Chords)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse music chords")
	}
	return chords, nil
}

// ParseMusicNoteDuration converts the music note value to a duration at the cue tempo.
func (c *Config) ParseMusicNoteDuration() (time.Duration, error) {
	d, err := note.Value(c.Music.NoteValue, c.Cues.BPM)
	if err != nil {
		return 0, errors.Wrap(err, "failed to parse music note_value")
	}
	return d, nil
}

// BufferSize returns the device buffer size.
func (a AudioConfig) BufferSize() time.Duration {
	return time.Duration(a.BufferSizeMs) * time.Millisecond
}

// InitTimeout returns the initialization timeout.
func (a AudioConfig) InitTimeout() time.Duration {
	return time.Duration(a.InitTimeoutMs) * time.Millisecond
}

// EffectiveVolume returns the master volume, honoring Muted.
func (a AudioConfig) EffectiveVolume() float64 {
	if a.Muted {
		return 0
	}
	return a.MasterVolume
}

// Interval returns the time between background chords.
func (m MusicConfig) Interval() time.Duration {
	return time.Duration(m.IntervalMs) * time.Millisecond
}

// SuccessFollowUp returns the delay before the second success chord.
func (c CuesConfig) SuccessFollowUp() time.Duration {
	return time.Duration(c.SuccessFollowUpMs) * time.Millisecond
}

// ArpeggioStep returns the clock offset between celebration notes.
func (c CuesConfig) ArpeggioStep() time.Duration {
	return time.Duration(c.ArpeggioStepMs) * time.Millisecond
}

// AchievementDelay returns the delay before the achievement follow-up cue.
func (c CuesConfig) AchievementDelay() time.Duration {
	return time.Duration(c.AchievementDelayMs) * time.Millisecond
}
