package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quizsound.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 50*time.Millisecond, cfg.Audio.BufferSize())
	assert.InDelta(t, 0.8, cfg.Audio.MasterVolume, 1e-9)
	assert.InDelta(t, -20, cfg.Audio.MinDB, 1e-9)
	assert.Equal(t, 3*time.Second, cfg.Audio.InitTimeout())

	assert.Equal(t, 150*time.Millisecond, cfg.Cues.SuccessFollowUp())
	assert.Equal(t, 100*time.Millisecond, cfg.Cues.ArpeggioStep())
	assert.Equal(t, 500*time.Millisecond, cfg.Cues.AchievementDelay())

	assert.Equal(t, "backgroundMusic", cfg.Music.Voice)
	assert.Equal(t, 3*time.Second, cfg.Music.Interval())
	assert.Equal(t, "legato", cfg.Music.ChordPolicy)
	assert.Empty(t, cfg.Voices)

	chords, err := cfg.ParseMusicChords()
	require.NoError(t, err)
	require.Len(t, chords, 4)
	assert.Equal(t, "C3 E3 G3", chords[0].String())
	assert.Equal(t, "G2 B2 D3", chords[3].String())

	d, err := cfg.ParseMusicNoteDuration()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
audio:
  sample_rate: 48000
  master_volume: 0.5
  min_db: -30
cues:
  bpm: 90
  achievement_delay_ms: 800
music:
  interval_ms: 4000
  note_value: 2n
  chord_policy: staccato
  chords:
    - [D3, F3, A3]
    - [G2, B2, D3]
voices:
  - name: click
    type: mono
    settings:
      waveform: square
      attack_ms: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 48000, cfg.Audio.SampleRate)
	assert.InDelta(t, 0.5, cfg.Audio.MasterVolume, 1e-9)
	assert.InDelta(t, -30, cfg.Audio.MinDB, 1e-9)
	assert.Equal(t, 800*time.Millisecond, cfg.Cues.AchievementDelay())
	assert.Equal(t, 4*time.Second, cfg.Music.Interval())
	assert.Equal(t, "staccato", cfg.Music.ChordPolicy)

	chords, err := cfg.ParseMusicChords()
	require.NoError(t, err)
	assert.Len(t, chords, 2)

	// 2n at 90 bpm = 2 beats of 666.67ms
	d, err := cfg.ParseMusicNoteDuration()
	require.NoError(t, err)
	assert.InDelta(t, float64(1333*time.Millisecond), float64(d), float64(time.Millisecond))

	require.Len(t, cfg.Voices, 1)
	assert.Equal(t, "click", cfg.Voices[0].Name)
	assert.Equal(t, "square", cfg.Voices[0].Settings["waveform"])
}

func TestLoad_InvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "malformed yaml",
			content: "audio: [",
			errMsg:  "failed to parse config file",
		},
		{
			name:    "unsupported sample rate",
			content: "audio:\n  sample_rate: 12345\n",
			errMsg:  "SampleRate",
		},
		{
			name:    "unknown chord policy",
			content: "music:\n  chord_policy: pizzicato\n",
			errMsg:  "ChordPolicy",
		},
		{
			name:    "bad pitch",
			content: "music:\n  chords:\n    - [C3, X9]\n",
			errMsg:  "music chords",
		},
		{
			name:    "empty chord",
			content: "music:\n  chords:\n    - []\n",
			errMsg:  "Chords",
		},
		{
			name:    "bad note value",
			content: "music:\n  note_value: forever\n",
			errMsg:  "note_value",
		},
		{
			name:    "unknown voice type",
			content: "voices:\n  - name: click\n    type: fm\n",
			errMsg:  "Type",
		},
		{
			name:    "duplicate voice",
			content: "voices:\n  - name: click\n    type: mono\n  - name: click\n    type: poly\n",
			errMsg:  "duplicate voice name",
		},
		{
			name:    "positive min db",
			content: "audio:\n  min_db: 3\n",
			errMsg:  "MinDB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err, "expected loading to fail")
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("QUIZSOUND_MUTED", "true")
	t.Setenv("QUIZSOUND_MASTER_VOLUME", "0.4")
	t.Setenv("QUIZSOUND_CHORD_POLICY", "STACCATO")

	cfg, err := Load(writeConfig(t, "audio:\n  master_volume: 0.9\n"))
	require.NoError(t, err)

	assert.True(t, cfg.Audio.Muted)
	assert.InDelta(t, 0.4, cfg.Audio.MasterVolume, 1e-9)
	assert.Equal(t, 0.0, cfg.Audio.EffectiveVolume())
	assert.Equal(t, "staccato", cfg.Music.ChordPolicy)
}

func TestLoad_ExplicitZerosKept(t *testing.T) {
	t.Setenv("QUIZSOUND_MASTER_VOLUME", "0")

	cfg, err := Load(writeConfig(t, `
cues:
  success_follow_up_ms: 0
  arpeggio_step_ms: 0
  achievement_delay_ms: 0
music:
  volume: 0
`))
	require.NoError(t, err)

	assert.Equal(t, 0.0, cfg.Audio.MasterVolume)
	assert.Equal(t, 0.0, cfg.Audio.EffectiveVolume())
	assert.Zero(t, cfg.Cues.SuccessFollowUp())
	assert.Zero(t, cfg.Cues.ArpeggioStep())
	assert.Zero(t, cfg.Cues.AchievementDelay())
	assert.Equal(t, 0.0, cfg.Music.Volume)

	// Keys left out still get defaults.
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 3*time.Second, cfg.Music.Interval())
}

func TestDefault_ZeroVolumeFromEnv(t *testing.T) {
	t.Setenv("QUIZSOUND_MASTER_VOLUME", "0")

	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Audio.MasterVolume)
}

func TestLoad_FileChordsReplaceDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "music:\n  chords:\n    - [D3, F3, A3]\n"))
	require.NoError(t, err)

	chords, err := cfg.ParseMusicChords()
	require.NoError(t, err)
	require.Len(t, chords, 1)
	assert.Equal(t, "D3 F3 A3", chords[0].String())
}

func TestLoad_InvalidEnvOverride(t *testing.T) {
	t.Setenv("QUIZSOUND_MASTER_VOLUME", "loud")

	_, err := Default()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUIZSOUND_MASTER_VOLUME")
}

func TestAudioConfig_EffectiveVolume(t *testing.T) {
	a := AudioConfig{MasterVolume: 0.7}
	assert.InDelta(t, 0.7, a.EffectiveVolume(), 1e-9)
	a.Muted = true
	assert.Equal(t, 0.0, a.EffectiveVolume())
}
