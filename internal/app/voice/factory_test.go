package voice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/quizsound/internal/domain/cue"
	"github.com/osa030/quizsound/internal/infra/config"
	"github.com/osa030/quizsound/internal/infra/synth"
)

func TestDefaults_CoverEveryCue(t *testing.T) {
	names := make(map[string]bool)
	for _, s := range Defaults() {
		require.NoError(t, s.Validate(), s.Name)
		names[s.Name] = true
	}
	for _, c := range cue.Known() {
		assert.True(t, names[string(c)], "missing voice for cue %s", c)
	}
	assert.True(t, names[string(cue.BackgroundMusic)])
}

func TestNewSpec(t *testing.T) {
	tests := []struct {
		name    string
		config  config.VoiceConfig
		want    synth.VoiceSpec
		wantErr bool
	}{
		{
			name: "poly with explicit settings",
			config: config.VoiceConfig{
				Name: "pad",
				Type: TypePoly,
				Settings: map[string]any{
					"waveform":   "sawtooth",
					"attack_ms":  250,
					"decay_ms":   100.5,
					"sustain":    0.5,
					"release_ms": 1000,
					"polyphony":  4,
				},
			},
			want: synth.VoiceSpec{
				Name:     "pad",
				Waveform: synth.Sawtooth,
				Envelope: synth.Envelope{
					Attack:  250 * time.Millisecond,
					Decay:   100500 * time.Microsecond,
					Sustain: 0.5,
					Release: time.Second,
				},
				Polyphony: 4,
			},
		},
		{
			name:   "defaults applied",
			config: config.VoiceConfig{Name: "plain", Type: TypePoly},
			want: synth.VoiceSpec{
				Name:      "plain",
				Waveform:  synth.Sine,
				Envelope:  synth.Envelope{Attack: 5 * time.Millisecond, Decay: 100 * time.Millisecond, Release: 100 * time.Millisecond},
				Polyphony: 8,
			},
		},
		{
			name: "mono forces single note",
			config: config.VoiceConfig{
				Name:     "lead",
				Type:     TypeMono,
				Settings: map[string]any{"waveform": "square", "polyphony": 6},
			},
			want: synth.VoiceSpec{
				Name:      "lead",
				Waveform:  synth.Square,
				Envelope:  synth.Envelope{Attack: 5 * time.Millisecond, Decay: 100 * time.Millisecond, Release: 100 * time.Millisecond},
				Polyphony: 1,
			},
		},
		{
			name: "explicit zeros kept",
			config: config.VoiceConfig{
				Name:     "pluck",
				Type:     TypePoly,
				Settings: map[string]any{"attack_ms": 0, "decay_ms": 0, "release_ms": 0, "polyphony": 2},
			},
			want: synth.VoiceSpec{
				Name:      "pluck",
				Waveform:  synth.Sine,
				Envelope:  synth.Envelope{},
				Polyphony: 2,
			},
		},
		{
			name:    "unsupported waveform",
			config:  config.VoiceConfig{Name: "x", Type: TypeMono, Settings: map[string]any{"waveform": "noise"}},
			wantErr: true,
		},
		{
			name:    "wrong settings type",
			config:  config.VoiceConfig{Name: "x", Type: TypeMono, Settings: map[string]any{"waveform": 3}},
			wantErr: true,
		},
		{
			name:    "sustain out of range",
			config:  config.VoiceConfig{Name: "x", Type: TypePoly, Settings: map[string]any{"sustain": 2}},
			wantErr: true,
		},
		{
			name:    "unknown type",
			config:  config.VoiceConfig{Name: "x", Type: "fm"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewSpec(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewSpecsFromConfig(t *testing.T) {
	cfg := &config.Config{
		Voices: []config.VoiceConfig{
			{Name: "click", Type: TypeMono, Settings: map[string]any{"waveform": "sine"}},
			{Name: "bell", Type: TypePoly, Settings: map[string]any{"waveform": "triangle"}},
		},
	}

	specs, err := NewSpecsFromConfig(cfg)
	require.NoError(t, err)
	require.Len(t, specs, len(Defaults())+1)

	byName := make(map[string]synth.VoiceSpec)
	for _, s := range specs {
		byName[s.Name] = s
	}
	assert.Equal(t, synth.Sine, byName["click"].Waveform, "built-in overridden")
	assert.Equal(t, synth.Triangle, byName["bell"].Waveform, "new voice appended")
	assert.Equal(t, synth.Sawtooth, byName["error"].Waveform, "other built-ins kept")
	assert.Equal(t, "bell", specs[len(specs)-1].Name)
}

func TestNewSpecsFromConfig_Invalid(t *testing.T) {
	cfg := &config.Config{
		Voices: []config.VoiceConfig{{Name: "click", Type: TypeMono, Settings: map[string]any{"attack_ms": -1}}},
	}
	_, err := NewSpecsFromConfig(cfg)
	assert.ErrorContains(t, err, "index 0")
}
