package note

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePitch(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantMIDI int
		wantFreq float64
		wantErr  bool
	}{
		{name: "concert A", input: "A4", wantMIDI: 69, wantFreq: 440},
		{name: "middle C", input: "C4", wantMIDI: 60, wantFreq: 261.63},
		{name: "sharp", input: "F#3", wantMIDI: 54, wantFreq: 185.00},
		{name: "flat", input: "Bb2", wantMIDI: 46, wantFreq: 116.54},
		{name: "lower-case letter", input: "a5", wantMIDI: 81, wantFreq: 880},
		{name: "B sharp crosses octave", input: "B#3", wantMIDI: 60, wantFreq: 261.63},
		{name: "empty", input: "", wantErr: true},
		{name: "bad letter", input: "H4", wantErr: true},
		{name: "missing octave", input: "C#", wantErr: true},
		{name: "octave out of range", input: "C12", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePitch(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMIDI, p.MIDI)
			assert.InDelta(t, tt.wantFreq, p.Freq, 0.01)
		})
	}
}

func TestParseChord(t *testing.T) {
	c, err := ParseChord([]string{"C4", "E4", "G4"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C4", "E4", "G4"}, c.Names())
	assert.Equal(t, "C4 E4 G4", c.String())

	_, err = ParseChord(nil)
	assert.Error(t, err)

	_, err = ParseChord([]string{"C4", "X9"})
	assert.Error(t, err)
}

func TestParseProgression(t *testing.T) {
	chords, err := ParseProgression([][]string{{"C3", "E3", "G3"}, {"A2", "C3", "E3"}})
	require.NoError(t, err)
	assert.Len(t, chords, 2)

	_, err = ParseProgression([][]string{{"C3"}, {}})
	assert.ErrorContains(t, err, "chord 1")
}

func TestValue(t *testing.T) {
	tests := []struct {
		value   string
		bpm     float64
		want    time.Duration
		wantErr bool
	}{
		{value: "4n", bpm: 120, want: 500 * time.Millisecond},
		{value: "1n", bpm: 120, want: 2 * time.Second},
		{value: "8n", bpm: 120, want: 250 * time.Millisecond},
		{value: "32n", bpm: 120, want: 62500 * time.Microsecond},
		{value: "8n.", bpm: 120, want: 375 * time.Millisecond},
		{value: "4t", bpm: 120, want: 333333333 * time.Nanosecond},
		{value: "1m", bpm: 60, want: 4 * time.Second},
		{value: "4n", bpm: 0, wantErr: true},
		{value: "", bpm: 120, wantErr: true},
		{value: "0n", bpm: 120, wantErr: true},
		{value: "4x", bpm: 120, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := Value(tt.value, tt.bpm)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, float64(tt.want), float64(got), float64(time.Microsecond))
		})
	}
}
