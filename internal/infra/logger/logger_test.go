package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{input: "debug", want: zerolog.DebugLevel},
		{input: "DEBUG", want: zerolog.DebugLevel},
		{input: "info", want: zerolog.InfoLevel},
		{input: "", want: zerolog.InfoLevel},
		{input: "warning", want: zerolog.WarnLevel},
		{input: "error", want: zerolog.ErrorLevel},
		{input: "trace", want: zerolog.TraceLevel},
		{input: "chatty", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.InfoLevel, false)

	l.Info().Msg("music: loop started")
	l.Debug().Msg("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "music: loop started", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.NotContains(t, entry, "caller", "caller only at debug")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_DebugAddsCaller(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	l := New(&buf, zerolog.DebugLevel, false)

	l.Debug().Msg("synth: ready")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Contains(t, entry, "caller")
}

func TestInit_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizsound.log")

	closer, err := Init(Config{Output: path, File: path, Level: "info"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = closer.Close()
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	})

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestInit_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "quizsound.log")

	_, err := Init(Config{Output: path, File: path})
	assert.Error(t, err)
}

func TestShortCaller(t *testing.T) {
	got := shortCaller(0, filepath.Join("a", "b", "music", "sequencer.go"), 42)
	assert.Equal(t, filepath.Join("music", "sequencer.go")+":42", got)
	assert.Equal(t, "main.go:7", shortCaller(0, "main.go", 7))
}
