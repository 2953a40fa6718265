package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" info ", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Output: &buf})

	log.Debug().Msg("hidden")
	log.Info().Str("video", "GS012187.mp4").Msg("working on file")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "output: %s", buf.String())
	assert.Equal(t, "working on file", entry["message"])
	assert.Equal(t, "GS012187.mp4", entry["video"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "time")
}

func TestNewPretty(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "debug", Pretty: true, Output: &buf})

	log.Debug().Msg("probing")

	assert.Contains(t, buf.String(), "probing")
	assert.False(t, json.Valid(buf.Bytes()), "pretty output should not be JSON")
}

func TestNewAlsoWritesFile(t *testing.T) {
	var console, file bytes.Buffer
	log := New(Options{Pretty: true, Output: &console, File: &file})

	log.Warn().Int("failed", 2).Msg("all done")

	assert.Contains(t, console.String(), "all done")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &entry), "file: %s", file.String())
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, float64(2), entry["failed"])
}
