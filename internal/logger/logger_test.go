package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New("info", &buf)
	l.Info().Int64("appointmentId", 7).Msg("created")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "created", entry["message"])
	assert.Equal(t, "dentaflow-api", entry["service"])
	assert.EqualValues(t, 7, entry["appointmentId"])
}

func TestNewFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New("nonsense", &buf)
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())

	l.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
}
