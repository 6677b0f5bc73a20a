package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, WarnLevel, ParseLevel("warn"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
	assert.Equal(t, InfoLevel, ParseLevel("loud"))
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: InfoLevel, Output: &buf}).
		WithFields(map[string]interface{}{"component": "test"})

	zl := l.Zerolog()
	zl.Debug().Msg("hidden")
	zl.Info().Str("team_id", "team-1").Msg("resolved")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "resolved", entry["message"])
	assert.Equal(t, "team-1", entry["team_id"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewLogger_Pretty(t *testing.T) {
	var buf bytes.Buffer
	zl := NewLogger(&Config{Level: DebugLevel, Output: &buf, Pretty: true}).Zerolog()
	zl.Debug().Msg("console")
	assert.Contains(t, buf.String(), "console")
	assert.NotContains(t, buf.String(), `"message"`)
}
