package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoggerLevels tests that entries below the configured level are dropped.
func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: WARN, Output: &buf})

	log.Debugf("debug %d", 1)
	log.Infof("info %d", 2)
	log.Warnf("warn %d", 3)
	log.Errorf("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "warn 3")
	assert.Contains(t, out, "error 4")

	buf.Reset()
	log.SetLevel(DEBUG)
	log.Debugf("debug %d", 5)
	assert.Contains(t, buf.String(), "debug 5")
}

// TestLoggerJSONFields tests the JSON formatter and derived fields.
func TestLoggerJSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: INFO, Prefix: "search", JSON: true, Output: &buf})

	log.WithField("matches", 3).Infof("done")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "done", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "search", entry["component"])
	assert.Equal(t, float64(3), entry["matches"])
}

// TestParseLevel tests level names accepted from LOG_LEVEL.
func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
		ok   bool
	}{
		{"debug", DEBUG, true},
		{" INFO ", INFO, true},
		{"warning", WARN, true},
		{"Error", ERROR, true},
		{"fatal", FATAL, true},
		{"verbose", INFO, false},
		{"", INFO, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
