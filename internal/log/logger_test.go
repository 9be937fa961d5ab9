package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer, level Level) *DefaultLogger {
	l := New(LoggerConfig{Level: level, Output: buf})
	l.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return l
}

func TestLogger_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, InfoLevel)

	l.Info("skipping crate", "crate", "serde", "missing", 3, "reason", "two words")

	assert.Equal(t, "[2024-01-02 03:04:05] INFO: skipping crate crate=serde missing=3 reason=\"two words\"\n", buf.String())
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, WarnLevel)

	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "WARN: warn")
	assert.Contains(t, lines[1], "ERROR: error")

	buf.Reset()
	l.SetLevel(DebugLevel)
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "DEBUG: now visible")
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, InfoLevel)
	l.SetJSONOutput(true)

	l.Warn("function skipped", "crate", "rand", "err", errors.New("malformed point"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "function skipped", entry["message"])
	assert.Equal(t, "rand", entry["crate"])
	assert.Equal(t, "malformed point", entry["err"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"loud", InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("never printed")
}
