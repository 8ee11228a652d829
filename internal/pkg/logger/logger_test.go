package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"john.doe@example.com", "jo***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"not-an-email", "***@***"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RedactEmail(tt.in), tt.in)
	}
}

func TestRedactPhone(t *testing.T) {
	assert.Equal(t, "***78", RedactPhone("+33 6 12 34 56 78"))
	assert.Equal(t, "***", RedactPhone("12"))
}

func TestRedactText(t *testing.T) {
	got := RedactText("call jane@acme.io at 06 12 34 56 78")
	assert.NotContains(t, got, "jane@")
	assert.NotContains(t, got, "34 56")
	assert.True(t, strings.HasSuffix(got, "***78"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("WARNING"))
	assert.Equal(t, ERROR, ParseLevel(" error "))
	assert.Equal(t, INFO, ParseLevel("bogus"))
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{level: DEBUG, out: &buf, redactPII: true}

	l.With("campaign_id", "c1").Info("lead moved", "email", "jane.doe@acme.io", "count", 3)

	var entry map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "lead moved", entry["msg"])
	assert.Equal(t, "c1", entry["campaign_id"])
	assert.Equal(t, "ja***@acme.io", entry["email"])
	assert.Equal(t, "3", entry["count"])
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{level: WARN, out: &buf}
	l.Info("dropped")
	assert.Zero(t, buf.Len())
	l.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}
