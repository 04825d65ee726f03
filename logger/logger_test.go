package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceSeverityRenamesLevelToSeverity(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: replaceSeverity})
	l := slog.New(handler)

	l.Info("hello")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "INFO", decoded["severity"])
	assert.NotContains(t, decoded, "level")
}

func TestSeverityNameBoundaries(t *testing.T) {
	assert.Equal(t, "TRACE", severityName(LevelTrace))
	assert.Equal(t, "DEBUG", severityName(LevelDebug))
	assert.Equal(t, "INFO", severityName(LevelInfo))
	assert.Equal(t, "WARNING", severityName(LevelWarning))
	assert.Equal(t, "ERROR", severityName(LevelError))
}

func TestNewJSONWritesToProvidedFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/out.log"

	l := New(Config{Level: LevelInfo, JSON: true, FilePath: path})
	l.Info("recorded")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "recorded")
}

func TestNopDiscardsEverything(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, func() { l.Error("should be discarded") })
}
