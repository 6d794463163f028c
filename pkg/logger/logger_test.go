package logger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	l, err := New(LogConfig{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	l.Debug("probe", "device", 2, "err", errors.New("busy"))
	l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "probe", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.EqualValues(t, 2, entry["device"])
	assert.Equal(t, "busy", entry["err"])
}

func TestNewDefaultsToWarn(t *testing.T) {
	l, err := New(LogConfig{Level: "nonsense", Output: filepath.Join(t.TempDir(), "log")})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestConvertFieldsSkipsMalformedPairs(t *testing.T) {
	fields := convertFields("a", 1, 42, "dropped", "tail")
	require.Len(t, fields, 1)
	assert.Equal(t, "a", fields[0].Key)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.With("k", "v").Info("nothing")
	l.Sync()
}
