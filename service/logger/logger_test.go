package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readEntries(t *testing.T, path string) []map[string]interface{} {
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(b)), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		entries = append(entries, m)
	}
	return entries
}

func TestFileModeSet(t *testing.T) {
	var m FileMode
	require.NoError(t, m.Set("Rotate"))
	assert.Equal(t, FileModeRotate, m)
	require.NoError(t, m.Set(""))
	assert.Equal(t, FileModeAppend, m)
	assert.Error(t, m.Set("sideways"))
}

func TestNewWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thermo.log")
	l, err := New(Config{Path: path, Mode: FileModeTruncate, Level: zap.InfoLevel})
	require.NoError(t, err)
	l.Debug("hidden")
	l.Info("query", zap.String("mode", "sat-t"))
	require.NoError(t, l.Sync())

	entries := readEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "query", entries[0]["msg"])
	assert.Equal(t, "sat-t", entries[0]["mode"])
	assert.NotContains(t, entries[0], "caller")
}

func TestAppendMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thermo.log")
	for i := 0; i < 2; i++ {
		l, err := New(Config{Path: path, Mode: FileModeAppend, Level: zap.InfoLevel})
		require.NoError(t, err)
		l.Info("started")
		require.NoError(t, l.Sync())
	}
	assert.Len(t, readEntries(t, path), 2)
}

func TestWaterfall(t *testing.T) {
	dir := t.TempDir()
	access := filepath.Join(dir, "access.log")
	main := filepath.Join(dir, "main.log")
	l, err := NewWaterfall([]Config{
		{Path: access, Name: "http.access", Level: zap.InfoLevel},
		{Path: main, Level: zap.InfoLevel},
	})
	require.NoError(t, err)
	l.Named("http.access").Info("request")
	l.Info("listening")
	l.Named("other").With(zap.Int("n", 1)).Info("named")
	require.NoError(t, l.Sync())

	a := readEntries(t, access)
	require.Len(t, a, 1)
	assert.Equal(t, "request", a[0]["msg"])

	m := readEntries(t, main)
	require.Len(t, m, 2)
	assert.Equal(t, "listening", m[0]["msg"])
	assert.Equal(t, "named", m[1]["msg"])
	assert.EqualValues(t, 1, m[1]["n"])
}

func TestWaterfallEmpty(t *testing.T) {
	l, err := NewWaterfall(nil)
	require.NoError(t, err)
	l.Info("dropped")
}

func TestMatchName(t *testing.T) {
	assert.True(t, matchName("http", "http"))
	assert.True(t, matchName("http", "http.access"))
	assert.False(t, matchName("http", "httpd"))
	assert.False(t, matchName("http.access", "http"))
}
