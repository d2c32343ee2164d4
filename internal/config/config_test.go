package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	prefs, found, err := Load()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, Defaults(), prefs)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	want := Preferences{
		Capacity:    64,
		LatencyMs:   250,
		Window:      5000,
		NewestFirst: false,
		Replacing:   true,
		ShowIndex:   false,
	}
	require.NoError(t, Save(want))
	assert.FileExists(t, filepath.Join(home, ".config", "tracedog", "config.json"))

	got, found, err := Load()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
	assert.Equal(t, 250*time.Millisecond, got.Latency())
}

func TestLoadNormalizesBadValues(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "tracedog")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"capacity": 0, "latencyMs": -5, "window": -1}`), 0o644))

	prefs, found, err := Load()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, DefaultCapacity, prefs.Capacity)
	assert.Equal(t, DefaultLatency, prefs.Latency())
	assert.Zero(t, prefs.Window)
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "tracedog")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{"), 0o644))

	_, _, err := Load()
	assert.Error(t, err)
}
