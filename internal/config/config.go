package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultCapacity = 500
	DefaultLatency  = 100 * time.Millisecond
)

// Preferences holds persisted viewer preferences.
type Preferences struct {
	Capacity    int     `json:"capacity"`
	LatencyMs   int     `json:"latencyMs"`
	Window      float64 `json:"window"`
	NewestFirst bool    `json:"newestFirst"`
	Replacing   bool    `json:"replacing"`
	ShowIndex   bool    `json:"showIndex"`
}

// Defaults returns the preferences used when nothing is saved yet.
func Defaults() Preferences {
	return Preferences{
		Capacity:    DefaultCapacity,
		LatencyMs:   int(DefaultLatency / time.Millisecond),
		NewestFirst: true,
		ShowIndex:   true,
	}
}

// Normalize replaces unusable values with defaults.
func (p Preferences) Normalize() Preferences {
	if p.Capacity < 1 {
		p.Capacity = DefaultCapacity
	}
	if p.LatencyMs <= 0 {
		p.LatencyMs = int(DefaultLatency / time.Millisecond)
	}
	if p.Window < 0 {
		p.Window = 0
	}
	return p
}

// Latency returns the collector latency as a duration.
func (p Preferences) Latency() time.Duration {
	return time.Duration(p.LatencyMs) * time.Millisecond
}

// Load reads preferences from ~/.config/tracedog/config.json.
func Load() (Preferences, bool, error) {
	path, err := configFilePath()
	if err != nil {
		return Preferences{}, false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), false, nil
	}
	if err != nil {
		return Preferences{}, false, fmt.Errorf("read config: %w", err)
	}
	if len(data) == 0 {
		return Defaults(), true, nil
	}

	prefs := Defaults()
	if err := json.Unmarshal(data, &prefs); err != nil {
		return Preferences{}, false, fmt.Errorf("decode config: %w", err)
	}

	return prefs.Normalize(), true, nil
}

// Save writes preferences to ~/.config/tracedog/config.json.
func Save(prefs Preferences) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", "tracedog", "config.json"), nil
}
