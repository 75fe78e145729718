package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/mgomes/loxscript/lox"
)

const settingsFileName = "settings.toml"

// Settings is the user configuration read from settings.toml.
type Settings struct {
	RecursionLimit int          `toml:"recursion_limit"`
	StepQuota      int          `toml:"step_quota"`
	REPL           REPLSettings `toml:"repl"`
}

type REPLSettings struct {
	Prompt      string `toml:"prompt"`
	HistorySize int    `toml:"history_size"`
	Highlight   bool   `toml:"highlight"`
	Style       string `toml:"style"`
}

func defaultSettings() Settings {
	return Settings{
		REPL: REPLSettings{
			Prompt:      "lox> ",
			HistorySize: 500,
			Highlight:   true,
			Style:       "monokai",
		},
	}
}

// configDir picks the settings directory: $LOX_CONFIG_DIR, then
// $XDG_CONFIG_HOME/lox, then ~/.config/lox.
func configDir() string {
	if dir := os.Getenv("LOX_CONFIG_DIR"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lox")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".lox")
	}
	return filepath.Join(home, ".config", "lox")
}

// loadSettings reads settings from path, or from the default location when
// path is empty. A missing default file yields the defaults; a missing
// explicit file is an error.
func loadSettings(path string) (Settings, string, error) {
	settings := defaultSettings()
	explicit := path != ""
	if !explicit {
		path = filepath.Join(configDir(), settingsFileName)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return settings, path, nil
	}
	if err != nil {
		return settings, path, fmt.Errorf("read settings %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, &settings); err != nil {
		return defaultSettings(), path, fmt.Errorf("parse settings %q: %w", path, err)
	}
	if err := settings.validate(); err != nil {
		return defaultSettings(), path, fmt.Errorf("settings %q: %w", path, err)
	}
	return settings, path, nil
}

func (s Settings) validate() error {
	if s.RecursionLimit < 0 {
		return fmt.Errorf("recursion_limit must not be negative (got %d)", s.RecursionLimit)
	}
	if s.StepQuota < 0 {
		return fmt.Errorf("step_quota must not be negative (got %d)", s.StepQuota)
	}
	if s.REPL.HistorySize < 0 {
		return fmt.Errorf("repl.history_size must not be negative (got %d)", s.REPL.HistorySize)
	}
	return nil
}

func (s Settings) engineConfig() lox.Config {
	return lox.Config{
		RecursionLimit: s.RecursionLimit,
		StepQuota:      s.StepQuota,
	}
}
