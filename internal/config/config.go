// Package config loads termsheet settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultPath is looked up in the working directory when no --config flag is
// given.
const DefaultPath = "termsheet.yaml"

type Config struct {
	Layout  Layout  `yaml:"layout"`
	Edit    Edit    `yaml:"edit"`
	Log     Log     `yaml:"log"`
	Storage Storage `yaml:"storage"`
	UI      UI      `yaml:"ui"`
}

type Layout struct {
	LeftGutter    int `yaml:"left_gutter"`
	StatusLines   int `yaml:"status_lines"`
	DefaultWidth  int `yaml:"default_width"`
	DefaultHeight int `yaml:"default_height"`
	CellPadding   int `yaml:"cell_padding"`
	Cols          int `yaml:"cols"`
	Rows          int `yaml:"rows"`
}

type Edit struct {
	EnterStartsEdit     bool `yaml:"enter_starts_edit"`
	PrintableStartsEdit bool `yaml:"printable_starts_edit"`
	MoveAfterEnter      bool `yaml:"move_after_enter"`
	SelectAllOnEdit     bool `yaml:"select_all_on_edit"`
}

type Log struct {
	Level string `yaml:"level"`
	// File receives log output while the terminal UI owns the screen.
	File string `yaml:"file"`
}

type Storage struct {
	// Snapshots is the bbolt database holding named sheet snapshots.
	Snapshots string `yaml:"snapshots"`
	// Watch reloads the open file when it changes on disk.
	Watch bool `yaml:"watch"`
}

type UI struct {
	Splash bool `yaml:"splash"`
}

// Default returns the settings used when no file overrides them.
func Default() *Config {
	return &Config{
		Layout: Layout{
			LeftGutter:    4,
			StatusLines:   2,
			DefaultWidth:  16,
			DefaultHeight: 1,
			CellPadding:   1,
			Cols:          8,
			Rows:          8,
		},
		Edit: Edit{
			EnterStartsEdit: true,
			MoveAfterEnter:  true,
			SelectAllOnEdit: true,
		},
		Log: Log{
			Level: "info",
			File:  "termsheet.log",
		},
		Storage: Storage{
			Snapshots: "termsheet.db",
		},
		UI: UI{
			Splash: true,
		},
	}
}

// Load reads path over the defaults. When path is empty DefaultPath is tried
// and may be missing.
func Load(path string) (*Config, error) {
	cfg := Default()
	optional := path == ""
	if optional {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	log.Debugf("loaded config from %s", path)
	return cfg, nil
}

// Validate rejects layouts the UI cannot draw.
func (c *Config) Validate() error {
	l := c.Layout
	switch {
	case l.LeftGutter < 2:
		return errors.New("layout.left_gutter must be at least 2")
	case l.StatusLines < 1:
		return errors.New("layout.status_lines must be at least 1")
	case l.DefaultWidth < 4:
		return errors.New("layout.default_width must be at least 4")
	case l.DefaultHeight < 1:
		return errors.New("layout.default_height must be at least 1")
	case l.CellPadding < 0:
		return errors.New("layout.cell_padding must not be negative")
	case l.Cols < 1 || l.Rows < 1:
		return errors.New("layout.cols and layout.rows must be positive")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (log.Level, error) {
	return log.ParseLevel(c.Log.Level)
}
