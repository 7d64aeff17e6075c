package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultFileName = "config.yaml"

// Config captures the user-adjustable knobs for recording, simplification,
// and storage.
type Config struct {
	Record   RecordConfig   `yaml:"record"`
	Simplify SimplifyConfig `yaml:"simplify"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Source indicates where the configuration originated (defaults or a file path).
	Source string `yaml:"-"`
}

// RecordConfig controls the capture session.
type RecordConfig struct {
	// SnapshotFrequencyHz is how many state snapshots to take per second.
	// Zero disables periodic snapshots.
	SnapshotFrequencyHz float64 `yaml:"snapshot_frequency_hz"`

	// LiveMerge folds each captured event into the previous one as it
	// arrives, keeping recordings small during long scroll or typing runs.
	LiveMerge bool `yaml:"live_merge"`
}

// SimplifyConfig carries the thresholds of every simplification pass.
type SimplifyConfig struct {
	PressClick  WindowConfig `yaml:"press_click"`
	MultiClick  WindowConfig `yaml:"multi_click"`
	KeyWrite    WindowConfig `yaml:"key_write"`
	WriteMerge  WindowConfig `yaml:"write_merge"`
	ScrollMerge ScrollConfig `yaml:"scroll_merge"`
}

// WindowConfig bounds how far apart two events may be and still merge.
type WindowConfig struct {
	MaxSeconds float64 `yaml:"max_seconds"`
	MaxPixels  float64 `yaml:"max_pixels"`
}

// ScrollConfig extends the merge window with direction handling.
type ScrollConfig struct {
	MaxSeconds              float64 `yaml:"max_seconds"`
	MaxPixels               float64 `yaml:"max_pixels"`
	MergeOppositeDirections bool    `yaml:"merge_opposite_directions"`
}

// StorageConfig controls where recordings are persisted.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig defines log verbosity and formatting.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the baseline configuration used when no overrides are
// supplied.
func Default() Config {
	return Config{
		Record: RecordConfig{
			SnapshotFrequencyHz: 1,
			LiveMerge:           false,
		},
		Simplify: SimplifyConfig{
			PressClick:  WindowConfig{MaxSeconds: 0.2, MaxPixels: 5},
			MultiClick:  WindowConfig{MaxSeconds: 0.4, MaxPixels: 5},
			KeyWrite:    WindowConfig{MaxSeconds: 0.15},
			WriteMerge:  WindowConfig{MaxSeconds: 1},
			ScrollMerge: ScrollConfig{MaxSeconds: 3, MaxPixels: 5},
		},
		Storage: StorageConfig{
			DatabasePath: "recordings.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Source: "<defaults>",
	}
}

// Load reads configuration from disk if present, otherwise returning
// defaults. When path is empty, the loader attempts to read ./config.yaml
// but tolerates a missing file. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	candidate := strings.TrimSpace(path)
	explicit := candidate != ""
	if !explicit {
		candidate = DefaultFileName
	}

	data, err := os.ReadFile(candidate)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if explicit {
				return cfg, fmt.Errorf("config file %q not found", candidate)
			}
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file %q: %w", candidate, err)
	}

	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %q: %w", candidate, err)
	}
	cfg.Source = candidate
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate ensures essential configuration values are present and sensible.
func (c Config) Validate() error {
	if c.Record.SnapshotFrequencyHz < 0 {
		return errors.New("record.snapshot_frequency_hz must not be negative")
	}

	windows := []struct {
		name string
		w    WindowConfig
	}{
		{"simplify.press_click", c.Simplify.PressClick},
		{"simplify.multi_click", c.Simplify.MultiClick},
		{"simplify.key_write", c.Simplify.KeyWrite},
		{"simplify.write_merge", c.Simplify.WriteMerge},
		{"simplify.scroll_merge", WindowConfig{MaxSeconds: c.Simplify.ScrollMerge.MaxSeconds, MaxPixels: c.Simplify.ScrollMerge.MaxPixels}},
	}
	for _, win := range windows {
		if win.w.MaxSeconds <= 0 {
			return fmt.Errorf("%s.max_seconds must be positive", win.name)
		}
		if win.w.MaxPixels < 0 {
			return fmt.Errorf("%s.max_pixels must not be negative", win.name)
		}
	}

	if strings.TrimSpace(c.Storage.DatabasePath) == "" {
		return errors.New("storage.database_path must not be empty")
	}

	if _, err := NormalizeLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if _, err := NormalizeFormat(c.Logging.Format); err != nil {
		return err
	}

	return nil
}

func (c *Config) normalize() {
	defaults := Default()

	c.Storage.DatabasePath = filepath.Clean(strings.TrimSpace(c.Storage.DatabasePath))
	if c.Storage.DatabasePath == "." || c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = defaults.Storage.DatabasePath
	}

	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaults.Logging.Format
	}

	if c.Simplify.PressClick.MaxSeconds == 0 {
		c.Simplify.PressClick = defaults.Simplify.PressClick
	}
	if c.Simplify.MultiClick.MaxSeconds == 0 {
		c.Simplify.MultiClick = defaults.Simplify.MultiClick
	}
	if c.Simplify.KeyWrite.MaxSeconds == 0 {
		c.Simplify.KeyWrite = defaults.Simplify.KeyWrite
	}
	if c.Simplify.WriteMerge.MaxSeconds == 0 {
		c.Simplify.WriteMerge = defaults.Simplify.WriteMerge
	}
	if c.Simplify.ScrollMerge.MaxSeconds == 0 {
		opposite := c.Simplify.ScrollMerge.MergeOppositeDirections
		c.Simplify.ScrollMerge = defaults.Simplify.ScrollMerge
		c.Simplify.ScrollMerge.MergeOppositeDirections = opposite
	}
}

// NormalizeLogLevel validates and lowercases known logging levels.
func NormalizeLogLevel(level string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return "info", nil
	case "debug":
		return "debug", nil
	case "warn", "warning":
		return "warn", nil
	case "error":
		return "error", nil
	default:
		return "", fmt.Errorf("unsupported log level %q", level)
	}
}

// NormalizeFormat validates and canonicalizes logging format identifiers.
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return "json", nil
	case "console", "text":
		return "console", nil
	default:
		return "", fmt.Errorf("unsupported log format %q", format)
	}
}
