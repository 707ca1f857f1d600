package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	PrefsDir  string `json:"prefs_dir" yaml:"prefs_dir" toml:"prefs_dir"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`

	// Lifecycle tunables; zero keeps the manager defaults.
	LoadAttempts    int `json:"load_attempts" yaml:"load_attempts" toml:"load_attempts"`
	RetryDelayMS    int `json:"retry_delay_ms" yaml:"retry_delay_ms" toml:"retry_delay_ms"`
	ProgressStepPct int `json:"progress_step_pct" yaml:"progress_step_pct" toml:"progress_step_pct"`

	// RAM admission margin; zero keeps the probe default (1.0).
	SafetyMargin float64 `json:"safety_margin" yaml:"safety_margin" toml:"safety_margin"`

	// ResampleIntervalSec drives the periodic resource publisher; zero
	// keeps the default in main.
	ResampleIntervalSec int `json:"resample_interval_sec" yaml:"resample_interval_sec" toml:"resample_interval_sec"`

	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
