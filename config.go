package glog

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/glog/internal/confload"
)

// configPrefix is the TOML table holding logger settings
const configPrefix = "log."

// Config holds all logger configuration values
type Config struct {
	Level         int64  `toml:"level"`          // Initial threshold: -1 fatal, 0 disabled, 1 info, 2 debug
	ConsoleTarget string `toml:"console_target"` // "stderr" or "stdout"

	// Debug records render with DebugFlag and, when DebugStack is set, are
	// preceded by a dump of the call stack
	DebugFlag  string `toml:"debug_flag"`
	DebugStack bool   `toml:"debug_stack"`

	// Include the source text of each frame in stack dumps when readable
	ShowCodeText bool `toml:"show_code_text"`
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Level:         int64(LevelInfo),
	ConsoleTarget: "stderr",
	DebugFlag:     string(FlagDebug),
	DebugStack:    true,
	ShowCodeText:  true,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads the [log] table of a TOML file over the defaults and validates it
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := confload.Load(path, configPrefix, cfg); err != nil {
		return nil, fmtErrorf("%w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()
	if err := confload.ApplyOverrides(cfg, overrides); err != nil {
		return nil, fmtErrorf("failed to apply overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate performs validation on the configuration, reporting every invalid field
func (c *Config) Validate() error {
	var err error

	if Level(c.Level) < LevelFatal || Level(c.Level) > LevelDebug {
		err = combineErrors(err, fmtErrorf("level must be between -1 and 2: %d", c.Level))
	}

	if c.ConsoleTarget != "stdout" && c.ConsoleTarget != "stderr" {
		err = combineErrors(err, fmtErrorf("invalid console_target: '%s' (use stdout or stderr)", c.ConsoleTarget))
	}

	if len(c.DebugFlag) != 1 {
		err = combineErrors(err, fmtErrorf("debug_flag must be a single character: '%s'", c.DebugFlag))
	}

	return err
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// Save writes the configuration as a [log] table. The file is replaced atomically.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmtErrorf("failed to create temp config file in '%s': %w", dir, err)
	}
	tmpName := tmp.Name()
	promoted := false
	defer func() {
		if !promoted {
			_ = os.Remove(tmpName)
		}
	}()

	doc := map[string]any{strings.TrimSuffix(configPrefix, "."): c}
	if err := toml.NewEncoder(tmp).Encode(doc); err != nil {
		_ = tmp.Close()
		return fmtErrorf("failed to encode config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmtErrorf("failed to close temp config file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmtErrorf("failed to save config to '%s': %w", path, err)
	}
	promoted = true
	return nil
}
