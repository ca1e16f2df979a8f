package glog

import (
	"github.com/lixenwraith/glog/internal/confload"
)

// ApplyConfigString applies string key-value overrides to the logger's current configuration.
// Each override should be in the format "key=value".
// The configuration is cloned before modification.
//
// Example:
//
//	logger := glog.NewLogger()
//	err := logger.ApplyConfigString(
//	    "level=debug",
//	    "console_target=stdout",
//	)
func (l *Logger) ApplyConfigString(overrides ...string) error {
	cfg := l.GetConfig()

	var errs []error
	for _, override := range overrides {
		key, value, err := confload.ParseKeyValue(override)
		if err != nil {
			errs = append(errs, fmtErrorf("%w", err))
			continue
		}

		if err := applyConfigField(cfg, key, value); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return confload.CombineErrors("glog: ", errs)
	}

	return l.ApplyConfig(cfg)
}

// applyConfigField applies a single key-value override to a Config
func applyConfigField(cfg *Config, key, value string) error {
	// Special handling: accept both numeric and named levels
	if key == "level" {
		lvl, err := ParseLevel(value)
		if err != nil {
			return fmtErrorf("invalid level value '%s': %w", value, err)
		}
		cfg.Level = int64(lvl)
		return nil
	}

	if err := confload.SetString(cfg, key, value); err != nil {
		return fmtErrorf("%w", err)
	}
	return nil
}
