package glog

import (
	"fmt"
	"io"
)

// Global instance for package-level functions
var defaultLogger = NewLogger()

// Default returns the logger behind the package-level functions
func Default() *Logger {
	return defaultLogger
}

// SetThreshold sets the process-wide threshold
func SetThreshold(level Level) {
	defaultLogger.SetThreshold(level)
}

// GetThreshold returns the process-wide threshold
func GetThreshold() Level {
	return defaultLogger.GetThreshold()
}

// SetOutput redirects the default logger
func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

// SetFatalHandler replaces the default logger's fatal action
func SetFatalHandler(fn FatalHandler) {
	defaultLogger.SetFatalHandler(fn)
}

// ApplyConfig configures the default logger
func ApplyConfig(cfg *Config) error {
	return defaultLogger.ApplyConfig(cfg)
}

// LoadConfig configures the default logger from a TOML file plus "key=value" overrides
func LoadConfig(path string, overrides ...string) error {
	cfg, err := NewConfigFromFile(path)
	if err != nil {
		return err
	}
	if err := defaultLogger.ApplyConfig(cfg); err != nil {
		return err
	}
	if len(overrides) == 0 {
		return nil
	}
	return defaultLogger.ApplyConfigString(overrides...)
}

// SaveConfig writes the default logger's configuration to path
func SaveConfig(path string) error {
	return defaultLogger.GetConfig().Save(path)
}

// Log writes args at level on the default logger
func Log(level Level, args ...any) Outcome {
	return defaultLogger.output(level, logDepth, fmt.Sprint(args...))
}

// Info logs at info level
func Info(args ...any) Outcome {
	return defaultLogger.output(LevelInfo, logDepth, fmt.Sprint(args...))
}

// Infof logs a formatted message at info level
func Infof(format string, args ...any) Outcome {
	return defaultLogger.output(LevelInfo, logDepth, fmt.Sprintf(format, args...))
}

// Debug logs at debug level
func Debug(args ...any) Outcome {
	return defaultLogger.output(LevelDebug, logDepth, fmt.Sprint(args...))
}

// Debugf logs a formatted message at debug level
func Debugf(format string, args ...any) Outcome {
	return defaultLogger.output(LevelDebug, logDepth, fmt.Sprintf(format, args...))
}

// Fatal logs at fatal level and exits with ExitCodeFatal
func Fatal(args ...any) Outcome {
	return defaultLogger.output(LevelFatal, logDepth, fmt.Sprint(args...))
}

// Fatalf logs a formatted message at fatal level and exits with ExitCodeFatal
func Fatalf(format string, args ...any) Outcome {
	return defaultLogger.output(LevelFatal, logDepth, fmt.Sprintf(format, args...))
}

// Check fails if cond is false
func Check(cond bool, args ...any) {
	if !cond {
		defaultLogger.checkFailed(msgCheckFailed, args)
	}
}

// CheckEqual fails if a != b
func CheckEqual(a, b any, args ...any) {
	if msg, failed := evalEqual(a, b); failed {
		defaultLogger.checkFailed(msg, args)
	}
}

// CheckNotEqual fails if a == b
func CheckNotEqual(a, b any, args ...any) {
	if msg, failed := evalNotEqual(a, b); failed {
		defaultLogger.checkFailed(msg, args)
	}
}

// CheckLessEqual fails unless a <= b
func CheckLessEqual(a, b any, args ...any) {
	if msg, failed := evalOrder(a, b, opLessEqual); failed {
		defaultLogger.checkFailed(msg, args)
	}
}

// CheckGreaterEqual fails unless a >= b
func CheckGreaterEqual(a, b any, args ...any) {
	if msg, failed := evalOrder(a, b, opGreaterEqual); failed {
		defaultLogger.checkFailed(msg, args)
	}
}

// CheckLessThan fails unless a < b
func CheckLessThan(a, b any, args ...any) {
	if msg, failed := evalOrder(a, b, opLessThan); failed {
		defaultLogger.checkFailed(msg, args)
	}
}

// CheckGreaterThan fails unless a > b
func CheckGreaterThan(a, b any, args ...any) {
	if msg, failed := evalOrder(a, b, opGreaterThan); failed {
		defaultLogger.checkFailed(msg, args)
	}
}

// CheckNotNil fails if v is nil
func CheckNotNil(v any, args ...any) {
	if isNil(v) {
		defaultLogger.checkFailed(msgNilValue, args)
	}
}
