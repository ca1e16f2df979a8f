package glog

import (
	"fmt"
	"strconv"
	"strings"
)

// String returns the level name
func (l Level) String() string {
	switch l {
	case LevelFatal:
		return "FATAL"
	case LevelDisabled:
		return "DISABLED"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "LEVEL(" + strconv.FormatInt(int64(l), 10) + ")"
	}
}

// ParseLevel converts a level name or its numeric value to a Level
func ParseLevel(levelStr string) (Level, error) {
	s := strings.ToLower(strings.TrimSpace(levelStr))
	switch s {
	case "fatal":
		return LevelFatal, nil
	case "disabled", "off", "none":
		return LevelDisabled, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		lvl := Level(n)
		if lvl < LevelFatal || lvl > LevelDebug {
			return 0, fmtErrorf("level out of range: %d (use -1, 0, 1, 2)", n)
		}
		return lvl, nil
	}
	return 0, fmtErrorf("invalid level string: '%s' (use fatal, disabled, info, debug)", levelStr)
}

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "glog: ") {
		format = "glog: " + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return fmt.Errorf("%v; %w", err1, err2)
}
