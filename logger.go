package glog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Logger is the core struct that encapsulates all logger functionality
type Logger struct {
	currentConfig atomic.Value // stores *Config
	state         State
	initMu        sync.Mutex
	writeMu       sync.Mutex // keeps the lines of one call together

	clock func() time.Time
	pid   int
}

// NewLogger creates a new Logger instance with default settings, writing to stderr
// and exiting the process on fatal records
func NewLogger() *Logger {
	l := &Logger{
		clock: time.Now,
		pid:   os.Getpid(),
	}

	cfg := DefaultConfig()
	l.currentConfig.Store(cfg)
	l.state.Threshold.Store(cfg.Level)
	l.state.Output.Store(&sink{w: os.Stderr})
	l.state.OnFatal.Store(fatalHolder{fn: exitProcess})

	return l
}

// exitProcess is the production fatal handler
func exitProcess(code int, _ string) {
	os.Exit(code)
}

// ApplyConfig applies a validated configuration to the logger.
// The threshold is reset to cfg.Level. A writer installed with SetOutput is
// kept unless cfg names a different console_target than the current config.
func (l *Logger) ApplyConfig(cfg *Config) error {
	if cfg == nil {
		return fmtErrorf("configuration cannot be nil")
	}

	if err := cfg.Validate(); err != nil {
		return fmtErrorf("invalid configuration: %w", err)
	}

	l.initMu.Lock()
	defer l.initMu.Unlock()

	cfg = cfg.Clone()
	prev := l.getConfig()
	l.currentConfig.Store(cfg)
	l.state.Threshold.Store(cfg.Level)

	if l.state.Output.Load().(*sink).custom && prev.ConsoleTarget == cfg.ConsoleTarget {
		return nil
	}

	var writer io.Writer = os.Stderr
	if cfg.ConsoleTarget == "stdout" {
		writer = os.Stdout
	}
	l.state.Output.Store(&sink{w: writer})

	return nil
}

// GetConfig returns a copy of current configuration, Level reflecting the live threshold
func (l *Logger) GetConfig() *Config {
	cfg := l.getConfig().Clone()
	cfg.Level = int64(l.GetThreshold())
	return cfg
}

// SetThreshold changes the minimum level for emitted records
func (l *Logger) SetThreshold(level Level) {
	l.state.Threshold.Store(int64(level))
}

// GetThreshold returns the current threshold
func (l *Logger) GetThreshold() Level {
	return Level(l.state.Threshold.Load())
}

// SetOutput redirects the diagnostic stream. A nil writer discards output.
func (l *Logger) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	l.state.Output.Store(&sink{w: w, custom: true})
}

// SetFatalHandler replaces the action taken after a fatal record is written.
// A nil handler restores process termination.
func (l *Logger) SetFatalHandler(fn FatalHandler) {
	if fn == nil {
		fn = exitProcess
	}
	l.state.OnFatal.Store(fatalHolder{fn: fn})
}

// Enabled reports whether a record at level would be written.
// DISABLED silences everything including FATAL. Otherwise FATAL always passes,
// and other levels pass only when the threshold equals them: a threshold above
// the level suppresses it, and so does one below.
func (l *Logger) Enabled(level Level) bool {
	threshold := l.GetThreshold()
	if threshold == LevelDisabled || (threshold > level && level != LevelFatal) {
		return false
	}
	return level == LevelFatal || threshold >= level
}

// Log writes args, formatted with fmt.Sprint, at level
func (l *Logger) Log(level Level, args ...any) Outcome {
	return l.output(level, logDepth, fmt.Sprint(args...))
}

// LogDepth is Log attributing the record depth frames above the caller
func (l *Logger) LogDepth(depth int, level Level, args ...any) Outcome {
	return l.output(level, logDepth+depth, fmt.Sprint(args...))
}

// Info logs at info level
func (l *Logger) Info(args ...any) Outcome {
	return l.output(LevelInfo, logDepth, fmt.Sprint(args...))
}

// Infof logs a formatted message at info level
func (l *Logger) Infof(format string, args ...any) Outcome {
	return l.output(LevelInfo, logDepth, fmt.Sprintf(format, args...))
}

// Debug logs at debug level, preceded by a stack dump
func (l *Logger) Debug(args ...any) Outcome {
	return l.output(LevelDebug, logDepth, fmt.Sprint(args...))
}

// Debugf logs a formatted message at debug level
func (l *Logger) Debugf(format string, args ...any) Outcome {
	return l.output(LevelDebug, logDepth, fmt.Sprintf(format, args...))
}

// Fatal logs at fatal level, dumps the stack and hands off to the fatal handler
func (l *Logger) Fatal(args ...any) Outcome {
	return l.output(LevelFatal, logDepth, fmt.Sprint(args...))
}

// Fatalf logs a formatted message at fatal level
func (l *Logger) Fatalf(format string, args ...any) Outcome {
	return l.output(LevelFatal, logDepth, fmt.Sprintf(format, args...))
}

// getConfig returns the current configuration
func (l *Logger) getConfig() *Config {
	return l.currentConfig.Load().(*Config)
}

func (l *Logger) getWriter() io.Writer {
	return l.state.Output.Load().(*sink).w
}

func (l *Logger) getFatalHandler() FatalHandler {
	return l.state.OnFatal.Load().(fatalHolder).fn
}

// output handles the core logging logic. skip 0 attributes the record to the
// function calling output.
func (l *Logger) output(level Level, skip int, msg string) Outcome {
	if !l.Enabled(level) {
		l.state.TotalSuppressed.Add(1)
		return OutcomeSuppressed
	}

	site := CaptureCallSite(skip + 1)
	cfg := l.getConfig()
	record := Record{
		Time:    l.clock(),
		PID:     l.pid,
		File:    site.File,
		Line:    site.Line,
		Message: msg,
	}

	buf := make([]byte, 0, 256)
	switch level {
	case LevelFatal:
		record.Flag = FlagFatal
		buf = appendRecord(buf, record)
		buf = append(buf, '\n')
		buf = append(buf, stackTraceHeader...)
		buf = l.appendStack(buf, skip+1, cfg)
		buf = append(buf, exitedTrailer...)
	case LevelDebug:
		record.Flag = cfg.DebugFlag[0]
		if cfg.DebugStack {
			buf = l.appendStack(buf, skip+1, cfg)
		}
		buf = appendRecord(buf, record)
		buf = append(buf, '\n')
	default:
		record.Flag = FlagInfo
		buf = appendRecord(buf, record)
		buf = append(buf, '\n')
	}

	l.write(buf)

	if level != LevelFatal {
		return OutcomeLogged
	}
	l.state.TotalFatals.Add(1)
	l.getFatalHandler()(ExitCodeFatal, msg)
	return OutcomeFatal
}

// appendStack appends the stack above the frame skip levels over its caller
func (l *Logger) appendStack(buf []byte, skip int, cfg *Config) []byte {
	stack := CaptureStack(skip + 1)
	for _, f := range stack {
		buf = append(buf, FormatFrame(f, cfg.ShowCodeText)...)
	}
	l.state.TotalStackFrames.Add(uint64(len(stack)))
	return buf
}

func (l *Logger) write(buf []byte) {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	if _, err := l.getWriter().Write(buf); err != nil {
		l.state.TotalWriteErrors.Add(1)
		return
	}
	l.state.TotalRecords.Add(1)
}
