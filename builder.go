package glog

import (
	"io"
	"time"
)

// Builder provides a fluent API for building loggers.
// It wraps a Config instance and the runtime hooks that are not part of a config file.
type Builder struct {
	cfg    *Config
	output io.Writer
	fatal  FatalHandler
	clock  func() time.Time
	pid    int
	err    error // Accumulate errors for deferred handling
}

// NewBuilder creates a new builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build creates a new Logger instance with the specified configuration.
func (b *Builder) Build() (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	logger := NewLogger()
	if err := logger.ApplyConfig(b.cfg); err != nil {
		return nil, err
	}

	if b.output != nil {
		logger.SetOutput(b.output)
	}
	if b.fatal != nil {
		logger.SetFatalHandler(b.fatal)
	}
	if b.clock != nil {
		logger.clock = b.clock
	}
	if b.pid != 0 {
		logger.pid = b.pid
	}

	return logger, nil
}

// Threshold sets the initial threshold.
func (b *Builder) Threshold(level Level) *Builder {
	b.cfg.Level = int64(level)
	return b
}

// LevelString sets the initial threshold from a name or number.
func (b *Builder) LevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg.Level = int64(lvl)
	return b
}

// ConsoleTarget selects "stderr" or "stdout".
func (b *Builder) ConsoleTarget(target string) *Builder {
	b.cfg.ConsoleTarget = target
	return b
}

// DebugFlag sets the flag character of debug records.
func (b *Builder) DebugFlag(flag byte) *Builder {
	b.cfg.DebugFlag = string(flag)
	return b
}

// DebugStack toggles the stack dump before debug records.
func (b *Builder) DebugStack(enable bool) *Builder {
	b.cfg.DebugStack = enable
	return b
}

// ShowCodeText toggles source text in stack dumps.
func (b *Builder) ShowCodeText(enable bool) *Builder {
	b.cfg.ShowCodeText = enable
	return b
}

// Output overrides the console target with an arbitrary writer.
func (b *Builder) Output(w io.Writer) *Builder {
	b.output = w
	return b
}

// FatalHandler replaces process termination after fatal records.
func (b *Builder) FatalHandler(fn FatalHandler) *Builder {
	b.fatal = fn
	return b
}

// Clock sets the timestamp source.
func (b *Builder) Clock(fn func() time.Time) *Builder {
	b.clock = fn
	return b
}

// PID overrides the process id printed in records.
func (b *Builder) PID(pid int) *Builder {
	b.pid = pid
	return b
}

// Example usage:
//
//	var buf bytes.Buffer
//	logger, err := glog.NewBuilder().
//		LevelString("info").
//		Output(&buf).
//		FatalHandler(func(code int, msg string) { panic(msg) }).
//		Build()
//
//	if err == nil {
//		logger.CheckEqual(want, got)
//	}
