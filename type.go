package glog

import (
	"io"
	"time"
)

// Record is a single log entry, built per call and discarded after rendering
type Record struct {
	Flag    byte
	Time    time.Time
	PID     int
	File    string // basename only
	Line    int
	Message string
}

// CallSite is the source location of a Log or Check invocation
type CallSite struct {
	File     string
	Line     int
	Function string
}

// Frame is one entry of a captured call stack
type Frame struct {
	File     string
	Line     int
	Function string
}

// FatalHandler receives control after a fatal record and its stack trace are written.
// The default handler terminates the process with code.
type FatalHandler func(code int, msg string)

// sink is a wrapper around an io.Writer, atomic value type change workaround
type sink struct {
	w      io.Writer
	custom bool // installed by SetOutput, survives ApplyConfig
}
