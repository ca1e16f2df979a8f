package glog

import (
	"sync/atomic"
)

// State encapsulates the runtime state of the logger
type State struct {
	Threshold atomic.Int64 // current Level

	Output  atomic.Value // stores *sink
	OnFatal atomic.Value // stores fatalHolder

	// Statistics
	TotalRecords     atomic.Uint64 // Records written, any level
	TotalSuppressed  atomic.Uint64 // Calls rejected by the threshold
	TotalFatals      atomic.Uint64 // Fatal records written
	TotalWriteErrors atomic.Uint64 // Failed writes to the output
	TotalStackFrames atomic.Uint64 // Frames emitted in stack dumps
}

// fatalHolder wraps a FatalHandler for atomic.Value, which rejects nil funcs
type fatalHolder struct {
	fn FatalHandler
}

// Stats is a point-in-time copy of the logger counters
type Stats struct {
	Records     uint64
	Suppressed  uint64
	Fatals      uint64
	WriteErrors uint64
	StackFrames uint64
}

// Stats returns the logger counters
func (l *Logger) Stats() Stats {
	return Stats{
		Records:     l.state.TotalRecords.Load(),
		Suppressed:  l.state.TotalSuppressed.Load(),
		Fatals:      l.state.TotalFatals.Load(),
		WriteErrors: l.state.TotalWriteErrors.Load(),
		StackFrames: l.state.TotalStackFrames.Load(),
	}
}
