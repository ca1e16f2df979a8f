package glog

// Level is a log severity. Values follow the glog convention used by the
// provisioning tools: FATAL is a sentinel below DISABLED, not the top of a ranking.
type Level int64

// Log level constants
const (
	LevelFatal    Level = -1
	LevelDisabled Level = 0
	LevelInfo     Level = 1
	LevelDebug    Level = 2
)

// ExitCodeFatal is the process exit status for fatal logs and failed checks.
// Supervisors match on it, do not change.
const ExitCodeFatal = 6

// Record flag characters
const (
	FlagFatal byte = 'F'
	FlagInfo  byte = 'I'
	// FlagDebug is the default flag for debug records, which render like info records
	FlagDebug = FlagInfo
)

// Fixed output fragments around a fatal record
const (
	stackTraceHeader = "Stack trace:\n"
	exitedTrailer    = "Exited\n"
)

// Timestamp layout for MMDDYY HH:MM:SS.ffffff
const timestampLayout = "010206 15:04:05.000000"

// Call depth offsets, counted from the function that invokes output
const (
	// logDepth attributes to the caller of Log/Info/Debug/Fatal
	logDepth = 1
	// checkDepth adds the frame of the assertion helper
	checkDepth = logDepth + 1
)

// Default check failure messages
const (
	msgCheckFailed = "check failed"
	msgNilValue    = "check failed: value is nil"
)
