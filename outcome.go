package glog

// Outcome classifies what happened to a diagnostic or a fallible operation.
// Log calls produce the first three; the fetch pipeline maps its errors onto the rest.
type Outcome int

const (
	OutcomeSuppressed Outcome = iota
	OutcomeLogged
	OutcomeFatal
	OutcomeNetworkFailure
	OutcomeChecksumMismatch
	OutcomeNotImplemented
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeLogged:
		return "logged"
	case OutcomeFatal:
		return "fatal"
	case OutcomeNetworkFailure:
		return "network_failure"
	case OutcomeChecksumMismatch:
		return "checksum_mismatch"
	case OutcomeNotImplemented:
		return "not_implemented"
	default:
		return "unknown"
	}
}
