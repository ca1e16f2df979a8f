package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lixenwraith/glog"
)

// ErrNotImplemented is returned by operations that are declared but not built
var ErrNotImplemented = errors.New("not yet implemented")

// NetworkError reports a transport failure or a non-2xx response
type NetworkError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch: GET %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch: GET %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ChecksumError reports a downloaded artifact whose digest differs from the expected one
type ChecksumError struct {
	URL      string
	Expected string
	Actual   string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("fetch: checksum mismatch for %s: expected %s, got %s", e.URL, e.Expected, e.Actual)
}

// Classify maps a pipeline result onto the shared outcome taxonomy.
// A nil error is OutcomeLogged; errors outside the taxonomy are OutcomeFatal.
func Classify(err error) glog.Outcome {
	var netErr *NetworkError
	var sumErr *ChecksumError
	switch {
	case err == nil:
		return glog.OutcomeLogged
	case errors.As(err, &sumErr):
		return glog.OutcomeChecksumMismatch
	case errors.As(err, &netErr),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return glog.OutcomeNetworkFailure
	case errors.Is(err, ErrNotImplemented):
		return glog.OutcomeNotImplemented
	default:
		return glog.OutcomeFatal
	}
}

// fmtErrorf wraps fmt.Errorf with the package prefix
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "fetch: ") {
		format = "fetch: " + format
	}
	return fmt.Errorf(format, args...)
}
