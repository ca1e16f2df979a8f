package compat

import (
	"fmt"

	"github.com/panjf2000/gnet/v2/pkg/logging"

	"github.com/lixenwraith/glog"
)

var _ logging.Logger = (*GnetAdapter)(nil)

// GnetAdapter wraps glog.Logger to implement the gnet logging.Logger interface.
// Records are attributed to the gnet code calling the adapter.
type GnetAdapter struct {
	logger *glog.Logger
	prefix string
}

// NewGnetAdapter creates a new gnet-compatible logger adapter
func NewGnetAdapter(logger *glog.Logger, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		logger: logger,
		prefix: "gnet: ",
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithGnetPrefix sets the text placed before every message
func WithGnetPrefix(prefix string) GnetOption {
	return func(a *GnetAdapter) {
		a.prefix = prefix
	}
}

// Debugf logs at debug level with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.logger.LogDepth(1, glog.LevelDebug, a.prefix, fmt.Sprintf(format, args...))
}

// Infof logs at info level with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.logger.LogDepth(1, glog.LevelInfo, a.prefix, fmt.Sprintf(format, args...))
}

// Warnf logs at info level, labelled as a warning
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.logger.LogDepth(1, glog.LevelInfo, a.prefix, "warning: ", fmt.Sprintf(format, args...))
}

// Errorf logs at info level, labelled as an error
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.logger.LogDepth(1, glog.LevelInfo, a.prefix, "error: ", fmt.Sprintf(format, args...))
}

// Fatalf goes through the logger's fatal path: stack dump, then the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	a.logger.LogDepth(1, glog.LevelFatal, a.prefix, fmt.Sprintf(format, args...))
}
