package compat

import (
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/glog"
)

var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)

// FastHTTPAdapter wraps glog.Logger to implement the fasthttp Logger interface
type FastHTTPAdapter struct {
	logger        *glog.Logger
	prefix        string
	levelDetector func(string) glog.Level // Function to detect log level from message
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter
func NewFastHTTPAdapter(logger *glog.Logger, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		logger:        logger,
		prefix:        "fasthttp: ",
		levelDetector: DetectLogLevel, // Default level detection
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithFastHTTPPrefix sets the text placed before every message
func WithFastHTTPPrefix(prefix string) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.prefix = prefix
	}
}

// WithLevelDetector sets a custom function to detect log level from message content
func WithLevelDetector(detector func(string) glog.Level) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// Printf implements fasthttp's Logger interface. Messages never take the
// fatal path: fasthttp reports recoverable conditions only.
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := glog.LevelInfo
	if a.levelDetector != nil {
		if detected := a.levelDetector(msg); detected == glog.LevelDebug {
			level = detected
		}
	}

	a.logger.LogDepth(1, level, a.prefix, msg)
}

// DetectLogLevel maps debug and trace chatter to debug level, everything else to info
func DetectLogLevel(msg string) glog.Level {
	msgLower := strings.ToLower(msg)

	if strings.Contains(msgLower, "debug") ||
		strings.Contains(msgLower, "trace") {
		return glog.LevelDebug
	}

	return glog.LevelInfo
}
