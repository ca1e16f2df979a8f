package compat

import (
	"bytes"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/glog"
)

// createTestCompatBuilder creates a builder around a logger writing to a buffer
func createTestCompatBuilder(t *testing.T, level glog.Level) (*Builder, *glog.Logger, *bytes.Buffer, *[]string) {
	t.Helper()
	var buf bytes.Buffer
	var fatals []string

	appLogger, err := glog.NewBuilder().
		Threshold(level).
		DebugStack(false).
		ShowCodeText(false).
		Output(&buf).
		FatalHandler(func(_ int, msg string) { fatals = append(fatals, msg) }).
		Build()
	require.NoError(t, err)

	builder := NewBuilder().WithLogger(appLogger)
	return builder, appLogger, &buf, &fatals
}

// records returns the record lines of the buffer, skipping stack frames
func records(buf *bytes.Buffer) []string {
	var out []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "[") {
			out = append(out, line)
		}
	}
	return out
}

func nextLine() int {
	_, _, line, _ := runtime.Caller(1)
	return line + 1
}

// TestCompatBuilder verifies the compatibility builder can be initialized correctly
func TestCompatBuilder(t *testing.T) {
	t.Run("with existing logger", func(t *testing.T) {
		builder, logger, _, _ := createTestCompatBuilder(t, glog.LevelInfo)

		gnetAdapter, err := builder.BuildGnet()
		require.NoError(t, err)
		assert.Same(t, logger, gnetAdapter.logger)

		fasthttpAdapter, err := builder.BuildFastHTTP()
		require.NoError(t, err)
		assert.Same(t, logger, fasthttpAdapter.logger)
	})

	t.Run("with config", func(t *testing.T) {
		logCfg := glog.DefaultConfig()
		logCfg.Level = int64(glog.LevelDebug)

		builder := NewBuilder().WithConfig(logCfg)
		_, err := builder.BuildFastHTTP()
		require.NoError(t, err)

		logger1, err := builder.GetLogger()
		require.NoError(t, err)
		logger2, err := builder.GetLogger()
		require.NoError(t, err)
		assert.Same(t, logger1, logger2)
		assert.Equal(t, glog.LevelDebug, logger1.GetThreshold())
	})

	t.Run("nil logger", func(t *testing.T) {
		_, err := NewBuilder().WithLogger(nil).BuildGnet()
		assert.Error(t, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := glog.DefaultConfig()
		cfg.ConsoleTarget = "printer"
		_, err := NewBuilder().WithConfig(cfg).BuildGnet()
		assert.Error(t, err)
	})
}

// TestGnetAdapter tests the gnet adapter's levels and attribution
func TestGnetAdapter(t *testing.T) {
	builder, _, buf, fatals := createTestCompatBuilder(t, glog.LevelInfo)
	adapter, err := builder.BuildGnet()
	require.NoError(t, err)

	adapter.Debugf("gnet debug id=%d", 1)
	line := nextLine()
	adapter.Infof("gnet info id=%d", 2)
	adapter.Warnf("gnet warn id=%d", 3)
	adapter.Errorf("gnet error id=%d", 4)
	adapter.Fatalf("gnet fatal id=%d", 5)

	lines := records(buf)
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], fmt.Sprintf(" compat_test.go:%d] gnet: gnet info id=2", line))
	assert.True(t, strings.HasSuffix(lines[1], "] gnet: warning: gnet warn id=3"))
	assert.True(t, strings.HasSuffix(lines[2], "] gnet: error: gnet error id=4"))
	assert.True(t, strings.HasPrefix(lines[3], "[F"))
	assert.True(t, strings.HasSuffix(lines[3], "] gnet: gnet fatal id=5"))

	assert.Equal(t, []string{"gnet: gnet fatal id=5"}, *fatals)
}

func TestGnetAdapterDebug(t *testing.T) {
	builder, _, buf, _ := createTestCompatBuilder(t, glog.LevelDebug)
	adapter, err := builder.BuildGnet(WithGnetPrefix("[loop] "))
	require.NoError(t, err)

	adapter.Debugf("event %s", "open")
	adapter.Infof("hidden at debug threshold")

	lines := records(buf)
	require.Len(t, lines, 1)
	assert.True(t, strings.HasSuffix(lines[0], "] [loop] event open"), lines[0])
}

// TestFastHTTPAdapter tests the fasthttp adapter's level detection
func TestFastHTTPAdapter(t *testing.T) {
	builder, _, buf, fatals := createTestCompatBuilder(t, glog.LevelInfo)
	adapter, err := builder.BuildFastHTTP()
	require.NoError(t, err)

	line := nextLine()
	adapter.Printf("error when serving connection %q: %v", "1.2.3.4", "timeout")
	adapter.Printf("debug: connection reused")
	adapter.Printf("fatal-looking message stays informational")

	lines := records(buf)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], fmt.Sprintf(" compat_test.go:%d] fasthttp: error when serving connection \"1.2.3.4\": timeout", line))
	assert.True(t, strings.HasPrefix(lines[1], "[I"))
	assert.Empty(t, *fatals)
}

func TestDetectLogLevel(t *testing.T) {
	tests := []struct {
		msg  string
		want glog.Level
	}{
		{"request trace id=1", glog.LevelDebug},
		{"DEBUG connection", glog.LevelDebug},
		{"server started", glog.LevelInfo},
		{"panic recovered", glog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLogLevel(tt.msg))
		})
	}

	t.Run("custom detector", func(t *testing.T) {
		builder, _, buf, _ := createTestCompatBuilder(t, glog.LevelDebug)
		adapter, err := builder.BuildFastHTTP(
			WithLevelDetector(func(string) glog.Level { return glog.LevelDebug }),
			WithFastHTTPPrefix(""),
		)
		require.NoError(t, err)

		adapter.Printf("anything")
		assert.True(t, strings.HasSuffix(records(buf)[0], "] anything"))
	})
}
