package glog

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoggerStats verifies counters across the record kinds
func TestLoggerStats(t *testing.T) {
	logger, _, rec := createTestLogger(t)
	logger.SetThreshold(LevelDebug)

	logger.Debug("with stack")
	logger.Info("suppressed at debug threshold")
	logger.Fatal("fatal")

	stats := logger.Stats()
	assert.Equal(t, uint64(2), stats.Records)
	assert.Equal(t, uint64(1), stats.Suppressed)
	assert.Equal(t, uint64(1), stats.Fatals)
	assert.Zero(t, stats.WriteErrors)
	assert.Positive(t, stats.StackFrames)
	assert.Equal(t, 1, rec.calls)
}

// TestConcurrentRecords verifies that records from concurrent callers never interleave
func TestConcurrentRecords(t *testing.T) {
	logger, buf, _ := createTestLogger(t)
	logger.SetThreshold(LevelDebug)
	logger.SetOutput(&lockedBuffer{buf: buf})

	const goroutines = 8
	const perGoroutine = 50

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				logger.Debug("concurrent")
			}
		}()
	}
	wg.Wait()

	var records int
	var inStack bool
	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "\t@\t"):
			inStack = true
		case strings.HasPrefix(line, "[I"):
			require.True(t, inStack, "record without preceding stack")
			require.True(t, strings.HasSuffix(line, "] concurrent"), line)
			inStack = false
			records++
		default:
			t.Fatalf("unexpected line %q", line)
		}
	}
	assert.Equal(t, goroutines*perGoroutine, records)
	assert.Equal(t, uint64(goroutines*perGoroutine), logger.Stats().Records)
}

// TestConcurrentThresholdChanges exercises threshold updates racing with writes
func TestConcurrentThresholdChanges(t *testing.T) {
	logger, _, _ := createTestLogger(t)
	logger.SetOutput(nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if i%2 == 0 {
				logger.SetThreshold(LevelDebug)
			} else {
				logger.SetThreshold(LevelInfo)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			logger.Info("tick")
		}
	}()
	wg.Wait()

	stats := logger.Stats()
	assert.Equal(t, uint64(200), stats.Records+stats.Suppressed)
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf *bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}
