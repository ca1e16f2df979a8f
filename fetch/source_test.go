package fetch

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

// fakeS3 serves objects from memory
type fakeS3 struct {
	objects map[string]string // "bucket/key" -> body
	calls   []string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	name := *in.Bucket + "/" + *in.Key
	f.calls = append(f.calls, name)
	body, ok := f.objects[name]
	if !ok {
		return nil, errors.New("NoSuchKey: the specified key does not exist")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3SourceDownload(t *testing.T) {
	client := &fakeS3{objects: map[string]string{"images/base/v1.tar.gz": "s3 payload"}}
	src := NewS3Source(client, DefaultConfig())

	var buf bytes.Buffer
	n, err := src.Download(context.Background(), "s3://images/base/v1.tar.gz", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.Equal(t, "s3 payload", buf.String())
	assert.Equal(t, []string{"images/base/v1.tar.gz"}, client.calls)

	_, err = src.Download(context.Background(), "s3://images/absent", &buf)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Contains(t, err.Error(), "NoSuchKey")
}

func TestFetcherWithS3Source(t *testing.T) {
	body := "bucket tarball"
	client := &fakeS3{objects: map[string]string{"images/t.tar.gz": body}}
	f, _, _ := createTestFetcher(t, artifacts{}, nil, WithSource("s3", NewS3Source(client, DefaultConfig())))

	path, err := f.FetchVerifiedTarball(context.Background(), "s3://images/t.tar.gz", md5Hex([]byte(body)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(path) })

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		in          string
		bucket, key string
		wantErr     bool
	}{
		{"s3://images/base/v1.tar.gz", "images", "base/v1.tar.gz", false},
		{"s3://images/", "", "", true},
		{"s3:///key", "", "", true},
		{"https://images/key", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			bucket, key, err := parseS3URL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

type failingSink struct{}

func (failingSink) Write([]byte) (int, error) { return 0, os.ErrClosed }

func TestCopyChunks(t *testing.T) {
	t.Run("copies everything", func(t *testing.T) {
		var dst bytes.Buffer
		n, err := copyChunks(context.Background(), &dst, strings.NewReader("abcdefghij"), 3)
		require.NoError(t, err)
		assert.Equal(t, int64(10), n)
		assert.Equal(t, "abcdefghij", dst.String())
	})

	t.Run("sink failure is not a network error", func(t *testing.T) {
		client := &fakeS3{objects: map[string]string{"b/k": "data"}}
		_, err := NewS3Source(client, DefaultConfig()).Download(context.Background(), "s3://b/k", failingSink{})
		require.ErrorIs(t, err, os.ErrClosed)
		var netErr *NetworkError
		assert.False(t, errors.As(err, &netErr))
	})
}

func TestHTTPSourceDownload(t *testing.T) {
	src := startServer(t, artifacts{"/x": []byte("http payload")}, DefaultConfig())

	var buf bytes.Buffer
	n, err := src.Download(context.Background(), testBase+"/x", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.Equal(t, "http payload", buf.String())

	_, err = src.Download(context.Background(), testBase+"/y", &buf)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, 404, netErr.StatusCode)
	assert.Equal(t, "fetch: GET http://artifacts.test/y: unexpected status 404", err.Error())
}

// trickle streams count chunks of size bytes, pausing gap after each one
func trickle(count, size int, gap time.Duration) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.SetContentType("application/gzip")
		ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
			chunk := bytes.Repeat([]byte{'z'}, size)
			for i := 0; i < count; i++ {
				if _, err := w.Write(chunk); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
				time.Sleep(gap)
			}
		})
	}
}

func TestHTTPSourceTimeoutPerRead(t *testing.T) {
	t.Run("slow steady body completes", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.TimeoutMs = 1000
		src := startHandlerServer(t, trickle(3, 64*1024, 600*time.Millisecond), cfg)

		f, _, _ := createTestFetcher(t, artifacts{}, nil, WithSource("http", src))
		dest := filepath.Join(t.TempDir(), "slow.tar.gz")

		start := time.Now()
		require.NoError(t, f.DownloadToFile(context.Background(), testBase+"/slow", dest))
		assert.Greater(t, time.Since(start), time.Second)

		info, err := os.Stat(dest)
		require.NoError(t, err)
		assert.Equal(t, int64(3*64*1024), info.Size())
	})

	t.Run("stalled body times out", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.TimeoutMs = 200
		src := startHandlerServer(t, trickle(2, 1024, time.Second), cfg)

		f, _, _ := createTestFetcher(t, artifacts{}, nil, WithSource("http", src))
		dir := t.TempDir()
		dest := filepath.Join(dir, "stalled.tar.gz")

		err := f.DownloadToFile(context.Background(), testBase+"/stalled", dest)
		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Empty(t, dirEntries(t, dir))
	})
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glogfetch.toml")
	content := "[fetch]\ntimeout_ms = 250\nalgorithm = \"blake3\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(250), cfg.TimeoutMs)
	assert.Equal(t, "blake3", cfg.Algorithm)
	assert.Equal(t, int64(1024000), cfg.ChunkSize)
}

func TestConfigApplyConfigString(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyConfigString("chunk_size=4096", "s3_region=eu-west-1"))
	assert.Equal(t, int64(4096), cfg.ChunkSize)
	assert.Equal(t, "eu-west-1", cfg.S3Region)

	err := cfg.ApplyConfigString("algorithm=crc32")
	assert.ErrorContains(t, err, "invalid algorithm")
	assert.Equal(t, "md5", cfg.Algorithm)

	err = cfg.ApplyConfigString("bogus=1", "timeout_ms=soon")
	assert.ErrorContains(t, err, "multiple configuration errors")
}
