// Package fetch downloads artifacts to disk atomically and verifies them
// against an expected fingerprint.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/lixenwraith/glog"
	"github.com/lixenwraith/glog/fingerprint"
)

// State is a step of one fetch
type State int

const (
	StateNotStarted State = iota
	StateDownloading
	StateDownloaded
	StateVerifying
	StateVerified
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateDownloading:
		return "downloading"
	case StateDownloaded:
		return "downloaded"
	case StateVerifying:
		return "verifying"
	case StateVerified:
		return "verified"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Observer is told about every state change of a fetch
type Observer func(rawURL string, state State)

// Fetcher runs downloads and verification with one configuration
type Fetcher struct {
	cfg      *Config
	logger   *glog.Logger
	hasher   *fingerprint.Hasher
	observer Observer

	mu      sync.Mutex
	sources map[string]Source

	// beforeRename runs between fsync and rename; tests use it to interrupt a download
	beforeRename func(tmpPath, dest string) error
}

// Option customizes a Fetcher
type Option func(*Fetcher)

// WithLogger sets the logger for progress records and fatal checks
func WithLogger(l *glog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// WithSource registers src for URLs with the given scheme
func WithSource(scheme string, src Source) Option {
	return func(f *Fetcher) { f.sources[strings.ToLower(scheme)] = src }
}

// WithObserver reports state changes to fn
func WithObserver(fn Observer) Option {
	return func(f *Fetcher) { f.observer = fn }
}

// New creates a Fetcher. A nil cfg uses DefaultConfig. http and https use an
// HTTPSource unless overridden; s3 is resolved from the AWS environment on first use.
func New(cfg *Config, opts ...Option) (*Fetcher, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()

	alg, _ := fingerprint.ParseAlgorithm(cfg.Algorithm)
	hasher, err := fingerprint.New(alg)
	if err != nil {
		return nil, fmtErrorf("%w", err)
	}

	httpSource := NewHTTPSource(cfg)
	f := &Fetcher{
		cfg:    cfg,
		logger: glog.Default(),
		hasher: hasher,
		sources: map[string]Source{
			"http":  httpSource,
			"https": httpSource,
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Config returns a copy of the fetcher configuration
func (f *Fetcher) Config() *Config {
	return f.cfg.Clone()
}

func (f *Fetcher) notify(rawURL string, s State) {
	if f.observer != nil {
		f.observer(rawURL, s)
	}
}

// sourceFor picks the Source registered for the URL scheme
func (f *Fetcher) sourceFor(ctx context.Context, rawURL string) (Source, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmtErrorf("parsing URL %q: %w", rawURL, err)
	}
	scheme := strings.ToLower(u.Scheme)

	f.mu.Lock()
	defer f.mu.Unlock()

	if src, ok := f.sources[scheme]; ok {
		return src, nil
	}
	if scheme == "s3" {
		src, err := LoadS3Source(ctx, f.cfg)
		if err != nil {
			return nil, err
		}
		f.sources[scheme] = src
		return src, nil
	}
	return nil, fmtErrorf("unsupported URL scheme %q in %s", u.Scheme, rawURL)
}

// DownloadToFile streams rawURL into dest. The body lands in a temp file next
// to dest that is fsynced and renamed over it; on any failure dest is untouched
// and the temp file is removed.
func (f *Fetcher) DownloadToFile(ctx context.Context, rawURL, dest string) error {
	f.notify(rawURL, StateDownloading)
	if err := f.download(ctx, rawURL, dest); err != nil {
		f.notify(rawURL, StateFailed)
		return err
	}
	f.notify(rawURL, StateDownloaded)
	return nil
}

func (f *Fetcher) download(ctx context.Context, rawURL, dest string) error {
	src, err := f.sourceFor(ctx, rawURL)
	if err != nil {
		return err
	}

	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".part-*")
	if err != nil {
		return fmtErrorf("creating temp file in '%s': %w", dir, err)
	}
	tmpPath := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	f.logger.Infof("downloading %s -> %s", rawURL, dest)

	n, err := src.Download(ctx, rawURL, tmp)
	if err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmtErrorf("syncing '%s': %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmtErrorf("closing '%s': %w", tmpPath, err)
	}

	if f.beforeRename != nil {
		if err := f.beforeRename(tmpPath, dest); err != nil {
			return err
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmtErrorf("renaming onto '%s': %w", dest, err)
	}
	renamed = true

	f.logger.Infof("downloaded %s (%s)", dest, humanize.Bytes(uint64(n)))
	return nil
}

// FetchVerifiedTarball downloads rawURL to a fresh temp path and checks its
// fingerprint against expected. On success the caller owns the returned path;
// on failure no file is left behind.
func (f *Fetcher) FetchVerifiedTarball(ctx context.Context, rawURL, expected string) (string, error) {
	f.notify(rawURL, StateNotStarted)

	placeholder, err := os.CreateTemp(f.cfg.TempDir, "glogfetch-*.tar.gz")
	if err != nil {
		f.notify(rawURL, StateFailed)
		return "", fmtErrorf("creating download target: %w", err)
	}
	path := placeholder.Name()
	_ = placeholder.Close()

	keep := false
	defer func() {
		if !keep {
			_ = os.Remove(path)
		}
	}()

	if err := f.DownloadToFile(ctx, rawURL, path); err != nil {
		return "", err
	}

	f.notify(rawURL, StateVerifying)
	actual, err := f.hasher.HashFile(path)
	if err != nil {
		f.notify(rawURL, StateFailed)
		return "", fmtErrorf("%w", err)
	}
	if !fingerprint.Equal(expected, actual) {
		f.notify(rawURL, StateFailed)
		return "", &ChecksumError{URL: rawURL, Expected: expected, Actual: actual}
	}

	f.notify(rawURL, StateVerified)
	keep = true
	return path, nil
}

// MustFetchVerifiedTarball is FetchVerifiedTarball with fail-fast semantics:
// a transfer error or fingerprint mismatch is fatal. It returns "" only when
// the fatal handler returns instead of exiting.
func (f *Fetcher) MustFetchVerifiedTarball(ctx context.Context, rawURL, expected string) string {
	path, err := f.FetchVerifiedTarball(ctx, rawURL, expected)
	if err == nil {
		return path
	}

	var sumErr *ChecksumError
	if errors.As(err, &sumErr) {
		f.logger.CheckEqual(strings.ToLower(strings.TrimSpace(sumErr.Expected)), sumErr.Actual)
		return ""
	}
	f.logger.Fatal(err)
	return ""
}

// FetchAndUnpack fetches and verifies a tarball, then fails: unpacking is not
// built yet. The downloaded tarball is removed before the fatal record.
func (f *Fetcher) FetchAndUnpack(ctx context.Context, rawURL, expected string) (string, error) {
	path, err := f.FetchVerifiedTarball(ctx, rawURL, expected)
	if err != nil {
		return "", err
	}

	_ = os.Remove(path)
	f.logger.Fatal(ErrNotImplemented.Error())
	return "", fmt.Errorf("fetch: unpacking %s: %w", rawURL, ErrNotImplemented)
}
