package fetch

import (
	"context"
	"sync"
)

// defaultFetcher serves the package-level functions with DefaultConfig and the default logger
var defaultFetcher = sync.OnceValue(func() *Fetcher {
	f, err := New(DefaultConfig())
	if err != nil {
		panic(err) // defaults always validate
	}
	return f
})

// DownloadToFile downloads rawURL to dest with the default fetcher
func DownloadToFile(ctx context.Context, rawURL, dest string) error {
	return defaultFetcher().DownloadToFile(ctx, rawURL, dest)
}

// FetchVerifiedTarball downloads and verifies an MD5-fingerprinted tarball
func FetchVerifiedTarball(ctx context.Context, rawURL, expected string) (string, error) {
	return defaultFetcher().FetchVerifiedTarball(ctx, rawURL, expected)
}

// MustFetchVerifiedTarball downloads and verifies a tarball, exiting on failure
func MustFetchVerifiedTarball(ctx context.Context, rawURL, expected string) string {
	return defaultFetcher().MustFetchVerifiedTarball(ctx, rawURL, expected)
}

// FetchAndUnpack downloads and verifies a tarball, then reports that unpacking is not implemented
func FetchAndUnpack(ctx context.Context, rawURL, expected string) (string, error) {
	return defaultFetcher().FetchAndUnpack(ctx, rawURL, expected)
}
