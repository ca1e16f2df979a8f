package fetch

import (
	"github.com/lixenwraith/glog/fingerprint"
	"github.com/lixenwraith/glog/internal/confload"
)

// configPrefix is the TOML table holding fetch settings
const configPrefix = "fetch."

// Config holds all fetch pipeline settings
type Config struct {
	// Per-I/O timeout applied to request writes and response reads
	TimeoutMs int64 `toml:"timeout_ms"`
	// Size of each read while streaming a body to disk
	ChunkSize int64 `toml:"chunk_size"`
	// Directory for verified downloads; empty uses the OS temp directory
	TempDir      string `toml:"temp_dir"`
	MaxRedirects int64  `toml:"max_redirects"`
	Algorithm    string `toml:"algorithm"` // md5, sha256 or blake3

	// Region for s3:// sources; empty defers to the AWS environment chain
	S3Region string `toml:"s3_region"`
}

var defaultConfig = Config{
	TimeoutMs:    5000,
	ChunkSize:    1024000,
	TempDir:      "",
	MaxRedirects: 5,
	Algorithm:    string(fingerprint.DefaultAlgorithm),
	S3Region:     "",
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads the [fetch] table of a TOML file over the defaults
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := confload.Load(path, configPrefix, cfg); err != nil {
		return nil, fmtErrorf("%w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for usable values
func (c *Config) Validate() error {
	if c.TimeoutMs <= 0 {
		return fmtErrorf("timeout_ms must be positive: %d", c.TimeoutMs)
	}
	if c.ChunkSize <= 0 {
		return fmtErrorf("chunk_size must be positive: %d", c.ChunkSize)
	}
	if c.MaxRedirects < 0 {
		return fmtErrorf("max_redirects cannot be negative: %d", c.MaxRedirects)
	}
	if _, err := fingerprint.ParseAlgorithm(c.Algorithm); err != nil {
		return fmtErrorf("invalid algorithm: %w", err)
	}
	return nil
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// ApplyConfigString applies "key=value" overrides in place and revalidates
func (c *Config) ApplyConfigString(overrides ...string) error {
	next := c.Clone()

	var errs []error
	for _, override := range overrides {
		key, value, err := confload.ParseKeyValue(override)
		if err != nil {
			errs = append(errs, fmtErrorf("%w", err))
			continue
		}
		if err := confload.SetString(next, key, value); err != nil {
			errs = append(errs, fmtErrorf("%w", err))
		}
	}
	if len(errs) > 0 {
		return confload.CombineErrors("fetch: ", errs)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*c = *next
	return nil
}
