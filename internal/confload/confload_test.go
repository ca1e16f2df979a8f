package confload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name      string  `toml:"name"`
	TimeoutMs int64   `toml:"timeout_ms"`
	Ratio     float64 `toml:"ratio"`
	Enabled   bool    `toml:"enabled"`
	Skipped   string  `toml:"-"`
	Untagged  string
}

func TestParseKeyValue(t *testing.T) {
	tests := []struct {
		input     string
		wantKey   string
		wantValue string
		wantErr   bool
	}{
		{"key=value", "key", "value", false},
		{" key = value ", "key", "value", false},
		{"key=value=with=equals", "key", "value=with=equals", false},
		{"noequals", "", "", true},
		{"=value", "", "", true},
		{"key=", "key", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			key, value, err := ParseKeyValue(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantKey, key)
				assert.Equal(t, tt.wantValue, value)
			}
		})
	}
}

func TestSetString(t *testing.T) {
	cfg := &testConfig{}

	require.NoError(t, SetString(cfg, "name", "fetcher"))
	require.NoError(t, SetString(cfg, "timeout_ms", "2500"))
	require.NoError(t, SetString(cfg, "ratio", "0.5"))
	require.NoError(t, SetString(cfg, "enabled", "true"))

	assert.Equal(t, "fetcher", cfg.Name)
	assert.Equal(t, int64(2500), cfg.TimeoutMs)
	assert.Equal(t, 0.5, cfg.Ratio)
	assert.True(t, cfg.Enabled)

	t.Run("unknown key", func(t *testing.T) {
		err := SetString(cfg, "missing", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown configuration key")
	})

	t.Run("excluded tag", func(t *testing.T) {
		assert.Error(t, SetString(cfg, "-", "x"))
	})

	t.Run("bad integer", func(t *testing.T) {
		err := SetString(cfg, "timeout_ms", "soon")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid integer value")
	})

	t.Run("non pointer target", func(t *testing.T) {
		assert.Error(t, SetString(testConfig{}, "name", "x"))
	})
}

func TestApplyOverrides(t *testing.T) {
	cfg := &testConfig{}

	err := ApplyOverrides(cfg, map[string]any{
		"name":       "s3",
		"timeout_ms": 10,
		"ratio":      int64(2),
		"enabled":    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "s3", cfg.Name)
	assert.Equal(t, int64(10), cfg.TimeoutMs)
	assert.Equal(t, 2.0, cfg.Ratio)
	assert.True(t, cfg.Enabled)

	assert.Error(t, ApplyOverrides(cfg, map[string]any{"untagged": "x"}))
	assert.Error(t, ApplyOverrides(cfg, map[string]any{"enabled": "yes"}))
}

func TestCombineErrors(t *testing.T) {
	assert.NoError(t, CombineErrors("x: ", nil))

	single := assert.AnError
	assert.Equal(t, single, CombineErrors("x: ", []error{single}))

	err := CombineErrors("fetch: ", []error{
		os.ErrNotExist,
		os.ErrPermission,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch: multiple configuration errors:")
	assert.Contains(t, err.Error(), "1. file does not exist")
	assert.Contains(t, err.Error(), "2. permission denied")
}

func TestLoad(t *testing.T) {
	t.Run("missing file keeps values", func(t *testing.T) {
		cfg := &testConfig{Name: "default", TimeoutMs: 5000}
		err := Load(filepath.Join(t.TempDir(), "absent.toml"), "fetch.", cfg)
		require.NoError(t, err)
		assert.Equal(t, "default", cfg.Name)
		assert.Equal(t, int64(5000), cfg.TimeoutMs)
	})

	t.Run("file values override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "glog.toml")
		content := "[fetch]\nname = \"from-file\"\ntimeout_ms = 1500\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg := &testConfig{Name: "default", TimeoutMs: 5000, Enabled: true}
		require.NoError(t, Load(path, "fetch.", cfg))
		assert.Equal(t, "from-file", cfg.Name)
		assert.Equal(t, int64(1500), cfg.TimeoutMs)
		assert.True(t, cfg.Enabled)
	})
}
