package config

import (
	"testing"
	"time"

	"github.com/cloud-bulldozer/search-bench/pkg/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseConf Test for success. Ensure we successfully parse a good config file
func TestParseConf(t *testing.T) {
	cfg, err := ParseConf("testdata/test-config.yml")
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Runs)
	assert.Equal(t, "opensearch", cfg.Driver)
	assert.Equal(t, "raw", cfg.Mode)
	assert.Equal(t, "logs-2024", cfg.Index)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, sample.ExcludeFailures, cfg.Policy())
	assert.True(t, cfg.Insecure)
	assert.Equal(t, "hits.hits._source", cfg.FilterPath)
	// Not in the file, keeps the default.
	assert.Equal(t, DefaultBody, cfg.Body)
}

// TestShippingConf Test for success. Ensure we successfully parse the default config
func TestShippingConf(t *testing.T) {
	cfg, err := ParseConf("../../search-bench.yml")
	require.NoError(t, err)
	assert.Equal(t, DefaultRuns, cfg.Runs)
	assert.Equal(t, sample.IncludeFailures, cfg.Policy())
}

// TestBadParseConf Testing for failure. Invalid values must be rejected.
func TestBadParseConf(t *testing.T) {
	for _, fn := range []string{
		"testdata/test-bad-driver-config.yml",
		"testdata/test-bad-runs-config.yml",
		"testdata/test-bad-body-config.yml",
		"testdata/missing.yml",
	} {
		_, err := ParseConf(fn)
		assert.Error(t, err, fn)
	}
	_, err := ParseConf("testdata/test-bad-runs-config.yml")
	assert.ErrorIs(t, err, ErrInvalidRuns)
}

// TestLoadConf Ensure an invalid key is left for the caller to override.
func TestLoadConf(t *testing.T) {
	cfg, err := LoadConf("testdata/test-bad-runs-config.yml")
	require.NoError(t, err)
	assert.Equal(t, -4, cfg.Runs)
	assert.ErrorIs(t, Validate(cfg), ErrInvalidRuns)

	cfg.Runs = 10
	require.NoError(t, Validate(cfg))

	_, err = LoadConf("testdata/missing.yml")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(Default()))

	bulk := Default()
	bulk.Mode = "bulk"
	bulk.Body = ""
	require.NoError(t, Validate(bulk))

	bad := []func(*Config){
		func(c *Config) { c.Runs = 0 },
		func(c *Config) { c.Mode = "scroll" },
		func(c *Config) { c.URL = "localhost" },
		func(c *Config) { c.Index = "" },
		func(c *Config) { c.Timeout = -time.Second },
		func(c *Config) { c.FailurePolicy = "ignore" },
	}
	for i, mutate := range bad {
		c := Default()
		mutate(&c)
		assert.Error(t, Validate(c), "case %d", i)
	}
}

func TestParseRuns(t *testing.T) {
	n, err := ParseRuns(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultRuns, n)

	n, err = ParseRuns([]string{"4"})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	for _, arg := range []string{"abc", "0", "-3", "1.5", ""} {
		_, err := ParseRuns([]string{arg})
		assert.ErrorIs(t, err, ErrInvalidRuns, arg)
	}
}
