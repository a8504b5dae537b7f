package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidate tests the fatal configuration checks
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero threshold",
			mutate:  func(c *Config) { c.ThresholdRatio = 0 },
			wantErr: "threshold",
		},
		{
			name:    "negative threshold",
			mutate:  func(c *Config) { c.ThresholdRatio = -1 },
			wantErr: "threshold",
		},
		{
			name:    "zero staleness",
			mutate:  func(c *Config) { c.StalenessSamples = 0 },
			wantErr: "staleness",
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Workers = 0 },
			wantErr: "workers",
		},
		{
			name:    "unknown q0 policy",
			mutate:  func(c *Config) { c.Q0Policy = "round-up" },
			wantErr: "policy",
		},
		{
			name:    "unknown format",
			mutate:  func(c *Config) { c.Format = ".xml" },
			wantErr: "format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Format = ".csv"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func notChanged(string) bool { return false }

// TestApplySourcesEnv tests environment variable overrides
func TestApplySourcesEnv(t *testing.T) {
	t.Setenv("IQ1090_THRESHOLD", "3.5")
	t.Setenv("IQ1090_CRC", "false")
	t.Setenv("IQ1090_WORKERS", "4")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplySources(notChanged))

	assert.Equal(t, 3.5, cfg.ThresholdRatio)
	assert.False(t, cfg.EnforceCRC)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, Q0PolicySkip, cfg.Q0Policy)
}

// TestApplySourcesEnvInvalid tests malformed environment values
func TestApplySourcesEnvInvalid(t *testing.T) {
	t.Setenv("IQ1090_THRESHOLD", "not-a-number")

	cfg := DefaultConfig()
	err := cfg.ApplySources(notChanged)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IQ1090_THRESHOLD")
}

// TestApplySourcesFile tests the YAML config file
func TestApplySourcesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "iq1090.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: 4.0\nstaleness: 1000000\nq0_policy: gillham\n"), 0o644))

	cfg := DefaultConfig()
	cfg.ConfigFile = path
	require.NoError(t, cfg.ApplySources(notChanged))

	assert.Equal(t, 4.0, cfg.ThresholdRatio)
	assert.Equal(t, uint64(1000000), cfg.StalenessSamples)
	assert.Equal(t, Q0PolicyGillham, cfg.Q0Policy)
}

// TestApplySourcesPrecedence tests flags over env over file
func TestApplySourcesPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "iq1090.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: 4.0\nworkers: 2\n"), 0o644))

	t.Setenv("IQ1090_THRESHOLD", "6.0")

	cfg := DefaultConfig()
	cfg.ConfigFile = path
	cfg.ThresholdRatio = 7.5 // explicitly set on the command line

	changed := func(name string) bool { return name == "threshold" }
	require.NoError(t, cfg.ApplySources(changed))

	// flag wins over env and file; file fills what nothing else set
	assert.Equal(t, 7.5, cfg.ThresholdRatio)
	assert.Equal(t, 2, cfg.Workers)
}

// TestApplySourcesMissingFile tests an unreadable config file
func TestApplySourcesMissingFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConfigFile = filepath.Join(t.TempDir(), "nope.yaml")

	err := cfg.ApplySources(notChanged)
	require.Error(t, err)
}
