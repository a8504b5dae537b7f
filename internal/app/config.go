package app

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"iq1090/internal/output"
)

// Default configuration constants
const (
	DefaultThresholdRatio   = 5.0
	DefaultStalenessSamples = 20000000 // ~10s at 2 Msps
	DefaultWorkers          = 1
)

// Q=0 altitude policies
const (
	Q0PolicySkip    = "skip"
	Q0PolicyGillham = "gillham"
)

// Config holds application configuration
type Config struct {
	InputPath  string
	Format     string
	OutputPath string
	FramesDir  string

	ThresholdRatio   float64
	EnforceCRC       bool
	Q0Policy         string
	StalenessSamples uint64
	Workers          int

	ConfigFile  string
	Verbose     bool
	ShowVersion bool
}

// DefaultConfig returns a config with every tunable at its default.
func DefaultConfig() Config {
	return Config{
		ThresholdRatio:   DefaultThresholdRatio,
		EnforceCRC:       true,
		Q0Policy:         Q0PolicySkip,
		StalenessSamples: DefaultStalenessSamples,
		Workers:          DefaultWorkers,
	}
}

// fileConfig is the YAML config file schema. Pointer fields distinguish
// absent keys from explicit zero values.
type fileConfig struct {
	Threshold *float64 `yaml:"threshold"`
	CRC       *bool    `yaml:"crc"`
	Q0Policy  *string  `yaml:"q0_policy"`
	Staleness *uint64  `yaml:"staleness"`
	Workers   *int     `yaml:"workers"`
	FramesDir *string  `yaml:"frames_dir"`
}

// ApplySources overlays the YAML config file and IQ1090_* environment
// variables onto c. changed reports whether a tunable was set explicitly
// on the command line; explicit flags always win, then environment, then
// file, then defaults.
func (c *Config) ApplySources(changed func(name string) bool) error {
	file, err := c.loadFile()
	if err != nil {
		return err
	}

	env, err := loadEnv()
	if err != nil {
		return err
	}

	merged := mergeOverlays(env, file)
	if merged == nil {
		return nil
	}

	if merged.Threshold != nil && !changed("threshold") {
		c.ThresholdRatio = *merged.Threshold
	}
	if merged.CRC != nil && !changed("crc") {
		c.EnforceCRC = *merged.CRC
	}
	if merged.Q0Policy != nil && !changed("q0-policy") {
		c.Q0Policy = *merged.Q0Policy
	}
	if merged.Staleness != nil && !changed("staleness") {
		c.StalenessSamples = *merged.Staleness
	}
	if merged.Workers != nil && !changed("workers") {
		c.Workers = *merged.Workers
	}
	if merged.FramesDir != nil && !changed("frames-dir") {
		c.FramesDir = *merged.FramesDir
	}

	return nil
}

// mergeOverlays combines the environment and file overlays, environment
// winning field by field.
func mergeOverlays(env, file *fileConfig) *fileConfig {
	if env == nil {
		return file
	}
	if file == nil {
		return env
	}

	out := *file
	if env.Threshold != nil {
		out.Threshold = env.Threshold
	}
	if env.CRC != nil {
		out.CRC = env.CRC
	}
	if env.Q0Policy != nil {
		out.Q0Policy = env.Q0Policy
	}
	if env.Staleness != nil {
		out.Staleness = env.Staleness
	}
	if env.Workers != nil {
		out.Workers = env.Workers
	}
	if env.FramesDir != nil {
		out.FramesDir = env.FramesDir
	}
	return &out
}

// loadFile parses the YAML config file when one was given.
func (c *Config) loadFile() (*fileConfig, error) {
	if c.ConfigFile == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(c.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &fc, nil
}

// loadEnv reads IQ1090_* environment variables, honoring a .env file in
// the working directory when present.
func loadEnv() (*fileConfig, error) {
	_ = godotenv.Load()

	var fc fileConfig
	found := false

	if v := os.Getenv("IQ1090_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid IQ1090_THRESHOLD: %w", err)
		}
		fc.Threshold = &f
		found = true
	}
	if v := os.Getenv("IQ1090_CRC"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid IQ1090_CRC: %w", err)
		}
		fc.CRC = &b
		found = true
	}
	if v := os.Getenv("IQ1090_Q0_POLICY"); v != "" {
		fc.Q0Policy = &v
		found = true
	}
	if v := os.Getenv("IQ1090_STALENESS"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid IQ1090_STALENESS: %w", err)
		}
		fc.Staleness = &n
		found = true
	}
	if v := os.Getenv("IQ1090_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid IQ1090_WORKERS: %w", err)
		}
		fc.Workers = &n
		found = true
	}
	if v := os.Getenv("IQ1090_FRAMES_DIR"); v != "" {
		fc.FramesDir = &v
		found = true
	}

	if !found {
		return nil, nil
	}
	return &fc, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.ThresholdRatio <= 0 {
		return fmt.Errorf("threshold ratio must be positive, got %g", c.ThresholdRatio)
	}
	if c.StalenessSamples == 0 {
		return fmt.Errorf("staleness must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Q0Policy != Q0PolicySkip && c.Q0Policy != Q0PolicyGillham {
		return fmt.Errorf("unknown Q=0 altitude policy %q", c.Q0Policy)
	}
	switch c.Format {
	case output.FormatCSV, output.FormatJSON, output.FormatKML:
	default:
		return fmt.Errorf("unsupported output format %q (want .csv, .json or .kml)", c.Format)
	}
	return nil
}
