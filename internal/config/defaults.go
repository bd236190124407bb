package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/auditsample/internal/sampling"
)

// DefaultConfigPath is the path to the canonical sampling defaults file.
// This is the single source of truth for all default sampling parameters.
const DefaultConfigPath = "config/sampling.defaults.json"

// Defaults represents the root configuration for sampling defaults. The
// schema matches the /api/sample endpoints so the same JSON can be used
// for startup configuration and per-request parameters.
type Defaults struct {
	// Statistical params
	Confidence         *float64 `json:"confidence,omitempty"`
	TolerableErrorRate *float64 `json:"tolerable_error_rate,omitempty"`
	ExpectedErrorRate  *float64 `json:"expected_error_rate,omitempty"`

	// Selection params
	Method      *string `json:"method,omitempty"`
	Seed        *uint32 `json:"seed,omitempty"`
	IDField     *string `json:"id_field,omitempty"`
	RandomStart *bool   `json:"random_start,omitempty"`

	// Server params
	MaxUploadBytes *int64  `json:"max_upload_bytes,omitempty"`
	RequestTimeout *string `json:"request_timeout,omitempty"` // duration string like "30s"
}

// EmptyDefaults returns a Defaults with all fields set to nil.
// Use LoadDefaults to load actual values from the defaults file.
func EmptyDefaults() *Defaults {
	return &Defaults{}
}

// LoadDefaults loads a Defaults from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadDefaults(path string) (*Defaults, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyDefaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaults loads the canonical sampling defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaults() *Defaults {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadDefaults(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *Defaults) Validate() error {
	if c.Confidence != nil {
		if *c.Confidence <= 0 || *c.Confidence >= 1 {
			return fmt.Errorf("confidence must be between 0 and 1 (exclusive), got %f", *c.Confidence)
		}
	}

	if c.TolerableErrorRate != nil {
		if *c.TolerableErrorRate <= 0 || *c.TolerableErrorRate >= 1 {
			return fmt.Errorf("tolerable_error_rate must be between 0 and 1 (exclusive), got %f", *c.TolerableErrorRate)
		}
	}

	if c.ExpectedErrorRate != nil {
		if *c.ExpectedErrorRate < 0 || *c.ExpectedErrorRate >= 1 {
			return fmt.Errorf("expected_error_rate must be between 0 (inclusive) and 1 (exclusive), got %f", *c.ExpectedErrorRate)
		}
	}

	if c.Method != nil {
		if !sampling.Method(*c.Method).IsValid() {
			return fmt.Errorf("unknown sampling method %q", *c.Method)
		}
	}

	if c.RequestTimeout != nil && *c.RequestTimeout != "" {
		if _, err := time.ParseDuration(*c.RequestTimeout); err != nil {
			return fmt.Errorf("invalid request_timeout '%s': %w", *c.RequestTimeout, err)
		}
	}

	if c.MaxUploadBytes != nil {
		if *c.MaxUploadBytes <= 0 {
			return fmt.Errorf("max_upload_bytes must be positive, got %d", *c.MaxUploadBytes)
		}
	}

	return nil
}

// GetConfidence returns the confidence value or the default.
func (c *Defaults) GetConfidence() float64 {
	if c.Confidence == nil {
		return 0.95 // default
	}
	return *c.Confidence
}

// GetTolerableErrorRate returns the tolerable_error_rate value or the default.
func (c *Defaults) GetTolerableErrorRate() float64 {
	if c.TolerableErrorRate == nil {
		return 0.05 // default
	}
	return *c.TolerableErrorRate
}

// GetExpectedErrorRate returns the expected_error_rate value or the default.
func (c *Defaults) GetExpectedErrorRate() float64 {
	if c.ExpectedErrorRate == nil {
		return 0 // default
	}
	return *c.ExpectedErrorRate
}

// GetMethod returns the sampling method or the default.
func (c *Defaults) GetMethod() sampling.Method {
	if c.Method == nil {
		return sampling.MethodStatistical
	}
	return sampling.Method(*c.Method)
}

// GetSeed returns the generator seed or the default.
func (c *Defaults) GetSeed() uint32 {
	if c.Seed == nil {
		return 1
	}
	return *c.Seed
}

// GetIDField returns the id_field value or the default.
func (c *Defaults) GetIDField() string {
	if c.IDField == nil || *c.IDField == "" {
		return "id"
	}
	return *c.IDField
}

// GetRandomStart returns the random_start value or the default.
func (c *Defaults) GetRandomStart() bool {
	if c.RandomStart == nil {
		return false // default: deterministic systematic offset
	}
	return *c.RandomStart
}

// GetMaxUploadBytes returns the max_upload_bytes value or the default.
func (c *Defaults) GetMaxUploadBytes() int64 {
	if c.MaxUploadBytes == nil {
		return 32 * 1024 * 1024 // 32MB
	}
	return *c.MaxUploadBytes
}

// GetRequestTimeout parses and returns the RequestTimeout as a time.Duration.
func (c *Defaults) GetRequestTimeout() time.Duration {
	if c.RequestTimeout == nil || *c.RequestTimeout == "" {
		return 30 * time.Second // default
	}
	d, err := time.ParseDuration(*c.RequestTimeout)
	if err != nil {
		return 30 * time.Second // default on parse error
	}
	return d
}

// SamplingConfig builds a sampling.Config seeded from the defaults. Request
// level parameters should be layered on top by the caller.
func (c *Defaults) SamplingConfig() sampling.Config {
	return sampling.Config{
		Method:             c.GetMethod(),
		Confidence:         c.GetConfidence(),
		TolerableErrorRate: c.GetTolerableErrorRate(),
		ExpectedErrorRate:  c.GetExpectedErrorRate(),
		Seed:               c.GetSeed(),
		IDField:            c.GetIDField(),
		RandomStart:        c.GetRandomStart(),
	}
}
