package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

// Config holds the settings of a scoring run: which rubric to use, how the
// engine resolves missing inputs and how the batch driver paces itself.
type Config struct {
	// RubricPath points to a rubric YAML file. Empty selects the built-in
	// rubric.
	RubricPath string `yaml:"rubric_path"`
	// ReferenceYear closes ongoing intervals and bounds consistency
	// checks. Zero uses the current year.
	ReferenceYear int `yaml:"reference_year" validate:"omitempty,min=1900,max=2200"`
	// DefaultCargo applies to records without cargo text.
	DefaultCargo string `yaml:"default_cargo" validate:"omitempty,oneof=president vice_president senator deputy andean_parliament regional_governor mayor other"`
	// Precision is the number of decimals kept in top-level scores.
	Precision int `yaml:"precision" validate:"min=0,max=6"`

	// BatchSize is the number of candidates scheduled together. The next
	// batch starts once the previous one has completed.
	BatchSize int `yaml:"batch_size" validate:"min=1,max=100000"`
	// Concurrency bounds the candidates scored at once within a batch.
	Concurrency int `yaml:"concurrency" validate:"min=1,max=1024"`
	// FetchRate is the number of source fetches allowed per second. Zero
	// disables pacing.
	FetchRate float64 `yaml:"fetch_rate" validate:"min=0"`
	// FetchBurst is the number of fetches allowed back to back.
	FetchBurst int `yaml:"fetch_burst" validate:"min=1"`
	// FetchRetries is the number of times a retryable fetch failure is
	// retried before the candidate is skipped.
	FetchRetries int `yaml:"fetch_retries" validate:"min=0,max=10"`
	// FetchTimeout bounds a single fetch. Zero disables the bound.
	FetchTimeout time.Duration `yaml:"fetch_timeout" validate:"min=0"`
	// BreakerFailures is the number of consecutive source failures that
	// open the circuit breaker. Zero disables the breaker.
	BreakerFailures int `yaml:"breaker_failures" validate:"min=0"`

	// Preset is the blend reported as the headline score in logs and
	// metrics. Every preset is still written to the results.
	Preset string `yaml:"preset" validate:"required,min=1,max=50"`
	// OutputFormat selects json or jsonl results.
	OutputFormat string `yaml:"output_format" validate:"oneof=json jsonl"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		DefaultCargo: string(domain.CargoOther),
		Precision:    2,
		BatchSize:    50,
		Concurrency:  8,
		FetchRate:    0,
		FetchBurst:   1,
		FetchRetries: 2,
		Preset:       domain.PresetBalanced,
		OutputFormat: "json",
	}
}

// LoadConfig reads a YAML configuration file and overlays it on
// DefaultConfig. A missing file is reported as ports.ErrConfigNotFound.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, ports.NewConfigError(path, fmt.Errorf("%w: %w", ports.ErrConfigNotFound, err))
		}
		return Config{}, ports.NewConfigError(path, err)
	}
	return ParseConfig(bytes.NewReader(data))
}

// ParseConfig decodes a YAML configuration from r and validates it.
// Unknown keys are rejected.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, ports.NewConfigError("", fmt.Errorf("parse config: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration with its struct tags.
func (c Config) Validate() error {
	v := validator.New()
	if err := registerCustomValidators(v); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return ports.NewConfigError(verrs[0].Field(), fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err))
		}
		return ports.NewConfigError("", fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err))
	}
	return nil
}
