// Package config reads the pdfprint configuration file. Every value is
// optional; unset values fall back to the validator defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pyhub-apps/pdfprint-golang/pkg/geometry"
	"github.com/pyhub-apps/pdfprint-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfprint-golang/pkg/validate"
)

// ErrInvalidValue is returned when a config value is out of bounds
var ErrInvalidValue = errors.New("invalid config value")

// Validation bounds for configuration values.
const (
	MinBleedMM  = 0
	MaxBleedMM  = 100
	MinMaxPages = 1
	MaxMaxPages = 10000
)

// Checks enables or disables individual checks
type Checks struct {
	LeftMargin *bool `yaml:"left_margin,omitempty"`
	Fonts      *bool `yaml:"fonts,omitempty"`
	PageCount  *bool `yaml:"page_count,omitempty"`
	PDFVersion *bool `yaml:"pdf_version,omitempty"`
}

// Bleed is the size tolerance in millimeters
type Bleed struct {
	PositiveMM *int `yaml:"positive_mm,omitempty"`
	NegativeMM *int `yaml:"negative_mm,omitempty"`
}

// Config contains configuration for pdfprint.
type Config struct {
	Checks   Checks `yaml:"checks,omitempty"`
	MaxPages *int   `yaml:"max_pages,omitempty"`
	Bleed    Bleed  `yaml:"bleed,omitempty"`

	// StrategyName is full or incremental
	StrategyName *string `yaml:"strategy,omitempty"`
	Strict       *bool   `yaml:"strict,omitempty"`

	// PdfcpuConfig is the pdfcpu configuration directory; unset disables it
	PdfcpuConfig *string `yaml:"pdfcpu_config_dir,omitempty"`

	path string
}

// Load reads the configuration at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes and validates YAML configuration
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path returns the file the config was loaded from, if any
func (c *Config) Path() string {
	return c.path
}

// Validate checks that all configured values are within acceptable bounds.
// Returns nil if all values are valid or not set (defaults will be used).
func (c *Config) Validate() error {
	if c.MaxPages != nil {
		v := *c.MaxPages
		if v < MinMaxPages || v > MaxMaxPages {
			return fmt.Errorf("%w: max_pages must be between %d and %d, got %d",
				ErrInvalidValue, MinMaxPages, MaxMaxPages, v)
		}
	}
	if err := checkBleed("bleed.positive_mm", c.Bleed.PositiveMM); err != nil {
		return err
	}
	if err := checkBleed("bleed.negative_mm", c.Bleed.NegativeMM); err != nil {
		return err
	}
	if c.StrategyName != nil {
		if _, err := pdf.ParseStrategy(*c.StrategyName); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
	}
	return nil
}

// Settings returns the validation settings, defaults filled in
func (c *Config) Settings() validate.Settings {
	s := validate.DefaultSettings()
	s.CheckLeftMargin = boolOr(c.Checks.LeftMargin, s.CheckLeftMargin)
	s.CheckFonts = boolOr(c.Checks.Fonts, s.CheckFonts)
	s.CheckPageCount = boolOr(c.Checks.PageCount, s.CheckPageCount)
	s.CheckPDFVersion = boolOr(c.Checks.PDFVersion, s.CheckPDFVersion)
	s.MaxPageCount = intOr(c.MaxPages, s.MaxPageCount)
	s.Bleed = geometry.Bleed{
		PositiveMM: intOr(c.Bleed.PositiveMM, s.Bleed.PositiveMM),
		NegativeMM: intOr(c.Bleed.NegativeMM, s.Bleed.NegativeMM),
	}
	return s
}

// Strategy returns the parsing strategy (defaults to full)
func (c *Config) Strategy() pdf.Strategy {
	if c.StrategyName == nil {
		return pdf.StrategyFull
	}
	s, err := pdf.ParseStrategy(*c.StrategyName)
	if err != nil {
		return pdf.StrategyFull
	}
	return s
}

// StrictParsing returns whether documents must pass full validation
func (c *Config) StrictParsing() bool {
	return boolOr(c.Strict, false)
}

// PdfcpuConfigDir returns the pdfcpu configuration directory, empty when unset
func (c *Config) PdfcpuConfigDir() string {
	if c.PdfcpuConfig == nil {
		return ""
	}
	return *c.PdfcpuConfig
}

func checkBleed(name string, v *int) error {
	if v != nil && (*v < MinBleedMM || *v > MaxBleedMM) {
		return fmt.Errorf("%w: %s must be between %d and %d, got %d",
			ErrInvalidValue, name, MinBleedMM, MaxBleedMM, *v)
	}
	return nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
