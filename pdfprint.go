// Package pdfprint validates PDF documents for automated print and mail
package pdfprint

import (
	"github.com/pyhub-apps/pdfprint-golang/pkg/geometry"
	"github.com/pyhub-apps/pdfprint-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfprint-golang/pkg/validate"
)

// Re-export types from the validate and pdf packages for public API
type (
	Result    = validate.Result
	Settings  = validate.Settings
	ErrorKind = validate.ErrorKind
	Validator = validate.Validator
	Option    = validate.Option
	Bleed     = geometry.Bleed
	Strategy  = pdf.Strategy
)

// Read strategies
const (
	StrategyFull        = pdf.StrategyFull
	StrategyIncremental = pdf.StrategyIncremental
)

// Re-export option functions
var (
	WithLogger        = validate.WithLogger
	WithStrategy      = validate.WithStrategy
	WithStrictParsing = validate.WithStrictParsing
	WithReleaseEvery  = validate.WithReleaseEvery
	DefaultSettings   = validate.DefaultSettings
)

// New creates a Validator
func New(opts ...Option) *Validator {
	return validate.New(opts...)
}

// Validate validates an in-memory PDF document
func Validate(content []byte, settings Settings) (Result, error) {
	return validate.Validate(content, settings)
}

// ValidateFile validates the PDF file at path
func ValidateFile(path string, settings Settings) (Result, error) {
	return validate.ValidateFile(path, settings)
}
