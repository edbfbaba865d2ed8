package validate

import (
	"errors"
	"fmt"

	"github.com/pyhub-apps/pdfprint-golang/pkg/geometry"
)

// ErrInvalidSettings is returned for settings that cannot drive a validation
var ErrInvalidSettings = errors.New("invalid validation settings")

// Default settings values
const (
	DefaultMaxPageCount    = 14
	DefaultPositiveBleedMM = 0
	DefaultNegativeBleedMM = 10
)

// DefaultBleed is the bleed used when none is configured
var DefaultBleed = geometry.Bleed{PositiveMM: DefaultPositiveBleedMM, NegativeMM: DefaultNegativeBleedMM}

// Settings selects the checks of a validation run
type Settings struct {
	CheckLeftMargin bool
	CheckFonts      bool
	CheckPageCount  bool
	CheckPDFVersion bool
	MaxPageCount    int
	Bleed           geometry.Bleed
}

// CheckAll enables every check with the default limits
var CheckAll = DefaultSettings()

// DefaultSettings returns settings with every check enabled
func DefaultSettings() Settings {
	return Settings{
		CheckLeftMargin: true,
		CheckFonts:      true,
		CheckPageCount:  true,
		CheckPDFVersion: true,
		MaxPageCount:    DefaultMaxPageCount,
		Bleed:           DefaultBleed,
	}
}

// Validate checks that the bleed is non-negative and the page limit usable
func (s Settings) Validate() error {
	if s.Bleed.PositiveMM < 0 {
		return fmt.Errorf("%w: positive bleed %d mm is negative", ErrInvalidSettings, s.Bleed.PositiveMM)
	}
	if s.Bleed.NegativeMM < 0 {
		return fmt.Errorf("%w: negative bleed %d mm is negative", ErrInvalidSettings, s.Bleed.NegativeMM)
	}
	if s.CheckPageCount && s.MaxPageCount < 0 {
		return fmt.Errorf("%w: max page count %d is negative", ErrInvalidSettings, s.MaxPageCount)
	}
	return nil
}
