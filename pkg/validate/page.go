package validate

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pyhub-apps/pdfprint-golang/pkg/fonts"
	"github.com/pyhub-apps/pdfprint-golang/pkg/geometry"
	"github.com/pyhub-apps/pdfprint-golang/pkg/pdf"
)

// pageChecker runs the per page checks with one bleed
type pageChecker struct {
	bleed geometry.Bleed
	log   logrus.FieldLogger
}

// hasInvalidDimensions reports whether the crop box is A4 in neither
// orientation. A page without a readable crop box is invalid.
func (c pageChecker) hasInvalidDimensions(page pdf.Page) bool {
	box, err := page.CropBox()
	if err != nil {
		c.log.WithError(err).WithField("page", page.Number()).Info("Could not read the dimensions of a page")
		return true
	}
	if geometry.IsA4(box.Width(), box.Height(), c.bleed) {
		return false
	}
	c.log.WithFields(logrus.Fields{
		"page":         page.Number(),
		"width_mm":     geometry.PointsToMM(box.Width()),
		"height_mm":    geometry.PointsToMM(box.Height()),
		"negative_mm":  c.bleed.NegativeMM,
		"positive_mm":  c.bleed.PositiveMM,
		"valid_width":  geometry.A4WidthMM,
		"valid_height": geometry.A4HeightMM,
	}).Info("One or more pages in the PDF has invalid dimensions")
	return true
}

// hasTextInBarcodeArea reports whether any text lies in the silent zone. An
// error means the margin could not be verified, which is not the same as
// an empty margin.
func (c pageChecker) hasTextInBarcodeArea(page pdf.Page) (bool, error) {
	box, err := page.CropBox()
	if err != nil {
		return false, err
	}
	zone := geometry.SilentZoneFor(box.Width(), box.Height(), c.bleed)
	text, err := page.TextInRegion(zone)
	if err != nil {
		return false, fmt.Errorf("failed to extract text of page %d: %w", page.Number(), err)
	}
	return strings.TrimSpace(text) != "", nil
}

// unsupportedFonts returns the fonts of the page that cannot be printed
func (c pageChecker) unsupportedFonts(page pdf.Page) []fonts.Font {
	return fonts.Unsupported(page.Fonts())
}
