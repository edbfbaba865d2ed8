package pdf

import (
	"github.com/pyhub-apps/pdfprint-golang/pkg/fonts"
	"github.com/pyhub-apps/pdfprint-golang/pkg/geometry"
)

// Document is an opened PDF document as seen by the validator
type Document interface {
	// IsEncrypted reports whether the document carries an encryption dictionary
	IsEncrypted() bool

	// PageCount returns the number of pages declared by the page tree
	PageCount() int

	// Version returns the declared PDF version, for example "1.7"
	Version() string

	// Page returns a page by index (0-based). The incremental strategy
	// resolves the page on demand, so this may fail for a single damaged page
	// while the rest of the document stays readable.
	Page(index int) (Page, error)

	// Close releases resources associated with the document
	Close() error
}

// Page is a single page of a Document
type Page interface {
	// Number returns the page number (1-based)
	Number() int

	// CropBox returns the visible page boundary in points. It returns
	// ErrNoPageBox when neither a crop box nor a media box can be read.
	CropBox() (Box, error)

	// Fonts returns the fonts referenced by the page resources. Font
	// dictionaries that cannot be read are returned with Damaged set.
	Fonts() []fonts.Font

	// TextInRegion returns the text whose glyph origins fall into region.
	// The region uses top-left coordinates relative to the crop box.
	TextInRegion(region geometry.Rect) (string, error)
}

// Box is a page boundary rectangle in PDF user space
type Box struct {
	LLX, LLY, URX, URY float64
}

// Width returns the horizontal extent of the box
func (b Box) Width() float64 {
	return abs(b.URX - b.LLX)
}

// Height returns the vertical extent of the box
func (b Box) Height() float64 {
	return abs(b.URY - b.LLY)
}

// normalize orders the corners so LL is the lower left
func (b Box) normalize() Box {
	if b.LLX > b.URX {
		b.LLX, b.URX = b.URX, b.LLX
	}
	if b.LLY > b.URY {
		b.LLY, b.URY = b.URY, b.LLY
	}
	return b
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
