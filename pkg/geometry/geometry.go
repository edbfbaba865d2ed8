// Package geometry classifies page sizes against A4 and computes the barcode
// silent zone reserved in the print margin.
package geometry

import "math"

// A4 reference size and barcode silent zone, all in millimeters.
const (
	A4WidthMM  = 210
	A4HeightMM = 297

	BarcodeAreaWidthMM  = 15
	BarcodeAreaHeightMM = 80
	BarcodeAreaXPosMM   = 0
	BarcodeAreaYPosMM   = 95
)

// pointsPerMM is the PDF user space unit (1/72 inch) expressed per millimeter
const pointsPerMM = 72 / 25.4

// Bleed is the tolerance in millimeters by which a page may be larger
// (Positive) or smaller (Negative) than A4.
type Bleed struct {
	PositiveMM int `json:"positive_mm" yaml:"positive_mm"`
	NegativeMM int `json:"negative_mm" yaml:"negative_mm"`
}

// Bounds holds the accepted portrait width and height range for a bleed.
type Bounds struct {
	MinWidthMM  int
	MaxWidthMM  int
	MinHeightMM int
	MaxHeightMM int
}

// Bounds returns the accepted portrait ranges for the bleed.
func (b Bleed) Bounds() Bounds {
	return Bounds{
		MinWidthMM:  A4WidthMM - b.NegativeMM,
		MaxWidthMM:  A4WidthMM + b.PositiveMM,
		MinHeightMM: A4HeightMM - b.NegativeMM,
		MaxHeightMM: A4HeightMM + b.PositiveMM,
	}
}

// Rect is a rectangle in points. X grows to the right and Y grows downward
// from the top edge of the page, the convention used for text regions.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Contains reports whether the point lies inside the rectangle. The left and
// top edges are inclusive, the right and bottom edges exclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// PointsToMM converts points to whole millimeters, rounding half up.
func PointsToMM(points float64) int {
	return int(math.Floor(points/pointsPerMM + 0.5))
}

// MMToPoints converts millimeters to points truncated to one decimal place.
// Truncation keeps the silent zone from growing into the printable area.
func MMToPoints(mm int) float64 {
	return math.Floor(float64(mm)*pointsPerMM*10) / 10
}

// IsPortraitA4 reports whether a page of the given size in millimeters is
// A4 portrait within the bleed tolerance.
func IsPortraitA4(widthMM, heightMM int, bleed Bleed) bool {
	b := bleed.Bounds()
	return widthMM >= b.MinWidthMM && widthMM <= b.MaxWidthMM &&
		heightMM >= b.MinHeightMM && heightMM <= b.MaxHeightMM
}

// IsLandscapeA4 is IsPortraitA4 with width and height swapped.
func IsLandscapeA4(widthMM, heightMM int, bleed Bleed) bool {
	return IsPortraitA4(heightMM, widthMM, bleed)
}

// IsA4 reports whether a page measured in points is A4 in either orientation.
func IsA4(widthPt, heightPt float64, bleed Bleed) bool {
	w, h := PointsToMM(widthPt), PointsToMM(heightPt)
	return IsPortraitA4(w, h, bleed) || IsLandscapeA4(w, h, bleed)
}

// SilentZoneFor returns the barcode area of a page measured in points.
//
// The strip is printed along the same paper edge whatever the content
// orientation, so on landscape pages the rectangle is transposed and moved
// to the bottom of the page.
func SilentZoneFor(widthPt, heightPt float64, bleed Bleed) Rect {
	widthMM, heightMM := PointsToMM(widthPt), PointsToMM(heightPt)
	if IsLandscapeA4(widthMM, heightMM, bleed) {
		return Rect{
			X:      MMToPoints(BarcodeAreaYPosMM),
			Y:      MMToPoints(heightMM - BarcodeAreaWidthMM),
			Width:  MMToPoints(BarcodeAreaHeightMM),
			Height: MMToPoints(BarcodeAreaWidthMM),
		}
	}
	return Rect{
		X:      MMToPoints(BarcodeAreaXPosMM),
		Y:      MMToPoints(BarcodeAreaYPosMM),
		Width:  MMToPoints(BarcodeAreaWidthMM),
		Height: MMToPoints(BarcodeAreaHeightMM),
	}
}
