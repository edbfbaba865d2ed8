package pdf

import (
	"strings"

	"github.com/pyhub-apps/pdfprint-golang/pkg/geometry"
)

// regionText joins the text of the glyphs whose origin lies in region.
// Glyph origins are in user space; region is measured from the top-left
// corner of the crop box.
func regionText(glyphs []glyph, crop Box, region geometry.Rect) string {
	crop = crop.normalize()
	var sb strings.Builder
	for _, g := range glyphs {
		x := g.X - crop.LLX
		y := crop.URY - g.Y
		if region.Contains(x, y) {
			sb.WriteString(g.Text)
		}
	}
	return sb.String()
}
