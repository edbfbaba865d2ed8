// Package pdftest builds small uncompressed PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// A4 and US letter sizes in points
const (
	A4Width      = 595.276
	A4Height     = 841.89
	LetterWidth  = 612
	LetterHeight = 792
)

// MMToPoints converts millimeters to points without rounding
func MMToPoints(mm float64) float64 {
	return mm * 72 / 25.4
}

// Text is a string shown at a baseline origin in default user space
type Text struct {
	X, Y float64
	S    string
	// Font is the resource name; empty means the default Helvetica font F1
	Font string
	Size float64
}

// Font is a font resource of a page
type Font struct {
	Resource string
	BaseFont string
	// Subtype defaults to Type1
	Subtype string
	// Descriptor adds a font descriptor. DescriptorName defaults to BaseFont.
	Descriptor     bool
	DescriptorName string
	// Embedded adds a FontFile2 stream to the descriptor
	Embedded bool
}

// Page describes one page. A nil MediaBox leaves the page without any page
// box.
type Page struct {
	MediaBox *[4]float64
	CropBox  *[4]float64
	Texts    []Text
	Fonts    []Font
}

// Box returns a page box [0 0 width height]
func Box(width, height float64) *[4]float64 {
	return &[4]float64{0, 0, width, height}
}

// A4 returns an empty A4 portrait page
func A4() Page {
	return Page{MediaBox: Box(A4Width, A4Height)}
}

// A4Landscape returns an empty A4 landscape page
func A4Landscape() Page {
	return Page{MediaBox: Box(A4Height, A4Width)}
}

// SizeMM returns an empty page of the given size in millimeters
func SizeMM(widthMM, heightMM float64) Page {
	return Page{MediaBox: Box(MMToPoints(widthMM), MMToPoints(heightMM))}
}

// WithText adds text in the default font
func (p Page) WithText(x, y float64, s string) Page {
	p.Texts = append(append([]Text{}, p.Texts...), Text{X: x, Y: y, S: s})
	return p
}

// WithFont adds a font resource
func (p Page) WithFont(f Font) Page {
	p.Fonts = append(append([]Font{}, p.Fonts...), f)
	return p
}

// Builder assembles a document page by page
type Builder struct {
	version        string
	catalogVersion string
	pages          []Page
}

// New returns a builder for a PDF 1.7 document
func New() *Builder {
	return &Builder{version: "1.7"}
}

// Version sets the header version
func (b *Builder) Version(v string) *Builder {
	b.version = v
	return b
}

// CatalogVersion sets the /Version entry of the document catalog
func (b *Builder) CatalogVersion(v string) *Builder {
	b.catalogVersion = v
	return b
}

// Page appends a page
func (b *Builder) Page(p Page) *Builder {
	b.pages = append(b.pages, p)
	return b
}

// Pages appends n copies of p
func (b *Builder) Pages(n int, p Page) *Builder {
	for i := 0; i < n; i++ {
		b.pages = append(b.pages, p)
	}
	return b
}

// writer tracks object offsets while the document is written
type writer struct {
	buf     bytes.Buffer
	offsets []int
}

func (w *writer) object(num int, body string) {
	for len(w.offsets) < num {
		w.offsets = append(w.offsets, 0)
	}
	w.offsets[num-1] = w.buf.Len()
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nendobj\n", num, body)
}

func stream(dict string, data []byte) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

// Bytes renders the document
func (b *Builder) Bytes() []byte {
	w := &writer{}
	fmt.Fprintf(&w.buf, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", b.version)

	// object numbers: 1 catalog, 2 page tree, then each page with its
	// content stream and font objects
	next := 3
	pageNums := make([]int, len(b.pages))
	type pageObjects struct {
		page, content int
		fonts         []int
	}
	layout := make([]pageObjects, len(b.pages))
	for i, p := range b.pages {
		layout[i].page = next
		layout[i].content = next + 1
		next += 2
		for range fontsOf(p) {
			// font dictionary, descriptor, font program
			layout[i].fonts = append(layout[i].fonts, next)
			next += 3
		}
		pageNums[i] = layout[i].page
	}

	catalog := "<< /Type /Catalog /Pages 2 0 R"
	if b.catalogVersion != "" {
		catalog += " /Version /" + b.catalogVersion
	}
	w.object(1, catalog+" >>")

	kids := make([]string, len(pageNums))
	for i, n := range pageNums {
		kids[i] = fmt.Sprintf("%d 0 R", n)
	}
	w.object(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pageNums)))

	for i, p := range b.pages {
		objs := layout[i]
		fonts := fontsOf(p)

		var res strings.Builder
		res.WriteString("<< /Font <<")
		for j, f := range fonts {
			fmt.Fprintf(&res, " /%s %d 0 R", f.Resource, objs.fonts[j])
		}
		res.WriteString(" >> >>")

		dict := fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources %s /Contents %d 0 R", res.String(), objs.content)
		if p.MediaBox != nil {
			dict += " /MediaBox " + boxString(*p.MediaBox)
		}
		if p.CropBox != nil {
			dict += " /CropBox " + boxString(*p.CropBox)
		}
		w.object(objs.page, dict+" >>")
		w.object(objs.content, stream("", contentOf(p)))

		for j, f := range fonts {
			num := objs.fonts[j]
			subtype := f.Subtype
			if subtype == "" {
				subtype = "Type1"
			}
			fontDict := fmt.Sprintf("<< /Type /Font /Subtype /%s /BaseFont /%s /Encoding /WinAnsiEncoding", subtype, f.BaseFont)
			if f.Descriptor {
				fontDict += fmt.Sprintf(" /FontDescriptor %d 0 R", num+1)
			}
			w.object(num, fontDict+" >>")

			descName := f.DescriptorName
			if descName == "" {
				descName = f.BaseFont
			}
			desc := fmt.Sprintf("<< /Type /FontDescriptor /FontName /%s /Flags 32 /FontBBox [0 0 1000 1000] /ItalicAngle 0 /Ascent 800 /Descent -200 /CapHeight 700 /StemV 80", descName)
			if f.Embedded {
				desc += fmt.Sprintf(" /FontFile2 %d 0 R", num+2)
			}
			w.object(num+1, desc+" >>")
			w.object(num+2, stream("", []byte("fake font program")))
		}
	}

	xref := w.buf.Len()
	fmt.Fprintf(&w.buf, "xref\n0 %d\n0000000000 65535 f \n", len(w.offsets)+1)
	for _, off := range w.offsets {
		fmt.Fprintf(&w.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&w.buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(w.offsets)+1, xref)
	return w.buf.Bytes()
}

// fontsOf returns the page fonts, adding Helvetica as F1 when text uses the
// default font.
func fontsOf(p Page) []Font {
	fonts := p.Fonts
	needsDefault := false
	for _, t := range p.Texts {
		if t.Font == "" {
			needsDefault = true
		}
	}
	for _, f := range fonts {
		if f.Resource == "F1" {
			needsDefault = false
		}
	}
	if needsDefault {
		fonts = append([]Font{{Resource: "F1", BaseFont: "Helvetica"}}, fonts...)
	}
	return fonts
}

func contentOf(p Page) []byte {
	var sb strings.Builder
	for _, t := range p.Texts {
		font := t.Font
		if font == "" {
			font = "F1"
		}
		size := t.Size
		if size == 0 {
			size = 10
		}
		fmt.Fprintf(&sb, "BT /%s %s Tf %s %s Td (%s) Tj ET\n", font, num(size), num(t.X), num(t.Y), escape(t.S))
	}
	return []byte(sb.String())
}

func boxString(b [4]float64) string {
	return fmt.Sprintf("[%s %s %s %s]", num(b[0]), num(b[1]), num(b[2]), num(b[3]))
}

func num(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
