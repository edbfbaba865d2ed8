package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/pyhub-apps/pdfprint-golang/pkg/fonts"
	"github.com/pyhub-apps/pdfprint-golang/pkg/geometry"
)

// headerSearchSize is how far into the file the %PDF- header is looked for
const headerSearchSize = 1024

var headerVersion = regexp.MustCompile(`%PDF-(\d+\.\d+)`)

// ledongthuc only accepts 1.x headers. A PDF 2.x file is read through a
// view that starts with legacyHeader; the real version is kept.
var (
	pdf2Prefix   = []byte("%PDF-2.")
	legacyHeader = []byte("%PDF-1.7")
)

// legacyHeaderReader overlays legacyHeader on the first bytes of r
type legacyHeaderReader struct {
	io.ReaderAt
}

func (r legacyHeaderReader) ReadAt(p []byte, off int64) (int, error) {
	n, err := r.ReaderAt.ReadAt(p, off)
	for i := 0; i < n && off+int64(i) < int64(len(legacyHeader)); i++ {
		p[i] = legacyHeader[off+int64(i)]
	}
	return n, err
}

// hasPDF2Header reports whether r starts with a %PDF-2.x header
func hasPDF2Header(r io.ReaderAt, size int64) bool {
	if size < int64(len(legacyHeader)) {
		return false
	}
	buf := make([]byte, len(pdf2Prefix))
	n, _ := r.ReadAt(buf, 0)
	return n == len(buf) && bytes.Equal(buf, pdf2Prefix)
}

// incrementalDocument implements Document using ledongthuc/pdf. Pages are
// resolved when they are requested, and resolved pages are released every
// releaseEvery requests.
type incrementalDocument struct {
	reader        *lpdf.Reader
	headerVersion string
	pageCount     int
	releaseEvery  int
	resolved      map[int]*incrementalPage
	requested     int
}

// openIncremental opens the document without resolving any page
func openIncremental(r io.ReaderAt, size int64, opts Options) (doc Document, err error) {
	defer func() {
		if p := recover(); p != nil {
			doc, err = nil, parseError(fmt.Errorf("ledongthuc panic: %v", p))
		}
	}()

	source := r
	if hasPDF2Header(r, size) {
		source = legacyHeaderReader{r}
	}

	reader, err := lpdf.NewReader(source, size)
	if err != nil {
		if errors.Is(err, lpdf.ErrInvalidPassword) || isPasswordError(err) {
			return nil, fmt.Errorf("%w: %v", ErrEncrypted, err)
		}
		return nil, parseError(err)
	}

	releaseEvery := opts.ReleaseEvery
	if releaseEvery <= 0 {
		releaseEvery = DefaultReleaseEvery
	}

	return &incrementalDocument{
		reader:        reader,
		headerVersion: readHeaderVersion(r, size),
		pageCount:     reader.NumPage(),
		releaseEvery:  releaseEvery,
		resolved:      make(map[int]*incrementalPage),
	}, nil
}

func readHeaderVersion(r io.ReaderAt, size int64) string {
	n := int64(headerSearchSize)
	if size < n {
		n = size
	}
	buf := make([]byte, n)
	read, _ := r.ReadAt(buf, 0)
	if m := headerVersion.FindSubmatch(buf[:read]); m != nil {
		return string(m[1])
	}
	return ""
}

// IsEncrypted reports whether the trailer references an encryption dictionary
func (d *incrementalDocument) IsEncrypted() bool {
	return d.reader.Trailer().Key("Encrypt").Kind() != lpdf.Null
}

// PageCount returns the /Count of the page tree root
func (d *incrementalDocument) PageCount() int {
	return d.pageCount
}

// Version returns the catalog /Version if present, or the header version
func (d *incrementalDocument) Version() string {
	if v := d.reader.Trailer().Key("Root").Key("Version"); v.Kind() == lpdf.Name {
		return v.Name()
	}
	return d.headerVersion
}

// Page resolves a page by index (0-based)
func (d *incrementalDocument) Page(index int) (page Page, err error) {
	if index < 0 || index >= d.pageCount {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrPageOutOfRange, index, d.pageCount)
	}
	if p, ok := d.resolved[index]; ok {
		return p, nil
	}

	// ledongthuc keeps no object cache of its own, so the resolved pages
	// are the only state that can be released.
	d.requested++
	if d.requested%d.releaseEvery == 0 {
		d.resolved = make(map[int]*incrementalPage)
	}

	defer func() {
		if r := recover(); r != nil {
			page, err = nil, fmt.Errorf("cannot read page %d: %v", index+1, r)
		}
	}()

	lp := d.reader.Page(index + 1)
	if lp.V.Kind() != lpdf.Dict {
		return nil, fmt.Errorf("cannot read page %d: page dictionary missing", index+1)
	}

	p := &incrementalPage{pageNumber: index + 1, page: lp}
	p.cropBox = findBox(lp.V)
	p.fonts = describeIncrementalFonts(lp)
	d.resolved[index] = p
	return p, nil
}

// Close drops every resolved page
func (d *incrementalDocument) Close() error {
	d.resolved = nil
	d.reader = nil
	return nil
}

// incrementalPage implements Page using ledongthuc/pdf
type incrementalPage struct {
	pageNumber int
	page       lpdf.Page
	cropBox    *Box
	fonts      []fonts.Font
}

// Number returns the page number (1-based)
func (p *incrementalPage) Number() int {
	return p.pageNumber
}

// CropBox returns the crop box, falling back to the media box
func (p *incrementalPage) CropBox() (Box, error) {
	if p.cropBox == nil {
		return Box{}, ErrNoPageBox
	}
	return *p.cropBox, nil
}

// Fonts returns the fonts of the page resources
func (p *incrementalPage) Fonts() []fonts.Font {
	return p.fonts
}

// TextInRegion returns the text whose glyph origins fall inside region
func (p *incrementalPage) TextInRegion(region geometry.Rect) (text string, err error) {
	crop, err := p.CropBox()
	if err != nil {
		return "", err
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("content stream of page %d: %v", p.pageNumber, r)
		}
	}()

	content := p.page.Content()
	glyphs := make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, glyph{X: t.X, Y: t.Y, Text: t.S})
	}
	return regionText(glyphs, crop, region), nil
}

// findBox looks up CropBox, then MediaBox, through the page tree
func findBox(page lpdf.Value) *Box {
	for _, key := range []string{"CropBox", "MediaBox"} {
		for v := page; v.Kind() == lpdf.Dict; v = v.Key("Parent") {
			if box, ok := boxValue(v.Key(key)); ok {
				return &box
			}
		}
	}
	return nil
}

func boxValue(v lpdf.Value) (Box, bool) {
	if v.Kind() != lpdf.Array || v.Len() != 4 {
		return Box{}, false
	}
	var n [4]float64
	for i := range n {
		item := v.Index(i)
		if item.Kind() != lpdf.Integer && item.Kind() != lpdf.Real {
			return Box{}, false
		}
		n[i] = item.Float64()
	}
	return Box{LLX: n[0], LLY: n[1], URX: n[2], URY: n[3]}, true
}

func describeIncrementalFonts(page lpdf.Page) []fonts.Font {
	names := page.Fonts()
	if len(names) == 0 {
		return nil
	}
	out := make([]fonts.Font, 0, len(names))
	for _, name := range names {
		out = append(out, describeIncrementalFont(name, page.Font(name).V))
	}
	return out
}

func describeIncrementalFont(resource string, v lpdf.Value) fonts.Font {
	f := fonts.Font{Resource: resource}
	if v.Kind() != lpdf.Dict {
		f.Damaged = true
		return f
	}

	f.Name = v.Key("BaseFont").Name()
	f.Subtype = v.Key("Subtype").Name()
	f.Composite = f.Subtype == "Type0"

	source := v
	if f.Composite {
		source = v.Key("DescendantFonts").Index(0)
	}
	desc := source.Key("FontDescriptor")
	switch desc.Kind() {
	case lpdf.Null:
		return f
	case lpdf.Dict:
	default:
		f.Damaged = true
		return f
	}

	f.Descriptor = &fonts.Descriptor{
		FontName:  desc.Key("FontName").Name(),
		FontFile:  desc.Key("FontFile").Kind() == lpdf.Stream,
		FontFile2: desc.Key("FontFile2").Kind() == lpdf.Stream,
		FontFile3: desc.Key("FontFile3").Kind() == lpdf.Stream,
	}
	return f
}

