package validate

import (
	"errors"
	"io"

	"github.com/pyhub-apps/pdfprint-golang/pkg/fonts"
	"github.com/pyhub-apps/pdfprint-golang/pkg/geometry"
	"github.com/pyhub-apps/pdfprint-golang/pkg/pdf"
)

var errBrokenPage = errors.New("broken page")

type fakePage struct {
	number  int
	box     pdf.Box
	boxErr  error
	text    string
	textErr error
	fonts   []fonts.Font
	regions []geometry.Rect
	// explode makes TextInRegion panic
	explode bool
}

func (p *fakePage) Number() int { return p.number }

func (p *fakePage) CropBox() (pdf.Box, error) {
	if p.boxErr != nil {
		return pdf.Box{}, p.boxErr
	}
	return p.box, nil
}

func (p *fakePage) Fonts() []fonts.Font { return p.fonts }

func (p *fakePage) TextInRegion(region geometry.Rect) (string, error) {
	p.regions = append(p.regions, region)
	if p.explode {
		panic("corrupt content stream")
	}
	return p.text, p.textErr
}

type fakeDocument struct {
	encrypted bool
	version   string
	pages     []*fakePage
	// pageErrs holds per index failures of Page
	pageErrs map[int]error
	// count overrides len(pages) when set
	count   *int
	closed  bool
	visited []int
}

func (d *fakeDocument) IsEncrypted() bool { return d.encrypted }

func (d *fakeDocument) PageCount() int {
	if d.count != nil {
		return *d.count
	}
	return len(d.pages)
}

func (d *fakeDocument) Version() string { return d.version }

func (d *fakeDocument) Page(index int) (pdf.Page, error) {
	d.visited = append(d.visited, index)
	if err := d.pageErrs[index]; err != nil {
		return nil, err
	}
	return d.pages[index], nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

// opener returns an OpenFunc that always yields doc or err
func opener(doc *fakeDocument, err error) OpenFunc {
	return func(io.ReaderAt, int64, pdf.Options) (pdf.Document, error) {
		if err != nil {
			return nil, err
		}
		return doc, nil
	}
}

func a4Box() pdf.Box {
	return pdf.Box{URX: 595.276, URY: 841.89}
}

func a4Page(n int) *fakePage {
	return &fakePage{number: n, box: a4Box(), fonts: []fonts.Font{{Resource: "F1", Name: "Helvetica", Subtype: "Type1"}}}
}

// cleanDocument returns an A4 document of n pages that passes every check
func cleanDocument(n int) *fakeDocument {
	doc := &fakeDocument{version: "1.4", pageErrs: map[int]error{}}
	for i := 0; i < n; i++ {
		doc.pages = append(doc.pages, a4Page(i+1))
	}
	return doc
}

var badFont = fonts.Font{Resource: "F9", Name: "ComicSansMS", Subtype: "TrueType"}
