package pdf

import (
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// fullDocument implements Document on top of a pdfcpu context. Every page
// is resolved when the document is opened.
type fullDocument struct {
	ctx   *model.Context
	pages []*fullPage
}

// openFull reads the whole document with pdfcpu
func openFull(rs io.ReadSeeker, opts Options) (doc Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, parseError(fmt.Errorf("pdfcpu panic: %v", r))
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		if isPasswordError(err) {
			return nil, fmt.Errorf("%w: %v", ErrEncrypted, err)
		}
		return nil, parseError(err)
	}

	if opts.Strict {
		if err := api.ValidateContext(ctx); err != nil {
			return nil, parseError(err)
		}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, parseError(err)
	}

	d := &fullDocument{ctx: ctx}
	if err := d.initializePages(); err != nil {
		return nil, parseError(err)
	}
	return d, nil
}

// initializePages resolves every page dictionary
func (d *fullDocument) initializePages() error {
	d.pages = make([]*fullPage, d.ctx.PageCount)
	for i := 1; i <= d.ctx.PageCount; i++ {
		page, err := newFullPage(d.ctx, i)
		if err != nil {
			return fmt.Errorf("failed to resolve page %d: %w", i, err)
		}
		d.pages[i-1] = page
	}
	return nil
}

// IsEncrypted reports whether the trailer references an encryption dictionary
func (d *fullDocument) IsEncrypted() bool {
	return d.ctx.Encrypt != nil
}

// PageCount returns the number of pages
func (d *fullDocument) PageCount() int {
	return len(d.pages)
}

// Version returns the catalog /Version if present, or the header version
func (d *fullDocument) Version() string {
	if root, err := d.ctx.Catalog(); err == nil {
		if v := nameEntry(root, "Version"); v != "" {
			return v
		}
	}
	return d.ctx.XRefTable.Version().String()
}

// Page returns a specific page by index (0-based)
func (d *fullDocument) Page(index int) (Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrPageOutOfRange, index, len(d.pages))
	}
	return d.pages[index], nil
}

// Close releases the pdfcpu context
func (d *fullDocument) Close() error {
	d.ctx = nil
	d.pages = nil
	return nil
}
