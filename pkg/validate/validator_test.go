package validate

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhub-apps/pdfprint-golang/pkg/fonts"
	"github.com/pyhub-apps/pdfprint-golang/pkg/geometry"
	"github.com/pyhub-apps/pdfprint-golang/pkg/pdf"
)

func validateDoc(doc *fakeDocument, settings Settings) Result {
	return New().ValidateDocument(doc, settings)
}

func TestCleanDocument(t *testing.T) {
	r := validateDoc(cleanDocument(3), CheckAll)

	assert.False(t, r.HasErrors(), r.String())
	assert.Equal(t, 3, r.Pages())
	assert.Equal(t, DefaultBleed, r.Bleed())
}

func TestEncryptedIsExclusive(t *testing.T) {
	doc := cleanDocument(20)
	doc.encrypted = true
	doc.version = "2.0"
	doc.pages[0].box = pdf.Box{URX: 100, URY: 100}

	r := validateDoc(doc, CheckAll)

	assert.Equal(t, []ErrorKind{PDFIsEncrypted}, r.Errors())
	assert.Equal(t, 20, r.Pages())
	assert.Empty(t, doc.visited)
	assert.True(t, r.OKForWeb())
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		name     string
		pages    int
		maxPages int
		want     []ErrorKind
	}{
		{"at limit", 14, 14, nil},
		{"over limit", 15, 14, []ErrorKind{TooManyPagesForAutomatedPrint}},
		{"raised limit", 15, 20, nil},
		{"no pages", 0, 14, []ErrorKind{DocumentHasNoPages}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := CheckAll
			s.MaxPageCount = tt.maxPages
			r := validateDoc(cleanDocument(tt.pages), s)
			assert.Equal(t, tt.want, r.Errors())
			assert.Equal(t, tt.pages, r.Pages())
		})
	}
}

func TestPageCountDisabled(t *testing.T) {
	s := CheckAll
	s.CheckPageCount = false

	assert.False(t, validateDoc(cleanDocument(30), s).HasErrors())
	assert.False(t, validateDoc(cleanDocument(0), s).HasErrors())
}

func TestPDFVersion(t *testing.T) {
	doc := cleanDocument(1)
	doc.version = "2.0"
	assert.Equal(t, []ErrorKind{UnsupportedPDFVersionForPrint}, validateDoc(doc, CheckAll).Errors())

	s := CheckAll
	s.CheckPDFVersion = false
	assert.False(t, validateDoc(doc, s).HasErrors())
}

func TestIsSupportedVersion(t *testing.T) {
	tests := map[string]bool{
		"1.0":  true,
		"1.4":  true,
		"1.7":  true,
		"1.40": true,
		" 1.5": true,
		"1.8":  false,
		"2.0":  false,
		"1.45": false,
		"":     false,
		"abc":  false,
	}
	for version, want := range tests {
		assert.Equal(t, want, isSupportedVersion(version), "version %q", version)
	}
}

func TestDimensionsUseBleed(t *testing.T) {
	oversized := func() *fakeDocument {
		doc := cleanDocument(2)
		doc.pages[1].box = pdf.Box{URX: 623.62, URY: 870.24} // 220 x 307 mm
		return doc
	}

	s := CheckAll
	s.Bleed = geometry.Bleed{PositiveMM: 10, NegativeMM: 10}
	r := validateDoc(oversized(), s)
	assert.False(t, r.HasErrors(), r.String())

	s.Bleed = geometry.Bleed{}
	r = validateDoc(oversized(), s)
	assert.Equal(t, []ErrorKind{UnsupportedDimensions}, r.Errors())
	assert.Contains(t, r.Message(UnsupportedDimensions), "210—210 mm")
}

func TestLandscapeA4IsAccepted(t *testing.T) {
	doc := cleanDocument(1)
	doc.pages[0].box = pdf.Box{URX: 841.89, URY: 595.276}

	r := validateDoc(doc, CheckAll)
	assert.False(t, r.HasErrors(), r.String())

	require.Len(t, doc.pages[0].regions, 1)
	zone := doc.pages[0].regions[0]
	assert.Equal(t, geometry.SilentZoneFor(841.89, 595.276, DefaultBleed), zone)
	assert.Greater(t, zone.Width, zone.Height)
}

func TestDimensionsCheckedWhenOtherChecksDisabled(t *testing.T) {
	doc := cleanDocument(1)
	doc.pages[0].box = pdf.Box{URX: 612, URY: 792}

	s := Settings{Bleed: DefaultBleed}
	assert.Equal(t, []ErrorKind{UnsupportedDimensions}, validateDoc(doc, s).Errors())
}

func TestTextInBarcodeArea(t *testing.T) {
	doc := cleanDocument(3)
	doc.pages[1].text = "INVOICE"

	r := validateDoc(doc, CheckAll)

	assert.Equal(t, []ErrorKind{InsufficientMarginForPrint}, r.Errors())
	assert.Len(t, doc.pages[0].regions, 1)
	assert.Len(t, doc.pages[1].regions, 1)
	assert.Empty(t, doc.pages[2].regions)

	zone := doc.pages[0].regions[0]
	assert.Equal(t, geometry.Rect{X: 0, Y: 269.2, Width: 42.5, Height: 226.7}, zone)
}

func TestWhitespaceInBarcodeAreaIsIgnored(t *testing.T) {
	doc := cleanDocument(1)
	doc.pages[0].text = " \n\t "

	assert.False(t, validateDoc(doc, CheckAll).HasErrors())
}

func TestMarginDisabled(t *testing.T) {
	doc := cleanDocument(1)
	doc.pages[0].text = "INVOICE"

	s := CheckAll
	s.CheckLeftMargin = false
	assert.False(t, validateDoc(doc, s).HasErrors())
	assert.Empty(t, doc.pages[0].regions)
}

func TestUnverifiableMargin(t *testing.T) {
	doc := cleanDocument(2)
	doc.pages[0].textErr = errors.New("unreadable stream")
	doc.pages[1].text = "INVOICE"

	r := validateDoc(doc, CheckAll)

	assert.Equal(t, []ErrorKind{UnableToVerifySuitableMarginForPrint, InsufficientMarginForPrint}, r.Errors())
}

func TestMissingCropBox(t *testing.T) {
	doc := cleanDocument(1)
	doc.pages[0].boxErr = pdf.ErrNoPageBox

	r := validateDoc(doc, CheckAll)

	assert.Equal(t, []ErrorKind{UnsupportedDimensions, UnableToVerifySuitableMarginForPrint}, r.Errors())
}

func TestPageParseError(t *testing.T) {
	doc := cleanDocument(3)
	doc.pageErrs[1] = errBrokenPage
	doc.pages[2].fonts = []fonts.Font{badFont}

	r := validateDoc(doc, CheckAll)

	assert.Equal(t, []ErrorKind{PDFParsePageError, ReferencesInvalidFont}, r.Errors())
	assert.Equal(t, []int{0, 1, 2}, doc.visited)
	assert.True(t, r.Has(PDFParsePageError))
	assert.False(t, r.OKForWeb())
}

func TestFontsScannedOnEveryPage(t *testing.T) {
	doc := cleanDocument(4)
	doc.pages[0].fonts = append(doc.pages[0].fonts, badFont)
	doc.pages[3].fonts = []fonts.Font{{Resource: "F1", Name: "Wingdings", Subtype: "TrueType", Damaged: true}}

	logger, hook := test.NewNullLogger()
	r := New(WithLogger(logger)).ValidateDocument(doc, CheckAll)

	assert.Equal(t, []ErrorKind{ReferencesInvalidFont}, r.Errors())
	assert.Equal(t, []int{0, 1, 2, 3}, doc.visited)

	var pages []interface{}
	for _, e := range hook.AllEntries() {
		if e.Message == "The PDF has references to invalid fonts" {
			pages = append(pages, e.Data["page"])
		}
	}
	assert.Equal(t, []interface{}{1, 4}, pages)
}

func TestFontsDisabled(t *testing.T) {
	doc := cleanDocument(1)
	doc.pages[0].fonts = []fonts.Font{badFont}

	s := CheckAll
	s.CheckFonts = false
	assert.False(t, validateDoc(doc, s).HasErrors())
}

func TestErrorOrder(t *testing.T) {
	doc := cleanDocument(15)
	doc.version = "1.8"
	for _, p := range doc.pages {
		p.box = pdf.Box{URX: 612, URY: 792}
		p.text = "x"
		p.fonts = []fonts.Font{badFont}
	}
	doc.pages[0].textErr = errors.New("unreadable")
	doc.pageErrs[14] = errBrokenPage

	r := validateDoc(doc, CheckAll)

	assert.Equal(t, []ErrorKind{
		TooManyPagesForAutomatedPrint,
		UnsupportedPDFVersionForPrint,
		UnsupportedDimensions,
		PDFParsePageError,
		UnableToVerifySuitableMarginForPrint,
		InsufficientMarginForPrint,
		ReferencesInvalidFont,
	}, r.Errors())
	assert.Equal(t, 15, r.Pages())
	assert.False(t, r.OKForPrint())
}

func TestPanicDuringChecks(t *testing.T) {
	doc := cleanDocument(2)
	doc.pages[1].explode = true

	r := validateDoc(doc, CheckAll)

	assert.Equal(t, []ErrorKind{PDFParseError}, r.Errors())
	assert.Equal(t, 2, r.Pages())
}

func TestValidateOpenErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"encrypted", pdf.ErrEncrypted, PDFIsEncrypted},
		{"wrapped encrypted", errors.Join(errors.New("open"), pdf.ErrEncrypted), PDFIsEncrypted},
		{"parse", pdf.ErrParse, PDFParseError},
		{"other", errors.New("boom"), PDFParseError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(WithOpener(opener(nil, tt.err)))
			r, err := v.Validate([]byte("%PDF-1.4"), CheckAll)
			require.NoError(t, err)
			assert.Equal(t, []ErrorKind{tt.want}, r.Errors())
			assert.Equal(t, -1, r.Pages())
		})
	}
}

func TestValidateClosesDocument(t *testing.T) {
	doc := cleanDocument(1)
	var got pdf.Options
	v := New(
		WithStrategy(pdf.StrategyIncremental),
		WithStrictParsing(true),
		WithReleaseEvery(3),
		WithOpener(func(r io.ReaderAt, size int64, opts pdf.Options) (pdf.Document, error) {
			got = opts
			assert.Equal(t, int64(4), size)
			return doc, nil
		}),
	)

	r, err := v.Validate([]byte("data"), CheckAll)
	require.NoError(t, err)
	assert.False(t, r.HasErrors())
	assert.True(t, doc.closed)
	assert.Equal(t, pdf.Options{Strategy: pdf.StrategyIncremental, Strict: true, ReleaseEvery: 3}, got)
}

func TestInvalidSettings(t *testing.T) {
	s := CheckAll
	s.Bleed.NegativeMM = -1

	called := false
	v := New(WithOpener(func(io.ReaderAt, int64, pdf.Options) (pdf.Document, error) {
		called = true
		return cleanDocument(1), nil
	}))

	_, err := v.Validate([]byte("data"), s)
	assert.ErrorIs(t, err, ErrInvalidSettings)

	_, err = v.ValidateFile(filepath.Join(t.TempDir(), "missing.pdf"), s)
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.False(t, called)
}

func TestValidateFileErrors(t *testing.T) {
	_, err := ValidateFile(filepath.Join(t.TempDir(), "missing.pdf"), CheckAll)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	var pathErr *fs.PathError
	_, err = ValidateFile(t.TempDir(), CheckAll)
	require.Error(t, err)
	assert.ErrorAs(t, err, &pathErr)
}

func TestValidateFileReadsContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o600))

	doc := cleanDocument(2)
	v := New(WithOpener(func(r io.ReaderAt, size int64, _ pdf.Options) (pdf.Document, error) {
		buf := make([]byte, size)
		_, err := r.ReadAt(buf, 0)
		require.NoError(t, err)
		assert.Equal(t, "not a pdf", string(buf))
		return doc, nil
	}))

	r, err := v.ValidateFile(path, CheckAll)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Pages())
	assert.True(t, doc.closed)
}

func TestDiagnosticsAreLogged(t *testing.T) {
	doc := cleanDocument(2)
	doc.pages[1].text = "INVOICE"

	logger, hook := test.NewNullLogger()
	New(WithLogger(logger)).ValidateDocument(doc, CheckAll)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "The PDF has text in the barcode area", entry.Message)
	assert.Equal(t, 2, entry.Data["page"])
}

func TestWithNilOptionsKeepDefaults(t *testing.T) {
	v := New(WithLogger(nil), WithOpener(nil))
	assert.NotNil(t, v.log)
	assert.NotNil(t, v.open)
	assert.Equal(t, pdf.StrategyFull, v.strategy)
}
