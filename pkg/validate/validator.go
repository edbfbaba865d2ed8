// Package validate checks PDF documents against the constraints of the
// automated print and mail production line: page size, barcode margin,
// page count, PDF version, fonts and encryption.
package validate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pyhub-apps/pdfprint-golang/pkg/pdf"
)

// OpenFunc opens a document for validation. pdf.Open is the default.
type OpenFunc func(r io.ReaderAt, size int64, opts pdf.Options) (pdf.Document, error)

// Validator runs validations. It holds no per document state, so one
// Validator may be shared by concurrent callers.
type Validator struct {
	log          logrus.FieldLogger
	strategy     pdf.Strategy
	strict       bool
	releaseEvery int
	open         OpenFunc
}

// Option configures a Validator
type Option func(*Validator)

// WithLogger sets the logger for rule violations and parse failures
func WithLogger(log logrus.FieldLogger) Option {
	return func(v *Validator) {
		if log != nil {
			v.log = log
		}
	}
}

// WithStrategy selects how documents are read
func WithStrategy(s pdf.Strategy) Option {
	return func(v *Validator) {
		v.strategy = s
	}
}

// WithStrictParsing makes documents that fail full PDF validation parse
// errors. It only affects pdf.StrategyFull.
func WithStrictParsing(strict bool) Option {
	return func(v *Validator) {
		v.strict = strict
	}
}

// WithReleaseEvery sets the page cadence at which the incremental strategy
// releases resolved pages.
func WithReleaseEvery(pages int) Option {
	return func(v *Validator) {
		v.releaseEvery = pages
	}
}

// WithOpener replaces the function used to open documents
func WithOpener(open OpenFunc) Option {
	return func(v *Validator) {
		if open != nil {
			v.open = open
		}
	}
}

// New creates a Validator. Without options it reads documents fully and
// logs nothing.
func New(opts ...Option) *Validator {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	v := &Validator{
		log:      discard,
		strategy: pdf.StrategyFull,
		open:     pdf.Open,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultValidator = New()

// Validate validates an in-memory document with the default Validator
func Validate(content []byte, settings Settings) (Result, error) {
	return defaultValidator.Validate(content, settings)
}

// ValidateFile validates a file with the default Validator
func ValidateFile(path string, settings Settings) (Result, error) {
	return defaultValidator.ValidateFile(path, settings)
}

// Validate validates an in-memory document. The error is only non-nil for
// invalid settings; every problem with the document is part of the Result.
func (v *Validator) Validate(content []byte, settings Settings) (Result, error) {
	return v.ValidateReader(bytes.NewReader(content), int64(len(content)), settings)
}

// ValidateFile validates the file at path. Failing to open or stat the file
// is returned as an error and never folded into the Result.
func (v *Validator) ValidateFile(path string, settings Settings) (Result, error) {
	if err := settings.Validate(); err != nil {
		return Result{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Result{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return Result{}, fmt.Errorf("failed to read file: %w", &os.PathError{Op: "read", Path: path, Err: errors.New("is a directory")})
	}

	return v.ValidateReader(f, info.Size(), settings)
}

// ValidateReader validates size bytes read from r
func (v *Validator) ValidateReader(r io.ReaderAt, size int64, settings Settings) (Result, error) {
	if err := settings.Validate(); err != nil {
		return Result{}, err
	}

	doc, err := v.open(r, size, pdf.Options{
		Strategy:     v.strategy,
		Strict:       v.strict,
		ReleaseEvery: v.releaseEvery,
	})
	if err != nil {
		if errors.Is(err, pdf.ErrEncrypted) {
			v.log.Info("The pdf is encrypted.")
			return NewResult([]ErrorKind{PDFIsEncrypted}, -1, settings.Bleed), nil
		}
		v.log.WithError(err).Info("PDF could not be parsed.")
		return NewResult([]ErrorKind{PDFParseError}, -1, settings.Bleed), nil
	}
	defer func() {
		if err := doc.Close(); err != nil {
			v.log.WithError(err).Debug("Failed to close document")
		}
	}()

	return v.ValidateDocument(doc, settings), nil
}

// ValidateDocument runs the checks on an opened document. The caller keeps
// ownership of doc. Settings are assumed to be valid.
func (v *Validator) ValidateDocument(doc pdf.Document, settings Settings) (result Result) {
	pages := doc.PageCount()

	defer func() {
		if r := recover(); r != nil {
			v.log.WithField("panic", r).Info("PDF could not be parsed.")
			result = NewResult([]ErrorKind{PDFParseError}, pages, settings.Bleed)
		}
	}()

	if doc.IsEncrypted() {
		v.log.Info("The pdf is encrypted.")
		return NewResult([]ErrorKind{PDFIsEncrypted}, pages, settings.Bleed)
	}

	var errs []ErrorKind
	if settings.CheckPageCount {
		errs = append(errs, v.checkPageCount(pages, settings.MaxPageCount)...)
	}
	if settings.CheckPDFVersion && !isSupportedVersion(doc.Version()) {
		v.log.WithFields(logrus.Fields{
			"version":   doc.Version(),
			"supported": strings.Join(SupportedPDFVersions, ", "),
		}).Info("The PDF is not in a supported version")
		errs = append(errs, UnsupportedPDFVersionForPrint)
	}

	errs = append(errs, v.checkPages(doc, pages, settings)...)
	return NewResult(errs, pages, settings.Bleed)
}

func (v *Validator) checkPageCount(pages, maxPages int) []ErrorKind {
	var errs []ErrorKind
	if pages > maxPages {
		v.log.WithFields(logrus.Fields{
			"pages":     pages,
			"max_pages": maxPages,
		}).Info("The PDF has too many pages")
		errs = append(errs, TooManyPagesForAutomatedPrint)
	}
	if pages == 0 {
		v.log.Info("The PDF document does not contain any pages. The file may be corrupt.")
		errs = append(errs, DocumentHasNoPages)
	}
	return errs
}

// checkPages visits every page once. Dimension and margin checks stop
// looking once they failed; fonts are collected from every page.
func (v *Validator) checkPages(doc pdf.Document, pages int, settings Settings) []ErrorKind {
	checker := pageChecker{bleed: settings.Bleed, log: v.log}

	var (
		invalidDimensions  bool
		pageParseError     bool
		marginUnverifiable bool
		textInBarcodeArea  bool
		invalidFonts       []string
	)

	for i := 0; i < pages; i++ {
		page, err := doc.Page(i)
		if err != nil {
			v.log.WithError(err).WithField("page", i+1).Warn("Could not parse a page of the PDF")
			pageParseError = true
			continue
		}

		if !invalidDimensions && checker.hasInvalidDimensions(page) {
			invalidDimensions = true
		}

		if settings.CheckLeftMargin && !textInBarcodeArea {
			found, err := checker.hasTextInBarcodeArea(page)
			switch {
			case err != nil:
				v.log.WithError(err).WithField("page", page.Number()).Info("Could not validate the margin on one of the pages")
				marginUnverifiable = true
			case found:
				v.log.WithField("page", page.Number()).Info("The PDF has text in the barcode area")
				textInBarcodeArea = true
			}
		}

		if settings.CheckFonts {
			if bad := checker.unsupportedFonts(page); len(bad) > 0 {
				names := make([]string, len(bad))
				for j, f := range bad {
					names[j] = f.String()
				}
				v.log.WithFields(logrus.Fields{
					"page":  page.Number(),
					"fonts": strings.Join(names, ", "),
				}).Info("The PDF has references to invalid fonts")
				invalidFonts = append(invalidFonts, names...)
			}
		}
	}

	var errs []ErrorKind
	if invalidDimensions {
		errs = append(errs, UnsupportedDimensions)
	}
	if pageParseError {
		errs = append(errs, PDFParsePageError)
	}
	if marginUnverifiable {
		errs = append(errs, UnableToVerifySuitableMarginForPrint)
	}
	if textInBarcodeArea {
		errs = append(errs, InsufficientMarginForPrint)
	}
	if len(invalidFonts) > 0 {
		errs = append(errs, ReferencesInvalidFont)
	}
	return errs
}

// isSupportedVersion compares numerically, so "1.40" matches "1.4"
func isSupportedVersion(version string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(version), 64)
	if err != nil {
		return false
	}
	normalized := strconv.FormatFloat(f, 'f', 1, 64)
	if back, _ := strconv.ParseFloat(normalized, 64); back != f {
		return false
	}
	for _, v := range SupportedPDFVersions {
		if v == normalized {
			return true
		}
	}
	return false
}
