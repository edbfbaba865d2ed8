package validate

import (
	"fmt"
	"strings"

	"github.com/pyhub-apps/pdfprint-golang/pkg/geometry"
)

// ErrorKind is one of the closed set of validation errors
type ErrorKind int

const (
	PDFIsEncrypted ErrorKind = iota
	TooManyPagesForAutomatedPrint
	UnsupportedPDFVersionForPrint
	InsufficientMarginForPrint
	UnableToVerifySuitableMarginForPrint
	PDFParseError
	PDFParsePageError
	UnsupportedDimensions
	ReferencesInvalidFont
	DocumentTooSmall
	InvalidPDF
	DocumentHasNoPages
)

// SupportedPDFVersions are the versions accepted for print
var SupportedPDFVersions = []string{"1.0", "1.1", "1.2", "1.3", "1.4", "1.5", "1.6", "1.7"}

type errorKindInfo struct {
	code     string
	message  string
	okForWeb bool
}

var errorKinds = [...]errorKindInfo{
	PDFIsEncrypted: {
		code:     "PDF_IS_ENCRYPTED",
		message:  "The PDF document is encrypted.",
		okForWeb: true,
	},
	TooManyPagesForAutomatedPrint: {
		code:     "TOO_MANY_PAGES_FOR_AUTOMATED_PRINT",
		message:  "The PDF document contains too many pages.",
		okForWeb: true,
	},
	UnsupportedPDFVersionForPrint: {
		code:     "UNSUPPORTED_PDF_VERSION_FOR_PRINT",
		message:  "The version of the PDF document is not supported. Supported versions are " + strings.Join(SupportedPDFVersions, ", ") + ".",
		okForWeb: true,
	},
	InsufficientMarginForPrint: {
		code:     "INSUFFICIENT_MARGIN_FOR_PRINT",
		message:  fmt.Sprintf("The left margin of the PDF document is too narrow. Minimum left margin is %d mm.", geometry.BarcodeAreaWidthMM),
		okForWeb: true,
	},
	UnableToVerifySuitableMarginForPrint: {
		code:     "UNABLE_TO_VERIFY_SUITABLE_MARGIN_FOR_PRINT",
		message:  fmt.Sprintf("Could not verify the left margin of the PDF document. Minimum left margin is %d mm.", geometry.BarcodeAreaWidthMM),
		okForWeb: true,
	},
	PDFParseError: {
		code:    "PDF_PARSE_ERROR",
		message: "Could not parse the PDF document.",
	},
	PDFParsePageError: {
		code:     "PDF_PARSE_PAGE_ERROR",
		message:  "Could not parse at least one of the pages in the PDF document",
		okForWeb: true,
	},
	UnsupportedDimensions: {
		code: "UNSUPPORTED_DIMENSIONS",
		message: "The dimensions of the PDF document are not supported. Supported dimensions are width between %d—%d mm and height between " +
			"%d—%d mm. If these limits should be changed, contact support.",
		okForWeb: true,
	},
	ReferencesInvalidFont: {
		code:    "REFERENCES_INVALID_FONT",
		message: "The document refers to a non-standard font that is not included in the PDF.",
	},
	DocumentTooSmall: {
		code:    "DOCUMENT_TOO_SMALL",
		message: "The PDF document size is too small.",
	},
	InvalidPDF: {
		code:    "INVALID_PDF",
		message: "The PDF document is invalid.",
	},
	DocumentHasNoPages: {
		code:    "DOCUMENT_HAS_NO_PAGES",
		message: "The PDF document does not contain any pages. The file may be corrupt.",
	},
}

// AllErrorKinds returns every error kind in declaration order
func AllErrorKinds() []ErrorKind {
	kinds := make([]ErrorKind, len(errorKinds))
	for i := range errorKinds {
		kinds[i] = ErrorKind(i)
	}
	return kinds
}

func (k ErrorKind) valid() bool {
	return k >= 0 && int(k) < len(errorKinds)
}

// String returns the error code, for example PDF_IS_ENCRYPTED
func (k ErrorKind) String() string {
	if !k.valid() {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKinds[k].code
}

// Message returns the message template. Only UnsupportedDimensions has
// placeholders; use Format to fill them.
func (k ErrorKind) Message() string {
	if !k.valid() {
		return ""
	}
	return errorKinds[k].message
}

// Format returns the message with the size bounds of bleed filled in
func (k ErrorKind) Format(bleed geometry.Bleed) string {
	if k != UnsupportedDimensions {
		return k.Message()
	}
	b := bleed.Bounds()
	return fmt.Sprintf(k.Message(), b.MinWidthMM, b.MaxWidthMM, b.MinHeightMM, b.MaxHeightMM)
}

// OKForPrint reports whether a document with this error can still be
// printed. No error is acceptable for print.
func (k ErrorKind) OKForPrint() bool {
	return false
}

// OKForWeb reports whether a document with this error can still be shown
// on the web.
func (k ErrorKind) OKForWeb() bool {
	return k.valid() && errorKinds[k].okForWeb
}

// MarshalText encodes the kind as its code
func (k ErrorKind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, fmt.Errorf("invalid error kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a code produced by MarshalText
func (k *ErrorKind) UnmarshalText(text []byte) error {
	kind, err := ParseErrorKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseErrorKind returns the kind with the given code
func ParseErrorKind(code string) (ErrorKind, error) {
	for i, info := range errorKinds {
		if info.code == code {
			return ErrorKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown validation error code %q", code)
}
