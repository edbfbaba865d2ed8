package validate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhub-apps/pdfprint-golang/pkg/geometry"
)

func TestErrorKindCodes(t *testing.T) {
	expected := map[ErrorKind]string{
		PDFIsEncrypted:                       "PDF_IS_ENCRYPTED",
		TooManyPagesForAutomatedPrint:        "TOO_MANY_PAGES_FOR_AUTOMATED_PRINT",
		UnsupportedPDFVersionForPrint:        "UNSUPPORTED_PDF_VERSION_FOR_PRINT",
		InsufficientMarginForPrint:           "INSUFFICIENT_MARGIN_FOR_PRINT",
		UnableToVerifySuitableMarginForPrint: "UNABLE_TO_VERIFY_SUITABLE_MARGIN_FOR_PRINT",
		PDFParseError:                        "PDF_PARSE_ERROR",
		PDFParsePageError:                    "PDF_PARSE_PAGE_ERROR",
		UnsupportedDimensions:                "UNSUPPORTED_DIMENSIONS",
		ReferencesInvalidFont:                "REFERENCES_INVALID_FONT",
		DocumentTooSmall:                     "DOCUMENT_TOO_SMALL",
		InvalidPDF:                           "INVALID_PDF",
		DocumentHasNoPages:                   "DOCUMENT_HAS_NO_PAGES",
	}

	kinds := AllErrorKinds()
	require.Len(t, kinds, len(expected))
	for _, k := range kinds {
		assert.Equal(t, expected[k], k.String())
		assert.NotEmpty(t, k.Message(), k.String())
	}

	assert.Equal(t, "ErrorKind(99)", ErrorKind(99).String())
	assert.Empty(t, ErrorKind(-1).Message())
}

func TestErrorKindFlags(t *testing.T) {
	notForWeb := map[ErrorKind]bool{
		PDFParseError:         true,
		ReferencesInvalidFont: true,
		DocumentTooSmall:      true,
		InvalidPDF:            true,
		DocumentHasNoPages:    true,
	}

	for _, k := range AllErrorKinds() {
		assert.False(t, k.OKForPrint(), k.String())
		assert.Equal(t, !notForWeb[k], k.OKForWeb(), k.String())
	}
	assert.False(t, ErrorKind(42).OKForWeb())
}

func TestErrorKindFormat(t *testing.T) {
	msg := UnsupportedDimensions.Format(geometry.Bleed{PositiveMM: 2, NegativeMM: 3})
	assert.Contains(t, msg, "width between 207—212 mm")
	assert.Contains(t, msg, "height between 294—299 mm")
	assert.NotContains(t, msg, "%d")

	msg = UnsupportedDimensions.Format(DefaultBleed)
	assert.Contains(t, msg, "200—210 mm")
	assert.Contains(t, msg, "287—297 mm")

	assert.Equal(t, PDFIsEncrypted.Message(), PDFIsEncrypted.Format(geometry.Bleed{PositiveMM: 5}))
}

func TestErrorKindMessagesMentionLimits(t *testing.T) {
	assert.Contains(t, InsufficientMarginForPrint.Message(), "15 mm")
	assert.Contains(t, UnableToVerifySuitableMarginForPrint.Message(), "15 mm")
	assert.Contains(t, UnsupportedPDFVersionForPrint.Message(), "1.0, 1.1, 1.2, 1.3, 1.4, 1.5, 1.6, 1.7")
}

func TestErrorKindText(t *testing.T) {
	for _, k := range AllErrorKinds() {
		text, err := k.MarshalText()
		require.NoError(t, err)

		var back ErrorKind
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, k, back)
	}

	_, err := ErrorKind(100).MarshalText()
	assert.Error(t, err)

	_, err = ParseErrorKind("NOT_A_CODE")
	assert.Error(t, err)

	data, err := json.Marshal([]ErrorKind{PDFIsEncrypted, DocumentHasNoPages})
	require.NoError(t, err)
	assert.JSONEq(t, `["PDF_IS_ENCRYPTED","DOCUMENT_HAS_NO_PAGES"]`, string(data))
}
