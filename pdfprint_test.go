package pdfprint_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdfprint "github.com/pyhub-apps/pdfprint-golang"
	"github.com/pyhub-apps/pdfprint-golang/internal/pdftest"
	"github.com/pyhub-apps/pdfprint-golang/pkg/validate"
)

func TestValidate(t *testing.T) {
	data := pdftest.New().Page(pdftest.A4().WithText(100, 600, "Hello")).Bytes()

	r, err := pdfprint.Validate(data, pdfprint.DefaultSettings())
	require.NoError(t, err)
	assert.True(t, r.OKForPrint(), r.String())
	assert.Equal(t, 1, r.Pages())
}

func TestValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "letter.pdf")
	data := pdftest.New().Page(pdftest.Page{MediaBox: pdftest.Box(pdftest.LetterWidth, pdftest.LetterHeight)}).Bytes()
	require.NoError(t, os.WriteFile(path, data, 0o600))

	r, err := pdfprint.ValidateFile(path, pdfprint.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, []pdfprint.ErrorKind{validate.UnsupportedDimensions}, r.Errors())
}

func TestNewWithStrategy(t *testing.T) {
	data := pdftest.New().Pages(2, pdftest.A4Landscape()).Bytes()

	v := pdfprint.New(pdfprint.WithStrategy(pdfprint.StrategyIncremental), pdfprint.WithReleaseEvery(1))
	r, err := v.Validate(data, pdfprint.DefaultSettings())
	require.NoError(t, err)
	assert.False(t, r.HasErrors(), r.String())
	assert.Equal(t, 2, r.Pages())
}
