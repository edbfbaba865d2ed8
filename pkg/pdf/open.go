package pdf

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	// ErrEncrypted is returned by Open when the document requires a password
	// that was not supplied.
	ErrEncrypted = errors.New("pdf: document is encrypted")

	// ErrParse wraps every failure to read the document structure
	ErrParse = errors.New("pdf: cannot parse document")

	// ErrNoPageBox is returned when a page has neither a crop box nor a
	// media box.
	ErrNoPageBox = errors.New("pdf: page has no readable page box")

	// ErrPageOutOfRange is returned by Document.Page for an invalid index
	ErrPageOutOfRange = errors.New("pdf: page index out of range")

	// ErrAlreadyConfigured is returned by Configure after the library
	// configuration was applied.
	ErrAlreadyConfigured = errors.New("pdf: library already configured")
)

// Strategy selects how a document is read
type Strategy int

const (
	// StrategyFull reads the whole cross-reference table and resolves every
	// page when the document is opened (pdfcpu).
	StrategyFull Strategy = iota
	// StrategyIncremental resolves one page at a time from an io.ReaderAt
	// (ledongthuc/pdf).
	StrategyIncremental
)

// DefaultReleaseEvery is the page cadence at which the incremental strategy
// drops the pages it already resolved.
const DefaultReleaseEvery = 5

var strategyNames = map[Strategy]string{
	StrategyFull:        "full",
	StrategyIncremental: "incremental",
}

// String returns the configuration name of the strategy
func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy is the inverse of Strategy.String
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown read strategy %q", name)
}

// Options controls how Open reads a document
type Options struct {
	Strategy Strategy
	// Strict runs the full pdfcpu validation after reading. Only used by
	// StrategyFull.
	Strict bool
	// ReleaseEvery overrides DefaultReleaseEvery. Only used by
	// StrategyIncremental.
	ReleaseEvery int
}

// Config is the process-wide configuration of the underlying libraries
type Config struct {
	// PdfcpuConfigDir is where pdfcpu keeps its configuration files. Empty
	// means no configuration directory is used at all.
	PdfcpuConfigDir string
}

var configureOnce sync.Once

// Configure applies cfg to the underlying libraries. It must be called
// before the first document is opened; later calls return
// ErrAlreadyConfigured and change nothing.
func Configure(cfg Config) error {
	applied := false
	configureOnce.Do(func() {
		applied = true
		if cfg.PdfcpuConfigDir == "" {
			model.ConfigPath = "disable"
			return
		}
		model.ConfigPath = cfg.PdfcpuConfigDir
	})
	if !applied {
		return ErrAlreadyConfigured
	}
	return nil
}

// Open reads a document of the given size from r
func Open(r io.ReaderAt, size int64, opts Options) (Document, error) {
	// applies the defaults unless Configure ran first
	_ = Configure(Config{})

	switch opts.Strategy {
	case StrategyFull:
		return openFull(io.NewSectionReader(r, 0, size), opts)
	case StrategyIncremental:
		return openIncremental(r, size, opts)
	default:
		return nil, fmt.Errorf("unsupported read strategy %v", opts.Strategy)
	}
}

// parseError wraps err into ErrParse
func parseError(err error) error {
	return fmt.Errorf("%w: %v", ErrParse, err)
}

// isPasswordError reports whether a library error is a failed password or
// authentication check. Other errors about encryption are parse errors.
func isPasswordError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "authenticat")
}
