package validate

import (
	"encoding/json"
	"strings"

	"github.com/pyhub-apps/pdfprint-golang/pkg/geometry"
)

// Result is the immutable outcome of one validation run
type Result struct {
	errors []ErrorKind
	pages  int
	bleed  geometry.Bleed
}

// EverythingOK is a result without errors, an unknown page count and the
// default bleed.
var EverythingOK = NewResult(nil, -1, DefaultBleed)

// NewResult builds a result. Repeated kinds are kept once, in first
// occurrence order.
func NewResult(errs []ErrorKind, pages int, bleed geometry.Bleed) Result {
	var unique []ErrorKind
	seen := make(map[ErrorKind]bool, len(errs))
	for _, k := range errs {
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, k)
	}
	return Result{errors: unique, pages: pages, bleed: bleed}
}

// Errors returns a copy of the error kinds in check order
func (r Result) Errors() []ErrorKind {
	return append([]ErrorKind(nil), r.errors...)
}

// Pages returns the page count, or -1 when the document could not be parsed
func (r Result) Pages() int {
	return r.pages
}

// Bleed returns the bleed the checks ran with
func (r Result) Bleed() geometry.Bleed {
	return r.bleed
}

// HasErrors reports whether any check failed
func (r Result) HasErrors() bool {
	return len(r.errors) > 0
}

// OKForPrint reports whether the document can be printed
func (r Result) OKForPrint() bool {
	for _, k := range r.errors {
		if !k.OKForPrint() {
			return false
		}
	}
	return true
}

// OKForWeb reports whether every error is tolerable for web display
func (r Result) OKForWeb() bool {
	for _, k := range r.errors {
		if !k.OKForWeb() {
			return false
		}
	}
	return true
}

// Has reports whether the result contains kind
func (r Result) Has(kind ErrorKind) bool {
	for _, k := range r.errors {
		if k == kind {
			return true
		}
	}
	return false
}

// Message formats kind with the bleed of the result
func (r Result) Message(kind ErrorKind) string {
	return kind.Format(r.bleed)
}

// Messages returns the formatted message of every error
func (r Result) Messages() []string {
	msgs := make([]string, len(r.errors))
	for i, k := range r.errors {
		msgs[i] = r.Message(k)
	}
	return msgs
}

// String renders the result as [ValidationResult msg1 msg2 ...]
func (r Result) String() string {
	var sb strings.Builder
	sb.WriteString("[ValidationResult")
	for _, msg := range r.Messages() {
		sb.WriteByte(' ')
		sb.WriteString(msg)
	}
	sb.WriteByte(']')
	return sb.String()
}

type jsonError struct {
	Code    ErrorKind `json:"code"`
	Message string    `json:"message"`
}

type jsonResult struct {
	Pages      int            `json:"pages"`
	OKForPrint bool           `json:"ok_for_print"`
	OKForWeb   bool           `json:"ok_for_web"`
	Errors     []jsonError    `json:"errors"`
	Bleed      geometry.Bleed `json:"bleed"`
}

// MarshalJSON encodes the result with derived flags and formatted messages
func (r Result) MarshalJSON() ([]byte, error) {
	out := jsonResult{
		Pages:      r.pages,
		OKForPrint: r.OKForPrint(),
		OKForWeb:   r.OKForWeb(),
		Errors:     make([]jsonError, len(r.errors)),
		Bleed:      r.bleed,
	}
	for i, k := range r.errors {
		out.Errors[i] = jsonError{Code: k, Message: r.Message(k)}
	}
	return json.Marshal(out)
}
