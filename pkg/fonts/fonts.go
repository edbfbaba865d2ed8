// Package fonts decides whether the fonts referenced by a page can be
// printed without substituting a system font.
package fonts

import (
	"strings"
)

// standard14 are the families of the standard Type 1 fonts every PDF
// renderer must provide: Times, Courier and Helvetica in all styles, Symbol
// and Zapf Dingbats.
var standard14 = []string{"TIMES", "COURIER", "HELVETICA", "SYMBOL", "ZAPFDINGBATS"}

// whitelisted fonts are accepted by the print provider although they are
// not part of the standard 14.
var whitelisted = []string{"ARIAL"}

// supported is read-only after package initialization.
var supported = append(append([]string{}, standard14...), whitelisted...)

// Descriptor is the embedding information of a font descriptor.
type Descriptor struct {
	// FontName is the /FontName entry of the descriptor
	FontName string
	// FontFile, FontFile2 and FontFile3 report whether the respective
	// embedded font program stream is present.
	FontFile  bool
	FontFile2 bool
	FontFile3 bool
}

// Embedded reports whether any font program is embedded.
func (d Descriptor) Embedded() bool {
	return d.FontFile || d.FontFile2 || d.FontFile3
}

// Font describes a font referenced from page resources.
type Font struct {
	// Resource is the name the page resources use for the font (F1, TT2, ...)
	Resource string
	// Name is the /BaseFont of the font dictionary
	Name string
	// Subtype is the /Subtype of the font dictionary (Type1, TrueType, Type0, ...)
	Subtype string
	// Damaged is set when the font dictionary or its font program could not
	// be read.
	Damaged bool
	// Composite is set for Type 0 fonts, which carry their glyphs in a
	// descendant CIDFont.
	Composite bool
	// Descriptor is nil when the font has no font descriptor.
	Descriptor *Descriptor
}

// String describes the font for log output.
func (f Font) String() string {
	return f.Subtype + " '" + f.Name + "'"
}

// IsSupported reports whether the font can be printed.
func IsSupported(f Font) bool {
	if f.Damaged {
		return false
	}
	if f.Descriptor != nil {
		if f.Descriptor.Embedded() {
			return true
		}
		return IsSupportedName(f.Descriptor.FontName)
	}
	if f.Composite {
		return true
	}
	return IsSupportedName(f.Name)
}

// IsSupportedName reports whether a font name refers to one of the supported
// families. The name is normalized by removing hyphens and whitespace and
// upper casing it, then matched as a substring, so "Arial-BoldMT" and
// "Times New Roman" are both accepted.
func IsSupportedName(name string) bool {
	if name == "" {
		return false
	}
	normalized := normalize(name)
	for _, family := range supported {
		if strings.Contains(normalized, family) {
			return true
		}
	}
	return false
}

// Unsupported returns the fonts that cannot be printed, in input order.
func Unsupported(fonts []Font) []Font {
	var out []Font
	for _, f := range fonts {
		if !IsSupported(f) {
			out = append(out, f)
		}
	}
	return out
}

func normalize(name string) string {
	name = strings.ReplaceAll(name, "-", "")
	name = strings.Join(strings.Fields(name), "")
	return strings.ToUpper(name)
}
