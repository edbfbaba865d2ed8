package pdf

import (
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf16"
)

var (
	bfCharSection  = regexp.MustCompile(`beginbfchar\s*((?:<[0-9A-Fa-f]+>\s*<[0-9A-Fa-f]*>\s*)*)endbfchar`)
	bfCharEntry    = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*<([0-9A-Fa-f]*)>`)
	bfRangeSection = regexp.MustCompile(`beginbfrange\s*((?:<[0-9A-Fa-f]+>\s*<[0-9A-Fa-f]+>\s*(?:<[0-9A-Fa-f]*>|\[[^\]]*\])\s*)*)endbfrange`)
	bfRangeEntry   = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*<([0-9A-Fa-f]+)>\s*(?:<([0-9A-Fa-f]*)>|\[([^\]]*)\])`)
	hexToken       = regexp.MustCompile(`<([0-9A-Fa-f]*)>`)
)

// toUnicodeCMap maps character codes of a font to Unicode text.
type toUnicodeCMap struct {
	chars  map[uint16]string
	ranges []cmapRange
}

// cmapRange is one bfrange entry. Either start is set (contiguous range) or
// values holds one destination per code.
type cmapRange struct {
	lo, hi uint16
	start  []uint16
	values []string
}

// parseToUnicode parses the bfchar and bfrange sections of a ToUnicode CMap.
// Unknown sections are ignored.
func parseToUnicode(data []byte) *toUnicodeCMap {
	cmap := &toUnicodeCMap{chars: make(map[uint16]string)}
	content := string(data)

	for _, section := range bfCharSection.FindAllStringSubmatch(content, -1) {
		for _, m := range bfCharEntry.FindAllStringSubmatch(section[1], -1) {
			code, ok := hexCode(m[1])
			if !ok {
				continue
			}
			cmap.chars[code] = utf16Text(m[2])
		}
	}

	for _, section := range bfRangeSection.FindAllStringSubmatch(content, -1) {
		for _, m := range bfRangeEntry.FindAllStringSubmatch(section[1], -1) {
			lo, ok1 := hexCode(m[1])
			hi, ok2 := hexCode(m[2])
			if !ok1 || !ok2 || hi < lo {
				continue
			}
			r := cmapRange{lo: lo, hi: hi}
			if m[4] != "" {
				for _, v := range hexToken.FindAllStringSubmatch(m[4], -1) {
					r.values = append(r.values, utf16Text(v[1]))
				}
			} else {
				r.start = utf16Units(m[3])
			}
			cmap.ranges = append(cmap.ranges, r)
		}
	}

	return cmap
}

// lookup maps a single character code.
func (c *toUnicodeCMap) lookup(code uint16) (string, bool) {
	if s, ok := c.chars[code]; ok {
		return s, true
	}
	for _, r := range c.ranges {
		if code < r.lo || code > r.hi {
			continue
		}
		offset := int(code - r.lo)
		if r.values != nil {
			if offset < len(r.values) {
				return r.values[offset], true
			}
			return "", false
		}
		if len(r.start) == 0 {
			return "", false
		}
		// only the last UTF-16 unit is incremented across the range
		units := append([]uint16{}, r.start...)
		units[len(units)-1] += uint16(offset)
		return string(utf16.Decode(units)), true
	}
	return "", false
}

// decode maps a shown string. Composite fonts use two byte codes.
func (c *toUnicodeCMap) decode(data []byte, twoByte bool) string {
	var sb strings.Builder
	if !twoByte {
		for _, b := range data {
			if s, ok := c.lookup(uint16(b)); ok {
				sb.WriteString(s)
			} else {
				sb.WriteByte(b)
			}
		}
		return sb.String()
	}
	for i := 0; i < len(data); i += 2 {
		code := uint16(data[i]) << 8
		if i+1 < len(data) {
			code |= uint16(data[i+1])
		}
		if s, ok := c.lookup(code); ok {
			sb.WriteString(s)
		} else {
			// unmapped glyph, keep a visible placeholder
			sb.WriteRune('�')
		}
	}
	return sb.String()
}

func hexCode(s string) (uint16, bool) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) == 0 || len(b) > 2 {
		return 0, false
	}
	if len(b) == 1 {
		return uint16(b[0]), true
	}
	return uint16(b[0])<<8 | uint16(b[1]), true
}

func utf16Units(s string) []uint16 {
	if len(s)%2 == 1 {
		s += "0"
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	if len(b) == 1 {
		return []uint16{uint16(b[0])}
	}
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	return units
}

func utf16Text(s string) string {
	return string(utf16.Decode(utf16Units(s)))
}
