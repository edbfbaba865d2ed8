package pdf

import (
	"bytes"
	"strconv"
)

// maxFormDepth bounds nested form XObjects
const maxFormDepth = 8

// glyph is a shown character with its origin in default user space
type glyph struct {
	X, Y float64
	Text string
}

// textFont is what the content stream interpreter needs to know to decode
// and advance over the strings shown with a font.
type textFont struct {
	twoByte  bool
	cmap     *toUnicodeCMap
	widths   map[int]float64
	missing  float64
	fallback func(code int) string
}

func (f *textFont) width(code int) float64 {
	if w, ok := f.widths[code]; ok {
		return w
	}
	return f.missing
}

func (f *textFont) text(code int) string {
	if f.cmap != nil {
		if s, ok := f.cmap.lookup(uint16(code)); ok {
			return s
		}
	}
	if f.fallback != nil {
		return f.fallback(code)
	}
	if f.twoByte {
		return "�"
	}
	return string(rune(code))
}

// defaultFont is used for strings shown without a resolvable font
var defaultFont = &textFont{missing: 500}

// contentResources resolves the named resources a content stream refers to
type contentResources interface {
	font(name string) *textFont
	form(name string) (*formXObject, bool)
}

// formXObject is a form XObject invoked with the Do operator
type formXObject struct {
	content   []byte
	matrix    matrix
	resources contentResources
}

// matrix is a PDF transformation matrix [a b c d e f]
type matrix struct {
	A, B, C, D, E, F float64
}

func identityMatrix() matrix {
	return matrix{A: 1, D: 1}
}

func translationMatrix(tx, ty float64) matrix {
	return matrix{A: 1, D: 1, E: tx, F: ty}
}

// mul returns m × n
func (m matrix) mul(n matrix) matrix {
	return matrix{
		A: m.A*n.A + m.B*n.C,
		B: m.A*n.B + m.B*n.D,
		C: m.C*n.A + m.D*n.C,
		D: m.C*n.B + m.D*n.D,
		E: m.E*n.A + m.F*n.C + n.E,
		F: m.E*n.B + m.F*n.D + n.F,
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

type textState struct {
	font      *textFont
	fontSize  float64
	charSpace float64
	wordSpace float64
	scale     float64
	leading   float64
	rise      float64
}

type graphicsState struct {
	ctm  matrix
	text textState
}

// glyphLocator interprets the text and graphics state operators of a
// content stream and records the origin of every shown glyph.
type glyphLocator struct {
	state      graphicsState
	stack      []graphicsState
	textMatrix matrix
	lineMatrix matrix
	glyphs     []glyph
	depth      int
}

// locateGlyphs returns the glyphs shown by a page content stream
func locateGlyphs(content []byte, res contentResources) []glyph {
	l := &glyphLocator{
		state: graphicsState{
			ctm:  identityMatrix(),
			text: textState{scale: 100, font: defaultFont},
		},
	}
	l.run(content, res)
	return l.glyphs
}

func (l *glyphLocator) run(content []byte, res contentResources) {
	lex := &contentLexer{data: content}
	var operands []operand
	for {
		tok, ok := lex.next()
		if !ok {
			return
		}
		if tok.op == "" {
			operands = append(operands, tok.operand)
			continue
		}
		l.process(tok.op, operands, res)
		operands = operands[:0]
	}
}

func (l *glyphLocator) process(op string, args []operand, res contentResources) {
	switch op {
	case "q":
		l.stack = append(l.stack, l.state)
	case "Q":
		if n := len(l.stack); n > 0 {
			l.state = l.stack[n-1]
			l.stack = l.stack[:n-1]
		}
	case "cm":
		if m, ok := matrixOperand(args); ok {
			l.state.ctm = m.mul(l.state.ctm)
		}
	case "BT":
		l.textMatrix = identityMatrix()
		l.lineMatrix = identityMatrix()
	case "Td":
		if len(args) >= 2 {
			l.moveLine(args[0].num, args[1].num)
		}
	case "TD":
		if len(args) >= 2 {
			l.state.text.leading = -args[1].num
			l.moveLine(args[0].num, args[1].num)
		}
	case "Tm":
		if m, ok := matrixOperand(args); ok {
			l.textMatrix = m
			l.lineMatrix = m
		}
	case "T*":
		l.moveLine(0, -l.state.text.leading)
	case "Tc":
		if len(args) >= 1 {
			l.state.text.charSpace = args[0].num
		}
	case "Tw":
		if len(args) >= 1 {
			l.state.text.wordSpace = args[0].num
		}
	case "Tz":
		if len(args) >= 1 {
			l.state.text.scale = args[0].num
		}
	case "TL":
		if len(args) >= 1 {
			l.state.text.leading = args[0].num
		}
	case "Ts":
		if len(args) >= 1 {
			l.state.text.rise = args[0].num
		}
	case "Tf":
		if len(args) >= 2 {
			l.state.text.font = nil
			if res != nil {
				l.state.text.font = res.font(args[0].name)
			}
			if l.state.text.font == nil {
				l.state.text.font = defaultFont
			}
			l.state.text.fontSize = args[1].num
		}
	case "Tj":
		if len(args) >= 1 {
			l.show(args[0].str)
		}
	case "'":
		if len(args) >= 1 {
			l.moveLine(0, -l.state.text.leading)
			l.show(args[0].str)
		}
	case "\"":
		if len(args) >= 3 {
			l.state.text.wordSpace = args[0].num
			l.state.text.charSpace = args[1].num
			l.moveLine(0, -l.state.text.leading)
			l.show(args[2].str)
		}
	case "TJ":
		if len(args) >= 1 {
			l.showArray(args[0].array)
		}
	case "Do":
		if len(args) >= 1 && res != nil {
			l.invokeForm(args[0].name, res)
		}
	}
}

func (l *glyphLocator) moveLine(tx, ty float64) {
	l.lineMatrix = translationMatrix(tx, ty).mul(l.lineMatrix)
	l.textMatrix = l.lineMatrix
}

func (l *glyphLocator) show(s []byte) {
	ts := &l.state.text
	font := ts.font
	step := 1
	if font.twoByte {
		step = 2
	}
	hscale := ts.scale / 100
	for i := 0; i < len(s); i += step {
		code := int(s[i])
		if step == 2 && i+1 < len(s) {
			code = code<<8 | int(s[i+1])
		}

		trm := l.textMatrix.mul(l.state.ctm)
		x, y := trm.apply(0, ts.rise)
		l.glyphs = append(l.glyphs, glyph{X: x, Y: y, Text: font.text(code)})

		advance := font.width(code)/1000*ts.fontSize + ts.charSpace
		if step == 1 && code == ' ' {
			advance += ts.wordSpace
		}
		l.textMatrix = translationMatrix(advance*hscale, 0).mul(l.textMatrix)
	}
}

func (l *glyphLocator) showArray(items []operand) {
	ts := &l.state.text
	for _, item := range items {
		if item.isString {
			l.show(item.str)
			continue
		}
		tx := -item.num / 1000 * ts.fontSize * ts.scale / 100
		l.textMatrix = translationMatrix(tx, 0).mul(l.textMatrix)
	}
}

func (l *glyphLocator) invokeForm(name string, res contentResources) {
	if l.depth >= maxFormDepth {
		return
	}
	form, ok := res.form(name)
	if !ok {
		return
	}
	saved, savedText, savedLine := l.state, l.textMatrix, l.lineMatrix
	l.state.ctm = form.matrix.mul(l.state.ctm)
	formRes := form.resources
	if formRes == nil {
		formRes = res
	}
	l.depth++
	l.run(form.content, formRes)
	l.depth--
	l.state, l.textMatrix, l.lineMatrix = saved, savedText, savedLine
}

func matrixOperand(args []operand) (matrix, bool) {
	if len(args) < 6 {
		return matrix{}, false
	}
	a := args[len(args)-6:]
	return matrix{A: a[0].num, B: a[1].num, C: a[2].num, D: a[3].num, E: a[4].num, F: a[5].num}, true
}

// operand is a content stream operand. Dictionaries are skipped.
type operand struct {
	num      float64
	str      []byte
	isString bool
	name     string
	array    []operand
}

type contentToken struct {
	op      string
	operand operand
}

// contentLexer splits a content stream into operands and operators
type contentLexer struct {
	data []byte
	pos  int
}

func (x *contentLexer) next() (contentToken, bool) {
	for {
		x.skipSpace()
		if x.pos >= len(x.data) {
			return contentToken{}, false
		}
		b := x.data[x.pos]
		switch {
		case b == '%':
			x.skipComment()
		case b == '[':
			x.pos++
			return contentToken{operand: operand{array: x.readArray()}}, true
		case b == ']' || b == '{' || b == '}':
			x.pos++
		case b == '<' && x.peek(1) == '<', b == '>' && x.peek(1) == '>':
			x.pos += 2
		default:
			item, keyword := x.readItem()
			if keyword == "" {
				return contentToken{operand: item}, true
			}
			if keyword == "ID" {
				x.skipInlineImage()
			}
			return contentToken{op: keyword}, true
		}
	}
}

// readItem reads a single object. A bare keyword is returned as an operator.
func (x *contentLexer) readItem() (operand, string) {
	b := x.data[x.pos]
	switch {
	case b == '(':
		x.pos++
		return operand{str: x.readLiteral(), isString: true}, ""
	case b == '<':
		x.pos++
		return operand{str: x.readHex(), isString: true}, ""
	case b == '/':
		x.pos++
		return operand{name: x.readRegular()}, ""
	}
	word := x.readRegular()
	if word == "" {
		// stray delimiter
		x.pos++
		return operand{}, ""
	}
	if isNumberStart(word[0]) {
		f, err := strconv.ParseFloat(word, 64)
		if err == nil {
			return operand{num: f}, ""
		}
	}
	if word == "true" || word == "false" || word == "null" {
		return operand{}, ""
	}
	return operand{}, word
}

func (x *contentLexer) readArray() []operand {
	var items []operand
	for {
		x.skipSpace()
		if x.pos >= len(x.data) {
			return items
		}
		b := x.data[x.pos]
		if b == ']' {
			x.pos++
			return items
		}
		if b == '[' {
			x.pos++
			items = append(items, operand{array: x.readArray()})
			continue
		}
		if b == '%' {
			x.skipComment()
			continue
		}
		item, keyword := x.readItem()
		if keyword != "" {
			// unterminated array, let the operator through
			x.pos -= len(keyword)
			return items
		}
		items = append(items, item)
	}
}

func (x *contentLexer) readLiteral() []byte {
	var out []byte
	depth := 1
	for x.pos < len(x.data) {
		b := x.data[x.pos]
		x.pos++
		switch b {
		case '\\':
			if x.pos >= len(x.data) {
				return out
			}
			out = x.readEscape(out)
		case '(':
			depth++
			out = append(out, b)
		case ')':
			depth--
			if depth == 0 {
				return out
			}
			out = append(out, b)
		default:
			out = append(out, b)
		}
	}
	return out
}

func (x *contentLexer) readEscape(out []byte) []byte {
	b := x.data[x.pos]
	x.pos++
	switch b {
	case 'n':
		return append(out, '\n')
	case 'r':
		return append(out, '\r')
	case 't':
		return append(out, '\t')
	case 'b':
		return append(out, '\b')
	case 'f':
		return append(out, '\f')
	case '\r':
		if x.peek(0) == '\n' {
			x.pos++
		}
		return out
	case '\n':
		return out
	}
	if b >= '0' && b <= '7' {
		v := int(b - '0')
		for i := 0; i < 2 && x.pos < len(x.data); i++ {
			d := x.data[x.pos]
			if d < '0' || d > '7' {
				break
			}
			v = v*8 + int(d-'0')
			x.pos++
		}
		return append(out, byte(v))
	}
	return append(out, b)
}

func (x *contentLexer) readHex() []byte {
	var digits []byte
	for x.pos < len(x.data) {
		b := x.data[x.pos]
		x.pos++
		if b == '>' {
			break
		}
		if isHexDigit(b) {
			digits = append(digits, b)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		out[i] = hexValue(digits[2*i])<<4 | hexValue(digits[2*i+1])
	}
	return out
}

func (x *contentLexer) readRegular() string {
	start := x.pos
	for x.pos < len(x.data) && !isWhitespace(x.data[x.pos]) && !isDelimiter(x.data[x.pos]) {
		x.pos++
	}
	return string(x.data[start:x.pos])
}

// skipInlineImage skips the binary data between ID and EI
func (x *contentLexer) skipInlineImage() {
	x.pos++
	for x.pos < len(x.data) {
		i := bytes.Index(x.data[x.pos:], []byte("EI"))
		if i < 0 {
			x.pos = len(x.data)
			return
		}
		end := x.pos + i
		before := end == 0 || isWhitespace(x.data[end-1])
		after := end+2 >= len(x.data) || isWhitespace(x.data[end+2])
		x.pos = end + 2
		if before && after {
			return
		}
	}
}

func (x *contentLexer) skipSpace() {
	for x.pos < len(x.data) && isWhitespace(x.data[x.pos]) {
		x.pos++
	}
}

func (x *contentLexer) skipComment() {
	for x.pos < len(x.data) && x.data[x.pos] != '\n' && x.data[x.pos] != '\r' {
		x.pos++
	}
}

func (x *contentLexer) peek(offset int) byte {
	if x.pos+offset < len(x.data) {
		return x.data[x.pos+offset]
	}
	return 0
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	return b == '(' || b == ')' || b == '<' || b == '>' || b == '[' || b == ']' ||
		b == '{' || b == '}' || b == '/' || b == '%'
}

func isNumberStart(b byte) bool {
	return (b >= '0' && b <= '9') || b == '-' || b == '+' || b == '.'
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexValue(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}
