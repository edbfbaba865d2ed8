package pdf

import (
	"fmt"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/pyhub-apps/pdfprint-golang/pkg/fonts"
	"github.com/pyhub-apps/pdfprint-golang/pkg/geometry"
)

// fullPage implements Page using pdfcpu
type fullPage struct {
	ctx        *model.Context
	pageNumber int
	pageDict   types.Dict
	cropBox    *Box
	resources  *pdfcpuResources
	fonts      []fonts.Font
}

// newFullPage resolves a page and its inherited attributes. Resources are
// read as declared: consolidation would drop fonts the content never shows.
func newFullPage(ctx *model.Context, pageNumber int) (*fullPage, error) {
	pageDict, _, attrs, err := ctx.PageDict(pageNumber, false)
	if err != nil {
		return nil, err
	}
	if pageDict == nil {
		return nil, fmt.Errorf("page %d not found in page tree", pageNumber)
	}

	p := &fullPage{
		ctx:        ctx,
		pageNumber: pageNumber,
		pageDict:   pageDict,
	}

	var resDict types.Dict
	if attrs != nil {
		// the crop box defaults to the media box
		rect := attrs.CropBox
		if rect == nil {
			rect = attrs.MediaBox
		}
		if rect != nil {
			p.cropBox = &Box{LLX: rect.LL.X, LLY: rect.LL.Y, URX: rect.UR.X, URY: rect.UR.Y}
		}
		resDict = attrs.Resources
	}
	if resDict == nil {
		if obj, ok := pageDict["Resources"]; ok {
			resDict, _ = ctx.DereferenceDict(obj)
		}
	}

	p.resources = newPdfcpuResources(ctx, resDict)
	p.fonts = p.resources.describeFonts()
	return p, nil
}

// Number returns the page number (1-based)
func (p *fullPage) Number() int {
	return p.pageNumber
}

// CropBox returns the crop box, falling back to the media box
func (p *fullPage) CropBox() (Box, error) {
	if p.cropBox == nil {
		return Box{}, ErrNoPageBox
	}
	return *p.cropBox, nil
}

// Fonts returns the fonts of the page resources
func (p *fullPage) Fonts() []fonts.Font {
	return p.fonts
}

// TextInRegion decodes the page content and returns the text in region
func (p *fullPage) TextInRegion(region geometry.Rect) (text string, err error) {
	crop, err := p.CropBox()
	if err != nil {
		return "", err
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("content stream of page %d: %v", p.pageNumber, r)
		}
	}()

	content, err := p.content()
	if err != nil {
		return "", fmt.Errorf("content stream of page %d: %w", p.pageNumber, err)
	}
	return regionText(locateGlyphs(content, p.resources), crop, region), nil
}

// content returns the decoded and concatenated content streams
func (p *fullPage) content() ([]byte, error) {
	obj, ok := p.pageDict["Contents"]
	if !ok || obj == nil {
		return nil, nil
	}

	obj, err := p.ctx.Dereference(obj)
	if err != nil {
		return nil, err
	}

	var refs []types.Object
	switch v := obj.(type) {
	case types.StreamDict:
		sd := v
		return decodeStream(&sd)
	case types.Array:
		refs = v
	default:
		return nil, fmt.Errorf("unexpected contents type %T", obj)
	}

	var combined []byte
	for _, ref := range refs {
		sd, _, err := p.ctx.DereferenceStreamDict(ref)
		if err != nil {
			return nil, err
		}
		if sd == nil {
			continue
		}
		data, err := decodeStream(sd)
		if err != nil {
			return nil, err
		}
		combined = append(combined, data...)
		combined = append(combined, '\n')
	}
	return combined, nil
}

// decodeStream decodes a stream dictionary
func decodeStream(sd *types.StreamDict) ([]byte, error) {
	if len(sd.Content) > 0 {
		return sd.Content, nil
	}
	if err := sd.Decode(); err != nil {
		return nil, err
	}
	return sd.Content, nil
}

// pdfcpuResources resolves page resources for the content stream interpreter
type pdfcpuResources struct {
	ctx   *model.Context
	dict  types.Dict
	cache map[string]*textFont
}

func newPdfcpuResources(ctx *model.Context, dict types.Dict) *pdfcpuResources {
	return &pdfcpuResources{ctx: ctx, dict: dict, cache: make(map[string]*textFont)}
}

func (r *pdfcpuResources) subDict(key string) types.Dict {
	if r.dict == nil {
		return nil
	}
	obj, ok := r.dict[key]
	if !ok {
		return nil
	}
	d, err := r.ctx.DereferenceDict(obj)
	if err != nil {
		return nil
	}
	return d
}

// describeFonts classifies every entry of the /Font resource dictionary
func (r *pdfcpuResources) describeFonts() []fonts.Font {
	fontDict := r.subDict("Font")
	if len(fontDict) == 0 {
		return nil
	}

	names := make([]string, 0, len(fontDict))
	for name := range fontDict {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]fonts.Font, 0, len(names))
	for _, name := range names {
		out = append(out, r.describeFont(name, fontDict[name]))
	}
	return out
}

func (r *pdfcpuResources) describeFont(resource string, obj types.Object) fonts.Font {
	f := fonts.Font{Resource: resource}

	d, err := r.ctx.DereferenceDict(obj)
	if err != nil || d == nil {
		f.Damaged = true
		return f
	}

	f.Name = nameEntry(d, "BaseFont")
	f.Subtype = nameEntry(d, "Subtype")
	f.Composite = f.Subtype == "Type0"

	descriptorSource := d
	if f.Composite {
		descriptorSource = nil
		if arr, err := r.ctx.DereferenceArray(d["DescendantFonts"]); err == nil && len(arr) > 0 {
			if descendant, err := r.ctx.DereferenceDict(arr[0]); err == nil {
				descriptorSource = descendant
			}
		}
	}
	if descriptorSource == nil {
		return f
	}

	descObj, ok := descriptorSource["FontDescriptor"]
	if !ok || descObj == nil {
		return f
	}
	desc, err := r.ctx.DereferenceDict(descObj)
	if err != nil || desc == nil {
		f.Damaged = true
		return f
	}

	f.Descriptor = &fonts.Descriptor{
		FontName:  nameEntry(desc, "FontName"),
		FontFile:  r.hasStream(desc, "FontFile"),
		FontFile2: r.hasStream(desc, "FontFile2"),
		FontFile3: r.hasStream(desc, "FontFile3"),
	}
	return f
}

func (r *pdfcpuResources) hasStream(d types.Dict, key string) bool {
	obj, ok := d[key]
	if !ok || obj == nil {
		return false
	}
	sd, _, err := r.ctx.DereferenceStreamDict(obj)
	return err == nil && sd != nil
}

// font implements contentResources
func (r *pdfcpuResources) font(name string) *textFont {
	if f, ok := r.cache[name]; ok {
		return f
	}
	var f *textFont
	if fontDict := r.subDict("Font"); fontDict != nil {
		if d, err := r.ctx.DereferenceDict(fontDict[name]); err == nil && d != nil {
			f = r.textFont(d)
		}
	}
	r.cache[name] = f
	return f
}

func (r *pdfcpuResources) textFont(d types.Dict) *textFont {
	f := &textFont{missing: 500}

	if nameEntry(d, "Subtype") == "Type0" {
		f.twoByte = true
		f.missing = 1000
		if arr, err := r.ctx.DereferenceArray(d["DescendantFonts"]); err == nil && len(arr) > 0 {
			if descendant, err := r.ctx.DereferenceDict(arr[0]); err == nil && descendant != nil {
				if dw, ok := r.number(descendant["DW"]); ok {
					f.missing = dw
				}
				f.widths = r.cidWidths(descendant["W"])
			}
		}
	} else {
		f.widths = r.simpleWidths(d)
	}

	if obj, ok := d["ToUnicode"]; ok {
		if sd, _, err := r.ctx.DereferenceStreamDict(obj); err == nil && sd != nil {
			if data, err := decodeStream(sd); err == nil {
				f.cmap = parseToUnicode(data)
			}
		}
	}
	return f
}

// simpleWidths reads /FirstChar and /Widths of a simple font
func (r *pdfcpuResources) simpleWidths(d types.Dict) map[int]float64 {
	first, ok := r.number(d["FirstChar"])
	if !ok {
		return nil
	}
	arr, err := r.ctx.DereferenceArray(d["Widths"])
	if err != nil {
		return nil
	}
	widths := make(map[int]float64, len(arr))
	for i, obj := range arr {
		if w, ok := r.number(obj); ok {
			widths[int(first)+i] = w
		}
	}
	return widths
}

// cidWidths reads the /W array of a CIDFont: "c [w1 w2 ...]" and
// "cfirst clast w" entries.
func (r *pdfcpuResources) cidWidths(obj types.Object) map[int]float64 {
	arr, err := r.ctx.DereferenceArray(obj)
	if err != nil || len(arr) == 0 {
		return nil
	}
	widths := make(map[int]float64)
	for i := 0; i < len(arr); {
		start, ok := r.number(arr[i])
		if !ok || i+1 >= len(arr) {
			break
		}
		if list, err := r.ctx.DereferenceArray(arr[i+1]); err == nil && list != nil {
			for j, w := range list {
				if v, ok := r.number(w); ok {
					widths[int(start)+j] = v
				}
			}
			i += 2
			continue
		}
		end, ok1 := r.number(arr[i+1])
		if i+2 >= len(arr) || !ok1 {
			break
		}
		w, ok2 := r.number(arr[i+2])
		if ok2 {
			for c := int(start); c <= int(end); c++ {
				widths[c] = w
			}
		}
		i += 3
	}
	return widths
}

func (r *pdfcpuResources) number(obj types.Object) (float64, bool) {
	if obj == nil {
		return 0, false
	}
	obj, err := r.ctx.Dereference(obj)
	if err != nil {
		return 0, false
	}
	switch v := obj.(type) {
	case types.Integer:
		return float64(v), true
	case types.Float:
		return float64(v), true
	}
	return 0, false
}

// form implements contentResources
func (r *pdfcpuResources) form(name string) (*formXObject, bool) {
	xobjects := r.subDict("XObject")
	if xobjects == nil {
		return nil, false
	}
	sd, _, err := r.ctx.DereferenceStreamDict(xobjects[name])
	if err != nil || sd == nil || nameEntry(sd.Dict, "Subtype") != "Form" {
		return nil, false
	}
	data, err := decodeStream(sd)
	if err != nil {
		return nil, false
	}

	form := &formXObject{content: data, matrix: identityMatrix()}
	if arr, err := r.ctx.DereferenceArray(sd.Dict["Matrix"]); err == nil && len(arr) == 6 {
		var v [6]float64
		for i := range v {
			v[i], _ = r.number(arr[i])
		}
		form.matrix = matrix{A: v[0], B: v[1], C: v[2], D: v[3], E: v[4], F: v[5]}
	}
	if obj, ok := sd.Dict["Resources"]; ok {
		if d, err := r.ctx.DereferenceDict(obj); err == nil && d != nil {
			form.resources = newPdfcpuResources(r.ctx, d)
		}
	}
	return form, true
}

func nameEntry(d types.Dict, key string) string {
	if d == nil {
		return ""
	}
	switch v := d[key].(type) {
	case types.Name:
		return string(v)
	case types.StringLiteral:
		return string(v)
	}
	return ""
}
