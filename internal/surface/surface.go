// Package surface defines the drawing capability set the page renderer targets
// and a recording implementation whose display list is consumed by preview
// and export encoders.
//
// Coordinates are in points, origin at the top-left corner of the page, y
// growing downwards. Text positions are baselines.
package surface

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
)

// Color is an opaque RGB color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the color as #RRGGBB.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Rect is an axis-aligned box.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Bottom returns the y coordinate of the lower edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Align is a horizontal text alignment.
type Align string

// Alignments
const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Style describes how a shape is painted. A nil Fill or Stroke is not painted.
type Style struct {
	Fill        *Color  `json:"fill,omitempty"`
	Stroke      *Color  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
}

// Filled returns a fill-only style.
func Filled(c Color) Style { return Style{Fill: &c} }

// Stroked returns a stroke-only style.
func Stroked(c Color, width float64) Style { return Style{Stroke: &c, StrokeWidth: width} }

// FontRef identifies the font a text run was laid out with.
type FontRef struct {
	Family  string  `json:"family"`
	Variant string  `json:"variant"`
	Size    float64 `json:"size"`
	Bold    bool    `json:"bold,omitempty"`
}

// Line is one positioned line of a paragraph.
type Line struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Baseline float64 `json:"baseline"`
}

// Paragraph is a block of pre-wrapped, pre-positioned lines sharing one font.
type Paragraph struct {
	Box   Rect    `json:"box"`
	Align Align   `json:"align"`
	Font  FontRef `json:"font"`
	Color Color   `json:"color"`
	Lines []Line  `json:"lines"`
}

// Image is an encoded raster image. Key is the SHA-256 of Data.
type Image struct {
	Key    string `json:"key"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Data   []byte `json:"data"`
}

// NewImage builds an Image and computes its content key.
func NewImage(format string, width, height int, data []byte) Image {
	sum := sha256.Sum256(data)
	return Image{
		Key:    hex.EncodeToString(sum[:]),
		Format: format,
		Width:  width,
		Height: height,
		Data:   data,
	}
}

// Canvas is the drawing capability set used by the page renderer.
type Canvas interface {
	Size() (width, height float64)
	DrawRect(r Rect, style Style)
	DrawCircle(cx, cy, radius float64, style Style)
	DrawText(text string, x, baseline float64, font FontRef, color Color)
	DrawParagraph(p Paragraph)
	DrawImage(img Image, box Rect)
}

// OpKind names a recorded drawing primitive.
type OpKind string

// Primitive kinds
const (
	OpRect      OpKind = "rect"
	OpCircle    OpKind = "circle"
	OpText      OpKind = "text"
	OpParagraph OpKind = "paragraph"
	OpImage     OpKind = "image"
)

// Op is one recorded drawing primitive. Only the fields relevant to Kind are set.
type Op struct {
	Kind      OpKind     `json:"kind"`
	Box       *Rect      `json:"box,omitempty"`
	Style     *Style     `json:"style,omitempty"`
	CX        float64    `json:"cx,omitempty"`
	CY        float64    `json:"cy,omitempty"`
	Radius    float64    `json:"radius,omitempty"`
	Text      string     `json:"text,omitempty"`
	X         float64    `json:"x,omitempty"`
	Baseline  float64    `json:"baseline,omitempty"`
	Font      *FontRef   `json:"font,omitempty"`
	Color     *Color     `json:"color,omitempty"`
	Paragraph *Paragraph `json:"paragraph,omitempty"`
	ImageKey  string     `json:"image_key,omitempty"`
}

// Page is a recording Canvas. It accepts drawing calls until Seal is called;
// afterwards it is immutable and further drawing calls are ignored.
type Page struct {
	index  int
	width  float64
	height float64
	ops    []Op
	images map[string]Image
	sealed bool
}

// NewPage creates an empty page of the given size.
func NewPage(index int, width, height float64) *Page {
	return &Page{
		index:  index,
		width:  finite(width),
		height: finite(height),
		images: make(map[string]Image),
	}
}

// Index returns the zero-based page index.
func (p *Page) Index() int { return p.index }

// Size returns the page size in points.
func (p *Page) Size() (float64, float64) { return p.width, p.height }

// Sealed reports whether the page has been finalized.
func (p *Page) Sealed() bool { return p.sealed }

// Seal finalizes the page.
func (p *Page) Seal() { p.sealed = true }

func (p *Page) record(op Op) {
	if p.sealed {
		return
	}
	p.ops = append(p.ops, op)
}

// finite replaces NaN and infinities with zero so degenerate geometry still
// yields an encodable display list.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func finiteRect(r Rect) Rect {
	return Rect{X: finite(r.X), Y: finite(r.Y), W: finite(r.W), H: finite(r.H)}
}

// DrawRect records a rectangle.
func (p *Page) DrawRect(r Rect, style Style) {
	r = finiteRect(r)
	style.StrokeWidth = finite(style.StrokeWidth)
	p.record(Op{Kind: OpRect, Box: &r, Style: &style})
}

// DrawCircle records a circle centered at (cx, cy).
func (p *Page) DrawCircle(cx, cy, radius float64, style Style) {
	style.StrokeWidth = finite(style.StrokeWidth)
	p.record(Op{Kind: OpCircle, CX: finite(cx), CY: finite(cy), Radius: finite(radius), Style: &style})
}

// DrawText records a single text run whose baseline starts at (x, baseline).
func (p *Page) DrawText(text string, x, baseline float64, font FontRef, color Color) {
	if text == "" {
		return
	}
	font.Size = finite(font.Size)
	p.record(Op{Kind: OpText, Text: text, X: finite(x), Baseline: finite(baseline), Font: &font, Color: &color})
}

// DrawParagraph records a positioned paragraph.
func (p *Page) DrawParagraph(para Paragraph) {
	if len(para.Lines) == 0 {
		return
	}
	lines := make([]Line, len(para.Lines))
	for i, l := range para.Lines {
		lines[i] = Line{Text: l.Text, X: finite(l.X), Baseline: finite(l.Baseline)}
	}
	para.Lines = lines
	para.Box = finiteRect(para.Box)
	para.Font.Size = finite(para.Font.Size)
	p.record(Op{Kind: OpParagraph, Paragraph: &para})
}

// DrawImage records an image scaled into box.
func (p *Page) DrawImage(img Image, box Rect) {
	if p.sealed || len(img.Data) == 0 {
		return
	}
	box = finiteRect(box)
	p.images[img.Key] = img
	p.record(Op{Kind: OpImage, Box: &box, ImageKey: img.Key})
}

// Ops returns a copy of the recorded display list.
func (p *Page) Ops() []Op {
	out := make([]Op, len(p.ops))
	copy(out, p.ops)
	return out
}

// Image returns a referenced image by key.
func (p *Page) Image(key string) (Image, bool) {
	img, ok := p.images[key]
	return img, ok
}

// Texts returns every text string drawn on the page in draw order, including
// paragraph lines. Handy for previews and tests.
func (p *Page) Texts() []string {
	var out []string
	for _, op := range p.ops {
		switch op.Kind {
		case OpText:
			out = append(out, op.Text)
		case OpParagraph:
			for _, l := range op.Paragraph.Lines {
				out = append(out, l.Text)
			}
		}
	}
	return out
}

// PageView is the serializable form of a page.
type PageView struct {
	Index  int              `json:"index"`
	Width  float64          `json:"width"`
	Height float64          `json:"height"`
	Ops    []Op             `json:"ops"`
	Images map[string]Image `json:"images,omitempty"`
}

// View returns the serializable form of the page.
func (p *Page) View() PageView {
	v := PageView{
		Index:  p.index,
		Width:  p.width,
		Height: p.height,
		Ops:    p.Ops(),
	}
	if len(p.images) > 0 {
		v.Images = make(map[string]Image, len(p.images))
		for k, img := range p.images {
			v.Images[k] = img
		}
	}
	return v
}

// Bytes returns the canonical encoding of the page. Map keys are emitted in
// sorted order, so equal pages always encode to equal bytes.
func (p *Page) Bytes() []byte {
	b, err := json.Marshal(p.View())
	if err != nil {
		// Floats are sanitized on record; Marshal cannot fail here.
		panic(fmt.Sprintf("surface: encode page %d: %v", p.index, err))
	}
	return b
}

// Hash returns the hex SHA-256 of Bytes.
func (p *Page) Hash() string {
	sum := sha256.Sum256(p.Bytes())
	return hex.EncodeToString(sum[:])
}

// HashPages returns one digest covering an ordered page sequence. Each page
// encoding is prefixed with its length.
func HashPages(pages []*Page) string {
	h := sha256.New()
	var size [8]byte
	for _, p := range pages {
		b := p.Bytes()
		binary.BigEndian.PutUint64(size[:], uint64(len(b)))
		h.Write(size[:])
		h.Write(b)
	}
	return hex.EncodeToString(h.Sum(nil))
}
