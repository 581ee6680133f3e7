package fonts

import (
	"fmt"
	"sync"

	"github.com/garyjia/invoice-layout/internal/surface"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Variant names one slot of a font Set.
type Variant string

// Font variants
const (
	VariantTiny     Variant = "tiny"
	VariantBody     Variant = "body"
	VariantBodyBold Variant = "bodyBold"
	VariantTitle    Variant = "title"
)

type variantSpec struct {
	variant Variant
	size    float64
	bold    bool
}

var variantSpecs = []variantSpec{
	{VariantTiny, 8, false},
	{VariantBody, 10, false},
	{VariantBodyBold, 10, true},
	{VariantTitle, 22, true},
}

// Face is a sized font variant. It is safe for concurrent use.
type Face struct {
	family  string
	variant Variant
	size    float64
	bold    bool
	ttf     []byte

	mu   sync.Mutex
	face font.Face
}

func newFace(family string, spec variantSpec, ttf []byte, parsed *opentype.Font) (*Face, error) {
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    spec.size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s face at %.1fpt: %w", spec.variant, spec.size, err)
	}
	return &Face{
		family:  family,
		variant: spec.variant,
		size:    spec.size,
		bold:    spec.bold,
		ttf:     ttf,
		face:    face,
	}, nil
}

func toPoints(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// Measure returns the advance width of text in points.
func (f *Face) Measure(text string) float64 {
	if f == nil || text == "" {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return toPoints(font.MeasureString(f.face, text))
}

// Ascent returns the distance from the top of a line to its baseline.
func (f *Face) Ascent() float64 {
	if f == nil {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return toPoints(f.face.Metrics().Ascent)
}

// LineHeight returns the recommended baseline-to-baseline distance.
func (f *Face) LineHeight() float64 {
	if f == nil {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return toPoints(f.face.Metrics().Height)
}

// Family returns the family name the face was requested with.
func (f *Face) Family() string { return f.family }

// Variant returns the slot the face fills.
func (f *Face) Variant() Variant { return f.variant }

// Size returns the point size.
func (f *Face) Size() float64 { return f.size }

// Bold reports whether the face uses the bold weight.
func (f *Face) Bold() bool { return f.bold }

// TTF returns the font file the face was built from. Callers must not modify it.
func (f *Face) TTF() []byte { return f.ttf }

// Ref returns the reference recorded with text drawn in this face.
func (f *Face) Ref() surface.FontRef {
	return surface.FontRef{
		Family:  f.family,
		Variant: string(f.variant),
		Size:    f.size,
		Bold:    f.bold,
	}
}

// Set is the named group of variants used to render one document. A nil slot
// means the variant could not be resolved; text in that variant is skipped.
type Set struct {
	Family   string
	Tiny     *Face
	Body     *Face
	BodyBold *Face
	Title    *Face
}

// Get returns the face for a variant.
func (s Set) Get(v Variant) *Face {
	switch v {
	case VariantTiny:
		return s.Tiny
	case VariantBody:
		return s.Body
	case VariantBodyBold:
		return s.BodyBold
	case VariantTitle:
		return s.Title
	}
	return nil
}

// Missing lists the variants with nil slots.
func (s Set) Missing() []Variant {
	var out []Variant
	for _, spec := range variantSpecs {
		if s.Get(spec.variant) == nil {
			out = append(out, spec.variant)
		}
	}
	return out
}

func (s *Set) put(v Variant, f *Face) {
	switch v {
	case VariantTiny:
		s.Tiny = f
	case VariantBody:
		s.Body = f
	case VariantBodyBold:
		s.BodyBold = f
	case VariantTitle:
		s.Title = f
	}
}
