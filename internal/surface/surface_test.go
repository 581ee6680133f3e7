package surface

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	black = Color{}
	red   = Color{R: 255}
	body  = FontRef{Family: "Go", Variant: "body", Size: 10}
)

func drawSample(p *Page) {
	p.DrawRect(Rect{X: 0, Y: 0, W: 595, H: 842}, Filled(Color{R: 255, G: 255, B: 255}))
	p.DrawCircle(60, 60, 24, Filled(red))
	p.DrawText("INVOICE", 400, 50, body, black)
	p.DrawParagraph(Paragraph{
		Box:   Rect{X: 36, Y: 780, W: 523, H: 30},
		Align: AlignCenter,
		Font:  body,
		Color: black,
		Lines: []Line{{Text: "Thank you", X: 270, Baseline: 790}},
	})
	p.DrawImage(NewImage("png", 2, 2, []byte{1, 2, 3}), Rect{X: 36, Y: 36, W: 48, H: 48})
}

func TestPage_Recording(t *testing.T) {
	t.Run("records primitives in draw order", func(t *testing.T) {
		p := NewPage(0, 595, 842)
		drawSample(p)

		ops := p.Ops()
		require.Len(t, ops, 5)
		assert.Equal(t, OpRect, ops[0].Kind)
		assert.Equal(t, OpCircle, ops[1].Kind)
		assert.Equal(t, OpText, ops[2].Kind)
		assert.Equal(t, OpParagraph, ops[3].Kind)
		assert.Equal(t, OpImage, ops[4].Kind)

		img, ok := p.Image(ops[4].ImageKey)
		require.True(t, ok)
		assert.Equal(t, []byte{1, 2, 3}, img.Data)
		assert.Equal(t, []string{"INVOICE", "Thank you"}, p.Texts())
	})

	t.Run("sealed page ignores further drawing", func(t *testing.T) {
		p := NewPage(0, 595, 842)
		p.DrawText("before", 10, 10, body, black)
		p.Seal()
		p.DrawText("after", 10, 20, body, black)
		p.DrawImage(NewImage("png", 1, 1, []byte{9}), Rect{W: 1, H: 1})

		assert.True(t, p.Sealed())
		assert.Equal(t, []string{"before"}, p.Texts())
		assert.Len(t, p.View().Images, 0)
	})

	t.Run("empty text and empty images are skipped", func(t *testing.T) {
		p := NewPage(0, 100, 100)
		p.DrawText("", 0, 0, body, black)
		p.DrawImage(Image{}, Rect{W: 10, H: 10})
		p.DrawParagraph(Paragraph{})
		assert.Empty(t, p.Ops())
	})

	t.Run("non-finite geometry is zeroed", func(t *testing.T) {
		p := NewPage(0, 100, 100)
		p.DrawRect(Rect{X: math.NaN(), Y: math.Inf(1), W: 10, H: 10}, Filled(red))
		p.DrawText("x", math.Inf(-1), 5, body, black)

		assert.NotPanics(t, func() { _ = p.Bytes() })
		ops := p.Ops()
		assert.Equal(t, 0.0, ops[0].Box.X)
		assert.Equal(t, 0.0, ops[0].Box.Y)
		assert.Equal(t, 0.0, ops[1].X)
	})
}

func TestPage_Bytes(t *testing.T) {
	a := NewPage(1, 595, 842)
	b := NewPage(1, 595, 842)
	drawSample(a)
	drawSample(b)

	assert.Equal(t, a.Bytes(), b.Bytes())
	assert.Equal(t, a.Hash(), b.Hash())

	c := NewPage(1, 595, 842)
	drawSample(c)
	c.DrawText("extra", 0, 0, body, black)
	assert.NotEqual(t, a.Hash(), c.Hash())

	assert.Equal(t, HashPages([]*Page{a, c}), HashPages([]*Page{b, c}))
	assert.NotEqual(t, HashPages([]*Page{a, c}), HashPages([]*Page{c, a}))
}

func TestColor_Hex(t *testing.T) {
	assert.Equal(t, "#FF0000", red.Hex())
	assert.Equal(t, "#0A0B0C", Color{R: 10, G: 11, B: 12}.Hex())
}

func TestHashPages_LengthPrefixed(t *testing.T) {
	a := NewPage(0, 595, 842)
	drawSample(a)
	b := NewPage(1, 595, 842)
	b.DrawText("second", 10, 10, body, black)

	h := sha256.New()
	for _, p := range []*Page{a, b} {
		enc := p.Bytes()
		var size [8]byte
		binary.BigEndian.PutUint64(size[:], uint64(len(enc)))
		h.Write(size[:])
		h.Write(enc)
	}
	assert.Equal(t, hex.EncodeToString(h.Sum(nil)), HashPages([]*Page{a, b}))

	empty := sha256.Sum256(nil)
	assert.Equal(t, hex.EncodeToString(empty[:]), HashPages(nil))
}
