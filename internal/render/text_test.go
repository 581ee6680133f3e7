package render

import (
	"strings"
	"testing"

	"github.com/garyjia/invoice-layout/internal/diag"
	"github.com/garyjia/invoice-layout/internal/fonts"
	"github.com/garyjia/invoice-layout/internal/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	body := fontCache.GetFonts("Go").Body

	lines := wrap(body, "the quick brown fox jumps over the lazy dog", body.Measure("the quick brown"))
	require.NotEmpty(t, lines)
	assert.Equal(t, "the quick brown", lines[0])
	for _, l := range lines {
		assert.LessOrEqual(t, body.Measure(l), body.Measure("the quick brown"))
	}
	assert.Equal(t, "the quick brown fox jumps over the lazy dog", strings.Join(lines, " "))

	long := wrap(body, "Supercalifragilisticexpialidocious", body.Measure("Supercali"))
	assert.Greater(t, len(long), 1)
	assert.Equal(t, "Supercalifragilisticexpialidocious", strings.Join(long, ""))

	assert.Empty(t, wrap(body, "   ", 100))
}

func TestTruncate(t *testing.T) {
	body := fontCache.GetFonts("Go").Body

	assert.Equal(t, "short", truncate(body, "short", 200))
	cut := truncate(body, "A very long business name that will not fit", 60)
	assert.True(t, strings.HasSuffix(cut, ellipsis))
	assert.LessOrEqual(t, body.Measure(cut), 60.0)
	assert.Equal(t, "", truncate(body, "WWWW", 1))
}

func TestPen_Paragraph(t *testing.T) {
	page := surface.NewPage(0, 200, 200)
	report := diag.NewReport()
	p := pen{canvas: page, fonts: fontCache.GetFonts("Go"), report: report}
	box := surface.Rect{X: 10, Y: 10, W: 80, H: 30}

	p.paragraph(fonts.VariantBody, strings.Repeat("lorem ipsum ", 20), box, surface.AlignCenter, surface.Color{})

	ops := page.Ops()
	require.Len(t, ops, 1)
	para := ops[0].Paragraph
	require.NotNil(t, para)
	assert.LessOrEqual(t, float64(len(para.Lines))*p.fonts.Body.LineHeight(), box.H+1e-9)
	assert.True(t, strings.HasSuffix(para.Lines[len(para.Lines)-1].Text, ellipsis))
	for _, l := range para.Lines {
		assert.GreaterOrEqual(t, l.X, box.X)
	}
	assert.Zero(t, report.Len())
}
