package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/garyjia/invoice-layout/internal/diag"
	"github.com/garyjia/invoice-layout/internal/fonts"
	"github.com/garyjia/invoice-layout/internal/surface"
)

const ellipsis = "…"

// pen draws text runs in the variants of one font set. Runs whose variant has
// no face are skipped and reported once per variant.
type pen struct {
	canvas surface.Canvas
	fonts  fonts.Set
	report *diag.Report
}

func (p *pen) face(v fonts.Variant) *fonts.Face {
	f := p.fonts.Get(v)
	if f == nil {
		p.report.Add(diag.ErrFontResolution, component, fmt.Sprintf("family=%q variant=%s", p.fonts.Family, v))
	}
	return f
}

// text draws s with its anchor at x: the left edge, center or right edge
// depending on align.
func (p *pen) text(v fonts.Variant, s string, x, baseline float64, align surface.Align, color surface.Color) {
	if s == "" {
		return
	}
	f := p.face(v)
	if f == nil {
		return
	}
	switch align {
	case surface.AlignRight:
		x -= f.Measure(s)
	case surface.AlignCenter:
		x -= f.Measure(s) / 2
	}
	p.canvas.DrawText(s, x, baseline, f.Ref(), color)
}

// fitted draws s truncated to maxWidth.
func (p *pen) fitted(v fonts.Variant, s string, x, baseline, maxWidth float64, align surface.Align, color surface.Color) {
	if f := p.fonts.Get(v); f != nil {
		s = truncate(f, s, maxWidth)
	}
	p.text(v, s, x, baseline, align, color)
}

// paragraph wraps s into box and draws at most maxLines lines. The last kept
// line is ellipsized when text is dropped.
func (p *pen) paragraph(v fonts.Variant, s string, box surface.Rect, align surface.Align, color surface.Color) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	f := p.face(v)
	if f == nil {
		return
	}

	lh := f.LineHeight()
	if lh <= 0 {
		lh = f.Size() * 1.2
	}
	maxLines := int(box.H / lh)
	if maxLines < 1 {
		maxLines = 1
	}

	wrapped := wrap(f, s, box.W)
	if len(wrapped) > maxLines {
		wrapped = wrapped[:maxLines]
		wrapped[maxLines-1] = truncate(f, wrapped[maxLines-1]+ellipsis, box.W)
	}

	para := surface.Paragraph{
		Box:   box,
		Align: align,
		Font:  f.Ref(),
		Color: color,
		Lines: make([]surface.Line, len(wrapped)),
	}
	baseline := box.Y + f.Ascent()
	for i, line := range wrapped {
		x := box.X
		switch align {
		case surface.AlignRight:
			x = box.Right() - f.Measure(line)
		case surface.AlignCenter:
			x = box.X + (box.W-f.Measure(line))/2
		}
		para.Lines[i] = surface.Line{Text: line, X: x, Baseline: baseline + float64(i)*lh}
	}
	p.canvas.DrawParagraph(para)
}

// centerBaseline returns the baseline that vertically centers capital letters
// of f in a band starting at top.
func centerBaseline(f *fonts.Face, top, height float64) float64 {
	if f == nil {
		return top + height/2
	}
	return top + height/2 + f.Size()*0.35
}

// truncate shortens s with a trailing ellipsis until it fits width.
func truncate(f *fonts.Face, s string, width float64) string {
	if width <= 0 || f.Measure(s) <= width {
		return s
	}
	runes := []rune(strings.TrimSuffix(s, ellipsis))
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimRight(string(runes), " ") + ellipsis
		if f.Measure(candidate) <= width {
			return candidate
		}
	}
	return ""
}

// wrap breaks s into lines no wider than width, splitting on spaces and, for
// words longer than a line, between runes.
func wrap(f *fonts.Face, s string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		line := ""
		for _, w := range words {
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if f.Measure(candidate) <= width || width <= 0 {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			for f.Measure(w) > width && utf8.RuneCountInString(w) > 1 {
				head, tail := splitToWidth(f, w, width)
				lines = append(lines, head)
				w = tail
			}
			line = w
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func splitToWidth(f *fonts.Face, w string, width float64) (string, string) {
	runes := []rune(w)
	n := 1
	for n < len(runes) && f.Measure(string(runes[:n+1])) <= width {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
