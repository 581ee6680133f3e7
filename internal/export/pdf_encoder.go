package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/invoice-layout/internal/domain/entity"
	"github.com/garyjia/invoice-layout/internal/fonts"
	"github.com/garyjia/invoice-layout/internal/surface"
	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

// PDFEncoder writes one PDF page per surface page with go-pdf/fpdf.
type PDFEncoder struct {
	fonts  *fonts.Cache
	logger *zap.Logger
}

// NewPDFEncoder creates a PDF encoder that embeds fonts from fontCache.
func NewPDFEncoder(fontCache *fonts.Cache, logger *zap.Logger) *PDFEncoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFEncoder{fonts: fontCache, logger: logger}
}

// Format implements Encoder.
func (e *PDFEncoder) Format() string { return entity.ExportFormatPDF }

// ContentType implements Encoder.
func (e *PDFEncoder) ContentType() string { return "application/pdf" }

// Encode implements Encoder.
func (e *PDFEncoder) Encode(ctx context.Context, a *Artifact) ([]Part, error) {
	data, err := e.EncodePDF(ctx, a)
	if err != nil {
		return nil, err
	}
	return []Part{{Name: "document.pdf", Data: data}}, nil
}

// EncodePDF renders the artifact into a single PDF document. The creation
// date is the invoice date so equal artifacts produce equal files.
func (e *PDFEncoder) EncodePDF(ctx context.Context, a *Artifact) ([]byte, error) {
	if a == nil || len(a.Pages) == 0 {
		return nil, ErrNoPages
	}

	w, h := a.Pages[0].Size()
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)

	created := time.Unix(0, 0).UTC()
	if a.Model != nil {
		if !a.Model.Date.IsZero() {
			created = a.Model.Date
		}
		pdf.SetTitle(strings.TrimSpace(a.Model.DocumentType+" "+a.Model.Number), true)
		pdf.SetAuthor(a.Model.Business.Name, true)
	}
	pdf.SetCreator("invoice-layout", true)
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)

	writer := &pdfWriter{pdf: pdf, fonts: e.fonts, logger: e.logger, registered: map[string]string{}, images: map[string]bool{}}
	for _, page := range a.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pw, ph := page.Size()
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: pw, Ht: ph})
		for _, op := range page.Ops() {
			writer.draw(page, op)
		}
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("failed to draw page %d: %w", page.Index(), err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfWriter struct {
	pdf        *fpdf.Fpdf
	fonts      *fonts.Cache
	logger     *zap.Logger
	registered map[string]string
	images     map[string]bool
}

func (w *pdfWriter) draw(page *surface.Page, op surface.Op) {
	switch op.Kind {
	case surface.OpRect:
		if style := w.style(op.Style); style != "" {
			w.pdf.Rect(op.Box.X, op.Box.Y, op.Box.W, op.Box.H, style)
		}
	case surface.OpCircle:
		if style := w.style(op.Style); style != "" {
			w.pdf.Circle(op.CX, op.CY, op.Radius, style)
		}
	case surface.OpText:
		w.setFont(*op.Font, *op.Color)
		w.pdf.Text(op.X, op.Baseline, op.Text)
	case surface.OpParagraph:
		p := op.Paragraph
		w.setFont(p.Font, p.Color)
		for _, l := range p.Lines {
			w.pdf.Text(l.X, l.Baseline, l.Text)
		}
	case surface.OpImage:
		img, ok := page.Image(op.ImageKey)
		if !ok {
			return
		}
		opts := fpdf.ImageOptions{ImageType: imageType(img.Format)}
		if !w.images[img.Key] {
			w.pdf.RegisterImageOptionsReader(img.Key, opts, bytes.NewReader(img.Data))
			w.images[img.Key] = true
		}
		w.pdf.ImageOptions(img.Key, op.Box.X, op.Box.Y, op.Box.W, op.Box.H, false, opts, 0, "")
	}
}

// style sets fill and stroke state and returns the fpdf style string.
func (w *pdfWriter) style(s *surface.Style) string {
	if s == nil {
		return ""
	}
	var out string
	if s.Fill != nil {
		w.pdf.SetFillColor(int(s.Fill.R), int(s.Fill.G), int(s.Fill.B))
		out += "F"
	}
	if s.Stroke != nil && s.StrokeWidth > 0 {
		w.pdf.SetDrawColor(int(s.Stroke.R), int(s.Stroke.G), int(s.Stroke.B))
		w.pdf.SetLineWidth(s.StrokeWidth)
		out += "D"
	}
	return out
}

// setFont selects the embedded font for ref, registering its TTF on first
// use. Runs whose face is not in the cache fall back to a core font.
func (w *pdfWriter) setFont(ref surface.FontRef, c surface.Color) {
	w.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))

	key := ref.Family
	if ref.Bold {
		key += "|bold"
	}
	name, ok := w.registered[key]
	if !ok {
		if face := w.lookup(ref); face != nil {
			name = fmt.Sprintf("F%d", len(w.registered)+1)
			w.pdf.AddUTF8FontFromBytes(name, "", face.TTF())
		} else {
			w.logger.Warn("Font not embeddable, using core font",
				zap.String("family", ref.Family),
				zap.Bool("bold", ref.Bold))
			name = "Helvetica"
		}
		w.registered[key] = name
	}

	style := ""
	if name == "Helvetica" && ref.Bold {
		style = "B"
	}
	w.pdf.SetFont(name, style, ref.Size)
}

func (w *pdfWriter) lookup(ref surface.FontRef) *fonts.Face {
	if w.fonts == nil {
		return nil
	}
	return w.fonts.Lookup(ref)
}

func imageType(format string) string {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return "JPG"
	case "gif":
		return "GIF"
	default:
		return "PNG"
	}
}
