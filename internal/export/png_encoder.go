package export

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/garyjia/invoice-layout/internal/domain/entity"
	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// DefaultRasterDPI is the resolution PNG pages are rendered at.
const DefaultRasterDPI = 144

// PNGEncoder rasterizes the PDF rendition of an artifact with MuPDF and emits
// one PNG per page.
type PNGEncoder struct {
	pdf    *PDFEncoder
	dpi    float64
	logger *zap.Logger
}

// NewPNGEncoder creates a PNG encoder. A non-positive dpi uses DefaultRasterDPI.
func NewPNGEncoder(pdf *PDFEncoder, dpi float64, logger *zap.Logger) *PNGEncoder {
	if dpi <= 0 {
		dpi = DefaultRasterDPI
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PNGEncoder{pdf: pdf, dpi: dpi, logger: logger}
}

// Format implements Encoder.
func (e *PNGEncoder) Format() string { return entity.ExportFormatPNG }

// ContentType implements Encoder.
func (e *PNGEncoder) ContentType() string { return "image/png" }

// Encode implements Encoder.
func (e *PNGEncoder) Encode(ctx context.Context, a *Artifact) ([]Part, error) {
	data, err := e.pdf.EncodePDF(ctx, a)
	if err != nil {
		return nil, err
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf for rasterizing: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	e.logger.Debug("Rasterizing document",
		zap.Int("page_count", pageCount),
		zap.Float64("dpi", e.dpi))

	parts := make([]Part, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(i, e.dpi)
		if err != nil {
			return nil, fmt.Errorf("failed to rasterize page %d: %w", i, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", i, err)
		}
		parts = append(parts, Part{Name: fmt.Sprintf("page-%d.png", i+1), Data: buf.Bytes()})
	}
	return parts, nil
}
