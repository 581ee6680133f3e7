package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/garyjia/invoice-layout/internal/application/port"
	"github.com/garyjia/invoice-layout/internal/diag"
	"github.com/garyjia/invoice-layout/internal/document"
	"github.com/garyjia/invoice-layout/internal/domain/entity"
	"github.com/garyjia/invoice-layout/internal/export"
	"github.com/garyjia/invoice-layout/internal/logo"
	"github.com/garyjia/invoice-layout/internal/render"
	"github.com/garyjia/invoice-layout/internal/storage"
	"github.com/garyjia/invoice-layout/internal/surface"
	"github.com/garyjia/invoice-layout/internal/theme"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrExportNotFound is returned when no export record has the requested id
	ErrExportNotFound = errors.New("export not found")
	// ErrPartNotFound is returned for a page outside an export's parts
	ErrPartNotFound = errors.New("export part not found")
)

// DiagnosticView is the serializable form of a render diagnostic
type DiagnosticView struct {
	Kind      string `json:"kind"`
	Component string `json:"component"`
	Detail    string `json:"detail"`
}

// PreviewResult is an assembled document in serializable form
type PreviewResult struct {
	ContentHash string             `json:"content_hash"`
	DesignID    string             `json:"design_id"`
	PageCount   int                `json:"page_count"`
	Pages       []surface.PageView `json:"pages"`
	Diagnostics []DiagnosticView   `json:"diagnostics"`
}

// ExportResult describes a stored export
type ExportResult struct {
	Record      *entity.ExportRecord `json:"record"`
	Reused      bool                 `json:"reused"`
	ContentType string               `json:"content_type"`
	Diagnostics []DiagnosticView     `json:"diagnostics"`
}

// ExportPart is one stored file of an export
type ExportPart struct {
	Name        string
	ContentType string
	Data        []byte
}

// DesignSummary lists a design for clients choosing one
type DesignSummary struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	FontFamily string       `json:"font_family"`
	Colors     theme.Colors `json:"colors"`
	PageWidth  float64      `json:"page_width"`
	PageHeight float64      `json:"page_height"`
}

// DocumentService renders invoices and manages their exports
type DocumentService interface {
	Designs() []DesignSummary
	Formats() []string
	Preview(ctx context.Context, req entity.DocumentRequest) (*PreviewResult, error)
	Export(ctx context.Context, req entity.DocumentRequest, format string) (*ExportResult, error)
	GetExport(ctx context.Context, id string) (*entity.ExportRecord, error)
	ListExports(ctx context.Context, invoiceNumber string, limit int) ([]*entity.ExportRecord, error)
	OpenExportPart(ctx context.Context, id string, page int) (*ExportPart, error)
}

// DocumentDeps are the collaborators of the document service. Logos may be
// nil, in which case logos are never fetched and the initial badge is drawn.
type DocumentDeps struct {
	Builder   *document.Builder
	Resolver  *theme.Resolver
	Contexts  *render.ContextCache
	Logos     *logo.Loader
	Assembler *export.Assembler
	Encoders  export.Registry
	Exports   port.ExportRepository
	Storage   port.FileStorage
	Folders   port.FolderManager
	Logger    *zap.Logger
}

type documentServiceImpl struct {
	DocumentDeps
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(deps DocumentDeps) DocumentService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &documentServiceImpl{DocumentDeps: deps}
}

// Designs lists the catalog ordered by id
func (s *documentServiceImpl) Designs() []DesignSummary {
	list := s.Resolver.Catalog().List()
	out := make([]DesignSummary, len(list))
	for i, t := range list {
		out[i] = DesignSummary{
			ID:         t.ID,
			Name:       t.Name,
			FontFamily: t.FontFamily,
			Colors:     t.Colors,
			PageWidth:  t.Layout.PageWidth,
			PageHeight: t.Layout.PageHeight,
		}
	}
	return out
}

// Formats lists the enabled export formats
func (s *documentServiceImpl) Formats() []string {
	out := make([]string, 0, len(s.Encoders))
	for _, f := range []string{entity.ExportFormatPDF, entity.ExportFormatPNG, entity.ExportFormatXLSX} {
		if _, ok := s.Encoders[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// assemble builds, themes and lays out the request
func (s *documentServiceImpl) assemble(ctx context.Context, req entity.DocumentRequest) (*export.Artifact, error) {
	m := s.Builder.BuildRequest(req)
	rc := s.Contexts.Get(req.DesignID, req.Accent(), m.Number, m.Date)

	if s.Logos != nil {
		logoReport := diag.NewReport()
		m = s.Logos.Attach(ctx, m, logoReport)
		m.Issues = append(m.Issues, logoReport.Items()...)
	}

	return s.Assembler.AssembleWithFonts(ctx, m, rc.Theme, rc.Fonts)
}

// Preview assembles the request without encoding or storing anything
func (s *documentServiceImpl) Preview(ctx context.Context, req entity.DocumentRequest) (*PreviewResult, error) {
	art, err := s.assemble(ctx, req)
	if err != nil {
		return nil, err
	}

	views := make([]surface.PageView, len(art.Pages))
	for i, p := range art.Pages {
		views[i] = p.View()
	}
	return &PreviewResult{
		ContentHash: art.Hash(),
		DesignID:    art.Theme.ID,
		PageCount:   len(art.Pages),
		Pages:       views,
		Diagnostics: diagnosticViews(art.Report),
	}, nil
}

// Export assembles, encodes and stores the request. An identical document
// already exported in the same format is returned without re-encoding.
func (s *documentServiceImpl) Export(ctx context.Context, req entity.DocumentRequest, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	encoder, err := s.Encoders.Get(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, format)
	}

	art, err := s.assemble(ctx, req)
	if err != nil {
		return nil, err
	}
	hash := art.Hash()

	existing, err := s.Exports.FindByHash(ctx, hash, format)
	if err != nil {
		return nil, err
	}
	if existing != nil && !s.Folders.FolderExists(existing.InvoiceNumber, hash) {
		// The record survives but its files are gone; encode again into the
		// same folder and keep the record.
		s.Logger.Warn("Export files missing, re-encoding",
			zap.String("id", existing.ID),
			zap.String("content_hash", hash),
			zap.String("format", format))
		existing = nil
	}
	if existing != nil {
		s.Logger.Info("Export already exists",
			zap.String("id", existing.ID),
			zap.String("content_hash", hash),
			zap.String("format", format))
		return &ExportResult{
			Record:      existing,
			Reused:      true,
			ContentType: encoder.ContentType(),
			Diagnostics: diagnosticViews(art.Report),
		}, nil
	}

	parts, err := encoder.Encode(ctx, art)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}

	folder, err := s.Folders.CreateExportFolder(art.Model.Number, hash)
	if err != nil {
		return nil, err
	}
	rec := &entity.ExportRecord{
		ID:            uuid.NewString(),
		InvoiceNumber: art.Model.Number,
		DesignID:      art.Theme.ID,
		Format:        format,
		PageCount:     len(art.Pages),
		ContentHash:   hash,
		FilePath:      folder,
		Parts:         make([]string, 0, len(parts)),
	}
	fileType := storage.FileTypeFor(format)
	for _, p := range parts {
		if err := s.Storage.SaveFile(filepath.Join(folder, p.Name), p.Data, fileType); err != nil {
			return nil, err
		}
		rec.Parts = append(rec.Parts, p.Name)
		rec.FileSize += int64(len(p.Data))
	}

	inserted, err := s.Exports.Create(ctx, rec)
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Document exported",
		zap.String("id", rec.ID),
		zap.String("invoice_number", rec.InvoiceNumber),
		zap.String("design_id", rec.DesignID),
		zap.String("format", format),
		zap.Int("page_count", rec.PageCount),
		zap.Int64("file_size", rec.FileSize),
		zap.Bool("inserted", inserted))

	return &ExportResult{
		Record:      rec,
		Reused:      !inserted,
		ContentType: encoder.ContentType(),
		Diagnostics: diagnosticViews(art.Report),
	}, nil
}

// GetExport returns the export record with the given id
func (s *documentServiceImpl) GetExport(ctx context.Context, id string) (*entity.ExportRecord, error) {
	rec, err := s.Exports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrExportNotFound
	}
	return rec, nil
}

// ListExports returns an invoice's exports, newest first
func (s *documentServiceImpl) ListExports(ctx context.Context, invoiceNumber string, limit int) ([]*entity.ExportRecord, error) {
	return s.Exports.ListByInvoice(ctx, invoiceNumber, limit)
}

// OpenExportPart reads the stored file for a 1-based page. Single-file
// formats only have page 1.
func (s *documentServiceImpl) OpenExportPart(ctx context.Context, id string, page int) (*ExportPart, error) {
	rec, err := s.GetExport(ctx, id)
	if err != nil {
		return nil, err
	}
	if page < 1 || page > len(rec.Parts) {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPartNotFound, page, len(rec.Parts))
	}

	name := rec.Parts[page-1]
	data, err := s.Storage.ReadFile(filepath.Join(rec.FilePath, name))
	if err != nil {
		return nil, err
	}

	contentType := "application/octet-stream"
	if enc, err := s.Encoders.Get(rec.Format); err == nil {
		contentType = enc.ContentType()
	}
	return &ExportPart{Name: name, ContentType: contentType, Data: data}, nil
}

func diagnosticViews(r *diag.Report) []DiagnosticView {
	items := r.Items()
	out := make([]DiagnosticView, len(items))
	for i, d := range items {
		out[i] = DiagnosticView{Kind: d.KindName(), Component: d.Component, Detail: d.Detail}
	}
	return out
}
