package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/invoice-layout/internal/domain/entity"
	"go.uber.org/zap"
)

const exportColumns = `id, invoice_number, design_id, format, page_count, content_hash,
	file_path, parts, file_size, created_at`

// ExportRepository handles export record database operations
type ExportRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExportRepository creates a new export repository
func NewExportRepository(db *sql.DB, logger *zap.Logger) *ExportRepository {
	return &ExportRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts rec. When a record with the same content hash and format
// already exists, nothing is written and rec is replaced by the stored record;
// the returned bool reports whether rec was newly inserted.
func (r *ExportRepository) Create(ctx context.Context, rec *entity.ExportRecord) (bool, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO export_records (` + exportColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (content_hash, format) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.InvoiceNumber,
		rec.DesignID,
		rec.Format,
		rec.PageCount,
		rec.ContentHash,
		rec.FilePath,
		strings.Join(rec.Parts, "\n"),
		rec.FileSize,
		rec.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create export record", zap.String("id", rec.ID), zap.Error(err))
		return false, fmt.Errorf("failed to create export record: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	existing, err := r.FindByHash(ctx, rec.ContentHash, rec.Format)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, fmt.Errorf("export record %s/%s vanished after conflict", rec.ContentHash, rec.Format)
	}
	*rec = *existing
	return false, nil
}

// GetByID retrieves a record by id. It returns nil when none exists.
func (r *ExportRepository) GetByID(ctx context.Context, id string) (*entity.ExportRecord, error) {
	query := `SELECT ` + exportColumns + ` FROM export_records WHERE id = ?`

	rec, err := scanExport(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get export record", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get export record: %w", err)
	}
	return rec, nil
}

// FindByHash retrieves the record for a content hash and format. It returns
// nil when none exists.
func (r *ExportRepository) FindByHash(ctx context.Context, contentHash, format string) (*entity.ExportRecord, error) {
	query := `SELECT ` + exportColumns + ` FROM export_records WHERE content_hash = ? AND format = ?`

	rec, err := scanExport(r.db.QueryRowContext(ctx, query, contentHash, format))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find export record",
			zap.String("content_hash", contentHash),
			zap.String("format", format),
			zap.Error(err))
		return nil, fmt.Errorf("failed to find export record: %w", err)
	}
	return rec, nil
}

// ListByInvoice returns the newest records for an invoice number first
func (r *ExportRepository) ListByInvoice(ctx context.Context, invoiceNumber string, limit int) ([]*entity.ExportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + exportColumns + ` FROM export_records
		WHERE invoice_number = ?
		ORDER BY created_at DESC, id
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, invoiceNumber, limit)
	if err != nil {
		r.logger.Error("Failed to list export records", zap.String("invoice_number", invoiceNumber), zap.Error(err))
		return nil, fmt.Errorf("failed to list export records: %w", err)
	}
	defer rows.Close()

	var records []*entity.ExportRecord
	for rows.Next() {
		rec, err := scanExport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExport(row rowScanner) (*entity.ExportRecord, error) {
	var rec entity.ExportRecord
	var parts string
	err := row.Scan(
		&rec.ID,
		&rec.InvoiceNumber,
		&rec.DesignID,
		&rec.Format,
		&rec.PageCount,
		&rec.ContentHash,
		&rec.FilePath,
		&parts,
		&rec.FileSize,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if parts != "" {
		rec.Parts = strings.Split(parts, "\n")
	}
	return &rec, nil
}
