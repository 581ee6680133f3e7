package port

import (
	"context"

	"github.com/garyjia/invoice-layout/internal/domain/entity"
)

// ExportRepository defines persistence operations for ExportRecord
type ExportRepository interface {
	// Create inserts rec, or loads the existing record with the same content
	// hash and format into rec. The bool reports a fresh insert.
	Create(ctx context.Context, rec *entity.ExportRecord) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.ExportRecord, error)
	FindByHash(ctx context.Context, contentHash, format string) (*entity.ExportRecord, error)
	ListByInvoice(ctx context.Context, invoiceNumber string, limit int) ([]*entity.ExportRecord, error)
}
