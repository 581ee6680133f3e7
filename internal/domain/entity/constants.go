package entity

import "strings"

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

// Invoice statuses
const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
	InvoiceStatusVoid    InvoiceStatus = "void"
)

// Export formats
const (
	ExportFormatPDF  = "pdf"
	ExportFormatPNG  = "png"
	ExportFormatXLSX = "xlsx"
)

// Normalize maps free-form status strings onto the known set, defaulting to draft.
func (s InvoiceStatus) Normalize() InvoiceStatus {
	switch InvoiceStatus(strings.ToLower(strings.TrimSpace(string(s)))) {
	case InvoiceStatusSent:
		return InvoiceStatusSent
	case InvoiceStatusPaid:
		return InvoiceStatusPaid
	case InvoiceStatusOverdue:
		return InvoiceStatusOverdue
	case InvoiceStatusVoid:
		return InvoiceStatusVoid
	default:
		return InvoiceStatusDraft
	}
}

// IsExportFormat reports whether f names a supported export format.
func IsExportFormat(f string) bool {
	switch f {
	case ExportFormatPDF, ExportFormatPNG, ExportFormatXLSX:
		return true
	}
	return false
}
