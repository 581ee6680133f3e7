package entity

import "time"

// ExportRecord represents an exported document artifact. FilePath is the
// folder holding the artifact's parts; Parts lists their file names in page
// order (a PDF or workbook has one part, a PNG export one per page).
type ExportRecord struct {
	ID            string    `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	DesignID      string    `json:"design_id"`
	Format        string    `json:"format"`
	PageCount     int       `json:"page_count"`
	ContentHash   string    `json:"content_hash"`
	FilePath      string    `json:"file_path"`
	Parts         []string  `json:"parts"`
	FileSize      int64     `json:"file_size"`
	CreatedAt     time.Time `json:"created_at"`
}
