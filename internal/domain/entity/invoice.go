package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceRecord is an invoice as delivered by the data layer. Pointer fields
// are optional; the document builder substitutes documented defaults.
type InvoiceRecord struct {
	Number         *string          `json:"invoice_number,omitempty"`
	DocumentType   *string          `json:"document_type,omitempty"`
	Date           *time.Time       `json:"invoice_date,omitempty"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
	CurrencyCode   string           `json:"currency,omitempty"`
	CurrencySymbol *string          `json:"currency_symbol,omitempty"`
	Subtotal       *decimal.Decimal `json:"subtotal,omitempty"`
	TaxAmount      *decimal.Decimal `json:"tax_amount,omitempty"`
	Discount       *decimal.Decimal `json:"discount,omitempty"`
	TotalAmount    *decimal.Decimal `json:"total_amount,omitempty"`
	Items          []LineItemRecord `json:"items"`
	Status         InvoiceStatus    `json:"status,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
}

// LineItemRecord is one billable row of an invoice.
type LineItemRecord struct {
	Quantity    int              `json:"quantity"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	TotalPrice  *decimal.Decimal `json:"total_price,omitempty"`
	Discount    *decimal.Decimal `json:"discount,omitempty"`
}

// BusinessRecord holds the issuing business settings.
type BusinessRecord struct {
	Name         *string  `json:"name,omitempty"`
	Email        *string  `json:"email,omitempty"`
	LogoURL      *string  `json:"logo_url,omitempty"`
	AddressLines []string `json:"address_lines,omitempty"`
	AccentColor  *string  `json:"accent_color,omitempty"`
}

// ClientRecord is the billed party.
type ClientRecord struct {
	Name         *string  `json:"name,omitempty"`
	Email        *string  `json:"email,omitempty"`
	AddressLines []string `json:"address_lines,omitempty"`
}

// DocumentRequest bundles everything needed for one render invocation.
type DocumentRequest struct {
	Invoice  InvoiceRecord  `json:"invoice"`
	Business BusinessRecord `json:"business"`
	Client   ClientRecord   `json:"client"`
	DesignID string         `json:"design_id,omitempty"`
	// AccentOverride wins over Business.AccentColor when both are set.
	AccentOverride *string `json:"accent_override,omitempty"`
}

// Accent returns the accent override in effect for the request, if any.
func (r *DocumentRequest) Accent() *string {
	if r.AccentOverride != nil && *r.AccentOverride != "" {
		return r.AccentOverride
	}
	if r.Business.AccentColor != nil && *r.Business.AccentColor != "" {
		return r.Business.AccentColor
	}
	return nil
}
