// Package document normalizes raw invoice, business and client records into
// the read-only model the page renderer draws.
package document

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/garyjia/invoice-layout/internal/diag"
	"github.com/garyjia/invoice-layout/internal/domain/entity"
	"github.com/garyjia/invoice-layout/internal/surface"
	"github.com/shopspring/decimal"
)

// Placeholders substituted for absent fields.
const (
	DefaultInvoiceNumber = "INV-0000"
	DefaultDocumentType  = "INVOICE"
	DefaultBusinessName  = "Your Business"
	DefaultClientName    = "Client"
	DefaultFooterNote    = "Thank you for your business!"
	MissingDateLabel     = "N/A"

	DateLayout = "Jan 02, 2006"
)

// TotalsTolerance is the allowed gap between total and subtotal + tax - discount.
var TotalsTolerance = decimal.New(1, -2)

// LineItem is one render-ready row.
type LineItem struct {
	Quantity    int             `json:"quantity"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

// Business is the issuing party. Address holds two fixed slots; an empty slot
// is simply not drawn.
type Business struct {
	Name    string         `json:"name"`
	Email   string         `json:"email,omitempty"`
	LogoURL string         `json:"logo_url,omitempty"`
	Address [2]string      `json:"address"`
	Logo    *surface.Image `json:"-"`
}

// Client is the billed party.
type Client struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// Model is the normalized document. It is never mutated after Build.
type Model struct {
	Number         string               `json:"number"`
	DocumentType   string               `json:"document_type"`
	Date           time.Time            `json:"date"`
	DueDate        time.Time            `json:"due_date"`
	CurrencyCode   string               `json:"currency_code"`
	CurrencySymbol string               `json:"currency_symbol"`
	Items          []LineItem           `json:"items"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	Tax            decimal.Decimal      `json:"tax"`
	Discount       decimal.Decimal      `json:"discount"`
	Total          decimal.Decimal      `json:"total"`
	Status         entity.InvoiceStatus `json:"status"`
	Business       Business             `json:"business"`
	Client         Client               `json:"client"`
	FooterNote     string               `json:"footer_note"`

	// Issues are the degradations found while building the model.
	Issues []diag.Diagnostic `json:"-"`
}

// Money formats v with the document currency symbol.
func (m *Model) Money(v decimal.Decimal) string {
	return FormatMoney(m.CurrencySymbol, v)
}

// DateLabel returns the invoice date for display, or "N/A".
func (m *Model) DateLabel() string {
	if m.Date.IsZero() {
		return MissingDateLabel
	}
	return m.Date.Format(DateLayout)
}

// DueDateLabel returns the due date for display, or "" when there is none.
func (m *Model) DueDateLabel() string {
	if m.DueDate.IsZero() {
		return ""
	}
	return m.DueDate.Format(DateLayout)
}

// Initial returns the upper-cased first letter of the business name, used by
// the logo fallback badge.
func (m *Model) Initial() string {
	name := strings.TrimSpace(m.Business.Name)
	if name == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r))
}

// ExpectedTotal returns subtotal + tax - discount.
func (m *Model) ExpectedTotal() decimal.Decimal {
	return m.Subtotal.Add(m.Tax).Sub(m.Discount)
}

// TotalsConsistent reports whether Total matches ExpectedTotal within one cent.
func (m *Model) TotalsConsistent() bool {
	return m.Total.Sub(m.ExpectedTotal()).Abs().LessThanOrEqual(TotalsTolerance)
}

// ItemsSum returns the sum of the line totals.
func (m *Model) ItemsSum() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range m.Items {
		sum = sum.Add(it.Total)
	}
	return sum
}

// WithLogo returns a copy of m whose business carries img. Items are shared;
// neither copy mutates them.
func (m *Model) WithLogo(img *surface.Image) *Model {
	cp := *m
	cp.Business.Logo = img
	return &cp
}
