package document

import (
	"fmt"
	"strings"

	"github.com/garyjia/invoice-layout/internal/diag"
	"github.com/garyjia/invoice-layout/internal/domain/entity"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const component = "document"

// Builder turns upstream records into a Model.
type Builder struct {
	currencies *CurrencyTable
	logger     *zap.Logger
}

// NewBuilder creates a builder. A nil table uses the built-in currency symbols.
func NewBuilder(currencies *CurrencyTable, logger *zap.Logger) *Builder {
	if currencies == nil {
		currencies = NewCurrencyTable(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{currencies: currencies, logger: logger}
}

// BuildRequest builds the model for a document request.
func (b *Builder) BuildRequest(req entity.DocumentRequest) *Model {
	return b.Build(req.Invoice, req.Business, req.Client)
}

// Build normalizes the records, substituting placeholders for absent fields.
// It never fails; every substitution that hides missing data is recorded in
// Model.Issues.
func (b *Builder) Build(inv entity.InvoiceRecord, biz entity.BusinessRecord, client entity.ClientRecord) *Model {
	report := diag.NewReport()
	m := &Model{
		Number:       orDefault(inv.Number, ""),
		DocumentType: strings.ToUpper(orDefault(inv.DocumentType, DefaultDocumentType)),
		CurrencyCode: strings.ToUpper(strings.TrimSpace(inv.CurrencyCode)),
		Status:       inv.Status.Normalize(),
		FooterNote:   orDefault(inv.Notes, DefaultFooterNote),
	}

	if m.Number == "" {
		m.Number = DefaultInvoiceNumber
		report.Add(diag.ErrDataIncomplete, component, "invoice number missing")
	}
	if inv.Date != nil && !inv.Date.IsZero() {
		m.Date = *inv.Date
	} else {
		report.Add(diag.ErrDataIncomplete, component, "invoice date missing")
	}
	if inv.DueDate != nil {
		m.DueDate = *inv.DueDate
	}

	if sym := orDefault(inv.CurrencySymbol, ""); sym != "" {
		m.CurrencySymbol = sym
	} else {
		m.CurrencySymbol = b.currencies.Symbol(m.CurrencyCode)
	}

	m.Items = make([]LineItem, 0, len(inv.Items))
	for i, rec := range inv.Items {
		m.Items = append(m.Items, buildItem(i, rec, report))
	}

	itemsSum := m.ItemsSum()
	if inv.Subtotal != nil {
		m.Subtotal = *inv.Subtotal
		if m.Subtotal.Sub(itemsSum).Abs().GreaterThan(TotalsTolerance) {
			report.Add(diag.ErrDataIncomplete, component,
				fmt.Sprintf("subtotal %s differs from item sum %s", m.Subtotal.StringFixed(2), itemsSum.StringFixed(2)))
		}
	} else {
		m.Subtotal = itemsSum
		if len(m.Items) > 0 {
			report.Add(diag.ErrDataIncomplete, component, "subtotal missing, derived from items")
		}
	}
	m.Tax = orZero(inv.TaxAmount)
	m.Discount = orZero(inv.Discount)

	if inv.TotalAmount != nil {
		m.Total = *inv.TotalAmount
		if !m.TotalsConsistent() {
			report.Add(diag.ErrDataIncomplete, component,
				fmt.Sprintf("total %s does not equal subtotal + tax - discount %s", m.Total.StringFixed(2), m.ExpectedTotal().StringFixed(2)))
		}
	} else {
		m.Total = m.ExpectedTotal()
		if len(m.Items) > 0 {
			report.Add(diag.ErrDataIncomplete, component, "total missing, derived from subtotal, tax and discount")
		}
	}

	m.Business = Business{
		Name:    orDefault(biz.Name, DefaultBusinessName),
		Email:   orDefault(biz.Email, ""),
		LogoURL: orDefault(biz.LogoURL, ""),
	}
	for i := 0; i < len(m.Business.Address) && i < len(biz.AddressLines); i++ {
		m.Business.Address[i] = strings.TrimSpace(biz.AddressLines[i])
	}
	if len(biz.AddressLines) > len(m.Business.Address) {
		b.logger.Debug("Business address truncated",
			zap.Int("lines", len(biz.AddressLines)),
			zap.Int("kept", len(m.Business.Address)))
	}

	m.Client = Client{
		Name:    orDefault(client.Name, DefaultClientName),
		Email:   orDefault(client.Email, ""),
		Address: joinNonBlank(client.AddressLines, ", "),
	}

	m.Issues = report.Items()
	return m
}

func buildItem(i int, rec entity.LineItemRecord, report *diag.Report) LineItem {
	it := LineItem{
		Quantity:    rec.Quantity,
		Name:        strings.TrimSpace(rec.Name),
		Description: orDefault(rec.Description, ""),
		UnitPrice:   rec.UnitPrice,
		Discount:    orZero(rec.Discount),
	}
	if it.Quantity < 0 {
		it.Quantity = 0
		report.Add(diag.ErrDataIncomplete, component, fmt.Sprintf("item %d has negative quantity", i))
	}
	if rec.TotalPrice != nil {
		it.Total = *rec.TotalPrice
	} else {
		it.Total = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Sub(it.Discount)
	}
	return it
}

func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	if v := strings.TrimSpace(*s); v != "" {
		return v
	}
	return def
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func joinNonBlank(lines []string, sep string) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, sep)
}
