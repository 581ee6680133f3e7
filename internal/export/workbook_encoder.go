package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/invoice-layout/internal/document"
	"github.com/garyjia/invoice-layout/internal/domain/entity"
	"github.com/garyjia/invoice-layout/internal/layout"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const tableHeaderRow = 8

// WorkbookEncoder writes an artifact as an XLSX workbook with one sheet per
// page plan. Every sheet carries the table header and its item rows; the final
// sheet also carries the totals.
type WorkbookEncoder struct {
	logger *zap.Logger
}

// NewWorkbookEncoder creates a workbook encoder.
func NewWorkbookEncoder(logger *zap.Logger) *WorkbookEncoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkbookEncoder{logger: logger}
}

// Format implements Encoder.
func (e *WorkbookEncoder) Format() string { return entity.ExportFormatXLSX }

// ContentType implements Encoder.
func (e *WorkbookEncoder) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// SheetName returns the sheet name of the page at index.
func SheetName(index int) string {
	return fmt.Sprintf("Page %d", index+1)
}

type workbookStyles struct {
	title  int
	label  int
	header int
	money  int
	total  int
}

// Encode implements Encoder.
func (e *WorkbookEncoder) Encode(ctx context.Context, a *Artifact) ([]Part, error) {
	if a == nil || len(a.Plans) == 0 {
		return nil, ErrNoPages
	}
	m := a.Model
	if m == nil {
		m = &document.Model{}
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	created := time.Unix(0, 0).UTC()
	if !m.Date.IsZero() {
		created = m.Date.UTC()
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:    strings.TrimSpace(m.DocumentType + " " + m.Number),
		Creator:  m.Business.Name,
		Created:  created.Format(time.RFC3339),
		Modified: created.Format(time.RFC3339),
	}); err != nil {
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	styles, err := e.styles(f, a.Theme.Colors.Primary, m.CurrencySymbol)
	if err != nil {
		return nil, err
	}

	for i, plan := range a.Plans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sheet := SheetName(i)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
		if err := e.writeSheet(f, sheet, plan, m, styles); err != nil {
			return nil, fmt.Errorf("failed to write sheet %s: %w", sheet, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return []Part{{Name: "document.xlsx", Data: buf.Bytes()}}, nil
}

func (e *WorkbookEncoder) styles(f *excelize.File, primary, symbol string) (workbookStyles, error) {
	var s workbookStyles
	var err error
	fill := strings.TrimPrefix(primary, "#")
	if fill == "" {
		fill = "1F3A5F"
	}
	moneyFmt := `"` + strings.ReplaceAll(symbol, `"`, `""`) + `"0.00`

	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 18, Color: fill}}); err != nil {
		return s, fmt.Errorf("failed to create title style: %w", err)
	}
	if s.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: "6B7280"}}); err != nil {
		return s, fmt.Errorf("failed to create label style: %w", err)
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}},
	}); err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}
	if s.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt}); err != nil {
		return s, fmt.Errorf("failed to create money style: %w", err)
	}
	if s.total, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &moneyFmt}); err != nil {
		return s, fmt.Errorf("failed to create total style: %w", err)
	}
	return s, nil
}

func (e *WorkbookEncoder) writeSheet(f *excelize.File, sheet string, plan layout.PagePlan, m *document.Model, st workbookStyles) error {
	set := func(cell string, v interface{}) error {
		return f.SetCellValue(sheet, cell, v)
	}
	style := func(from, to string, id int) error {
		return f.SetCellStyle(sheet, from, to, id)
	}

	for i, width := range []float64{8, 32, 40, 14, 14} {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}

	if err := set("A1", m.DocumentType); err != nil {
		return err
	}
	if err := style("A1", "A1", st.title); err != nil {
		return err
	}
	header := [][2]string{
		{"A2", "# " + m.Number},
		{"A3", "Date: " + m.DateLabel()},
	}
	if due := m.DueDateLabel(); due != "" {
		header = append(header, [2]string{"A4", "Due: " + due})
	}
	if plan.IsFirstPage {
		header = append(header,
			[2]string{"B5", "From"}, [2]string{"B6", m.Business.Name},
			[2]string{"C5", "Bill To"}, [2]string{"C6", m.Client.Name},
		)
	}
	for _, h := range header {
		if err := set(h[0], h[1]); err != nil {
			return err
		}
	}
	if plan.IsFirstPage {
		if err := style("B5", "C5", st.label); err != nil {
			return err
		}
	}

	hr := tableHeaderRow
	for i, label := range []string{"Qty", "Item", "Description", "Unit Price", "Total"} {
		cell, err := excelize.CoordinatesToCellName(i+1, hr)
		if err != nil {
			return err
		}
		if err := set(cell, label); err != nil {
			return err
		}
	}
	if err := style(fmt.Sprintf("A%d", hr), fmt.Sprintf("E%d", hr), st.header); err != nil {
		return err
	}

	row := hr + 1
	if plan.Empty() {
		if err := set(fmt.Sprintf("B%d", row), "No items"); err != nil {
			return err
		}
		row++
	}
	for idx := plan.Start; idx < plan.End && idx < len(m.Items); idx++ {
		it := m.Items[idx]
		values := []interface{}{it.Quantity, it.Name, it.Description, it.UnitPrice.InexactFloat64(), it.Total.InexactFloat64()}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := set(cell, v); err != nil {
				return err
			}
		}
		if err := style(fmt.Sprintf("D%d", row), fmt.Sprintf("E%d", row), st.money); err != nil {
			return err
		}
		row++
	}

	if !plan.IsFinalPage {
		return nil
	}
	row++
	totals := []struct {
		label string
		value float64
	}{
		{"Subtotal", m.Subtotal.InexactFloat64()},
		{"Tax", m.Tax.InexactFloat64()},
	}
	if !m.Discount.IsZero() {
		totals = append(totals, struct {
			label string
			value float64
		}{"Discount", m.Discount.Neg().InexactFloat64()})
	}
	for _, t := range totals {
		if err := set(fmt.Sprintf("D%d", row), t.label); err != nil {
			return err
		}
		if err := set(fmt.Sprintf("E%d", row), t.value); err != nil {
			return err
		}
		if err := style(fmt.Sprintf("E%d", row), fmt.Sprintf("E%d", row), st.money); err != nil {
			return err
		}
		row++
	}
	if err := set(fmt.Sprintf("D%d", row), "Total"); err != nil {
		return err
	}
	if err := set(fmt.Sprintf("E%d", row), m.Total.InexactFloat64()); err != nil {
		return err
	}
	if err := style(fmt.Sprintf("D%d", row), fmt.Sprintf("E%d", row), st.total); err != nil {
		return err
	}
	return set(fmt.Sprintf("A%d", row+2), m.FooterNote)
}
