// Package render draws one page plan of an invoice onto a drawing surface.
package render

import (
	"fmt"
	"strings"

	"github.com/garyjia/invoice-layout/internal/diag"
	"github.com/garyjia/invoice-layout/internal/document"
	"github.com/garyjia/invoice-layout/internal/domain/entity"
	"github.com/garyjia/invoice-layout/internal/fonts"
	"github.com/garyjia/invoice-layout/internal/layout"
	"github.com/garyjia/invoice-layout/internal/surface"
	"github.com/garyjia/invoice-layout/internal/theme"
	"go.uber.org/zap"
)

const component = "render"

// Column labels of the item table.
const (
	LabelQty       = "Qty"
	LabelItem      = "Item"
	LabelUnitPrice = "Unit Price"
	LabelTotal     = "Total"
	NoItemsLabel   = "No items"
)

// Fixed slot offsets, in points from the top of their block. Absent fields
// leave their slot empty; nothing below moves up.
const (
	headerLabelOffset  = 22
	headerNumberOffset = 42
	headerDateOffset   = 58
	headerDueOffset    = 72
	headerStatusOffset = 90

	partyCaptionOffset = 12
	partyNameOffset    = 30
	partyLine1Offset   = 46
	partyLine2Offset   = 60
	partyLine3Offset   = 74

	totalsSubtotalOffset = 20
	totalsTaxOffset      = 38
	totalsDiscountOffset = 56
	totalsRuleOffset     = 66
	totalsTotalOffset    = 84
	totalsBoxWidth       = 220

	cellPadding = 8
	qtyColWidth = 44
	moneyColW   = 92
)

// Renderer draws pages. It holds no per-document state and is safe for
// concurrent use.
type Renderer struct {
	logger *zap.Logger
}

// NewRenderer creates a page renderer.
func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{logger: logger}
}

// Render draws plan onto a fresh page and seals it.
func (r *Renderer) Render(plan layout.PagePlan, m *document.Model, th theme.Theme, fs fonts.Set) *surface.Page {
	return r.RenderWithReport(plan, m, th, fs, nil)
}

// RenderWithReport is Render with degradations recorded into report.
func (r *Renderer) RenderWithReport(plan layout.PagePlan, m *document.Model, th theme.Theme, fs fonts.Set, report *diag.Report) *surface.Page {
	page := surface.NewPage(plan.Index, th.Layout.PageWidth, th.Layout.PageHeight)
	r.Draw(page, plan, m, th, fs, report)
	page.Seal()
	return page
}

// pageDraw carries what every block of one page needs.
type pageDraw struct {
	pen
	plan  layout.PagePlan
	model *document.Model
	l     theme.Layout
	pal   theme.Palette
}

// Draw issues the drawing calls for plan onto c, back to front.
func (r *Renderer) Draw(c surface.Canvas, plan layout.PagePlan, m *document.Model, th theme.Theme, fs fonts.Set, report *diag.Report) {
	if m == nil {
		m = &document.Model{}
	}
	d := &pageDraw{
		pen:   pen{canvas: c, fonts: fs, report: report},
		plan:  plan,
		model: m,
		l:     th.Layout,
		pal:   th.Palette(),
	}

	d.background()
	if plan.IsFirstPage {
		d.logo()
		d.header()
		d.fromBlock()
		d.billToBlock()
	}
	d.tableHeader()
	d.rows()
	if plan.IsFinalPage {
		d.totals()
		d.footer()
	}
	if plan.TotalPages > 1 {
		d.pageNumber()
	}
}

func (d *pageDraw) left() float64  { return d.l.Margin }
func (d *pageDraw) right() float64 { return d.l.PageWidth - d.l.Margin }

func (d *pageDraw) background() {
	d.canvas.DrawRect(surface.Rect{W: d.l.PageWidth, H: d.l.PageHeight}, surface.Filled(d.pal.Background))
	if d.l.BorderWidth > 0 {
		inset := d.l.Margin / 2
		d.canvas.DrawRect(surface.Rect{
			X: inset,
			Y: inset,
			W: d.l.PageWidth - 2*inset,
			H: d.l.PageHeight - 2*inset,
		}, surface.Stroked(d.pal.Primary, d.l.BorderWidth))
	}
}

// logo draws the business logo, or a filled badge with the business initial
// while no logo image is available.
func (d *pageDraw) logo() {
	size := d.l.LogoSize
	if size <= 0 {
		return
	}
	box := surface.Rect{X: d.left(), Y: d.l.Margin, W: size, H: size}

	if img := d.model.Business.Logo; img != nil && len(img.Data) > 0 {
		d.canvas.DrawImage(*img, fitImage(img.Width, img.Height, box))
		return
	}

	cx, cy := box.X+size/2, box.Y+size/2
	d.canvas.DrawCircle(cx, cy, size/2, surface.Filled(d.pal.Primary))
	if initial := d.model.Initial(); initial != "" {
		d.text(fonts.VariantTitle, initial, cx, centerBaseline(d.fonts.Title, box.Y, size), surface.AlignCenter, d.pal.Background)
	}
}

// fitImage scales a w×h image into box keeping its aspect ratio, anchored at
// the top-left corner.
func fitImage(w, h int, box surface.Rect) surface.Rect {
	if w <= 0 || h <= 0 {
		return box
	}
	scale := box.W / float64(w)
	if s := box.H / float64(h); s < scale {
		scale = s
	}
	return surface.Rect{X: box.X, Y: box.Y, W: float64(w) * scale, H: float64(h) * scale}
}

func (d *pageDraw) header() {
	top, x := d.l.Margin, d.right()
	m := d.model

	d.text(fonts.VariantTitle, m.DocumentType, x, top+headerLabelOffset, surface.AlignRight, d.pal.Primary)
	d.text(fonts.VariantBody, "# "+m.Number, x, top+headerNumberOffset, surface.AlignRight, d.pal.Text)
	d.text(fonts.VariantBody, "Date: "+m.DateLabel(), x, top+headerDateOffset, surface.AlignRight, d.pal.MutedText)
	if due := m.DueDateLabel(); due != "" {
		d.text(fonts.VariantBody, "Due: "+due, x, top+headerDueOffset, surface.AlignRight, d.pal.MutedText)
	}
	if m.Status != "" && m.Status != entity.InvoiceStatusDraft {
		d.text(fonts.VariantBodyBold, strings.ToUpper(string(m.Status)), x, top+headerStatusOffset, surface.AlignRight, d.pal.Accent)
	}
}

func (d *pageDraw) partyTop() float64 { return d.l.Margin + d.l.HeaderHeight }

func (d *pageDraw) partyWidth() float64 { return d.l.ContentWidth()/2 - cellPadding }

func (d *pageDraw) fromBlock() {
	top, x, w := d.partyTop(), d.left(), d.partyWidth()
	b := d.model.Business

	d.text(fonts.VariantTiny, "FROM", x, top+partyCaptionOffset, surface.AlignLeft, d.pal.MutedText)
	d.fitted(fonts.VariantBodyBold, b.Name, x, top+partyNameOffset, w, surface.AlignLeft, d.pal.Text)
	d.fitted(fonts.VariantBody, b.Address[0], x, top+partyLine1Offset, w, surface.AlignLeft, d.pal.Text)
	d.fitted(fonts.VariantBody, b.Address[1], x, top+partyLine2Offset, w, surface.AlignLeft, d.pal.Text)
	d.fitted(fonts.VariantBody, b.Email, x, top+partyLine3Offset, w, surface.AlignLeft, d.pal.MutedText)
}

func (d *pageDraw) billToBlock() {
	top, w := d.partyTop(), d.partyWidth()
	x := d.left() + d.l.ContentWidth()/2 + cellPadding
	c := d.model.Client

	d.text(fonts.VariantTiny, "BILL TO", x, top+partyCaptionOffset, surface.AlignLeft, d.pal.MutedText)
	d.fitted(fonts.VariantBodyBold, c.Name, x, top+partyNameOffset, w, surface.AlignLeft, d.pal.Text)
	d.fitted(fonts.VariantBody, c.Email, x, top+partyLine1Offset, w, surface.AlignLeft, d.pal.MutedText)
	d.fitted(fonts.VariantBody, c.Address, x, top+partyLine2Offset, w, surface.AlignLeft, d.pal.Text)
}

// columns returns the anchors of the item table: the left edges of quantity
// and name, the width of the name column and the right edges of the money
// columns.
func (d *pageDraw) columns() (qtyX, nameX, nameW, unitRight, totalRight float64) {
	qtyX = d.left() + cellPadding
	nameX = qtyX + qtyColWidth
	totalRight = d.right() - cellPadding
	unitRight = totalRight - moneyColW - cellPadding
	nameW = unitRight - moneyColW - nameX
	return
}

func (d *pageDraw) tableHeader() {
	top, h := d.plan.TableTop, d.l.TableHeaderHeight
	d.canvas.DrawRect(surface.Rect{X: d.left(), Y: top, W: d.l.ContentWidth(), H: h}, surface.Filled(d.pal.Primary))

	qtyX, nameX, _, unitRight, totalRight := d.columns()
	baseline := centerBaseline(d.fonts.BodyBold, top, h)
	d.text(fonts.VariantBodyBold, LabelQty, qtyX, baseline, surface.AlignLeft, d.pal.Background)
	d.text(fonts.VariantBodyBold, LabelItem, nameX, baseline, surface.AlignLeft, d.pal.Background)
	d.text(fonts.VariantBodyBold, LabelUnitPrice, unitRight, baseline, surface.AlignRight, d.pal.Background)
	d.text(fonts.VariantBodyBold, LabelTotal, totalRight, baseline, surface.AlignRight, d.pal.Background)
}

func (d *pageDraw) rows() {
	rh := d.plan.RowHeight
	if d.plan.Empty() {
		y := d.plan.RowY(0)
		d.text(fonts.VariantBody, NoItemsLabel, d.left()+d.l.ContentWidth()/2, centerBaseline(d.fonts.Body, y, rh), surface.AlignCenter, d.pal.MutedText)
		d.rule(y + rh)
		return
	}

	qtyX, nameX, nameW, unitRight, totalRight := d.columns()
	stripe := tint(d.pal.Accent, d.pal.Background, 0.08)
	for idx := d.plan.Start; idx < d.plan.End && idx < len(d.model.Items); idx++ {
		i := idx - d.plan.Start
		y := d.plan.RowY(i)
		it := d.model.Items[idx]

		if d.l.StripeRows && i%2 == 1 {
			d.canvas.DrawRect(surface.Rect{X: d.left(), Y: y, W: d.l.ContentWidth(), H: rh}, surface.Filled(stripe))
		}

		baseline := centerBaseline(d.fonts.Body, y, rh)
		nameBaseline, descBaseline := baseline, 0.0
		if it.Description != "" {
			body, tiny := d.fonts.Body, d.fonts.Tiny
			if body != nil && tiny != nil && body.LineHeight()+tiny.LineHeight() <= rh {
				nameBaseline = y + (rh-body.LineHeight()-tiny.LineHeight())/2 + body.Ascent()
				descBaseline = nameBaseline + tiny.LineHeight()
			}
		}

		d.text(fonts.VariantBody, fmt.Sprintf("%d", it.Quantity), qtyX, baseline, surface.AlignLeft, d.pal.Text)
		d.fitted(fonts.VariantBody, it.Name, nameX, nameBaseline, nameW, surface.AlignLeft, d.pal.Text)
		if descBaseline > 0 {
			d.fitted(fonts.VariantTiny, it.Description, nameX, descBaseline, nameW, surface.AlignLeft, d.pal.MutedText)
		}
		d.text(fonts.VariantBody, d.model.Money(it.UnitPrice), unitRight, baseline, surface.AlignRight, d.pal.Text)
		d.text(fonts.VariantBody, d.model.Money(it.Total), totalRight, baseline, surface.AlignRight, d.pal.Text)

		if !d.l.StripeRows {
			d.rule(y + rh)
		}
	}
}

// rule draws a hairline separator across the content width.
func (d *pageDraw) rule(y float64) {
	d.canvas.DrawRect(surface.Rect{X: d.left(), Y: y - 0.5, W: d.l.ContentWidth(), H: 0.5},
		surface.Filled(tint(d.pal.MutedText, d.pal.Background, 0.35)))
}

func (d *pageDraw) totals() {
	zone := d.plan.TotalsZone
	if zone.H <= 0 {
		return
	}
	m := d.model
	boxW := float64(totalsBoxWidth)
	if boxW > zone.W {
		boxW = zone.W
	}
	labelX := zone.Right() - boxW + cellPadding
	valueX := zone.Right() - cellPadding

	d.canvas.DrawRect(surface.Rect{X: zone.Right() - boxW, Y: zone.Y + 4, W: boxW, H: zone.H - 8},
		surface.Filled(tint(d.pal.Accent, d.pal.Background, 0.06)))

	line := func(v fonts.Variant, label, value string, offset float64, color surface.Color) {
		d.text(v, label, labelX, zone.Y+offset, surface.AlignLeft, color)
		d.text(v, value, valueX, zone.Y+offset, surface.AlignRight, color)
	}
	line(fonts.VariantBody, "Subtotal", m.Money(m.Subtotal), totalsSubtotalOffset, d.pal.Text)
	line(fonts.VariantBody, "Tax", m.Money(m.Tax), totalsTaxOffset, d.pal.Text)
	if !m.Discount.IsZero() {
		line(fonts.VariantBody, "Discount", m.Money(m.Discount.Neg()), totalsDiscountOffset, d.pal.Text)
	}
	d.canvas.DrawRect(surface.Rect{X: labelX, Y: zone.Y + totalsRuleOffset, W: boxW - 2*cellPadding, H: 1}, surface.Filled(d.pal.Primary))
	line(fonts.VariantBodyBold, "Total", m.Money(m.Total), totalsTotalOffset, d.pal.Primary)
}

func (d *pageDraw) footer() {
	zone := d.plan.FooterZone
	if zone.H <= 0 {
		return
	}
	d.paragraph(fonts.VariantBody, d.model.FooterNote, surface.Rect{X: zone.X, Y: zone.Y + 6, W: zone.W, H: zone.H - 6},
		surface.AlignCenter, d.pal.MutedText)
}

func (d *pageDraw) pageNumber() {
	label := fmt.Sprintf("Page %d of %d", d.plan.Index+1, d.plan.TotalPages)
	baseline := d.l.PageHeight - d.l.Margin + d.l.Margin/3
	d.text(fonts.VariantTiny, label, d.right(), baseline, surface.AlignRight, d.pal.MutedText)
	if !d.plan.IsFirstPage {
		d.text(fonts.VariantTiny, d.model.DocumentType+" # "+d.model.Number, d.left(), baseline, surface.AlignLeft, d.pal.MutedText)
	}
}

// tint mixes c into bg; amount 0 yields bg and 1 yields c.
func tint(c, bg surface.Color, amount float64) surface.Color {
	mix := func(a, b uint8) uint8 {
		return uint8(float64(b) + (float64(a)-float64(b))*amount + 0.5)
	}
	return surface.Color{R: mix(c.R, bg.R), G: mix(c.G, bg.G), B: mix(c.B, bg.B)}
}
