// Package layout partitions invoice line items across fixed-size pages.
package layout

import (
	"math"

	"github.com/garyjia/invoice-layout/internal/surface"
	"github.com/garyjia/invoice-layout/internal/theme"
)

// PagePlan assigns an item range and a role to one output page.
type PagePlan struct {
	Index       int  `json:"index"`
	Start       int  `json:"start"`
	End         int  `json:"end"`
	IsFirstPage bool `json:"is_first_page"`
	IsFinalPage bool `json:"is_final_page"`
	TotalPages  int  `json:"total_pages"`

	// Geometry, set by PlanPages.
	TableTop   float64      `json:"table_top"`
	RowsTop    float64      `json:"rows_top"`
	RowHeight  float64      `json:"row_height"`
	HeaderZone surface.Rect `json:"header_zone"`
	TotalsZone surface.Rect `json:"totals_zone"`
	FooterZone surface.Rect `json:"footer_zone"`
}

// Len returns the number of items on the page.
func (p PagePlan) Len() int { return p.End - p.Start }

// Empty reports whether the page holds no items.
func (p PagePlan) Empty() bool { return p.End <= p.Start }

// RowY returns the top of the i-th row within the page.
func (p PagePlan) RowY(i int) float64 {
	return p.RowsTop + float64(i)*p.RowHeight
}

// Degenerate reports whether a row height and available height pair forces
// the one-item-per-page clamp.
func Degenerate(rowHeight, available float64) bool {
	return !(rowHeight > 0) || !(available > 0) || math.IsInf(rowHeight, 0) || math.IsInf(available, 0) || available < rowHeight
}

func capacity(rowHeight, available float64) int {
	if !(rowHeight > 0) || !(available > 0) || math.IsInf(rowHeight, 0) {
		return 1
	}
	n := math.Floor(available / rowHeight)
	if n < 1 {
		return 1
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// Plan partitions itemCount items into pages. The first page holds up to
// floor(firstAvail/rowHeight) items and each continuation page up to
// floor(contAvail/rowHeight), both clamped to at least one. Zero items yield a
// single empty page that is both first and final.
func Plan(itemCount int, rowHeight, firstAvail, contAvail float64) []PagePlan {
	if itemCount < 0 {
		itemCount = 0
	}
	maxFirst := capacity(rowHeight, firstAvail)

	if itemCount <= maxFirst {
		return []PagePlan{{
			Index:       0,
			Start:       0,
			End:         itemCount,
			IsFirstPage: true,
			IsFinalPage: true,
			TotalPages:  1,
		}}
	}

	maxCont := capacity(rowHeight, contAvail)
	remaining := itemCount - maxFirst
	total := 1 + (remaining+maxCont-1)/maxCont

	plans := make([]PagePlan, 0, total)
	plans = append(plans, PagePlan{Index: 0, Start: 0, End: maxFirst, IsFirstPage: true})
	for start := maxFirst; start < itemCount; start += maxCont {
		end := start + maxCont
		if end > itemCount {
			end = itemCount
		}
		plans = append(plans, PagePlan{Index: len(plans), Start: start, End: end})
	}
	plans[len(plans)-1].IsFinalPage = true
	for i := range plans {
		plans[i].TotalPages = len(plans)
	}
	return plans
}

// PlanPages plans itemCount items against a design's page geometry and
// attaches the zone geometry each page is drawn with.
func PlanPages(itemCount int, l theme.Layout) []PagePlan {
	plans := Plan(itemCount, l.RowHeight, l.FirstPageAvailable(), l.ContinuationAvailable())

	width := l.ContentWidth()
	totalsTop := l.BodyBottom()
	for i := range plans {
		p := &plans[i]
		p.TableTop = l.TableHeaderTop(p.IsFirstPage)
		p.RowsTop = l.RowsTop(p.IsFirstPage)
		p.RowHeight = l.RowHeight
		if p.IsFirstPage {
			p.HeaderZone = surface.Rect{X: l.Margin, Y: l.Margin, W: width, H: l.HeaderHeight + l.PartyHeight}
		}
		if p.IsFinalPage {
			p.TotalsZone = surface.Rect{X: l.Margin, Y: totalsTop, W: width, H: l.TotalsHeight}
			p.FooterZone = surface.Rect{X: l.Margin, Y: totalsTop + l.TotalsHeight, W: width, H: l.FooterHeight}
		}
	}
	return plans
}
