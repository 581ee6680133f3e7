// Package export assembles the pages of a document and encodes them into
// shareable artifacts.
package export

import (
	"context"
	"fmt"

	"github.com/garyjia/invoice-layout/internal/diag"
	"github.com/garyjia/invoice-layout/internal/document"
	"github.com/garyjia/invoice-layout/internal/fonts"
	"github.com/garyjia/invoice-layout/internal/layout"
	"github.com/garyjia/invoice-layout/internal/render"
	"github.com/garyjia/invoice-layout/internal/surface"
	"github.com/garyjia/invoice-layout/internal/theme"
	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"
)

const component = "export"

// Options tunes page assembly.
type Options struct {
	// Parallel renders pages concurrently. Page order is preserved.
	Parallel bool
	// MaxWorkers bounds concurrent page renders; zero means one per CPU.
	MaxWorkers int
}

// Artifact is an assembled document: the inputs it was drawn from, the page
// plans and the sealed pages in page order.
type Artifact struct {
	Model  *document.Model
	Theme  theme.Theme
	Plans  []layout.PagePlan
	Pages  []*surface.Page
	Report *diag.Report
}

// Hash returns the content hash of the page sequence.
func (a *Artifact) Hash() string {
	return surface.HashPages(a.Pages)
}

// Assembler renders every page plan of a document in order.
type Assembler struct {
	fonts    *fonts.Cache
	renderer *render.Renderer
	opts     Options
	logger   *zap.Logger
}

// NewAssembler creates an assembler.
func NewAssembler(fontCache *fonts.Cache, renderer *render.Renderer, opts Options, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fontCache == nil {
		fontCache = fonts.NewCache(nil, logger)
	}
	if renderer == nil {
		renderer = render.NewRenderer(logger)
	}
	return &Assembler{fonts: fontCache, renderer: renderer, opts: opts, logger: logger}
}

// Fonts returns the font cache used for rendering.
func (a *Assembler) Fonts() *fonts.Cache { return a.fonts }

// Assemble renders the document into pages. The only error it returns is the
// context's: on cancellation every partially built page is discarded.
func (a *Assembler) Assemble(ctx context.Context, m *document.Model, th theme.Theme) ([]*surface.Page, error) {
	art, err := a.AssembleArtifact(ctx, m, th)
	if err != nil {
		return nil, err
	}
	return art.Pages, nil
}

// AssembleArtifact is Assemble returning the plans and diagnostics as well.
func (a *Assembler) AssembleArtifact(ctx context.Context, m *document.Model, th theme.Theme) (*Artifact, error) {
	return a.AssembleWithFonts(ctx, m, th, a.fonts.GetFonts(th.FontFamily))
}

// AssembleWithFonts assembles with an already resolved font set.
func (a *Assembler) AssembleWithFonts(ctx context.Context, m *document.Model, th theme.Theme, fs fonts.Set) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m == nil {
		m = &document.Model{}
	}

	report := diag.NewReport()
	for _, d := range m.Issues {
		report.Add(d.Kind, d.Component, d.Detail)
	}

	l := th.Layout
	if layout.Degenerate(l.RowHeight, l.FirstPageAvailable()) {
		report.Add(diag.ErrPaginationDegenerate, component,
			fmt.Sprintf("design %s: row height %.2f, first page height %.2f", th.ID, l.RowHeight, l.FirstPageAvailable()))
	}
	plans := layout.PlanPages(len(m.Items), l)
	if len(plans) > 1 && layout.Degenerate(l.RowHeight, l.ContinuationAvailable()) {
		report.Add(diag.ErrPaginationDegenerate, component,
			fmt.Sprintf("design %s: row height %.2f, continuation height %.2f", th.ID, l.RowHeight, l.ContinuationAvailable()))
	}

	var pages []*surface.Page
	if a.opts.Parallel && len(plans) > 1 {
		// Each page records into its own report; they are merged in page order.
		pageReports := make([]*diag.Report, len(plans))
		for i := range pageReports {
			pageReports[i] = diag.NewReport()
		}
		mapper := iter.Mapper[layout.PagePlan, *surface.Page]{MaxGoroutines: a.opts.MaxWorkers}
		pages = mapper.Map(plans, func(plan *layout.PagePlan) *surface.Page {
			if ctx.Err() != nil {
				return nil
			}
			return a.renderer.RenderWithReport(*plan, m, th, fs, pageReports[plan.Index])
		})
		for _, r := range pageReports {
			report.Merge(r)
		}
	} else {
		pages = make([]*surface.Page, 0, len(plans))
		for _, plan := range plans {
			if ctx.Err() != nil {
				break
			}
			pages = append(pages, a.renderer.RenderWithReport(plan, m, th, fs, report))
		}
	}
	if err := ctx.Err(); err != nil {
		a.logger.Debug("Assembly canceled, discarding pages",
			zap.String("invoice_number", m.Number),
			zap.Int("planned_pages", len(plans)))
		return nil, err
	}

	report.Log(a.logger)
	a.logger.Debug("Document assembled",
		zap.String("invoice_number", m.Number),
		zap.String("design_id", th.ID),
		zap.Int("items", len(m.Items)),
		zap.Int("page_count", len(pages)))

	return &Artifact{Model: m, Theme: th, Plans: plans, Pages: pages, Report: report}, nil
}

// Preview returns the same page sequence as Assemble in serializable form.
func (a *Assembler) Preview(ctx context.Context, m *document.Model, th theme.Theme) ([]surface.PageView, error) {
	pages, err := a.Assemble(ctx, m, th)
	if err != nil {
		return nil, err
	}
	views := make([]surface.PageView, len(pages))
	for i, p := range pages {
		views[i] = p.View()
	}
	return views, nil
}
