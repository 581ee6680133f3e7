package diag

import (
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Degradation kinds. None of these ever escape a render: the component that
// detects one records it and keeps drawing a valid page.
var (
	ErrFontResolution       = errors.New("font variant could not be resolved")
	ErrImageLoad            = errors.New("logo image could not be loaded")
	ErrDataIncomplete       = errors.New("document data incomplete")
	ErrPaginationDegenerate = errors.New("pagination geometry degenerate")
)

// Diagnostic is one non-fatal degradation observed during a render pass.
type Diagnostic struct {
	Kind      error  `json:"-"`
	Component string `json:"component"`
	Detail    string `json:"detail"`
}

// KindName returns the message of the diagnostic kind.
func (d Diagnostic) KindName() string {
	if d.Kind == nil {
		return ""
	}
	return d.Kind.Error()
}

// Report collects diagnostics for a single render pass. Safe for concurrent use
// so that pages rendered in parallel can share one report.
type Report struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	items []Diagnostic
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{seen: make(map[string]struct{})}
}

// Add records a diagnostic once; repeated identical diagnostics are dropped.
// It reports whether the diagnostic was new.
func (r *Report) Add(kind error, component, detail string) bool {
	if r == nil {
		return false
	}
	key := kind.Error() + "|" + component + "|" + detail

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[key]; ok {
		return false
	}
	r.seen[key] = struct{}{}
	r.items = append(r.items, Diagnostic{Kind: kind, Component: component, Detail: detail})
	return true
}

// Merge copies every diagnostic of other into r.
func (r *Report) Merge(other *Report) {
	if r == nil || other == nil {
		return
	}
	for _, d := range other.Items() {
		r.Add(d.Kind, d.Component, d.Detail)
	}
}

// Items returns the recorded diagnostics sorted by component then detail, so
// the order does not depend on page scheduling.
func (r *Report) Items() []Diagnostic {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	out := make([]Diagnostic, len(r.items))
	copy(out, r.items)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Component != out[j].Component {
			return out[i].Component < out[j].Component
		}
		return out[i].Detail < out[j].Detail
	})
	return out
}

// Has reports whether a diagnostic of the given kind was recorded.
func (r *Report) Has(kind error) bool {
	for _, d := range r.Items() {
		if errors.Is(d.Kind, kind) {
			return true
		}
	}
	return false
}

// Len returns the number of recorded diagnostics.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Log writes every diagnostic as a warning.
func (r *Report) Log(logger *zap.Logger) {
	for _, d := range r.Items() {
		logger.Warn("Render degraded",
			zap.String("kind", d.KindName()),
			zap.String("component", d.Component),
			zap.String("detail", d.Detail))
	}
}
