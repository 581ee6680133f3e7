package theme

import (
	"strings"

	"go.uber.org/zap"
)

// Resolver maps a design id and an optional accent override to a Theme.
type Resolver struct {
	catalog   *Catalog
	defaultID string
	logger    *zap.Logger
}

// NewResolver creates a resolver. An empty or unknown defaultID falls back to
// the built-in default design.
func NewResolver(catalog *Catalog, defaultID string, logger *zap.Logger) *Resolver {
	if catalog == nil {
		catalog = NewCatalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	defaultID = strings.ToLower(strings.TrimSpace(defaultID))
	if _, ok := catalog.Get(defaultID); !ok {
		if defaultID != "" {
			logger.Warn("Default design not in catalog, using built-in default",
				zap.String("design_id", defaultID))
		}
		defaultID = DefaultDesignID
	}
	return &Resolver{catalog: catalog, defaultID: defaultID, logger: logger}
}

// DefaultID returns the id used for unknown designs.
func (r *Resolver) DefaultID() string { return r.defaultID }

// Catalog returns the underlying catalog.
func (r *Resolver) Catalog() *Catalog { return r.catalog }

// Resolve returns the design for designID. Unknown ids resolve to the default
// design. A valid accent override replaces Primary and Accent only; an
// unparsable one is ignored. Resolve never fails.
func (r *Resolver) Resolve(designID string, accentOverride *string) Theme {
	t, ok := r.catalog.Get(designID)
	if !ok {
		if designID != "" {
			r.logger.Debug("Unknown design, using default",
				zap.String("design_id", designID),
				zap.String("default_id", r.defaultID))
		}
		t, ok = r.catalog.Get(r.defaultID)
		if !ok {
			t = builtinDesigns[DefaultDesignID]
		}
	}

	if accentOverride != nil && strings.TrimSpace(*accentOverride) != "" {
		if hex, valid := NormalizeHex(*accentOverride); valid {
			t.Colors.Primary = hex
			t.Colors.Accent = hex
		} else {
			r.logger.Debug("Ignoring invalid accent override",
				zap.String("accent", *accentOverride))
		}
	}
	return t
}
