// Package fonts builds and memoizes the font variants used by the page renderer.
package fonts

import (
	"sort"
	"sync"

	"github.com/garyjia/invoice-layout/internal/surface"
	"go.uber.org/zap"
	"golang.org/x/image/font/opentype"
)

// Cache memoizes one Set per distinct family string.
type Cache struct {
	matcher Matcher
	logger  *zap.Logger

	mu   sync.Mutex
	sets map[string]Set
}

// NewCache creates a font cache backed by matcher.
func NewCache(matcher Matcher, logger *zap.Logger) *Cache {
	if matcher == nil {
		matcher = BuiltinMatcher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		matcher: matcher,
		logger:  logger,
		sets:    make(map[string]Set),
	}
}

// GetFonts returns the variant set for family, building it on first use.
// Variants that cannot be matched or parsed are left nil and logged once.
func (c *Cache) GetFonts(family string) Set {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.sets[family]; ok {
		return s
	}
	s := c.build(family)
	c.sets[family] = s
	return s
}

func (c *Cache) build(family string) Set {
	set := Set{Family: family}
	parsed := map[bool]*opentype.Font{}
	raw := map[bool][]byte{}
	failed := map[bool]error{}

	for _, spec := range variantSpecs {
		if err, ok := failed[spec.bold]; ok {
			c.logFailure(family, spec.variant, err)
			continue
		}
		f, ok := parsed[spec.bold]
		if !ok {
			ttf, err := c.matcher.Match(family, spec.bold)
			if err == nil {
				f, err = opentype.Parse(ttf)
			}
			if err != nil {
				failed[spec.bold] = err
				c.logFailure(family, spec.variant, err)
				continue
			}
			parsed[spec.bold] = f
			raw[spec.bold] = ttf
		}

		face, err := newFace(family, spec, raw[spec.bold], f)
		if err != nil {
			c.logFailure(family, spec.variant, err)
			continue
		}
		set.put(spec.variant, face)
	}

	c.logger.Debug("Font set built",
		zap.String("family", family),
		zap.Int("missing", len(set.Missing())))
	return set
}

func (c *Cache) logFailure(family string, v Variant, err error) {
	c.logger.Warn("Font variant unavailable, text in this variant will be skipped",
		zap.String("family", family),
		zap.String("variant", string(v)),
		zap.Error(err))
}

// Lookup returns the face a recorded text run refers to, or nil.
func (c *Cache) Lookup(ref surface.FontRef) *Face {
	return c.GetFonts(ref.Family).Get(Variant(ref.Variant))
}

// Families returns the families built so far.
func (c *Cache) Families() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.sets))
	for f := range c.sets {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
