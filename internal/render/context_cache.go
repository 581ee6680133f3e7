package render

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/garyjia/invoice-layout/internal/fonts"
	"github.com/garyjia/invoice-layout/internal/theme"
)

// ContextKey identifies the inputs a render context was resolved from.
type ContextKey string

// KeyFor hashes the fields that determine a render context.
func KeyFor(fontFamily, designID string, accent *string, number string, date time.Time) ContextKey {
	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	write(fontFamily)
	write(designID)
	if accent != nil {
		write("accent:" + *accent)
	} else {
		write("")
	}
	write(number)
	if !date.IsZero() {
		write(date.UTC().Format(time.RFC3339Nano))
	} else {
		write("")
	}
	return ContextKey(hex.EncodeToString(h.Sum(nil)))
}

// Context is a resolved theme with its font set.
type Context struct {
	Key   ContextKey
	Theme theme.Theme
	Fonts fonts.Set
}

// ContextCache keeps the most recent render context and reuses it while the
// key is unchanged. Any change of a key component replaces the entry.
type ContextCache struct {
	resolver *theme.Resolver
	fonts    *fonts.Cache

	mu      sync.Mutex
	current *Context
	hits    int
	misses  int
}

// NewContextCache creates an empty cache.
func NewContextCache(resolver *theme.Resolver, fontCache *fonts.Cache) *ContextCache {
	return &ContextCache{resolver: resolver, fonts: fontCache}
}

// Get returns the context for a design, accent override and invoice identity.
func (c *ContextCache) Get(designID string, accent *string, number string, date time.Time) Context {
	th := c.resolver.Resolve(designID, accent)
	key := KeyFor(th.FontFamily, designID, accent, number, date)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && c.current.Key == key {
		c.hits++
		return *c.current
	}
	c.misses++
	c.current = &Context{Key: key, Theme: th, Fonts: c.fonts.GetFonts(th.FontFamily)}
	return *c.current
}

// Stats returns the hit and miss counts.
func (c *ContextCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
