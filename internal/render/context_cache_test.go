package render

import (
	"testing"
	"time"

	"github.com/garyjia/invoice-layout/internal/theme"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestContextCache(t *testing.T) {
	c := NewContextCache(theme.NewResolver(nil, "", zap.NewNop()), fontCache)
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	first := c.Get("classic", nil, "INV-1", date)
	second := c.Get("classic", nil, "INV-1", date)
	assert.Equal(t, first.Key, second.Key)
	assert.Same(t, first.Fonts.Body, second.Fonts.Body)
	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	red := "#FF0000"
	changed := c.Get("classic", &red, "INV-1", date)
	assert.NotEqual(t, first.Key, changed.Key)
	assert.Equal(t, "#FF0000", changed.Theme.Colors.Primary)

	c.Get("classic", &red, "INV-2", date)
	c.Get("classic", &red, "INV-2", date.Add(time.Hour))
	_, misses = c.Stats()
	assert.Equal(t, 4, misses)
}

func TestKeyFor(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	empty := ""

	assert.Equal(t, KeyFor("Go", "classic", nil, "1", date), KeyFor("Go", "classic", nil, "1", date))
	assert.NotEqual(t, KeyFor("Go", "classic", nil, "1", date), KeyFor("Go", "classic", &empty, "1", date))
	assert.NotEqual(t, KeyFor("Go", "classic", nil, "1", date), KeyFor("Go Mono", "classic", nil, "1", date))
	// Field boundaries are part of the key.
	assert.NotEqual(t, KeyFor("Go", "classic", nil, "1", date), KeyFor("Goclassic", "", nil, "1", date))
}
