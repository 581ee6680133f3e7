package diag

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReport_Add(t *testing.T) {
	t.Run("deduplicates identical diagnostics", func(t *testing.T) {
		r := NewReport()

		assert.True(t, r.Add(ErrFontResolution, "fonts", "Go/title"))
		assert.False(t, r.Add(ErrFontResolution, "fonts", "Go/title"))
		assert.True(t, r.Add(ErrFontResolution, "fonts", "Go/tiny"))

		assert.Equal(t, 2, r.Len())
		assert.True(t, r.Has(ErrFontResolution))
		assert.False(t, r.Has(ErrImageLoad))
	})

	t.Run("nil report ignores writes", func(t *testing.T) {
		var r *Report
		assert.False(t, r.Add(ErrImageLoad, "logo", "missing"))
		assert.Equal(t, 0, r.Len())
		assert.Empty(t, r.Items())
	})

	t.Run("items are ordered independent of insertion", func(t *testing.T) {
		a := NewReport()
		a.Add(ErrDataIncomplete, "document", "number")
		a.Add(ErrImageLoad, "logo", "timeout")

		b := NewReport()
		b.Add(ErrImageLoad, "logo", "timeout")
		b.Add(ErrDataIncomplete, "document", "number")

		assert.Equal(t, a.Items(), b.Items())
	})

	t.Run("concurrent adds are safe", func(t *testing.T) {
		r := NewReport()
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				r.Add(ErrPaginationDegenerate, "layout", "row height 0")
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, r.Len())
	})
}

func TestReport_Merge(t *testing.T) {
	base := NewReport()
	base.Add(ErrDataIncomplete, "document", "date")

	other := NewReport()
	other.Add(ErrDataIncomplete, "document", "date")
	other.Add(ErrFontResolution, "render", "Go/bodyBold")

	base.Merge(other)

	assert.Equal(t, 2, base.Len())
	assert.Equal(t, "font variant could not be resolved", base.Items()[1].KindName())
}
