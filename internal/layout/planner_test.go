package layout

import (
	"math"
	"math/rand"
	"testing"

	"github.com/garyjia/invoice-layout/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertPartition(t *testing.T, n int, plans []PagePlan) {
	t.Helper()
	require.NotEmpty(t, plans)

	next := 0
	for i, p := range plans {
		assert.Equal(t, i, p.Index)
		assert.Equal(t, next, p.Start, "page %d starts after a gap or overlap", i)
		assert.GreaterOrEqual(t, p.End, p.Start)
		assert.Equal(t, i == 0, p.IsFirstPage)
		assert.Equal(t, i == len(plans)-1, p.IsFinalPage)
		assert.Equal(t, len(plans), p.TotalPages)
		if len(plans) > 1 {
			assert.Positive(t, p.Len(), "only a lone page may be empty")
		}
		next = p.End
	}
	assert.Equal(t, n, next)
}

func TestPlan_Boundary(t *testing.T) {
	t.Run("ten items fit one page", func(t *testing.T) {
		plans := Plan(10, 20, 200, 400)
		require.Len(t, plans, 1)
		assert.Equal(t, PagePlan{Start: 0, End: 10, IsFirstPage: true, IsFinalPage: true, TotalPages: 1}, plans[0])
	})

	t.Run("eleven items spill to a second page", func(t *testing.T) {
		plans := Plan(11, 20, 200, 400)
		require.Len(t, plans, 2)

		assert.Equal(t, 0, plans[0].Start)
		assert.Equal(t, 10, plans[0].End)
		assert.True(t, plans[0].IsFirstPage)
		assert.False(t, plans[0].IsFinalPage)

		assert.Equal(t, 10, plans[1].Start)
		assert.Equal(t, 11, plans[1].End)
		assert.False(t, plans[1].IsFirstPage)
		assert.True(t, plans[1].IsFinalPage)
	})
}

func TestPlan_ZeroItems(t *testing.T) {
	plans := Plan(0, 20, 200, 400)
	require.Len(t, plans, 1)
	assert.True(t, plans[0].Empty())
	assert.True(t, plans[0].IsFirstPage)
	assert.True(t, plans[0].IsFinalPage)

	assert.Equal(t, plans, Plan(-3, 20, 200, 400))
}

func TestPlan_ContinuationCapacity(t *testing.T) {
	// 5 on the first page, then 12 per continuation page.
	plans := Plan(30, 10, 55, 120)
	require.Len(t, plans, 4)
	assert.Equal(t, []int{5, 12, 12, 1}, []int{plans[0].Len(), plans[1].Len(), plans[2].Len(), plans[3].Len()})
	assertPartition(t, 30, plans)
}

func TestPlan_Degenerate(t *testing.T) {
	tests := []struct {
		name             string
		row, first, cont float64
		wantPages        int
	}{
		{"zero row height", 0, 200, 400, 3},
		{"negative row height", -5, 200, 400, 3},
		{"NaN row height", math.NaN(), 200, 400, 3},
		{"zero first page", 20, 0, 400, 2},
		{"negative continuation", 20, 200, -1, 1},
		{"row taller than page", 500, 200, 400, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plans := Plan(3, tt.row, tt.first, tt.cont)
			assert.Len(t, plans, tt.wantPages)
			assertPartition(t, 3, plans)
		})
	}

	assert.True(t, Degenerate(0, 100))
	assert.True(t, Degenerate(20, -1))
	assert.True(t, Degenerate(math.NaN(), 100))
	assert.True(t, Degenerate(50, 20))
	assert.False(t, Degenerate(20, 200))
}

func TestPlan_PartitionCompleteness(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		n := rng.Intn(200)
		row := 5 + rng.Float64()*40
		first := rng.Float64() * 600
		cont := first + rng.Float64()*400
		plans := Plan(n, row, first, cont)
		assertPartition(t, n, plans)
	}
}

func TestPlan_Deterministic(t *testing.T) {
	assert.Equal(t, Plan(57, 22, 406, 650), Plan(57, 22, 406, 650))
}

func TestPlanPages_Geometry(t *testing.T) {
	l, ok := theme.NewCatalog().Get("classic")
	require.True(t, ok)
	layout := l.Layout

	maxFirst := int(math.Floor(layout.FirstPageAvailable() / layout.RowHeight))
	plans := PlanPages(maxFirst+1, layout)
	require.Len(t, plans, 2)
	assertPartition(t, maxFirst+1, plans)

	first, last := plans[0], plans[1]
	assert.Equal(t, layout.RowsTop(true), first.RowsTop)
	assert.Equal(t, layout.RowsTop(false), last.RowsTop)
	assert.Equal(t, layout.RowHeight, first.RowHeight)
	assert.NotZero(t, first.HeaderZone.H)
	assert.Zero(t, last.HeaderZone.H)
	assert.Zero(t, first.TotalsZone.H)
	assert.Equal(t, layout.TotalsHeight, last.TotalsZone.H)
	assert.Equal(t, last.TotalsZone.Bottom(), last.FooterZone.Y)

	// The last row on every page ends above the totals zone.
	for _, p := range plans {
		assert.LessOrEqual(t, p.RowY(p.Len()), layout.BodyBottom())
	}
	assert.Equal(t, first.RowsTop+2*layout.RowHeight, first.RowY(2))
}
