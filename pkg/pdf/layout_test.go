// pkg/pdf/layout_test.go
package pdf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dattu/paperback/pkg/plan"
	"github.com/dattu/paperback/pkg/qr"
)

func defaultOptions() LayoutOptions {
	return LayoutOptions{
		Paper:        PaperA4,
		MarginTop:    4.32,
		MarginRight:  4.32,
		MarginBottom: 4.32,
		MarginLeft:   4.32,
		ModuleLength: 1.0,
		MinRows:      3,
		MinLevel:     qr.ECQuartile,
		MetaTextLen:  100,
	}
}

func TestComputeLayoutDefaults(t *testing.T) {
	l, err := ComputeLayout(defaultOptions())
	require.NoError(t, err)

	require.GreaterOrEqual(t, l.Cols, 3)
	require.GreaterOrEqual(t, l.Rows, 1)
	require.GreaterOrEqual(t, l.Version, 1)
	require.LessOrEqual(t, l.Version, 40)
	require.GreaterOrEqual(t, l.Level, qr.ECQuartile)
	require.GreaterOrEqual(t, l.SmallCells, 1)

	// The grid actually fits on the page.
	require.LessOrEqual(t, float64(l.Cols)*l.CellMM, 210.0-2*4.32+1e-9)
	require.LessOrEqual(t, l.GridTopMM+float64(l.Rows)*l.CellMM, 297.0-4.32+1e-9)

	// The geometry carries a usable shard capacity.
	g := l.Geometry()
	require.Equal(t, qr.AlnumCapacity(l.Version, l.Level), g.LargeCapacity)
	require.Positive(t, plan.MaxShardSize(g.LargeCapacity))
}

func TestComputeLayoutLetter(t *testing.T) {
	opts := defaultOptions()
	opts.Paper = PaperLetter
	l, err := ComputeLayout(opts)
	require.NoError(t, err)
	require.Equal(t, 215.9, l.PageW)
}

func TestComputeLayoutModuleLengthTradeoff(t *testing.T) {
	small, err := ComputeLayout(defaultOptions())
	require.NoError(t, err)

	opts := defaultOptions()
	opts.ModuleLength = 0.5
	dense, err := ComputeLayout(opts)
	require.NoError(t, err)

	// Smaller modules pack at least as many shard bytes per page.
	smallScore := plan.MaxShardSize(small.Geometry().LargeCapacity) * small.Cols * small.Rows
	denseScore := plan.MaxShardSize(dense.Geometry().LargeCapacity) * dense.Cols * dense.Rows
	require.GreaterOrEqual(t, denseScore, smallScore)
}

func TestComputeLayoutRejects(t *testing.T) {
	opts := defaultOptions()
	opts.ModuleLength = 50 // one module is a quarter of the page
	_, err := ComputeLayout(opts)
	require.Error(t, err)

	opts = defaultOptions()
	opts.Paper = PaperSize("a3")
	_, err = ComputeLayout(opts)
	require.Error(t, err)

	opts = defaultOptions()
	opts.ModuleLength = 0
	_, err = ComputeLayout(opts)
	require.Error(t, err)

	opts = defaultOptions()
	opts.MarginLeft = 300
	_, err = ComputeLayout(opts)
	require.Error(t, err)
}
