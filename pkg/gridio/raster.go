package gridio

import (
	"math"

	"github.com/matzehuels/drainflow/pkg/grid"
)

// DefaultNoData is the no-value sentinel used when a file does not name one.
const DefaultNoData = -9999.0

// Header is the georeferencing of a raster file.
type Header struct {
	XLL, YLL float64
	// Center is true when XLL/YLL give the centre of the lower-left cell
	// rather than its outer corner.
	Center   bool
	CellSize float64
}

// Raster is a decoded grid file.
type Raster struct {
	Header Header
	Grid   *grid.Grid[float64]
}

// Ints converts the raster values to an integer grid with the given
// no-value sentinel.
func (r *Raster) Ints(novalue int) *grid.Grid[int] {
	return grid.Convert[float64, int](r.Grid, novalue)
}

// IntNoData maps a file no-value to an integer sentinel. Values that do not
// survive the conversion fall back to DefaultNoData.
func IntNoData(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return int(DefaultNoData)
	}
	return int(v)
}

// IntGrid converts the raster to an integer grid, deriving the sentinel
// from the file no-value with IntNoData.
func (r *Raster) IntGrid() *grid.Grid[int] {
	return r.Ints(IntNoData(r.Grid.NoValue()))
}

// FromInts wraps an integer grid as a raster with header h.
func FromInts(g grid.Reader[int], h Header) *Raster {
	return &Raster{Header: h, Grid: grid.Convert[int, float64](g, float64(g.NoValue()))}
}

func (h Header) cellSize() float64 {
	if h.CellSize <= 0 {
		return 1
	}
	return h.CellSize
}
