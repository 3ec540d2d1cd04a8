// Package grid provides the fixed-size raster container used by the drainage
// resolver and the surrounding file layers.
//
// # Overview
//
// A [Grid] is a row-major two-dimensional array of numeric values with a
// single no-value sentinel. Cells are addressed by (row, col) with row 0 at
// the top (north) edge. For floating-point grids NaN is always treated as
// no-value in addition to the sentinel.
//
// Algorithms consume grids through the read-only [Reader] interface so that
// callers can plug in their own raster storage:
//
//	g := grid.New[float64](rows, cols, -9999)
//	g.Set(1, 2, 104.5)
//	if !g.IsNoValue(1, 2) {
//	    fmt.Println(g.At(1, 2))
//	}
//
// # Linear Indices
//
// [Index] and [RowCol] are the only conversions between (row, col) and the
// 0-based linear index. Every package in this module goes through them.
//
// # Halo
//
// Neighbourhood algorithms expect a one-cell no-value border around the data
// so that 3×3 windows never leave the grid. [Pad] adds that border and [Crop]
// removes it again.
//
// # Concurrency
//
// Grids are not safe for concurrent mutation. Concurrent readers are fine as
// long as nobody writes.
package grid
