package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSize is returned when a grid is requested with a non-positive
	// number of rows or columns.
	ErrInvalidSize = errors.New("grid dimensions must be positive")

	// ErrRaggedRows is returned by [FromRows] when the input rows do not all
	// have the same length.
	ErrRaggedRows = errors.New("rows have different lengths")

	// ErrDimensionMismatch is returned when two grids that must share a shape
	// do not, or when a backing slice does not match rows×cols.
	ErrDimensionMismatch = errors.New("grid dimensions do not match")
)

// Value is the set of element types a Grid can hold.
type Value interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~float32 | ~float64
}

// Reader is read-only access to a grid. It is the contract the drainage
// resolver depends on; [Grid] is the in-memory implementation.
type Reader[T Value] interface {
	Rows() int
	Cols() int
	At(row, col int) T
	IsNoValue(row, col int) bool
	NoValue() T
}

// Grid is a row-major raster with a no-value sentinel.
//
// The zero value is an empty 0×0 grid. Use [New], [FromRows] or [FromSlice]
// to create a usable one.
type Grid[T Value] struct {
	rows, cols int
	novalue    T
	data       []T
}

// New returns a rows×cols grid filled with novalue.
// It panics if either dimension is not positive.
func New[T Value](rows, cols int, novalue T) *Grid[T] {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("grid.New: %v: %dx%d", ErrInvalidSize, rows, cols))
	}
	g := &Grid[T]{rows: rows, cols: cols, novalue: novalue, data: make([]T, rows*cols)}
	g.Fill(novalue)
	return g
}

// FromRows builds a grid from a slice of equally sized rows. The input is
// copied.
func FromRows[T Value](rows [][]T, novalue T) (*Grid[T], error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrInvalidSize
	}
	nr, nc := len(rows), len(rows[0])
	data := make([]T, 0, nr*nc)
	for r, row := range rows {
		if len(row) != nc {
			return nil, fmt.Errorf("row %d: %w", r, ErrRaggedRows)
		}
		data = append(data, row...)
	}
	return &Grid[T]{rows: nr, cols: nc, novalue: novalue, data: data}, nil
}

// FromSlice wraps a row-major backing slice without copying it.
func FromSlice[T Value](rows, cols int, data []T, novalue T) (*Grid[T], error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidSize
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrDimensionMismatch, len(data), rows, cols)
	}
	return &Grid[T]{rows: rows, cols: cols, novalue: novalue, data: data}, nil
}

// Rows returns the number of rows.
func (g *Grid[T]) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid[T]) Cols() int { return g.cols }

// Len returns rows×cols.
func (g *Grid[T]) Len() int { return len(g.data) }

// NoValue returns the no-value sentinel.
func (g *Grid[T]) NoValue() T { return g.novalue }

// Data exposes the row-major backing slice. Writes through it are visible in
// the grid.
func (g *Grid[T]) Data() []T { return g.data }

// InBounds reports whether (row, col) addresses a cell of g.
func (g *Grid[T]) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// At returns the value at (row, col). It panics when out of bounds.
func (g *Grid[T]) At(row, col int) T {
	return g.data[Index(row, col, g.cols)]
}

// Set stores v at (row, col). It panics when out of bounds.
func (g *Grid[T]) Set(row, col int, v T) {
	g.data[Index(row, col, g.cols)] = v
}

// SetNoValue marks (row, col) as missing.
func (g *Grid[T]) SetNoValue(row, col int) {
	g.Set(row, col, g.novalue)
}

// IsNoValue reports whether (row, col) holds the sentinel (or NaN).
func (g *Grid[T]) IsNoValue(row, col int) bool {
	return g.isNoValue(g.At(row, col))
}

func (g *Grid[T]) isNoValue(v T) bool {
	return v != v || v == g.novalue // v != v only for NaN
}

// Fill sets every cell to v.
func (g *Grid[T]) Fill(v T) {
	for i := range g.data {
		g.data[i] = v
	}
}

// ValidCount returns the number of cells that are not no-value.
func (g *Grid[T]) ValidCount() int {
	n := 0
	for _, v := range g.data {
		if !g.isNoValue(v) {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of g.
func (g *Grid[T]) Clone() *Grid[T] {
	data := make([]T, len(g.data))
	copy(data, g.data)
	return &Grid[T]{rows: g.rows, cols: g.cols, novalue: g.novalue, data: data}
}

// SameShape reports whether a and b have identical dimensions.
func SameShape[A, B Value](a Reader[A], b Reader[B]) bool {
	return a.Rows() == b.Rows() && a.Cols() == b.Cols()
}

// Copy materialises any Reader into a Grid.
func Copy[T Value](r Reader[T]) *Grid[T] {
	if g, ok := r.(*Grid[T]); ok {
		return g.Clone()
	}
	out := New(r.Rows(), r.Cols(), r.NoValue())
	for row := 0; row < r.Rows(); row++ {
		for col := 0; col < r.Cols(); col++ {
			if !r.IsNoValue(row, col) {
				out.Set(row, col, r.At(row, col))
			}
		}
	}
	return out
}

// Convert copies g into a grid of another element type. No-value cells map
// to novalue; other values are converted with a plain Go conversion.
func Convert[S, T Value](g Reader[S], novalue T) *Grid[T] {
	out := New(g.Rows(), g.Cols(), novalue)
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			if !g.IsNoValue(row, col) {
				out.Set(row, col, T(g.At(row, col)))
			}
		}
	}
	return out
}

// Pad returns a copy of g surrounded by a one-cell no-value border.
func Pad[T Value](g Reader[T]) *Grid[T] {
	out := New(g.Rows()+2, g.Cols()+2, g.NoValue())
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			if !g.IsNoValue(row, col) {
				out.Set(row+1, col+1, g.At(row, col))
			}
		}
	}
	return out
}

// Crop removes the one-cell border added by [Pad].
// It returns ErrInvalidSize if g is too small to have a border.
func Crop[T Value](g Reader[T]) (*Grid[T], error) {
	if g.Rows() < 3 || g.Cols() < 3 {
		return nil, ErrInvalidSize
	}
	out := New(g.Rows()-2, g.Cols()-2, g.NoValue())
	for row := 1; row < g.Rows()-1; row++ {
		for col := 1; col < g.Cols()-1; col++ {
			if !g.IsNoValue(row, col) {
				out.Set(row-1, col-1, g.At(row, col))
			}
		}
	}
	return out, nil
}

// Ensure Grid implements Reader.
var (
	_ Reader[float64] = (*Grid[float64])(nil)
	_ Reader[int]     = (*Grid[int])(nil)
)
