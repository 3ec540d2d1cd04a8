package drainage

import (
	"math"

	"github.com/matzehuels/drainflow/pkg/grid"
)

// state is the working set of one Resolve call. Nothing in it outlives the
// call.
type state struct {
	rows, cols int
	elev       grid.Reader[float64]
	old        grid.Reader[int]

	analyzed []bool
	dev      []float64
	dir      []Direction
	area     []float64

	dx, dy, diag float64
	lambda       float64
	metric       Metric

	faults []Fault
}

func newState(in Input, opts Options) *state {
	rows, cols := in.Elevation.Rows(), in.Elevation.Cols()
	n := rows * cols
	return &state{
		rows:     rows,
		cols:     cols,
		elev:     in.Elevation,
		old:      in.OldDirection,
		analyzed: make([]bool, n),
		dev:      make([]float64, n),
		dir:      make([]Direction, n),
		area:     make([]float64, n),
		dx:       opts.CellSizeX,
		dy:       opts.CellSizeY,
		diag:     math.Hypot(opts.CellSizeX, opts.CellSizeY),
		lambda:   opts.Lambda,
		metric:   opts.Metric,
	}
}

func (s *state) cell(i int) Cell {
	row, col := grid.RowCol(i, s.cols)
	return Cell{Row: row, Col: col}
}

// step returns the index of the neighbour of i in direction d. ok is false
// when d is not a flow code or the neighbour lies outside the grid.
func (s *state) step(i int, d Direction) (j int, ok bool) {
	if !d.IsFlow() {
		return 0, false
	}
	row, col := grid.RowCol(i, s.cols)
	dr, dc := d.Offset()
	row, col = row+dr, col+dc
	if row < 0 || row >= s.rows || col < 0 || col >= s.cols {
		return 0, false
	}
	return grid.Index(row, col, s.cols), true
}

// elevation returns the elevation at i and whether it is valid.
func (s *state) elevation(i int) (float64, bool) {
	row, col := grid.RowCol(i, s.cols)
	if s.elev.IsNoValue(row, col) {
		return 0, false
	}
	return s.elev.At(row, col), true
}

// neighbourElevation combines step and elevation.
func (s *state) neighbourElevation(i int, d Direction) (j int, e float64, ok bool) {
	j, ok = s.step(i, d)
	if !ok {
		return 0, 0, false
	}
	e, ok = s.elevation(j)
	return j, e, ok
}

// oldDirection returns the input direction at i, or None when it is no-value.
func (s *state) oldDirection(i int) Direction {
	row, col := grid.RowCol(i, s.cols)
	if s.old.IsNoValue(row, col) {
		return None
	}
	return Direction(s.old.At(row, col))
}

// eligible reports whether i takes part in the sweep.
func (s *state) eligible(i int) bool {
	row, col := grid.RowCol(i, s.cols)
	return !s.elev.IsNoValue(row, col) && !s.old.IsNoValue(row, col)
}

// next follows the current direction of i. It returns -1 at outlets,
// unresolved cells and the grid edge.
func (s *state) next(i int) int {
	j, ok := s.step(i, s.dir[i])
	if !ok {
		return -1
	}
	return j
}

func (s *state) fault(kind FaultKind, i int, detail string) {
	s.faults = append(s.faults, Fault{Kind: kind, Cell: s.cell(i), Detail: detail})
}

// unresolve clears every output of i.
func (s *state) unresolve(i int) {
	s.dir[i] = None
	s.dev[i] = 0
}
