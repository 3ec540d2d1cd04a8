package drainage

import (
	"fmt"
	"math"

	"github.com/matzehuels/drainflow/pkg/errors"
	"github.com/matzehuels/drainflow/pkg/grid"
)

// Violation is one cell that breaks a drainage invariant.
type Violation struct {
	Cell   Cell
	Reason string
}

func (v Violation) String() string { return fmt.Sprintf("%s: %s", v.Cell, v.Reason) }

// areaTolerance is the relative tolerance of [CheckAccumulation].
const areaTolerance = 1e-9

// CheckAcyclic follows the direction of every cell and reports one violation
// per cycle. Paths end at no-value cells, outlets, non-flow codes and the grid
// edge.
func CheckAcyclic(dir grid.Reader[int]) []Violation {
	rows, cols := dir.Rows(), dir.Cols()
	var out []Violation
	for _, cycle := range cycles(rows*cols, readerNext(dir)) {
		row, col := grid.RowCol(cycle[0], cols)
		out = append(out, Violation{
			Cell:   Cell{Row: row, Col: col},
			Reason: fmt.Sprintf("cycle of %d cells", len(cycle)),
		})
	}
	return out
}

// CheckAccumulation verifies that the area of every resolved cell equals one
// plus the areas of the neighbours draining into it.
func CheckAccumulation(dir grid.Reader[int], area grid.Reader[float64]) ([]Violation, error) {
	if !grid.SameShape(dir, area) {
		return nil, errors.New(errors.ErrCodeDimensionMismatch, "direction is %dx%d but area is %dx%d",
			dir.Rows(), dir.Cols(), area.Rows(), area.Cols())
	}
	rows, cols := dir.Rows(), dir.Cols()
	var out []Violation
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if dir.IsNoValue(row, col) || !Direction(dir.At(row, col)).Valid() {
				continue
			}
			at := Cell{Row: row, Col: col}
			if area.IsNoValue(row, col) {
				out = append(out, Violation{Cell: at, Reason: "resolved cell has no area"})
				continue
			}

			want := 1.0
			for _, d := range neighbours {
				dr, dc := d.Offset()
				r, c := row+dr, col+dc
				if r < 0 || r >= rows || c < 0 || c >= cols || dir.IsNoValue(r, c) || area.IsNoValue(r, c) {
					continue
				}
				if Direction(dir.At(r, c)) == d.Opposite() {
					want += area.At(r, c)
				}
			}
			got := area.At(row, col)
			if math.Abs(got-want) > areaTolerance*math.Max(1, want) {
				out = append(out, Violation{Cell: at, Reason: fmt.Sprintf("area %g, upstream sum %g", got, want)})
			}
		}
	}
	return out, nil
}

// Verify runs both checks on a result and returns an INTERNAL_ERROR listing
// the first violations, or nil.
func Verify(res *Result) error {
	violations := CheckAcyclic(res.Direction)
	acc, err := CheckAccumulation(res.Direction, res.Area)
	if err != nil {
		return err
	}
	violations = append(violations, acc...)
	if len(violations) == 0 {
		return nil
	}
	const shown = 3
	msg := fmt.Sprintf("%d invariant violations", len(violations))
	for i, v := range violations {
		if i == shown {
			msg += ", ..."
			break
		}
		msg += "; " + v.String()
	}
	return errors.New(errors.ErrCodeInternal, "%s", msg)
}

func readerNext(dir grid.Reader[int]) func(int) int {
	rows, cols := dir.Rows(), dir.Cols()
	return func(i int) int {
		row, col := grid.RowCol(i, cols)
		if dir.IsNoValue(row, col) {
			return -1
		}
		dr, dc := Direction(dir.At(row, col)).Offset()
		if dr == 0 && dc == 0 {
			return -1
		}
		row, col = row+dr, col+dc
		if row < 0 || row >= rows || col < 0 || col >= cols {
			return -1
		}
		return grid.Index(row, col, cols)
	}
}

// cycles returns the members of every cycle of the functional graph next over
// cells 0..n-1. next returns -1 where a path ends. Each cell is visited once.
func cycles(n int, next func(int) int) [][]int {
	const done = -1
	mark := make([]int, n) // 0 unvisited, done, or walk id
	var out [][]int
	for start := 0; start < n; start++ {
		if mark[start] != 0 {
			continue
		}
		id := start + 1
		i := start
		for i >= 0 && mark[i] == 0 {
			mark[i] = id
			i = next(i)
		}
		if i >= 0 && mark[i] == id {
			cycle := []int{i}
			for j := next(i); j != i; j = next(j) {
				cycle = append(cycle, j)
			}
			out = append(out, cycle)
		}
		for j := start; j >= 0 && mark[j] == id; j = next(j) {
			mark[j] = done
		}
	}
	return out
}
