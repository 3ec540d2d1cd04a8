package drainage

import (
	"slices"

	"github.com/matzehuels/drainflow/pkg/grid"
)

// Ordering is the processing order of a sweep: linear cell indices sorted
// ascending by elevation. The sweep walks it from the last entry to the first.
type Ordering struct {
	Index []int
	// ValidCount is the number of cells with a valid elevation.
	ValidCount int
}

// NewOrdering sorts all cells of elev by elevation. No-value cells sort below
// every valid cell so the sweep reaches them last. The sort is stable: equal
// elevations keep row-major order.
func NewOrdering(elev grid.Reader[float64]) Ordering {
	rows, cols := elev.Rows(), elev.Cols()
	n := rows * cols
	values := make([]float64, n)
	missing := make([]bool, n)
	idx := make([]int, n)
	valid := 0
	for i := range idx {
		idx[i] = i
		row, col := grid.RowCol(i, cols)
		if elev.IsNoValue(row, col) {
			missing[i] = true
			continue
		}
		values[i] = elev.At(row, col)
		valid++
	}

	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case missing[a] && missing[b]:
			return 0
		case missing[a]:
			return -1
		case missing[b]:
			return 1
		case values[a] < values[b]:
			return -1
		case values[a] > values[b]:
			return 1
		}
		return 0
	})
	return Ordering{Index: idx, ValidCount: valid}
}
