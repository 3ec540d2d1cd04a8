package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/matzehuels/drainflow/pkg/drainage"
	"github.com/matzehuels/drainflow/pkg/grid"
)

// Options configures network rendering.
type Options struct {
	// MinArea is the smallest accumulated area a cell needs to be drawn.
	// Zero draws every resolved cell.
	MinArea float64
	// Detailed adds the cell position to node labels.
	Detailed bool
}

// ToDOT converts a drainage network to Graphviz DOT. dir and area must have
// the same shape; cells with a no-value direction or area are skipped.
func ToDOT(dir grid.Reader[int], area grid.Reader[float64], opts Options) string {
	rows, cols := dir.Rows(), dir.Cols()
	keep := func(row, col int) bool {
		if row < 0 || row >= rows || col < 0 || col >= cols {
			return false
		}
		if dir.IsNoValue(row, col) || area.IsNoValue(row, col) {
			return false
		}
		return drainage.Direction(dir.At(row, col)).Valid() && area.At(row, col) >= opts.MinArea
	}

	var buf bytes.Buffer
	buf.WriteString("digraph Drainage {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=\"#dbeafe\", color=\"#1d4ed8\", fontname=\"SF Mono, Menlo, monospace\", fontsize=10];\n")
	buf.WriteString("  edge [color=\"#1d4ed8\", arrowsize=0.6];\n\n")

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if !keep(row, col) {
				continue
			}
			a := area.At(row, col)
			label := fmt.Sprintf("%g", a)
			if opts.Detailed {
				label = fmt.Sprintf("%d,%d\n%g", row, col, a)
			}
			attrs := fmt.Sprintf("label=%q", label)
			if drainage.Direction(dir.At(row, col)) == drainage.Outlet {
				attrs += ", shape=doublecircle, fillcolor=\"#1d4ed8\", fontcolor=white"
			}
			fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(row, col), attrs)
		}
	}

	buf.WriteString("\n")
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if !keep(row, col) {
				continue
			}
			dr, dc := drainage.Direction(dir.At(row, col)).Offset()
			if dr == 0 && dc == 0 || !keep(row+dr, col+dc) {
				continue
			}
			fmt.Fprintf(&buf, "  %s -> %s [penwidth=%.2f];\n",
				nodeID(row, col), nodeID(row+dr, col+dc), penWidth(area.At(row, col)))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(row, col int) string {
	return fmt.Sprintf("c%d_%d", row, col)
}

func penWidth(area float64) float64 {
	return 1 + math.Log10(math.Max(area, 1))
}
