package drainage

import (
	"fmt"

	"github.com/matzehuels/drainflow/pkg/grid"
)

// Cell is a (row, col) grid position.
type Cell struct {
	Row, Col int
}

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.Row, c.Col) }

// FaultKind classifies why a cell was left unresolved.
type FaultKind int

const (
	// FaultCycle: following existing directions from the cell led back to it.
	FaultCycle FaultKind = iota
	// FaultAmbiguous: neither candidate direction of the steepest facet
	// descends.
	FaultAmbiguous
	// FaultBadDirection: a flat cell inherited a code that is not a D8 code.
	FaultBadDirection
	// FaultStepBudget: a chain walk did not terminate within rows×cols steps.
	FaultStepBudget
)

func (k FaultKind) String() string {
	switch k {
	case FaultCycle:
		return "cycle"
	case FaultAmbiguous:
		return "ambiguous"
	case FaultBadDirection:
		return "bad-direction"
	case FaultStepBudget:
		return "step-budget"
	}
	return "unknown"
}

// Fault records a cell that could not be resolved.
type Fault struct {
	Kind   FaultKind
	Cell   Cell
	Detail string
}

func (f Fault) String() string {
	if f.Detail == "" {
		return fmt.Sprintf("%s at %s", f.Kind, f.Cell)
	}
	return fmt.Sprintf("%s at %s: %s", f.Kind, f.Cell, f.Detail)
}

// Result is the outcome of [Resolve].
type Result struct {
	// Direction holds D8 codes, Outlet, or the old-direction no-value where
	// a cell is unresolved.
	Direction *grid.Grid[int]
	// Area is the accumulated upstream area in cells (≥ 1), or the
	// elevation no-value where Direction is unresolved.
	Area *grid.Grid[float64]

	// Eligible counts cells with valid elevation and old direction.
	Eligible int
	// Skipped counts cells with a valid elevation but no old direction.
	Skipped    int
	Resolved   int
	Unresolved int
	// Corrected counts cells whose direction the network pass changed.
	Corrected int

	Outlet    Cell
	HasOutlet bool

	Faults   []Fault
	Warnings []string

	// Partial is set when the context was cancelled during the sweep.
	Partial bool
	// Aborted is set when StrictAbort stopped the sweep early.
	Aborted bool
}
