package drainage

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/drainflow/pkg/errors"
	"github.com/matzehuels/drainflow/pkg/grid"
)

// Metric selects how the deviation between a chosen D8 direction and the
// local gradient is measured.
type Metric int

const (
	// MetricAngular measures deviation as an angle (LAD).
	MetricAngular Metric = iota
	// MetricTransversal measures deviation as a distance across the flow
	// line (LTD). Required for fixed-network correction.
	MetricTransversal
)

// ParseMetric parses "angular"/"lad" or "transversal"/"ltd", case-insensitive.
func ParseMetric(s string) (Metric, error) {
	if err := errors.ValidateMetricName(s); err != nil {
		return 0, err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "transversal", "ltd":
		return MetricTransversal, nil
	}
	return MetricAngular, nil
}

func (m Metric) String() string {
	switch m {
	case MetricAngular:
		return "angular"
	case MetricTransversal:
		return "transversal"
	}
	return "unknown"
}

// DefaultCellSize is used for CellSizeX and CellSizeY when they are zero.
const DefaultCellSize = 1.0

// Input bundles the grids consumed by [Resolve]. All grids must have the same
// dimensions and should carry a one-cell no-value halo (see grid.Pad).
type Input struct {
	// Elevation is the pit-filled DEM.
	Elevation grid.Reader[float64]
	// OldDirection supplies directions for flat cells and, with FixedNetwork,
	// the forced directions on the channel network.
	OldDirection grid.Reader[int]
	// Network marks channel cells (any non-no-value cell). Optional.
	Network grid.Reader[int]
}

// Options configures a [Resolve] call.
type Options struct {
	Metric Metric

	// Lambda weights the upstream deviation against the local one.
	// Must be within [0,1].
	Lambda float64

	// FixedNetwork enables the correction pass that forces directions on
	// Input.Network. Transversal metric only.
	FixedNetwork bool

	CellSizeX float64
	CellSizeY float64

	// StrictAbort stops the whole sweep at the first skipped or ambiguous
	// cell instead of marking that cell unresolved and continuing. Only
	// useful for comparing against legacy outputs.
	StrictAbort bool

	// Logger receives progress and warnings. Nil discards output.
	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.CellSizeX == 0 {
		o.CellSizeX = DefaultCellSize
	}
	if o.CellSizeY == 0 {
		o.CellSizeY = DefaultCellSize
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

func (o Options) validate(in Input) error {
	if err := errors.ValidateLambda(o.Lambda); err != nil {
		return err
	}
	if o.Metric != MetricAngular && o.Metric != MetricTransversal {
		return errors.New(errors.ErrCodeInvalidMetric, "unknown metric %d", int(o.Metric))
	}
	if err := errors.ValidateCellSize("x", o.CellSizeX); err != nil {
		return err
	}
	if err := errors.ValidateCellSize("y", o.CellSizeY); err != nil {
		return err
	}

	if in.Elevation == nil {
		return errors.New(errors.ErrCodeInvalidInput, "elevation grid is required")
	}
	if in.OldDirection == nil {
		return errors.New(errors.ErrCodeInvalidInput, "old-direction grid is required")
	}
	if !grid.SameShape(in.Elevation, in.OldDirection) {
		return errors.New(errors.ErrCodeDimensionMismatch, "elevation is %dx%d but old-direction is %dx%d",
			in.Elevation.Rows(), in.Elevation.Cols(), in.OldDirection.Rows(), in.OldDirection.Cols())
	}
	if nv := Direction(in.OldDirection.NoValue()); nv.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "old-direction no-value %d collides with a direction code", int(nv))
	}

	if in.Network != nil && !grid.SameShape(in.Elevation, in.Network) {
		return errors.New(errors.ErrCodeDimensionMismatch, "elevation is %dx%d but network is %dx%d",
			in.Elevation.Rows(), in.Elevation.Cols(), in.Network.Rows(), in.Network.Cols())
	}
	if o.FixedNetwork {
		if in.Network == nil {
			return errors.New(errors.ErrCodeMissingNetwork, "fixed network requested but no network grid given")
		}
		if o.Metric != MetricTransversal {
			return errors.New(errors.ErrCodeInvalidMetric, "fixed network requires the transversal metric")
		}
	}
	return nil
}
