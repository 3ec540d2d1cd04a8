package pipeline

import (
	"encoding/json"

	"github.com/matzehuels/drainflow/pkg/grid"
	"github.com/matzehuels/drainflow/pkg/gridio"
)

// outputJSON is the cache representation of an Output.
type outputJSON struct {
	Header           gridio.Header `json:"header"`
	Summary          Summary       `json:"summary"`
	DirectionNoValue int           `json:"direction_nodata"`
	Direction        []int         `json:"direction"`
	AreaNoValue      float64       `json:"area_nodata"`
	Area             []float64     `json:"area"`
}

func encodeOutput(out *Output) ([]byte, error) {
	return json.Marshal(outputJSON{
		Header:           out.Header,
		Summary:          out.Summary,
		DirectionNoValue: out.Direction.NoValue(),
		Direction:        out.Direction.Data(),
		AreaNoValue:      out.Area.NoValue(),
		Area:             out.Area.Data(),
	})
}

func decodeOutput(data []byte) (*Output, error) {
	var o outputJSON
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	rows, cols := o.Summary.Rows, o.Summary.Cols
	dir, err := grid.FromSlice(rows, cols, o.Direction, o.DirectionNoValue)
	if err != nil {
		return nil, err
	}
	area, err := grid.FromSlice(rows, cols, o.Area, o.AreaNoValue)
	if err != nil {
		return nil, err
	}
	return &Output{Header: o.Header, Direction: dir, Area: area, Summary: o.Summary}, nil
}
