package gridio

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/matzehuels/drainflow/pkg/errors"
	"github.com/matzehuels/drainflow/pkg/grid"
)

type jsonGrid struct {
	Rows     int         `json:"rows"`
	Cols     int         `json:"cols"`
	XLL      float64     `json:"xll,omitempty"`
	YLL      float64     `json:"yll,omitempty"`
	Center   bool        `json:"center,omitempty"`
	CellSize float64     `json:"cellsize,omitempty"`
	NoData   *float64    `json:"nodata,omitempty"`
	Values   [][]float64 `json:"values"`
}

// ReadJSON decodes a JSON grid from r. rows and cols must match the shape of
// values. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Raster, error) {
	var data jsonGrid
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}
	if data.Rows != len(data.Values) {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "rows is %d but values has %d rows", data.Rows, len(data.Values))
	}
	nodata := DefaultNoData
	if data.NoData != nil {
		nodata = *data.NoData
	}
	g, err := grid.FromRows(data.Values, nodata)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "values")
	}
	if g.Cols() != data.Cols {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "cols is %d but values has %d columns", data.Cols, g.Cols())
	}
	return &Raster{
		Header: Header{XLL: data.XLL, YLL: data.YLL, Center: data.Center, CellSize: data.CellSize},
		Grid:   g,
	}, nil
}

// WriteJSON encodes r as an indented JSON grid.
func WriteJSON(r *Raster, w io.Writer) error {
	g := r.Grid
	nodata := g.NoValue()
	if math.IsNaN(nodata) {
		nodata = DefaultNoData
	}
	out := jsonGrid{
		Rows:     g.Rows(),
		Cols:     g.Cols(),
		XLL:      r.Header.XLL,
		YLL:      r.Header.YLL,
		Center:   r.Header.Center,
		CellSize: r.Header.cellSize(),
		NoData:   &nodata,
		Values:   make([][]float64, g.Rows()),
	}
	for row := range out.Values {
		out.Values[row] = make([]float64, g.Cols())
		for col := range out.Values[row] {
			if g.IsNoValue(row, col) {
				out.Values[row][col] = nodata
				continue
			}
			out.Values[row][col] = g.At(row, col)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
