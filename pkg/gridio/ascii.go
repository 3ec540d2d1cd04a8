package gridio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/drainflow/pkg/errors"
	"github.com/matzehuels/drainflow/pkg/grid"
)

// maxTokenSize bounds a single whitespace-separated token.
const maxTokenSize = 1 << 20

// MaxCells is the largest ncols×nrows ReadASCII accepts.
const MaxCells = 1 << 28

// ReadASCII decodes an ESRI ASCII grid from r.
//
// ReadASCII returns an INVALID_FORMAT error if a header key is unknown or
// missing a value, if ncols or nrows is not positive, if ncols×nrows exceeds
// [MaxCells], or if the number of values does not match ncols×nrows.
// ReadASCII does not close r.
func ReadASCII(r io.Reader) (*Raster, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxTokenSize)
	sc.Split(bufio.ScanWords)

	var (
		h          Header
		rows, cols int
		nodata     = DefaultNoData
		first      string
	)
	for sc.Scan() {
		tok := sc.Text()
		if _, err := strconv.ParseFloat(tok, 64); err == nil {
			first = tok
			break
		}
		key := strings.ToLower(tok)
		if !sc.Scan() {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "header key %q has no value", tok)
		}
		val := sc.Text()
		var err error
		switch key {
		case "ncols":
			cols, err = strconv.Atoi(val)
		case "nrows":
			rows, err = strconv.Atoi(val)
		case "xllcorner", "xllcenter":
			h.XLL, err = strconv.ParseFloat(val, 64)
			h.Center = key == "xllcenter"
		case "yllcorner", "yllcenter":
			h.YLL, err = strconv.ParseFloat(val, 64)
		case "cellsize":
			h.CellSize, err = strconv.ParseFloat(val, 64)
		case "nodata_value":
			nodata, err = strconv.ParseFloat(val, 64)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown header key %q", tok)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "header %s", key)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read header")
	}
	if rows <= 0 || cols <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "ncols and nrows must be positive, got %dx%d", cols, rows)
	}
	if rows > MaxCells/cols {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "%dx%d grid exceeds %d cells", cols, rows, MaxCells)
	}

	n := rows * cols
	data := make([]float64, 0, n)
	add := func(tok string) error {
		if len(data) == n {
			return errors.New(errors.ErrCodeInvalidFormat, "more than %d values", n)
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "value %d", len(data)+1)
		}
		data = append(data, v)
		return nil
	}
	if first != "" {
		if err := add(first); err != nil {
			return nil, err
		}
	}
	for sc.Scan() {
		if err := add(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read values")
	}
	if len(data) != n {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "expected %d values for %dx%d, got %d", n, rows, cols, len(data))
	}

	g, err := grid.FromSlice(rows, cols, data, nodata)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "build grid")
	}
	return &Raster{Header: h, Grid: g}, nil
}

// WriteASCII encodes r as an ESRI ASCII grid. No-value cells are written as
// the grid's sentinel, or [DefaultNoData] when the sentinel is NaN.
func WriteASCII(r *Raster, w io.Writer) error {
	g := r.Grid
	nodata := g.NoValue()
	if math.IsNaN(nodata) {
		nodata = DefaultNoData
	}
	xkey, ykey := "xllcorner", "yllcorner"
	if r.Header.Center {
		xkey, ykey = "xllcenter", "yllcenter"
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols        %d\n", g.Cols())
	fmt.Fprintf(bw, "nrows        %d\n", g.Rows())
	fmt.Fprintf(bw, "%-12s %s\n", xkey, formatValue(r.Header.XLL))
	fmt.Fprintf(bw, "%-12s %s\n", ykey, formatValue(r.Header.YLL))
	fmt.Fprintf(bw, "cellsize     %s\n", formatValue(r.Header.cellSize()))
	fmt.Fprintf(bw, "NODATA_value %s\n", formatValue(nodata))

	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			if col > 0 {
				bw.WriteByte(' ')
			}
			v := g.At(row, col)
			if g.IsNoValue(row, col) {
				v = nodata
			}
			bw.WriteString(formatValue(v))
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
