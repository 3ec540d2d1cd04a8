// Package pipeline runs drainflow end to end: load the grid files, resolve
// the drainage directions, and produce the output artifacts.
//
// The CLI and any other front end share this package so they apply the same
// defaults, cache keys and output naming.
//
// # Stages
//
//  1. Load: read the elevation, old-direction and optional network grids
//  2. Resolve: pad them with a no-value halo and run [drainage.Resolve]
//  3. Render: crop the halo and encode the requested formats
//
// Resolved results and rendered artifacts are cached by content hash, so a
// rerun with unchanged inputs and options skips the sweep.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Elevation:    "dem.asc",
//	    OldDirection: "flow.asc",
//	    Metric:       "transversal",
//	    Formats:      []string{"asc", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dir := res.Artifacts["direction.asc"]
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/drainflow/pkg/cache"
	"github.com/matzehuels/drainflow/pkg/drainage"
	"github.com/matzehuels/drainflow/pkg/errors"
)

// Defaults shared by the CLI and config files.
const (
	DefaultMetric = "transversal"
	DefaultLambda = 1.0
)

// Output formats.
const (
	FormatASCII = "asc"
	FormatJSON  = "json"
	FormatDOT   = "dot"
	FormatSVG   = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatASCII: true,
	FormatJSON:  true,
	FormatDOT:   true,
	FormatSVG:   true,
}

// Options configures one pipeline run. Field tags match the keys of a TOML
// run file (see [LoadConfig]).
type Options struct {
	// Input grids
	Elevation    string `toml:"elevation" json:"elevation"`
	OldDirection string `toml:"old_direction" json:"old_direction"`
	Network      string `toml:"network,omitempty" json:"network,omitempty"`

	// Algorithm
	Metric       string   `toml:"metric,omitempty" json:"metric,omitempty"`
	Lambda       *float64 `toml:"lambda,omitempty" json:"lambda,omitempty"` // nil means DefaultLambda
	FixedNetwork bool     `toml:"fixed_network,omitempty" json:"fixed_network,omitempty"`
	StrictAbort  bool     `toml:"strict_abort,omitempty" json:"strict_abort,omitempty"`
	// Cell sizes; zero takes the cellsize of the elevation file.
	CellSizeX float64 `toml:"cell_size_x,omitempty" json:"cell_size_x,omitempty"`
	CellSizeY float64 `toml:"cell_size_y,omitempty" json:"cell_size_y,omitempty"`
	Verify    bool    `toml:"verify,omitempty" json:"verify,omitempty"`

	// Output
	Formats  []string `toml:"formats,omitempty" json:"formats,omitempty"`
	MinArea  float64  `toml:"min_area,omitempty" json:"min_area,omitempty"`
	Detailed bool     `toml:"detailed,omitempty" json:"detailed,omitempty"`
	Refresh  bool     `toml:"-" json:"refresh,omitempty"`

	Logger *log.Logger `toml:"-" json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result is the outcome of a pipeline run. Positions in Summary are in file
// coordinates (without the halo).
type Result struct {
	RunID     string
	InputHash string
	Summary   Summary
	// Artifacts are keyed by output file name, e.g. "direction.asc" or
	// "network.svg".
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Summary is the serialisable part of a drainage result.
type Summary struct {
	Rows       int              `json:"rows"`
	Cols       int              `json:"cols"`
	Eligible   int              `json:"eligible"`
	Skipped    int              `json:"skipped"`
	Resolved   int              `json:"resolved"`
	Unresolved int              `json:"unresolved"`
	Corrected  int              `json:"corrected"`
	HasOutlet  bool             `json:"has_outlet"`
	Outlet     drainage.Cell    `json:"outlet"`
	OutletArea float64          `json:"outlet_area,omitempty"`
	Faults     []drainage.Fault `json:"faults,omitempty"`
	Warnings   []string         `json:"warnings,omitempty"`
	Aborted    bool             `json:"aborted,omitempty"`
}

// Stats holds stage timings.
type Stats struct {
	LoadTime    time.Duration
	ResolveTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	ResultHit bool
	RenderHit bool // every requested artifact came from the cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: asc, json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates.
func ParseFormats(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// ValidateAndSetDefaults checks required fields and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Elevation == "" {
		return errors.New(errors.ErrCodeInvalidInput, "elevation grid is required")
	}
	if o.OldDirection == "" {
		return errors.New(errors.ErrCodeInvalidInput, "old direction grid is required")
	}
	for _, p := range []string{o.Elevation, o.OldDirection, o.Network} {
		if p == "" {
			continue
		}
		if err := errors.ValidateGridPath(p); err != nil {
			return err
		}
	}

	if o.Metric == "" {
		o.Metric = DefaultMetric
	}
	if err := errors.ValidateMetricName(o.Metric); err != nil {
		return err
	}
	if o.Lambda == nil {
		l := DefaultLambda
		o.Lambda = &l
	}
	if err := errors.ValidateLambda(*o.Lambda); err != nil {
		return err
	}
	if o.FixedNetwork && o.Network == "" {
		return errors.New(errors.ErrCodeMissingNetwork, "fixed network correction needs a network grid")
	}
	if o.CellSizeX != 0 {
		if err := errors.ValidateCellSize("x", o.CellSizeX); err != nil {
			return err
		}
	}
	if o.CellSizeY != 0 {
		if err := errors.ValidateCellSize("y", o.CellSizeY); err != nil {
			return err
		}
	}
	if o.MinArea < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "min area must not be negative, got %g", o.MinArea)
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatASCII}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LambdaValue returns the configured lambda or DefaultLambda.
func (o *Options) LambdaValue() float64 {
	if o.Lambda == nil {
		return DefaultLambda
	}
	return *o.Lambda
}

// drainageOptions maps the run options onto the core options. cellSize is
// the file cellsize used when no explicit size is set.
func (o *Options) drainageOptions(cellSize float64) (drainage.Options, error) {
	metric, err := drainage.ParseMetric(o.Metric)
	if err != nil {
		return drainage.Options{}, err
	}
	dx, dy := o.CellSizeX, o.CellSizeY
	if dx == 0 {
		dx = cellSize
	}
	if dy == 0 {
		dy = cellSize
	}
	return drainage.Options{
		Metric:       metric,
		Lambda:       o.LambdaValue(),
		FixedNetwork: o.FixedNetwork,
		CellSizeX:    dx,
		CellSizeY:    dy,
		StrictAbort:  o.StrictAbort,
		Logger:       o.Logger,
	}, nil
}

// ResultKeyOpts returns cache key options for a resolved result.
func ResultKeyOpts(d drainage.Options) cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		Metric:       d.Metric.String(),
		Lambda:       d.Lambda,
		FixedNetwork: d.FixedNetwork,
		StrictAbort:  d.StrictAbort,
		CellSizeX:    d.CellSizeX,
		CellSizeY:    d.CellSizeY,
	}
}

// ArtifactKeyOpts returns cache key options for a rendered artifact.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		MinArea:  o.MinArea,
		Detailed: o.Detailed,
	}
}

// String summarises the algorithm options for log lines.
func (o *Options) String() string {
	return fmt.Sprintf("metric=%s lambda=%g fixed_network=%t", o.Metric, o.LambdaValue(), o.FixedNetwork)
}
