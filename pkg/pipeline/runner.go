package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/drainflow/pkg/cache"
	"github.com/matzehuels/drainflow/pkg/drainage"
	"github.com/matzehuels/drainflow/pkg/grid"
	"github.com/matzehuels/drainflow/pkg/gridio"
	"github.com/matzehuels/drainflow/pkg/observability"
)

// Runner executes the pipeline with caching.
//
// The Runner holds no per-run state, so several goroutines may share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer uses the DefaultKeyer, a nil cache
// disables caching and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Inputs are the decoded input grids, without halo.
type Inputs struct {
	Header       gridio.Header
	Elevation    *grid.Grid[float64]
	OldDirection *grid.Grid[int]
	Network      *grid.Grid[int] // nil when no network file was given
}

// Hash is the content hash of all input grids.
func (in *Inputs) Hash() string {
	h := cache.HashGrid(in.Elevation) + cache.HashGrid(asFloat(in.OldDirection))
	if in.Network != nil {
		h += cache.HashGrid(asFloat(in.Network))
	}
	return cache.Hash([]byte(h))
}

// Output is a resolved result with the halo removed.
type Output struct {
	Header    gridio.Header
	Direction *grid.Grid[int]
	Area      *grid.Grid[float64]
	Summary   Summary
}

// Execute runs load → resolve → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	runID := uuid.NewString()
	opts.Logger = opts.Logger.With("run", runID[:8])
	result := &Result{RunID: runID}

	loadStart := time.Now()
	in, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.InputHash = in.Hash()
	result.Stats.LoadTime = time.Since(loadStart)
	opts.Logger.Info("loaded grids",
		"rows", in.Elevation.Rows(),
		"cols", in.Elevation.Cols(),
		"valid", in.Elevation.ValidCount(),
		"duration", result.Stats.LoadTime)

	resolveStart := time.Now()
	out, hit, err := r.ResolveWithCacheInfo(ctx, in, opts)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	result.Summary = out.Summary
	result.Stats.ResolveTime = time.Since(resolveStart)
	result.CacheInfo.ResultHit = hit
	opts.Logger.Info("resolved directions",
		"resolved", out.Summary.Resolved,
		"unresolved", out.Summary.Unresolved,
		"cached", hit,
		"duration", result.Stats.ResolveTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, out, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit
	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the input grid files named in opts.
func (r *Runner) Load(ctx context.Context, opts Options) (*Inputs, error) {
	elev, err := loadRaster(ctx, opts.Elevation)
	if err != nil {
		return nil, err
	}
	old, err := loadRaster(ctx, opts.OldDirection)
	if err != nil {
		return nil, err
	}
	in := &Inputs{
		Header:       elev.Header,
		Elevation:    elev.Grid,
		OldDirection: old.IntGrid(),
	}
	if opts.Network != "" {
		net, err := loadRaster(ctx, opts.Network)
		if err != nil {
			return nil, err
		}
		in.Network = net.IntGrid()
	}
	return in, nil
}

func loadRaster(ctx context.Context, path string) (*gridio.Raster, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, path)
	start := time.Now()
	rs, err := gridio.ImportFile(path)
	cells := 0
	if rs != nil {
		cells = rs.Grid.Len()
	}
	hooks.OnLoadComplete(ctx, path, cells, time.Since(start), err)
	return rs, err
}

// ResolveWithCacheInfo resolves the directions for in, reading and filling
// the result cache. The bool reports a cache hit.
func (r *Runner) ResolveWithCacheInfo(ctx context.Context, in *Inputs, opts Options) (*Output, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	dopts, err := opts.drainageOptions(fileCellSize(in.Header))
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.ResultKey(in.Hash(), ResultKeyOpts(dopts))
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if out, err := decodeOutput(data); err == nil {
				hooks.OnCacheHit(ctx, "result")
				if err := verifyOutput(out, opts); err != nil {
					return nil, false, err
				}
				return out, true, nil
			}
			// Undecodable entries are recomputed.
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "error", err)
		}
	}
	hooks.OnCacheMiss(ctx, "result")

	out, err := r.resolve(ctx, in, dopts)
	if err != nil {
		return nil, false, err
	}
	if err := verifyOutput(out, opts); err != nil {
		return nil, false, err
	}

	if data, err := encodeOutput(out); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLResult); err != nil {
			opts.Logger.Warn("cache write failed", "error", err)
		} else {
			hooks.OnCacheSet(ctx, "result", len(data))
		}
	}
	return out, false, nil
}

// Resolve is ResolveWithCacheInfo without the cache hit flag.
func (r *Runner) Resolve(ctx context.Context, in *Inputs, opts Options) (*Output, error) {
	out, _, err := r.ResolveWithCacheInfo(ctx, in, opts)
	return out, err
}

func (r *Runner) resolve(ctx context.Context, in *Inputs, dopts drainage.Options) (*Output, error) {
	input := drainage.Input{
		Elevation:    grid.Pad[float64](in.Elevation),
		OldDirection: grid.Pad[int](in.OldDirection),
	}
	if in.Network != nil {
		input.Network = grid.Pad[int](in.Network)
	}

	hooks := observability.Pipeline()
	hooks.OnResolveStart(ctx, in.Elevation.ValidCount())
	start := time.Now()
	res, err := drainage.Resolve(ctx, input, dopts)
	eligible, unresolved := 0, 0
	if res != nil {
		eligible, unresolved = res.Eligible, res.Unresolved
	}
	hooks.OnResolveComplete(ctx, eligible, unresolved, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return cropResult(res, in.Header)
}

// cropResult strips the halo and shifts every reported position by one cell.
func cropResult(res *drainage.Result, h gridio.Header) (*Output, error) {
	dir, err := grid.Crop[int](res.Direction)
	if err != nil {
		return nil, err
	}
	area, err := grid.Crop[float64](res.Area)
	if err != nil {
		return nil, err
	}
	shift := func(c drainage.Cell) drainage.Cell { return drainage.Cell{Row: c.Row - 1, Col: c.Col - 1} }

	s := Summary{
		Rows:       dir.Rows(),
		Cols:       dir.Cols(),
		Eligible:   res.Eligible,
		Skipped:    res.Skipped,
		Resolved:   res.Resolved,
		Unresolved: res.Unresolved,
		Corrected:  res.Corrected,
		HasOutlet:  res.HasOutlet,
		Warnings:   res.Warnings,
		Aborted:    res.Aborted,
	}
	if res.HasOutlet {
		s.Outlet = shift(res.Outlet)
		s.OutletArea = res.Area.At(res.Outlet.Row, res.Outlet.Col)
	}
	for _, f := range res.Faults {
		f.Cell = shift(f.Cell)
		s.Faults = append(s.Faults, f)
	}
	return &Output{Header: h, Direction: dir, Area: area, Summary: s}, nil
}

func verifyOutput(out *Output, opts Options) error {
	if !opts.Verify {
		return nil
	}
	if err := drainage.Verify(&drainage.Result{Direction: out.Direction, Area: out.Area}); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	opts.Logger.Debug("invariants hold", "cells", out.Direction.Len())
	return nil
}

// RenderWithCacheInfo produces the artifacts for opts.Formats. The bool
// reports whether every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, out *Output, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	data, err := encodeOutput(out)
	if err != nil {
		return nil, false, fmt.Errorf("serialize result for cache key: %w", err)
	}
	resultHash := cache.Hash(data)
	hooks := observability.Cache()

	artifacts := make(map[string][]byte)
	allCached := true
	for _, format := range opts.Formats {
		for _, name := range ArtifactNames(format) {
			key := r.Keyer.ArtifactKey(resultHash, opts.ArtifactKeyOpts(name))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[name] = data
				continue
			}
			allCached = false
			break
		}
		if !allCached {
			break
		}
	}
	if allCached {
		hooks.OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	hooks.OnCacheMiss(ctx, "artifact")

	rendered, err := Render(ctx, out, opts)
	if err != nil {
		return nil, false, err
	}
	for name, data := range rendered {
		key := r.Keyer.ArtifactKey(resultHash, opts.ArtifactKeyOpts(name))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			hooks.OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func fileCellSize(h gridio.Header) float64 {
	if h.CellSize > 0 {
		return h.CellSize
	}
	return drainage.DefaultCellSize
}

func asFloat(g *grid.Grid[int]) *grid.Grid[float64] {
	return grid.Convert[int, float64](g, float64(g.NoValue()))
}
