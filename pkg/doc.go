// Package pkg holds the libraries behind drainflow.
//
// # Layout
//
//   - [grid]: generic row-major grids with a no-value sentinel
//   - [drainage]: the D8 direction resolver (LAD/LTD) and invariant checks
//   - [gridio]: ESRI ASCII and JSON grid files
//   - [render]: drainage network as DOT and SVG
//   - [cache]: file, redis and null result caches with content-hash keys
//   - [pipeline]: load → resolve → render with caching
//   - [errors]: coded errors and input validation
//   - [observability]: optional metrics hooks
//   - [buildinfo]: version information set at link time
//
// # Data flow
//
//	dem.asc, flow.asc, channels.asc
//	         ↓
//	    [gridio] (decode, no-value sentinels)
//	         ↓
//	    [grid].Pad (one-cell halo)
//	         ↓
//	    [drainage].Resolve (sweep, network correction, re-accumulation)
//	         ↓
//	    [grid].Crop
//	         ↓
//	direction.asc, area.asc, network.svg
//
// Only [drainage] and [grid] are needed to embed the resolver:
//
//	res, err := drainage.Resolve(ctx, drainage.Input{
//	    Elevation:    grid.Pad[float64](dem),
//	    OldDirection: grid.Pad[int](flow),
//	}, drainage.Options{Metric: drainage.MetricTransversal, Lambda: 1})
//
// [grid]: github.com/matzehuels/drainflow/pkg/grid
// [drainage]: github.com/matzehuels/drainflow/pkg/drainage
// [gridio]: github.com/matzehuels/drainflow/pkg/gridio
// [render]: github.com/matzehuels/drainflow/pkg/render
// [cache]: github.com/matzehuels/drainflow/pkg/cache
// [pipeline]: github.com/matzehuels/drainflow/pkg/pipeline
// [errors]: github.com/matzehuels/drainflow/pkg/errors
// [observability]: github.com/matzehuels/drainflow/pkg/observability
// [buildinfo]: github.com/matzehuels/drainflow/pkg/buildinfo
package pkg
