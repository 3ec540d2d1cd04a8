// Package drainage resolves D8 drainage directions on a gridded DEM with the
// least angular deviation (LAD) and least transversal deviation (LTD) methods
// of Orlandini et al., with an optional pass that forces directions along a
// fixed channel network.
//
// # Overview
//
// [Resolve] sweeps the cells from the highest elevation to the lowest. At
// each cell it fits eight triangular facets to the 3×3 window and keeps the
// steepest one. The flow then follows either the cardinal or the diagonal
// edge of that facet, whichever keeps the cumulative deviation from the true
// gradient smaller. The deviation carried into a cell is the area-weighted
// mean of its upstream neighbours, scaled by Options.Lambda:
//
//	res, err := drainage.Resolve(ctx, drainage.Input{
//	    Elevation:    dem,
//	    OldDirection: oldDirs,
//	}, drainage.Options{Metric: drainage.MetricTransversal, Lambda: 1})
//
// Lambda 0 follows the local gradient only; lambda 1 follows the established
// upstream channel as far as the facet allows.
//
// # Flats and Outlets
//
// A cell with no descending facet keeps its direction from the old-direction
// grid and passes its area down the chain of cells already resolved. The
// last cell of the sweep with no descent becomes the outlet (code 10).
// Chain walks are bounded; a chain that loops back is reported as a
// [Fault] and the cell stays unresolved.
//
// # Fixed Networks
//
// With Options.FixedNetwork, every cell marked in Input.Network takes its
// direction from the old-direction grid, each bank cell around it is turned
// towards its highest (failing that, lowest) lower neighbour off the network,
// and all areas are accumulated again from the final directions.
//
// # Halo
//
// Grids should carry a one-cell no-value border (see grid.Pad). Neighbour
// lookups are bounds-checked, so a missing border changes results at the
// edge but never panics.
package drainage
