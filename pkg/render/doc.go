// Package render draws a resolved drainage network as a Graphviz diagram.
//
// # Overview
//
// [ToDOT] turns a direction grid and its accumulated-area grid into a DOT
// digraph. Every retained cell becomes a node and every downstream link
// between two retained cells becomes an edge, so the diagram reads as the
// channel tree from the headwaters down to the outlet:
//
//	dot := render.ToDOT(res.Direction, res.Area, render.Options{MinArea: 50})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Options
//
//   - MinArea: keep only cells draining at least this many cells. Large
//     grids should use a threshold; every cell of a 1000×1000 grid is a
//     million nodes.
//   - Detailed: label nodes with their cell position as well as the area.
//
// Edge width grows with the logarithm of the upstream area. Outlets are
// drawn as double circles.
//
// # Dependencies
//
// [RenderSVG] uses [github.com/goccy/go-graphviz] to lay out and render
// in-process. The DOT text from [ToDOT] can also be fed to the dot tool.
package render
