// Package gridio reads and writes raster grids for the drainflow CLI.
//
// # Overview
//
// Two file formats are supported:
//
//   - ESRI ASCII grid (.asc, .txt): the plain-text raster format most GIS
//     tools can export
//   - JSON grid (.json): a small self-describing format for tests and
//     tooling
//
// Both decode into a [Raster]: a float64 [grid.Grid] plus the [Header] that
// places it on the ground. Integer grids such as flow directions are stored
// as whole numbers and converted with grid.Convert.
//
// # ESRI ASCII
//
// A six-line header followed by nrows lines of ncols values, top row first:
//
//	ncols        4
//	nrows        3
//	xllcorner    500000
//	yllcorner    4100000
//	cellsize     30
//	NODATA_value -9999
//	...
//
// Header keys are case-insensitive. xllcenter/yllcenter are accepted in
// place of the corner keys. NODATA_value is optional and defaults to
// [DefaultNoData].
//
// # JSON
//
//	{
//	  "rows": 2, "cols": 2, "cellsize": 1, "nodata": -9999,
//	  "values": [[1, 2], [3, -9999]]
//	}
//
// # Files
//
// [ImportFile] and [ExportFile] pick the format from the file extension (see
// [DetectFormat]). Errors carry codes from pkg/errors: FILE_NOT_FOUND for a
// missing file, INVALID_FORMAT for malformed content or an unknown
// extension.
package gridio
