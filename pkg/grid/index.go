package grid

// Index converts a 0-based (row, col) pair into the row-major linear index of
// a grid with cols columns.
func Index(row, col, cols int) int {
	return row*cols + col
}

// RowCol is the inverse of [Index].
func RowCol(i, cols int) (row, col int) {
	return i / cols, i % cols
}
