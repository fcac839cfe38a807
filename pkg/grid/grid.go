// Package grid maps flat cell indices to coordinates for grid-shaped
// displays.
package grid

// GetGridCoords converts a row-major cell index into (x, y) coordinates
// for a grid with the given column count.
func GetGridCoords(index int, cols int) (x, y int) {
	return index % cols, index / cols
}
