// Package layout maps a square module grid onto a pixel canvas.
//
// All arithmetic is integer and floor-rounded: the dot size is the largest
// whole number of pixels that lets the grid fit, and any leftover pixels are
// split between the leading and trailing edges with the odd pixel going to
// the trailing side.
package layout

import (
	"github.com/cristianadrielbraun/qrstyle/internal/errors"
)

// Geometry is the pixel placement of a grid on a canvas.
type Geometry struct {
	DotSize int
	OriginX int
	OriginY int
}

// Compute returns the geometry of an n×n grid centered on a width×height canvas.
// It fails with GRID_TOO_LARGE when the grid has more modules than the
// canvas has pixels on either axis.
func Compute(n, width, height int) (Geometry, error) {
	if n <= 0 {
		return Geometry{}, errors.New(errors.ErrCodeInvalidInput, "grid size must be positive, got %d", n)
	}
	if n > width || n > height {
		return Geometry{}, errors.New(errors.ErrCodeGridTooLarge,
			"grid of %d modules does not fit a %dx%d canvas", n, width, height)
	}

	dot := min(width, height) / n
	return Geometry{
		DotSize: dot,
		OriginX: (width - n*dot) / 2,
		OriginY: (height - n*dot) / 2,
	}, nil
}

// Extent returns the side length in pixels of an n×n grid.
func (g Geometry) Extent(n int) int {
	return n * g.DotSize
}

// Cell returns the top-left pixel of the module at (row, col).
// Columns advance along x and rows along y.
func (g Geometry) Cell(row, col int) (x, y int) {
	return g.OriginX + col*g.DotSize, g.OriginY + row*g.DotSize
}
