// Package imagefit decides how much of a QR code an embedded image may cover.
//
// The image is given a budget derived from the error correction level: the
// fraction of modules a reader can lose and still decode. The image is sized
// to an odd number of modules on each axis so that it sits exactly on the
// grid center, and the outer seven modules on every side (finder and timing
// patterns) are never covered.
package imagefit

import (
	"math"
	"strings"

	"github.com/cristianadrielbraun/qrstyle/internal/grid"
)

// reservedMargin is the number of modules kept clear on each side of the grid.
const reservedMargin = 7

// budgets is the approximate fraction of modules each error correction level
// can recover.
var budgets = map[string]float64{
	"L": 0.07,
	"M": 0.15,
	"Q": 0.25,
	"H": 0.30,
}

// Budget returns the recoverable fraction of modules for an error correction
// level ("L", "M", "Q" or "H", case-insensitive).
func Budget(level string) (float64, bool) {
	b, ok := budgets[strings.ToUpper(level)]
	return b, ok
}

// MaxHiddenDots is the number of modules an image of relative size s may hide
// on an n×n grid at the given error correction level. Unknown levels hide nothing.
func MaxHiddenDots(s float64, level string, n int) int {
	b, ok := Budget(level)
	if !ok || s <= 0 {
		return 0
	}
	cover := s * b
	return int(math.Floor(cover * float64(n) * float64(n)))
}

// MaxHiddenAxisDots is the largest number of modules an image may span on
// either axis of an n×n grid.
func MaxHiddenAxisDots(n int) int {
	return n - 2*reservedMargin
}

// Request holds the inputs of the image sizing policy.
type Request struct {
	OriginalWidth     float64
	OriginalHeight    float64
	MaxHiddenDots     int
	MaxHiddenAxisDots int
	DotSize           int
}

// Size is the drawn size of the image in pixels and the number of modules it
// hides on each axis. HideXDots counts columns, HideYDots rows.
type Size struct {
	Width     int
	Height    int
	HideXDots int
	HideYDots int
}

// Fit sizes an image for the given request. The result always satisfies
// HideXDots*HideYDots <= MaxHiddenDots and both counts <= MaxHiddenAxisDots;
// when no odd rectangle fits, the zero Size is returned.
func Fit(r Request) Size {
	if r.OriginalWidth <= 0 || r.OriginalHeight <= 0 || r.MaxHiddenDots <= 0 ||
		r.DotSize <= 0 || r.MaxHiddenAxisDots <= 0 {
		return Size{}
	}

	k := r.OriginalHeight / r.OriginalWidth
	d := float64(r.DotSize)
	maxAxis := r.MaxHiddenAxisDots

	x := int(math.Floor(math.Sqrt(float64(r.MaxHiddenDots) / k)))
	if x <= 0 {
		x = 1
	}
	if x > maxAxis {
		x = maxAxis
	}
	if x%2 == 0 {
		x--
	}
	width := float64(x) * d
	// ceil so that the opposite axis never leaves modules under the image
	y := oddAbove(float64(x) * k)
	height := math.Round(width * k)

	if x*y > r.MaxHiddenDots || y > maxAxis {
		if y > maxAxis {
			y = maxAxis
			if y%2 == 0 {
				y--
			}
		} else {
			y -= 2
		}
		height = float64(y) * d
		x = oddAbove(float64(y) / k)
		width = math.Round(height / k)
	}

	shrunk := false
	for x >= 1 && y >= 1 && (x*y > r.MaxHiddenDots || x > maxAxis || y > maxAxis) {
		switch {
		case x > maxAxis:
			x -= 2
		case y > maxAxis:
			y -= 2
		case x >= y:
			x -= 2
		default:
			y -= 2
		}
		shrunk = true
	}
	if x < 1 || y < 1 {
		return Size{}
	}
	if shrunk {
		scale := math.Min(float64(x)*d/r.OriginalWidth, float64(y)*d/r.OriginalHeight)
		width = math.Floor(r.OriginalWidth * scale)
		height = math.Floor(r.OriginalHeight * scale)
	}

	return Size{
		Width:     int(width),
		Height:    int(height),
		HideXDots: x,
		HideYDots: y,
	}
}

// oddAbove returns the smallest odd integer >= v, and 1 for v <= 1.
func oddAbove(v float64) int {
	return 1 + 2*int(math.Ceil((v-1)/2))
}

// Mask is the centered rectangle of modules hidden behind the image.
type Mask struct {
	N     int
	HideX int
	HideY int
}

// Visible reports whether the module at (row, col) lies outside the mask.
// The comparisons are the integer form of col < (N-HideX)/2 and
// col >= (N+HideX)/2, which keeps the bounds exact for odd and even sizes.
func (m Mask) Visible(row, col int) bool {
	return 2*col < m.N-m.HideX || 2*col >= m.N+m.HideX ||
		2*row < m.N-m.HideY || 2*row >= m.N+m.HideY
}

// Hidden returns the number of modules inside the mask.
func (m Mask) Hidden() int {
	hidden := 0
	for row := 0; row < m.N; row++ {
		for col := 0; col < m.N; col++ {
			if !m.Visible(row, col) {
				hidden++
			}
		}
	}
	return hidden
}

// Filter returns the visibility filter for the mask. When hideBackgroundDots
// is false the image is drawn over the modules and every module stays
// visible, so the returned filter is nil.
func (m Mask) Filter(hideBackgroundDots bool) grid.Filter {
	if !hideBackgroundDots {
		return nil
	}
	return m.Visible
}
