// Package dots draws individual QR modules.
//
// A Drawer receives the pixel origin and size of one dark module and a
// function telling it which of the surrounding modules are drawn too, so
// that shapes can merge into their neighbors.
package dots

import (
	"fmt"
	"sort"

	"github.com/cristianadrielbraun/qrstyle/internal/errors"
	"github.com/cristianadrielbraun/qrstyle/internal/surface"
)

// NeighborFunc reports whether the module at offset (dx, dy) from the
// current one is drawn. dx and dy are in {-1, 0, 1}; dx moves along columns.
type NeighborFunc func(dx, dy int) bool

// Drawer draws one module with the surface's current fill.
type Drawer interface {
	Draw(s *surface.Surface, x, y, size int, neighbor NeighborFunc)
}

// Dot types.
const (
	TypeSquare        = "square"
	TypeDots          = "dots"
	TypeRounded       = "rounded"
	TypeExtraRounded  = "extra-rounded"
	TypeClassy        = "classy"
	TypeClassyRounded = "classy-rounded"
)

var drawers = map[string]Drawer{
	TypeSquare:        square{},
	TypeDots:          dot{},
	TypeRounded:       rounded{extra: false},
	TypeExtraRounded:  rounded{extra: true},
	TypeClassy:        classy{extra: false},
	TypeClassyRounded: classy{extra: true},
}

// New returns the drawer for a dot type. An empty type selects square.
func New(typ string) (Drawer, error) {
	if typ == "" {
		typ = TypeSquare
	}
	d, ok := drawers[typ]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidStyle, "unknown dot type %q", typ)
	}
	return d, nil
}

// Types lists the supported dot types in sorted order.
func Types() []string {
	types := make([]string, 0, len(drawers))
	for t := range drawers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

type square struct{}

func (square) Draw(s *surface.Surface, x, y, size int, _ NeighborFunc) {
	basicSquare(s, x, y, size)
}

type dot struct{}

func (dot) Draw(s *surface.Surface, x, y, size int, _ NeighborFunc) {
	basicDot(s, x, y, size)
}

// rounded joins a module to its side neighbors and rounds the free sides.
type rounded struct{ extra bool }

func (r rounded) Draw(s *surface.Surface, x, y, size int, neighbor NeighborFunc) {
	left, right, top, bottom := sides(neighbor)
	count := btoi(left) + btoi(right) + btoi(top) + btoi(bottom)

	switch {
	case count == 0:
		basicDot(s, x, y, size)
	case count > 2 || (left && right) || (top && bottom):
		basicSquare(s, x, y, size)
	case count == 2:
		rotation := 0.0
		switch {
		case left && top:
			rotation = 90
		case top && right:
			rotation = 180
		case right && bottom:
			rotation = -90
		}
		if r.extra {
			cornerExtraRounded(s, x, y, size, rotation)
		} else {
			cornerRounded(s, x, y, size, rotation)
		}
	default:
		rotation := 0.0
		switch {
		case top:
			rotation = 90
		case right:
			rotation = 180
		case bottom:
			rotation = -90
		}
		sideRounded(s, x, y, size, rotation)
	}
}

// classy rounds the top-left and bottom-right corners of runs.
type classy struct{ extra bool }

func (c classy) Draw(s *surface.Surface, x, y, size int, neighbor NeighborFunc) {
	left, right, top, bottom := sides(neighbor)

	corner := cornerRounded
	if c.extra {
		corner = cornerExtraRounded
	}

	switch {
	case !left && !right && !top && !bottom:
		cornersRounded(s, x, y, size)
	case !left && !top:
		corner(s, x, y, size, -90)
	case !right && !bottom:
		corner(s, x, y, size, 90)
	default:
		basicSquare(s, x, y, size)
	}
}

func sides(neighbor NeighborFunc) (left, right, top, bottom bool) {
	if neighbor == nil {
		return
	}
	return neighbor(-1, 0), neighbor(1, 0), neighbor(0, -1), neighbor(0, 1)
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

func basicDot(s *surface.Surface, x, y, size int) {
	half := float64(size) / 2
	s.FillCircle(float64(x)+half, float64(y)+half, half)
}

func basicSquare(s *surface.Surface, x, y, size int) {
	s.FillRect(float64(x), float64(y), float64(size), float64(size))
}

// sideRounded is flat on the left and a half circle on the right.
func sideRounded(s *surface.Surface, x, y, size int, rotation float64) {
	n, h := surface.Num(float64(size)), surface.Num(float64(size)/2)
	d := fmt.Sprintf("M %d %d v %s h %s a %s %s 0 0 0 0 -%s z", x, y, n, h, h, h, n)
	fillRotated(s, d, x, y, size, rotation)
}

// cornerRounded has its top-right corner rounded with radius size/2.
func cornerRounded(s *surface.Surface, x, y, size int, rotation float64) {
	n, h := surface.Num(float64(size)), surface.Num(float64(size)/2)
	d := fmt.Sprintf("M %d %d v %s h %s v -%s a %s %s 0 0 0 -%s -%s z", x, y, n, n, h, h, h, h, h)
	fillRotated(s, d, x, y, size, rotation)
}

// cornerExtraRounded has its top-right corner rounded with radius size.
func cornerExtraRounded(s *surface.Surface, x, y, size int, rotation float64) {
	n := surface.Num(float64(size))
	d := fmt.Sprintf("M %d %d v %s h %s a %s %s 0 0 0 -%s -%s z", x, y, n, n, n, n, n, n)
	fillRotated(s, d, x, y, size, rotation)
}

// cornersRounded has its top-left and bottom-right corners rounded.
func cornersRounded(s *surface.Surface, x, y, size int) {
	h := surface.Num(float64(size) / 2)
	d := fmt.Sprintf("M %d %s v %s h %s a %s %s 0 0 0 %s -%s v -%s h -%s a %s %s 0 0 0 -%s %s z",
		x, surface.Num(float64(y)+float64(size)/2), h, h, h, h, h, h, h, h, h, h, h, h)
	fillRotated(s, d, x, y, size, 0)
}

func fillRotated(s *surface.Surface, d string, x, y, size int, rotation float64) {
	half := float64(size) / 2
	s.FillPath(d, rotation, float64(x)+half, float64(y)+half)
}
