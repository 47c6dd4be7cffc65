// Package surface implements the drawing target of a render pass. Shapes are
// recorded in draw order and serialized as a standalone SVG document.
package surface

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Surface is a fixed-size vector canvas. It is not safe for concurrent use.
type Surface struct {
	width  int
	height int
	fill   color.NRGBA
	elems  []string
}

// New creates an empty width×height surface with an opaque black fill.
func New(width, height int) *Surface {
	return &Surface{
		width:  width,
		height: height,
		fill:   color.NRGBA{A: 255},
	}
}

// Width returns the canvas width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the canvas height in pixels.
func (s *Surface) Height() int { return s.height }

// Len returns the number of recorded elements.
func (s *Surface) Len() int { return len(s.elems) }

// Clear removes everything drawn so far.
func (s *Surface) Clear() {
	s.elems = s.elems[:0]
}

// SetFill sets the color used by subsequent fill operations.
func (s *Surface) SetFill(c color.Color) {
	s.fill = color.NRGBAModel.Convert(c).(color.NRGBA)
}

// FillRect fills an axis-aligned rectangle.
func (s *Surface) FillRect(x, y, w, h float64) {
	s.elems = append(s.elems, fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s"%s/>`,
		Num(x), Num(y), Num(w), Num(h), s.fillAttrs()))
}

// FillCircle fills a circle centered at (cx, cy).
func (s *Surface) FillCircle(cx, cy, r float64) {
	s.elems = append(s.elems, fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s"%s/>`,
		Num(cx), Num(cy), Num(r), s.fillAttrs()))
}

// FillPath fills the SVG path data d. When rotation is non-zero the path is
// rotated by that many degrees around (cx, cy).
func (s *Surface) FillPath(d string, rotation, cx, cy float64) {
	transform := ""
	if rotation != 0 {
		transform = fmt.Sprintf(` transform="rotate(%s,%s,%s)"`, Num(rotation), Num(cx), Num(cy))
	}
	s.elems = append(s.elems, fmt.Sprintf(`<path d="%s"%s%s/>`, d, transform, s.fillAttrs()))
}

// DrawImage appends a pre-rendered SVG fragment such as an embedded document.
func (s *Surface) DrawImage(fragment string) {
	s.elems = append(s.elems, fragment)
}

// Serialize returns the surface as an SVG document.
func (s *Surface) Serialize() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%d" height="%d" viewBox="0 0 %d %d">`,
		s.width, s.height, s.width, s.height)
	for _, e := range s.elems {
		b.WriteString(e)
	}
	b.WriteString(`</svg>`)
	return b.String()
}

func (s *Surface) fillAttrs() string {
	attrs := ` fill="` + Hex(s.fill) + `"`
	if s.fill.A < 255 {
		attrs += ` fill-opacity="` + Num(float64(s.fill.A)/255) + `"`
	}
	return attrs
}

// Hex formats c as #rrggbb, ignoring alpha.
func Hex(c color.Color) string {
	rgba := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

// Num formats v in its shortest decimal form, rounded to 1/1000 px.
func Num(v float64) string {
	v = float64(int64(v*1000+copysign(0.5, v))) / 1000
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func copysign(m, v float64) float64 {
	if v < 0 {
		return -m
	}
	return m
}
