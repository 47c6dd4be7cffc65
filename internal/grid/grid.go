// Package grid holds the QR module matrix consumed by the renderer.
package grid

// Grid is a square matrix of dark/light modules produced by a QR encoder.
// Rows run top to bottom and columns left to right.
type Grid interface {
	Size() int
	IsDark(row, col int) bool
}

// Matrix is an in-memory Grid.
type Matrix struct {
	n    int
	dark []bool
}

// NewMatrix returns an n×n matrix with every module light.
func NewMatrix(n int) *Matrix {
	if n < 0 {
		n = 0
	}
	return &Matrix{n: n, dark: make([]bool, n*n)}
}

// FromRows builds a matrix from row strings where '#' or '1' marks a dark
// module. Rows shorter than the row count are padded with light modules.
func FromRows(rows ...string) *Matrix {
	m := NewMatrix(len(rows))
	for r, line := range rows {
		for c, ch := range line {
			if c >= m.n {
				break
			}
			if ch == '#' || ch == '1' {
				m.Set(r, c, true)
			}
		}
	}
	return m
}

// Size returns the number of modules per side.
func (m *Matrix) Size() int { return m.n }

// IsDark reports whether the module at (row, col) is dark.
// Coordinates outside the matrix are light.
func (m *Matrix) IsDark(row, col int) bool {
	if row < 0 || col < 0 || row >= m.n || col >= m.n {
		return false
	}
	return m.dark[row*m.n+col]
}

// Set marks the module at (row, col). Out-of-range coordinates are ignored.
// Set is meant for construction; a Matrix handed to a renderer must not change.
func (m *Matrix) Set(row, col int, dark bool) {
	if row < 0 || col < 0 || row >= m.n || col >= m.n {
		return
	}
	m.dark[row*m.n+col] = dark
}

// DarkCount returns the number of dark modules.
func (m *Matrix) DarkCount() int {
	count := 0
	for _, d := range m.dark {
		if d {
			count++
		}
	}
	return count
}

// String renders the matrix using '#' for dark and '.' for light modules.
func (m *Matrix) String() string {
	buf := make([]byte, 0, m.n*(m.n+1))
	for r := 0; r < m.n; r++ {
		for c := 0; c < m.n; c++ {
			if m.IsDark(r, c) {
				buf = append(buf, '#')
			} else {
				buf = append(buf, '.')
			}
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}

// Ensure Matrix implements Grid.
var _ Grid = (*Matrix)(nil)

// Filter reports whether the module at (row, col) may be drawn.
// A nil Filter lets every module through.
type Filter func(row, col int) bool

// Allows reports whether f lets the module at (row, col) through.
func (f Filter) Allows(row, col int) bool {
	return f == nil || f(row, col)
}
