package layout

import (
	"testing"

	"github.com/cristianadrielbraun/qrstyle/internal/errors"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name        string
		n, w, h     int
		dot, ox, oy int
	}{
		{"exact fit", 1, 10, 10, 10, 0, 0},
		{"square canvas", 21, 300, 300, 14, 3, 3},
		{"odd remainder", 21, 301, 301, 14, 3, 3},
		{"wide canvas", 25, 400, 200, 8, 100, 0},
		{"tall canvas", 25, 200, 403, 8, 0, 101},
		{"one pixel dots", 33, 33, 40, 1, 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Compute(tt.n, tt.w, tt.h)
			if err != nil {
				t.Fatalf("Compute() error: %v", err)
			}
			want := Geometry{DotSize: tt.dot, OriginX: tt.ox, OriginY: tt.oy}
			if g != want {
				t.Errorf("Compute(%d, %d, %d) = %+v, want %+v", tt.n, tt.w, tt.h, g, want)
			}
		})
	}
}

func TestComputeContainment(t *testing.T) {
	for n := 1; n <= 60; n += 3 {
		for w := n; w <= 180; w += 7 {
			for h := n; h <= 180; h += 11 {
				g, err := Compute(n, w, h)
				if err != nil {
					t.Fatalf("Compute(%d, %d, %d) error: %v", n, w, h, err)
				}
				if g.DotSize < 1 {
					t.Fatalf("Compute(%d, %d, %d) dot size %d < 1", n, w, h, g.DotSize)
				}
				if g.OriginX+g.Extent(n) > w || g.OriginY+g.Extent(n) > h {
					t.Fatalf("Compute(%d, %d, %d) = %+v overflows canvas", n, w, h, g)
				}
				if g.OriginX < 0 || g.OriginY < 0 {
					t.Fatalf("Compute(%d, %d, %d) = %+v has negative origin", n, w, h, g)
				}
				again, _ := Compute(n, w, h)
				if again != g {
					t.Fatalf("Compute(%d, %d, %d) not deterministic: %+v vs %+v", n, w, h, g, again)
				}
			}
		}
	}
}

func TestComputeGridTooLarge(t *testing.T) {
	tests := []struct {
		name    string
		n, w, h int
	}{
		{"both axes", 30, 20, 20},
		{"width only", 30, 20, 100},
		{"height only", 30, 100, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.n, tt.w, tt.h)
			if !errors.Is(err, errors.ErrCodeGridTooLarge) {
				t.Errorf("Compute() error = %v, want GRID_TOO_LARGE", err)
			}
		})
	}

	if _, err := Compute(0, 10, 10); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Compute(0) error = %v, want INVALID_INPUT", err)
	}
}

func TestCell(t *testing.T) {
	g := Geometry{DotSize: 4, OriginX: 3, OriginY: 5}
	x, y := g.Cell(2, 1)
	if x != 7 || y != 13 {
		t.Errorf("Cell(2, 1) = (%d, %d), want (7, 13)", x, y)
	}
}
