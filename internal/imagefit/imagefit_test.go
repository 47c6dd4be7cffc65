package imagefit

import (
	"math"
	"testing"
)

func TestBudget(t *testing.T) {
	tests := []struct {
		level string
		want  float64
		ok    bool
	}{
		{"L", 0.07, true},
		{"M", 0.15, true},
		{"q", 0.25, true},
		{"H", 0.30, true},
		{"X", 0, false},
	}
	for _, tt := range tests {
		got, ok := Budget(tt.level)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Budget(%q) = %v, %v; want %v, %v", tt.level, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMaxHiddenDots(t *testing.T) {
	if got := MaxHiddenDots(0.4, "Q", 25); got != 62 {
		t.Errorf("MaxHiddenDots(0.4, Q, 25) = %d, want 62", got)
	}
	if got := MaxHiddenDots(1, "H", 21); got != 132 {
		t.Errorf("MaxHiddenDots(1, H, 21) = %d, want 132", got)
	}
	if got := MaxHiddenDots(0.5, "nope", 21); got != 0 {
		t.Errorf("MaxHiddenDots with unknown level = %d, want 0", got)
	}
	if got := MaxHiddenAxisDots(25); got != 11 {
		t.Errorf("MaxHiddenAxisDots(25) = %d, want 11", got)
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want Size
	}{
		{
			name: "square image",
			req:  Request{OriginalWidth: 64, OriginalHeight: 64, MaxHiddenDots: 62, MaxHiddenAxisDots: 11, DotSize: 10},
			want: Size{Width: 70, Height: 70, HideXDots: 7, HideYDots: 7},
		},
		{
			name: "wide image shrinks the height",
			req:  Request{OriginalWidth: 200, OriginalHeight: 100, MaxHiddenDots: 62, MaxHiddenAxisDots: 11, DotSize: 10},
			want: Size{Width: 100, Height: 50, HideXDots: 11, HideYDots: 5},
		},
		{
			name: "no budget",
			req:  Request{OriginalWidth: 64, OriginalHeight: 64, MaxHiddenDots: 0, MaxHiddenAxisDots: 11, DotSize: 10},
			want: Size{},
		},
		{
			name: "no axis room",
			req:  Request{OriginalWidth: 64, OriginalHeight: 64, MaxHiddenDots: 100, MaxHiddenAxisDots: 0, DotSize: 10},
			want: Size{},
		},
		{
			name: "degenerate image",
			req:  Request{OriginalWidth: 0, OriginalHeight: 64, MaxHiddenDots: 62, MaxHiddenAxisDots: 11, DotSize: 10},
			want: Size{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fit(tt.req); got != tt.want {
				t.Errorf("Fit() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFitInvariants(t *testing.T) {
	aspects := [][2]float64{{64, 64}, {200, 100}, {100, 300}, {1, 1000}, {1000, 1}, {37, 53}}
	levels := []string{"L", "M", "Q", "H"}
	sizes := []float64{0.05, 0.2, 0.4, 0.7, 1}

	for n := 21; n <= 177; n += 4 {
		for _, level := range levels {
			for _, s := range sizes {
				for _, a := range aspects {
					for _, d := range []int{1, 3, 10} {
						maxDots := MaxHiddenDots(s, level, n)
						budget, _ := Budget(level)
						cover := s * budget
						if limit := int(math.Floor(cover * float64(n) * float64(n))); maxDots > limit {
							t.Fatalf("MaxHiddenDots(%v, %s, %d) = %d exceeds %d", s, level, n, maxDots, limit)
						}
						req := Request{
							OriginalWidth:     a[0],
							OriginalHeight:    a[1],
							MaxHiddenDots:     maxDots,
							MaxHiddenAxisDots: MaxHiddenAxisDots(n),
							DotSize:           d,
						}
						got := Fit(req)
						if got.HideXDots*got.HideYDots > maxDots {
							t.Fatalf("Fit(%+v) = %+v hides more than %d modules", req, got, maxDots)
						}
						if got.HideXDots > n-14 || got.HideYDots > n-14 {
							t.Fatalf("Fit(%+v) = %+v exceeds axis limit %d", req, got, n-14)
						}
						if got.HideXDots != 0 && (got.HideXDots%2 != 1 || got.HideYDots%2 != 1) {
							t.Fatalf("Fit(%+v) = %+v hidden counts must be odd", req, got)
						}
						if got.Width > got.HideXDots*d || got.Height > got.HideYDots*d {
							t.Fatalf("Fit(%+v) = %+v image exceeds the hidden rectangle", req, got)
						}
					}
				}
			}
		}
	}
}

func TestMaskVisible(t *testing.T) {
	m := Mask{N: 21, HideX: 7, HideY: 3}
	// columns 7..13 and rows 9..11 are hidden
	for row := 0; row < 21; row++ {
		for col := 0; col < 21; col++ {
			inside := col >= 7 && col <= 13 && row >= 9 && row <= 11
			if got := m.Visible(row, col); got == inside {
				t.Fatalf("Visible(%d, %d) = %v, inside = %v", row, col, got, inside)
			}
		}
	}
	if got := m.Hidden(); got != 21 {
		t.Errorf("Hidden() = %d, want 21", got)
	}
}

func TestMaskFilter(t *testing.T) {
	m := Mask{N: 21, HideX: 5, HideY: 5}
	if f := m.Filter(false); f != nil {
		t.Error("Filter(false) should let every module through")
	}
	f := m.Filter(true)
	if f == nil {
		t.Fatal("Filter(true) returned nil")
	}
	if f.Allows(10, 10) {
		t.Error("center module should be hidden")
	}
	if !f.Allows(0, 0) {
		t.Error("corner module should be visible")
	}

	empty := Mask{N: 21}
	if empty.Hidden() != 0 {
		t.Errorf("zero-size mask hides %d modules", empty.Hidden())
	}
}
