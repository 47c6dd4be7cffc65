package dots

import (
	"strings"
	"testing"

	"github.com/cristianadrielbraun/qrstyle/internal/errors"
	"github.com/cristianadrielbraun/qrstyle/internal/surface"
)

// neighbors returns a NeighborFunc reporting the listed offsets as drawn.
func neighbors(offsets ...[2]int) NeighborFunc {
	return func(dx, dy int) bool {
		for _, o := range offsets {
			if o[0] == dx && o[1] == dy {
				return true
			}
		}
		return false
	}
}

var (
	left   = [2]int{-1, 0}
	right  = [2]int{1, 0}
	top    = [2]int{0, -1}
	bottom = [2]int{0, 1}
)

func draw(t *testing.T, typ string, n NeighborFunc) string {
	t.Helper()
	d, err := New(typ)
	if err != nil {
		t.Fatalf("New(%q) error: %v", typ, err)
	}
	s := surface.New(20, 20)
	d.Draw(s, 2, 4, 10, n)
	if s.Len() != 1 {
		t.Fatalf("%s drew %d elements, want 1", typ, s.Len())
	}
	return s.Serialize()
}

func TestDrawers(t *testing.T) {
	tests := []struct {
		name     string
		typ      string
		n        NeighborFunc
		contains string
	}{
		{"square", TypeSquare, neighbors(), `<rect x="2" y="4" width="10" height="10"`},
		{"default is square", "", neighbors(left), `<rect x="2" y="4" width="10" height="10"`},
		{"dots", TypeDots, neighbors(left, right), `<circle cx="7" cy="9" r="5"`},
		{"rounded isolated", TypeRounded, neighbors(), `<circle cx="7" cy="9" r="5"`},
		{"rounded in a row", TypeRounded, neighbors(left, right), `<rect x="2" y="4"`},
		{"rounded three sides", TypeRounded, neighbors(left, top, bottom), `<rect x="2" y="4"`},
		{"rounded end of row", TypeRounded, neighbors(left), `<path d="M 2 4 v 10 h 5 a 5 5 0 0 0 0 -10 z" fill=`},
		{"rounded below a module", TypeRounded, neighbors(top), `transform="rotate(90,7,9)"`},
		{"rounded left end", TypeRounded, neighbors(right), `transform="rotate(180,7,9)"`},
		{"rounded corner", TypeRounded, neighbors(left, bottom), `<path d="M 2 4 v 10 h 10 v -5 a 5 5 0 0 0 -5 -5 z" fill=`},
		{"rounded corner top right", TypeRounded, neighbors(top, right), `transform="rotate(180,7,9)"`},
		{"extra rounded corner", TypeExtraRounded, neighbors(right, bottom), `a 10 10 0 0 0 -10 -10 z" transform="rotate(-90,7,9)"`},
		{"classy isolated", TypeClassy, neighbors(), `<path d="M 2 9 v 5 h 5 a 5 5 0 0 0 5 -5 v -5 h -5 a 5 5 0 0 0 -5 5 z"`},
		{"classy run start", TypeClassy, neighbors(right), `transform="rotate(-90,7,9)"`},
		{"classy run end", TypeClassy, neighbors(left), `transform="rotate(90,7,9)"`},
		{"classy middle", TypeClassy, neighbors(left, right), `<rect x="2" y="4"`},
		{"classy rounded start", TypeClassyRounded, neighbors(bottom), `a 10 10 0 0 0 -10 -10 z" transform="rotate(-90,7,9)"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := draw(t, tt.typ, tt.n)
			if !strings.Contains(out, tt.contains) {
				t.Errorf("output %s does not contain %s", out, tt.contains)
			}
		})
	}
}

func TestNilNeighborFunc(t *testing.T) {
	out := draw(t, TypeRounded, nil)
	if !strings.Contains(out, "<circle") {
		t.Errorf("rounded without neighbor info should be a dot: %s", out)
	}
}

func TestNewUnknownType(t *testing.T) {
	_, err := New("star")
	if !errors.Is(err, errors.ErrCodeInvalidStyle) {
		t.Errorf("New(star) error = %v, want INVALID_STYLE", err)
	}
}

func TestTypes(t *testing.T) {
	got := strings.Join(Types(), ",")
	want := "classy,classy-rounded,dots,extra-rounded,rounded,square"
	if got != want {
		t.Errorf("Types() = %s, want %s", got, want)
	}
}
