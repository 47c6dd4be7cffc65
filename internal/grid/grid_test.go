package grid

import "testing"

func TestFromRows(t *testing.T) {
	m := FromRows(
		"#.#",
		".1.",
		"##",
	)
	if m.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", m.Size())
	}

	want := [][]bool{
		{true, false, true},
		{false, true, false},
		{true, true, false},
	}
	for r := range want {
		for c := range want[r] {
			if got := m.IsDark(r, c); got != want[r][c] {
				t.Errorf("IsDark(%d, %d) = %v, want %v", r, c, got, want[r][c])
			}
		}
	}
	if m.DarkCount() != 5 {
		t.Errorf("DarkCount() = %d, want 5", m.DarkCount())
	}
}

func TestIsDarkOutOfRange(t *testing.T) {
	m := FromRows("###", "###", "###")
	for _, rc := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {3, 3}} {
		if m.IsDark(rc[0], rc[1]) {
			t.Errorf("IsDark(%d, %d) should be false outside the matrix", rc[0], rc[1])
		}
	}
	m.Set(5, 5, true)
	if m.DarkCount() != 9 {
		t.Errorf("out-of-range Set changed the matrix")
	}
}

func TestString(t *testing.T) {
	m := FromRows("#.", ".#")
	if got := m.String(); got != "#.\n.#\n" {
		t.Errorf("String() = %q", got)
	}
}
