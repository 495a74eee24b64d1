package game

import (
	"reflect"
	"testing"
)

func TestLinePath(t *testing.T) {
	tests := []struct {
		name     string
		from, to Cell
		want     []Cell
		ok       bool
	}{
		{"single", Cell{2, 2}, Cell{2, 2}, []Cell{{2, 2}}, true},
		{"right", Cell{0, 0}, Cell{0, 2}, []Cell{{0, 0}, {0, 1}, {0, 2}}, true},
		{"left", Cell{0, 2}, Cell{0, 0}, []Cell{{0, 2}, {0, 1}, {0, 0}}, true},
		{"down", Cell{1, 3}, Cell{3, 3}, []Cell{{1, 3}, {2, 3}, {3, 3}}, true},
		{"diag down-right", Cell{0, 0}, Cell{2, 2}, []Cell{{0, 0}, {1, 1}, {2, 2}}, true},
		{"diag up-right", Cell{3, 0}, Cell{1, 2}, []Cell{{3, 0}, {2, 1}, {1, 2}}, true},
		{"knight move", Cell{0, 0}, Cell{1, 2}, nil, false},
		{"shallow", Cell{0, 0}, Cell{2, 5}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LinePath(tt.from, tt.to)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("path = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectionTracker_ClampsToLastValidPath(t *testing.T) {
	tr := NewSelectionTracker(8)
	tr.Start(Cell{0, 0})
	tr.Over(Cell{0, 2})

	got := tr.Over(Cell{1, 2}) // not collinear with the anchor
	want := []Cell{{0, 0}, {0, 1}, {0, 2}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("after off-line hover path = %v, want %v", got, want)
	}

	got = tr.Over(Cell{3, 3}) // back on a diagonal
	want = []Cell{{0, 0}, {1, 1}, {2, 2}, {3, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("after diagonal hover path = %v, want %v", got, want)
	}

	if got := tr.End(); !reflect.DeepEqual(got, want) {
		t.Errorf("End = %v, want %v", got, want)
	}
	if tr.Active() {
		t.Error("tracker should be idle after End")
	}
	if got := tr.End(); got != nil {
		t.Errorf("second End = %v, want nil", got)
	}
}

func TestSelectionTracker_OutOfBounds(t *testing.T) {
	tr := NewSelectionTracker(4)
	if got := tr.Start(Cell{4, 0}); got != nil || tr.Active() {
		t.Fatalf("start outside grid should stay idle, got %v", got)
	}
	if got := tr.Over(Cell{0, 0}); got != nil {
		t.Errorf("Over without drag = %v, want nil", got)
	}

	tr.Start(Cell{0, 0})
	tr.Over(Cell{0, 3})
	got := tr.Over(Cell{0, 5})
	want := []Cell{{0, 0}, {0, 1}, {0, 2}, {0, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("out-of-bounds hover path = %v, want %v", got, want)
	}
}

func TestSelectionTracker_PathIsACopy(t *testing.T) {
	tr := NewSelectionTracker(4)
	p := tr.Start(Cell{1, 1})
	p[0] = Cell{3, 3}
	if got := tr.Path(); got[0] != (Cell{1, 1}) {
		t.Errorf("tracker state leaked through returned path: %v", got)
	}
}

func TestSelectionTracker_PathCellsDistinct(t *testing.T) {
	tr := NewSelectionTracker(8)
	tr.Start(Cell{7, 7})
	for _, c := range []Cell{{6, 6}, {5, 7}, {0, 0}, {7, 0}, {4, 2}} {
		path := tr.Over(c)
		seen := map[Cell]bool{}
		for _, p := range path {
			if !p.In(8) {
				t.Fatalf("cell %v out of bounds", p)
			}
			if seen[p] {
				t.Fatalf("duplicate cell %v in %v", p, path)
			}
			seen[p] = true
		}
	}
}
