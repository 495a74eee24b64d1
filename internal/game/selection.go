package game

// SelectionTracker turns a drag gesture into a straight-line cell path.
//
// Hovering a cell that is not collinear with the anchor (or lies outside the
// grid) keeps the last valid path, so the selection stays clamped to its
// current line until the pointer returns to one.
type SelectionTracker struct {
	size   int
	anchor Cell
	path   []Cell
	active bool
}

// NewSelectionTracker returns an idle tracker for a size×size grid.
func NewSelectionTracker(size int) *SelectionTracker {
	return &SelectionTracker{size: size}
}

// Active reports whether a drag is in progress.
func (t *SelectionTracker) Active() bool { return t.active }

// Start anchors a new drag at c. A start outside the grid leaves the tracker idle.
func (t *SelectionTracker) Start(c Cell) []Cell {
	if !c.In(t.size) {
		t.reset()
		return nil
	}
	t.anchor = c
	t.path = []Cell{c}
	t.active = true
	return t.Path()
}

// Over extends the drag to c and returns the current path.
func (t *SelectionTracker) Over(c Cell) []Cell {
	if !t.active {
		return nil
	}
	if c.In(t.size) {
		if path, ok := LinePath(t.anchor, c); ok {
			t.path = path
		}
	}
	return t.Path()
}

// End finishes the drag and returns the final path.
func (t *SelectionTracker) End() []Cell {
	if !t.active {
		return nil
	}
	path := t.path
	t.reset()
	return path
}

// Path returns a copy of the current path.
func (t *SelectionTracker) Path() []Cell {
	return append([]Cell(nil), t.path...)
}

func (t *SelectionTracker) reset() {
	t.anchor = Cell{}
	t.path = nil
	t.active = false
}

// LinePath returns every cell from 'from' to 'to' inclusive when the two lie
// on one horizontal, vertical or 45° diagonal line.
func LinePath(from, to Cell) ([]Cell, bool) {
	dr, dc := to.Row-from.Row, to.Col-from.Col
	if dr != 0 && dc != 0 && abs(dr) != abs(dc) {
		return nil, false
	}
	steps := max(abs(dr), abs(dc))
	sr, sc := sign(dr), sign(dc)
	path := make([]Cell, 0, steps+1)
	for i := 0; i <= steps; i++ {
		path = append(path, Cell{Row: from.Row + i*sr, Col: from.Col + i*sc})
	}
	return path, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
