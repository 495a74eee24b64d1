package game

// Match looks for an unfound word placed exactly along path, in either direction.
//
// Two checks must both pass: the letters read along the path (or its reverse)
// spell the word, and the word's cells equal the path (or its reverse)
// coordinate by coordinate. The same letter run elsewhere in the grid does not
// count. On success the word is marked found and a pointer into words is
// returned; otherwise words is untouched and nil is returned.
func Match(grid Grid, path []Cell, words []PlacedWord) *PlacedWord {
	if len(path) == 0 {
		return nil
	}
	forward := grid.Letters(path)
	reverse := reverseString(forward)
	back := reverseCells(path)

	for i := range words {
		w := &words[i]
		if w.Found {
			continue
		}
		if w.Word != forward && w.Word != reverse {
			continue
		}
		if !sameCells(w.Cells, path) && !sameCells(w.Cells, back) {
			continue
		}
		w.Found = true
		return w
	}
	return nil
}

// Letters reads the grid along path. Out-of-bounds cells are skipped.
func (g Grid) Letters(path []Cell) string {
	b := make([]byte, 0, len(path))
	for _, c := range path {
		if c.In(g.Size()) {
			b = append(b, g.At(c))
		}
	}
	return string(b)
}

func sameCells(a, b []Cell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func reverseCells(cells []Cell) []Cell {
	out := make([]Cell, len(cells))
	for i, c := range cells {
		out[len(cells)-1-i] = c
	}
	return out
}

func reverseString(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
