// internal/game/grid.go
//
// Grid generation: places a word list into a square letter grid.
//
// Each word gets up to placementAttempts random (start, direction) draws in
// one of eight directions. A draw is rejected if it leaves the grid or hits a
// cell that already holds a different letter, so crossing words may share
// cells that need the same letter. Words that exhaust their attempts are
// dropped. Remaining empty cells are filled with random letters.
//
// Generation is a pure function of its inputs and the RandomSource, so a
// fixed seed reproduces the same puzzle.

package game

import "math/rand/v2"

const (
	placementAttempts = 100
	alphabet          = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// directions holds the eight unit steps (row, col) around a cell.
var directions = [8]Cell{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// RandomSource supplies uniformly distributed ints in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// NewRandom returns a deterministic PCG-backed source for seed.
func NewRandom(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate fills a size×size grid with words and random letters.
// The returned slice holds only the words that were placed, in input order.
func Generate(words []WordSpec, size int, rng RandomSource) (Grid, []PlacedWord) {
	if size <= 0 {
		return Grid{}, nil
	}
	grid := make(Grid, size)
	for i := range grid {
		grid[i] = make([]byte, size)
	}

	placed := make([]PlacedWord, 0, len(words))
	for _, spec := range words {
		if spec.Word == "" {
			continue
		}
		if cells, ok := place(grid, spec.Word, rng); ok {
			placed = append(placed, PlacedWord{Word: spec.Word, Hint: spec.Hint, Cells: cells})
		}
	}

	for _, row := range grid {
		for c := range row {
			if row[c] == 0 {
				row[c] = alphabet[rng.IntN(len(alphabet))]
			}
		}
	}
	return grid, placed
}

// place tries to commit word into grid and returns the cells it occupies.
func place(grid Grid, word string, rng RandomSource) ([]Cell, bool) {
	size := grid.Size()
	for attempt := 0; attempt < placementAttempts; attempt++ {
		dir := directions[rng.IntN(len(directions))]
		start := Cell{Row: rng.IntN(size), Col: rng.IntN(size)}

		cells, ok := fit(grid, word, start, dir)
		if !ok {
			continue
		}
		for i, c := range cells {
			grid[c.Row][c.Col] = word[i]
		}
		return cells, true
	}
	return nil, false
}

// fit computes the cells for word from start along dir, or false if any cell
// is out of bounds or holds a conflicting letter.
func fit(grid Grid, word string, start, dir Cell) ([]Cell, bool) {
	size := grid.Size()
	cells := make([]Cell, 0, len(word))
	for i := 0; i < len(word); i++ {
		c := Cell{Row: start.Row + i*dir.Row, Col: start.Col + i*dir.Col}
		if !c.In(size) {
			return nil, false
		}
		if cur := grid.At(c); cur != 0 && cur != word[i] {
			return nil, false
		}
		cells = append(cells, c)
	}
	return cells, true
}
