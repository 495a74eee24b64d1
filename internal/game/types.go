// internal/game/types.go
//
// Core type definitions for the word-search engine.
// Defines:
//   - Difficulty: tier that fixes grid size, word list and per-word points.
//   - Cell / Grid: coordinates and the square letter matrix.
//   - WordSpec / PlacedWord: catalog input and its placement in a grid.
//   - Status / Session: lifecycle state of one puzzle instance.

package game

import (
	"encoding/json"
	"errors"
	"strings"
)

// Difficulty is one of the three puzzle tiers.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// ErrUnknownDifficulty is returned by ParseDifficulty for unrecognised tiers.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Difficulties lists every tier in progression order.
func Difficulties() []Difficulty {
	return []Difficulty{Beginner, Intermediate, Advanced}
}

// ParseDifficulty normalises s and maps it to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Beginner, Intermediate, Advanced:
		return d, nil
	}
	return "", ErrUnknownDifficulty
}

// Next reports the tier that follows d. The second value is false for the last tier.
func (d Difficulty) Next() (Difficulty, bool) {
	switch d {
	case Beginner:
		return Intermediate, true
	case Intermediate:
		return Advanced, true
	}
	return "", false
}

// Cell is a grid coordinate.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// In reports whether c lies inside a size×size grid.
func (c Cell) In(size int) bool {
	return c.Row >= 0 && c.Row < size && c.Col >= 0 && c.Col < size
}

// Grid is a square matrix of uppercase ASCII letters, indexed [row][col].
// A zero byte marks an unfilled cell during generation only.
type Grid [][]byte

// Size returns the grid's side length.
func (g Grid) Size() int { return len(g) }

// At returns the letter at c. Callers must check bounds.
func (g Grid) At(c Cell) byte { return g[c.Row][c.Col] }

// Rows renders each row as a string.
func (g Grid) Rows() []string {
	out := make([]string, len(g))
	for i, row := range g {
		out[i] = string(row)
	}
	return out
}

// Clone returns a deep copy of g.
func (g Grid) Clone() Grid {
	cp := make(Grid, len(g))
	for i, row := range g {
		cp[i] = append([]byte(nil), row...)
	}
	return cp
}

// MarshalJSON encodes the grid as one string per row instead of base64 blobs.
func (g Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Rows())
}

// UnmarshalJSON accepts the row-string form written by MarshalJSON.
func (g *Grid) UnmarshalJSON(b []byte) error {
	var rows []string
	if err := json.Unmarshal(b, &rows); err != nil {
		return err
	}
	out := make(Grid, len(rows))
	for i, row := range rows {
		out[i] = []byte(row)
	}
	*g = out
	return nil
}

// WordSpec is one catalog entry: the word to hide and the hint shown to the player.
type WordSpec struct {
	Word string `json:"word" yaml:"word"`
	Hint string `json:"hint" yaml:"hint"`
}

// PlacedWord is a word that the generator managed to fit into the grid.
// Cells[i] holds Word[i].
type PlacedWord struct {
	Word  string `json:"word"`
	Hint  string `json:"hint"`
	Found bool   `json:"found"`
	Cells []Cell `json:"cells"`
}

func (w PlacedWord) clone() PlacedWord {
	w.Cells = append([]Cell(nil), w.Cells...)
	return w
}

// Level is everything the controller needs to generate one puzzle instance.
type Level struct {
	Difficulty Difficulty
	GridSize   int
	Words      []WordSpec
}

// Status is the controller's lifecycle state.
type Status string

const (
	StatusGenerating Status = "generating"
	StatusPlaying    Status = "playing"
	StatusCompleted  Status = "completed"
)

// Session is the single owned value describing one puzzle instance.
type Session struct {
	ID             string       `json:"id"`
	Difficulty     Difficulty   `json:"difficulty"`
	GridSize       int          `json:"gridSize"`
	Grid           Grid         `json:"grid"`
	Words          []PlacedWord `json:"words"`
	FoundCount     int          `json:"foundCount"`
	Score          int          `json:"score"`
	ElapsedSeconds int          `json:"elapsedSeconds"`
	Status         Status       `json:"status"`
	Dropped        int          `json:"dropped"` // catalog words lost to placement exhaustion
	Instance       uint64       `json:"instance"` // bumped by every Start on the controller
}

// HUD is the live counter set shown while playing.
type HUD struct {
	FoundCount     int    `json:"foundCount"`
	TotalWords     int    `json:"totalWords"`
	Score          int    `json:"score"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
	Status         Status `json:"status"`
}

// Result is emitted once, when the last word of an instance is found.
type Result struct {
	Difficulty     Difficulty `json:"difficulty"`
	Score          int        `json:"score"`
	ElapsedSeconds int        `json:"elapsedSeconds"`
	FoundCount     int        `json:"foundCount"`
	TotalWords     int        `json:"totalWords"`
	Rating         Rating     `json:"rating"`
	Instance       uint64     `json:"instance"`
}
