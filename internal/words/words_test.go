package words

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robalobadob/wordsearch/internal/game"
)

func TestInit_EmbeddedCatalog(t *testing.T) {
	if err := Init(""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	cat := Default()
	if cat == nil {
		t.Fatal("Default returned nil")
	}
	infos := cat.Infos()
	if len(infos) != 3 {
		t.Fatalf("got %d levels, want 3", len(infos))
	}
	for i, d := range game.Difficulties() {
		if infos[i].Difficulty != d {
			t.Errorf("infos[%d] = %s, want %s", i, infos[i].Difficulty, d)
		}
		lvl, ok := cat.Level(d)
		if !ok {
			t.Fatalf("missing level %s", d)
		}
		if len(lvl.Words) != 10 {
			t.Errorf("%s has %d words, want 10", d, len(lvl.Words))
		}
		for _, w := range lvl.Words {
			if len(w.Word) > lvl.GridSize {
				t.Errorf("%s: %s longer than grid %d", d, w.Word, lvl.GridSize)
			}
		}
	}
}

func TestParse_RejectsAtBoundary(t *testing.T) {
	src := `
levels:
  - difficulty: Beginner
    gridSize: 5
    words:
      - { word: " cat ", hint: "pet" }
      - { word: ELEPHANT, hint: "too long" }
      - { word: "DOG-2", hint: "not letters" }
      - { word: CAT, hint: "duplicate" }
      - { word: owl, hint: "bird" }
`
	cat, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	lvl, ok := cat.Level(game.Beginner)
	if !ok {
		t.Fatal("beginner level missing")
	}
	var got []string
	for _, w := range lvl.Words {
		got = append(got, w.Word)
	}
	if strings.Join(got, ",") != "CAT,OWL" {
		t.Errorf("words = %v, want [CAT OWL]", got)
	}
	if _, ok := cat.Level(game.Advanced); ok {
		t.Error("advanced should be absent")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown difficulty": "levels:\n  - difficulty: expert\n    gridSize: 5\n    words: [{word: CAT}]\n",
		"tiny grid":          "levels:\n  - difficulty: beginner\n    gridSize: 1\n    words: [{word: A}]\n",
		"no usable words":    "levels:\n  - difficulty: beginner\n    gridSize: 3\n    words: [{word: LONGWORD}]\n",
		"unknown field":      "levels:\n  - difficulty: beginner\n    gridSize: 5\n    colour: red\n    words: [{word: CAT}]\n",
		"duplicate level":    "levels:\n  - {difficulty: beginner, gridSize: 5, words: [{word: CAT}]}\n  - {difficulty: beginner, gridSize: 5, words: [{word: DOG}]}\n",
		"empty":              "levels: []\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(src)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLevel_ReturnsCopy(t *testing.T) {
	cat, err := Parse(strings.NewReader("levels:\n  - {difficulty: beginner, gridSize: 5, words: [{word: CAT}]}\n"))
	if err != nil {
		t.Fatal(err)
	}
	l, _ := cat.Level(game.Beginner)
	l.Words[0].Word = "DOG"
	again, _ := cat.Level(game.Beginner)
	if again.Words[0].Word != "CAT" {
		t.Error("Level leaked catalog storage")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	src := "levels:\n  - {difficulty: advanced, gridSize: 9, words: [{word: penguin, hint: bird}, {word: ZEBRA}]}\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cat, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	lvl, ok := cat.Level(game.Advanced)
	if !ok {
		t.Fatal("advanced level missing")
	}
	if lvl.GridSize != 9 || len(lvl.Words) != 2 || lvl.Words[0].Word != "PENGUIN" || lvl.Words[0].Hint != "bird" {
		t.Errorf("level = %+v", lvl)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}
