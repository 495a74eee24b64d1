// internal/words/words.go
//
// Word catalog for the three difficulty tiers.
//
// Responsibilities:
//   - Parse the YAML catalog (grid size, level-selector info, word list per tier).
//   - Reject unusable words at the boundary so the generator never sees them.
//   - Provide a process-wide default catalog loaded once.
//
// Initialization behavior (Init):
//   1. If a catalog path is configured (WORDS_CATALOG_FILE), load it.
//   2. Otherwise fall back to the embedded assets/catalog.yaml.
//
// Constraints:
//   • Words are trimmed and upper-cased; anything but A–Z is rejected.
//   • A word longer than its level's grid size is rejected.
//   • Duplicate words within one level are rejected.
//   • Initialization is run once (sync.Once).

package words

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/wordsearch/assets"
	"github.com/robalobadob/wordsearch/internal/game"
)

const minGridSize = 2

// File is the on-disk catalog shape.
type File struct {
	Levels []LevelDef `yaml:"levels"`
}

// LevelDef describes one tier in the catalog file.
type LevelDef struct {
	Difficulty   string          `yaml:"difficulty"`
	Title        string          `yaml:"title"`
	Description  string          `yaml:"description"`
	GridSize     int             `yaml:"gridSize"`
	Subjects     []string        `yaml:"subjects"`
	TimeEstimate string          `yaml:"timeEstimate"`
	Words        []game.WordSpec `yaml:"words"`
}

// Info is the level-selector summary for one tier.
type Info struct {
	Difficulty    game.Difficulty `json:"level"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	GridSize      int             `json:"gridSize"`
	WordCount     int             `json:"wordCount"`
	Subjects      []string        `json:"subjects"`
	TimeEstimate  string          `json:"timeEstimate"`
	PointsPerWord int             `json:"pointsPerWord"`
}

// Catalog holds validated levels keyed by difficulty.
type Catalog struct {
	levels map[game.Difficulty]game.Level
	infos  map[game.Difficulty]Info
}

// Parse reads and validates a YAML catalog.
func Parse(r io.Reader) (*Catalog, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("words: decode catalog: %w", err)
	}
	return build(f)
}

// LoadFile parses the catalog at path.
func LoadFile(path string) (*Catalog, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("words: open catalog %q: %w", path, err)
	}
	defer fh.Close()
	return Parse(fh)
}

func build(f File) (*Catalog, error) {
	c := &Catalog{
		levels: make(map[game.Difficulty]game.Level),
		infos:  make(map[game.Difficulty]Info),
	}
	for _, def := range f.Levels {
		d, err := game.ParseDifficulty(def.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("words: level %q: %w", def.Difficulty, err)
		}
		if _, dup := c.levels[d]; dup {
			return nil, fmt.Errorf("words: level %q defined twice", d)
		}
		if def.GridSize < minGridSize {
			return nil, fmt.Errorf("words: level %q: grid size %d below %d", d, def.GridSize, minGridSize)
		}
		list := validWords(d, def.GridSize, def.Words)
		if len(list) == 0 {
			return nil, fmt.Errorf("words: level %q has no usable words", d)
		}
		c.levels[d] = game.Level{Difficulty: d, GridSize: def.GridSize, Words: list}
		c.infos[d] = Info{
			Difficulty:    d,
			Title:         def.Title,
			Description:   def.Description,
			GridSize:      def.GridSize,
			WordCount:     len(list),
			Subjects:      def.Subjects,
			TimeEstimate:  def.TimeEstimate,
			PointsPerWord: game.PointsForWord(d),
		}
	}
	if len(c.levels) == 0 {
		return nil, errors.New("words: catalog has no levels")
	}
	return c, nil
}

// validWords normalises the list and drops entries the generator must never receive.
func validWords(d game.Difficulty, size int, in []game.WordSpec) []game.WordSpec {
	out := make([]game.WordSpec, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, spec := range in {
		w := strings.ToUpper(strings.TrimSpace(spec.Word))
		switch {
		case w == "" || !isAlpha(w):
			log.Warn().Str("level", string(d)).Str("word", spec.Word).Msg("catalog word rejected: letters only")
			continue
		case len(w) > size:
			log.Warn().Str("level", string(d)).Str("word", w).Int("gridSize", size).Msg("catalog word rejected: longer than grid")
			continue
		}
		if _, dup := seen[w]; dup {
			log.Warn().Str("level", string(d)).Str("word", w).Msg("catalog word rejected: duplicate")
			continue
		}
		seen[w] = struct{}{}
		out = append(out, game.WordSpec{Word: w, Hint: strings.TrimSpace(spec.Hint)})
	}
	return out
}

// isAlpha reports whether s is all uppercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Level returns the generator input for d.
func (c *Catalog) Level(d game.Difficulty) (game.Level, bool) {
	l, ok := c.levels[d]
	if !ok {
		return game.Level{}, false
	}
	l.Words = append([]game.WordSpec(nil), l.Words...)
	return l, true
}

// Infos returns level-selector data in progression order.
func (c *Catalog) Infos() []Info {
	out := make([]Info, 0, len(c.infos))
	for _, d := range game.Difficulties() {
		if info, ok := c.infos[d]; ok {
			out = append(out, info)
		}
	}
	return out
}

var (
	initOnce   sync.Once
	defaultCat *Catalog
	initialErr error
)

// Init loads the default catalog exactly once. An empty path selects the
// embedded catalog.
func Init(path string) error {
	initOnce.Do(func() {
		if path != "" {
			defaultCat, initialErr = LoadFile(path)
			return
		}
		raw, err := assets.Catalog()
		if err != nil {
			initialErr = fmt.Errorf("words: read embedded catalog: %w", err)
			return
		}
		defaultCat, initialErr = Parse(bytes.NewReader(raw))
	})
	return initialErr
}

// Default returns the catalog loaded by Init, or nil if Init failed or was not called.
func Default() *Catalog { return defaultCat }
