package daily

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/robalobadob/wordsearch/internal/game"
	"github.com/robalobadob/wordsearch/internal/storage"
)

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	ts := time.Date(2026, 3, 1, 5, 0, 0, 0, loc) // still Feb 28 in UTC
	if got := DateKey(ts); got != "2026-02-28" {
		t.Errorf("DateKey = %q, want 2026-02-28", got)
	}
}

func TestSeed_StablePerDay(t *testing.T) {
	morning := time.Date(2026, 5, 4, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 5, 4, 23, 0, 0, 0, time.UTC)
	tomorrow := morning.Add(24 * time.Hour)

	if Seed(morning, "salt") != Seed(evening, "salt") {
		t.Error("seed changed within a day")
	}
	if Seed(morning, "salt") == Seed(tomorrow, "salt") {
		t.Error("seed did not change across days")
	}
	if Seed(morning, "salt") == Seed(morning, "pepper") {
		t.Error("seed ignores salt")
	}
}

func TestSeed_SameDailyGrid(t *testing.T) {
	words := []game.WordSpec{{Word: "HEART"}, {Word: "BRAIN"}, {Word: "PLANT"}}
	day := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	g1, p1 := game.Generate(words, 8, game.NewRandom(Seed(day, "s")))
	g2, p2 := game.Generate(words, 8, game.NewRandom(Seed(day.Add(time.Hour), "s")))
	if !reflect.DeepEqual(g1, g2) || !reflect.DeepEqual(p1, p2) {
		t.Error("two players on the same day got different puzzles")
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "daily.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.Migrate(db); err != nil {
		t.Fatal(err)
	}
	return NewStore(db)
}

func TestStore_ResultsAndLeaderboard(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	date := "2026-01-02"

	played, err := s.AlreadyPlayed(ctx, "alice", date)
	if err != nil || played {
		t.Fatalf("AlreadyPlayed = %v, %v; want false", played, err)
	}

	results := []Result{
		{UserID: "alice", Date: date, Difficulty: "intermediate", Score: 300, ElapsedSeconds: 150, WordsFound: 10},
		{UserID: "bob", Date: date, Difficulty: "intermediate", Score: 300, ElapsedSeconds: 120, WordsFound: 10},
		{UserID: "carol", Date: date, Difficulty: "intermediate", Score: 250, ElapsedSeconds: 90, WordsFound: 10},
		{UserID: "dave", Date: "2026-01-03", Difficulty: "intermediate", Score: 999, ElapsedSeconds: 1, WordsFound: 10},
	}
	for _, r := range results {
		if err := s.InsertResult(ctx, r); err != nil {
			t.Fatalf("InsertResult: %v", err)
		}
	}
	// Replays on the same day are ignored.
	if err := s.InsertResult(ctx, Result{UserID: "carol", Date: date, Difficulty: "intermediate", Score: 1000}); err != nil {
		t.Fatal(err)
	}

	if played, _ := s.AlreadyPlayed(ctx, "alice", date); !played {
		t.Error("alice should have played")
	}

	top, err := s.Leaderboard(ctx, date, 0)
	if err != nil {
		t.Fatal(err)
	}
	var order []string
	for _, r := range top {
		order = append(order, r.UserID)
	}
	if want := []string{"bob", "alice", "carol"}; !reflect.DeepEqual(order, want) {
		t.Errorf("leaderboard order = %v, want %v", order, want)
	}
	if top[2].Score != 250 {
		t.Errorf("carol's score = %d, replay should have been ignored", top[2].Score)
	}
}
