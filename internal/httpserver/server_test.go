package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/robalobadob/wordsearch/internal/config"
	"github.com/robalobadob/wordsearch/internal/game"
	"github.com/robalobadob/wordsearch/internal/storage"
	"github.com/robalobadob/wordsearch/internal/store"
	"github.com/robalobadob/wordsearch/internal/words"
)

const testCatalog = `
levels:
  - difficulty: beginner
    title: Beginner
    gridSize: 6
    words: [{word: CAT, hint: pet}, {word: OWL, hint: bird}, {word: DOG, hint: friend}]
  - difficulty: intermediate
    gridSize: 7
    words: [{word: HORSE}, {word: TIGER}]
  - difficulty: advanced
    gridSize: 8
    words: [{word: GIRAFFE}, {word: PENGUIN}]
`

type testEnv struct {
	srv    *Server
	ts     *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T, tick time.Duration) *testEnv {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := storage.Migrate(db); err != nil {
		t.Fatal(err)
	}
	cat, err := words.Parse(strings.NewReader(testCatalog))
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Config{
		JWTSecret:       "test-secret",
		JWTExpiresDays:  1,
		CookieName:      "wordsearch_token",
		ClientOrigin:    "http://localhost:5173",
		DailySalt:       "salt",
		DailyDifficulty: "beginner",
		TickInterval:    tick,
	}
	srv := New(Deps{Config: cfg, Store: store.NewMemoryStore(), DB: db, Catalog: cat})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
		_ = db.Close()
	})
	return &testEnv{srv: srv, ts: ts, client: newClient(t)}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

// do sends a JSON request and decodes the response into out (if non-nil).
func (e *testEnv) do(t *testing.T, c *http.Client, method, path string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

// solution reads the hidden placements straight from the controller.
func (e *testEnv) solution(t *testing.T, id string) []game.PlacedWord {
	t.Helper()
	c, err := e.srv.store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("puzzle %s: %v", id, err)
	}
	return c.Snapshot().Words
}

// selectWord drags across w and returns the outcome.
func (e *testEnv) selectWord(t *testing.T, c *http.Client, id string, w game.PlacedWord) game.Outcome {
	t.Helper()
	first, last := w.Cells[0], w.Cells[len(w.Cells)-1]
	base := "/puzzle/" + id + "/drag/"
	if code := e.do(t, c, "POST", base+"start", first, nil); code != http.StatusOK {
		t.Fatalf("drag/start = %d", code)
	}
	var p pathRes
	if code := e.do(t, c, "POST", base+"over", last, &p); code != http.StatusOK {
		t.Fatalf("drag/over = %d", code)
	}
	if len(p.Path) != len(w.Word) {
		t.Fatalf("path %v does not cover %s", p.Path, w.Word)
	}
	var out game.Outcome
	if code := e.do(t, c, "POST", base+"end", nil, &out); code != http.StatusOK {
		t.Fatalf("drag/end = %d", code)
	}
	return out
}

// solve finds every word and returns the last outcome.
func (e *testEnv) solve(t *testing.T, c *http.Client, id string) game.Outcome {
	t.Helper()
	var out game.Outcome
	for _, w := range e.solution(t, id) {
		out = e.selectWord(t, c, id, w)
		if out.Word == nil || out.Word.Word != w.Word {
			t.Fatalf("selecting %s: outcome %+v", w.Word, out)
		}
	}
	return out
}

func (e *testEnv) newPuzzle(t *testing.T, c *http.Client, difficulty string) puzzleView {
	t.Helper()
	seed := uint64(7)
	var v puzzleView
	if code := e.do(t, c, "POST", "/puzzle/new", newPuzzleReq{Difficulty: difficulty, Seed: &seed}, &v); code != http.StatusCreated {
		t.Fatalf("new puzzle = %d", code)
	}
	return v
}

func TestHealthAndLevels(t *testing.T) {
	e := newTestEnv(t, time.Hour)

	var health map[string]bool
	if code := e.do(t, e.client, "GET", "/health", nil, &health); code != 200 || !health["ok"] {
		t.Fatalf("health = %d %v", code, health)
	}

	var infos []words.Info
	if code := e.do(t, e.client, "GET", "/levels", nil, &infos); code != 200 {
		t.Fatalf("levels = %d", code)
	}
	if len(infos) != 3 || infos[0].Difficulty != game.Beginner || infos[2].PointsPerWord != 20 {
		t.Errorf("levels = %+v", infos)
	}
}

func TestNewPuzzle_Validation(t *testing.T) {
	e := newTestEnv(t, time.Hour)

	var errBody map[string]string
	if code := e.do(t, e.client, "POST", "/puzzle/new", map[string]string{"difficulty": "expert"}, &errBody); code != http.StatusBadRequest {
		t.Errorf("unknown difficulty = %d", code)
	}
	if errBody["error"] != "unknown_difficulty" {
		t.Errorf("error body = %v", errBody)
	}
	if code := e.do(t, e.client, "GET", "/puzzle/nope", nil, nil); code != http.StatusNotFound {
		t.Errorf("unknown puzzle = %d", code)
	}
}

func TestPuzzle_HidesCellsUntilFound(t *testing.T) {
	e := newTestEnv(t, time.Hour)
	v := e.newPuzzle(t, e.client, "Beginner")

	if v.GridSize != 6 || len(v.Grid) != 6 || v.HUD.Status != game.StatusPlaying {
		t.Fatalf("view = %+v", v)
	}
	for _, w := range v.Words {
		if w.Cells != nil || w.Length != len(w.Word) {
			t.Errorf("unfound word leaked: %+v", w)
		}
	}

	sol := e.solution(t, v.ID)
	e.selectWord(t, e.client, v.ID, sol[0])

	var got puzzleView
	e.do(t, e.client, "GET", "/puzzle/"+v.ID, nil, &got)
	if !got.Words[0].Found || len(got.Words[0].Cells) != len(sol[0].Word) {
		t.Errorf("found word should expose cells: %+v", got.Words[0])
	}
	if got.HUD.FoundCount != 1 || got.HUD.Score != 10 {
		t.Errorf("HUD = %+v", got.HUD)
	}
}

func TestPuzzle_MissChangesNothing(t *testing.T) {
	e := newTestEnv(t, time.Hour)
	v := e.newPuzzle(t, e.client, "beginner")

	// Knight's-move hover: non-collinear, path stays at the anchor.
	var p pathRes
	e.do(t, e.client, "POST", "/puzzle/"+v.ID+"/drag/start", game.Cell{Row: 0, Col: 0}, nil)
	e.do(t, e.client, "POST", "/puzzle/"+v.ID+"/drag/over", game.Cell{Row: 1, Col: 2}, &p)
	if len(p.Path) != 1 {
		t.Errorf("path = %v, want anchor only", p.Path)
	}
	var out game.Outcome
	e.do(t, e.client, "POST", "/puzzle/"+v.ID+"/drag/end", nil, &out)
	if out.Word != nil || out.HUD.FoundCount != 0 || out.HUD.Score != 0 {
		t.Errorf("miss outcome = %+v", out)
	}
}

func TestPuzzle_PlayToCompletionAndProgress(t *testing.T) {
	e := newTestEnv(t, time.Hour)
	v := e.newPuzzle(t, e.client, "beginner")

	out := e.solve(t, e.client, v.ID)
	if out.Result == nil {
		t.Fatal("last word did not complete the level")
	}
	want := len(v.Words)*10 + game.TimeBudgetSeconds
	if out.Result.Score != want || out.HUD.Status != game.StatusCompleted {
		t.Errorf("result = %+v, hud = %+v, want score %d", out.Result, out.HUD, want)
	}
	if out.Result.Rating.Stars != 5 {
		t.Errorf("rating = %+v", out.Result.Rating)
	}

	// Drags after completion are ignored.
	var p pathRes
	e.do(t, e.client, "POST", "/puzzle/"+v.ID+"/drag/start", game.Cell{}, &p)
	if len(p.Path) != 0 {
		t.Errorf("drag after completion returned %v", p.Path)
	}

	var status string
	var score int
	if err := e.srv.db.QueryRow(`SELECT status, score FROM games WHERE status='completed'`).Scan(&status, &score); err != nil {
		t.Fatalf("completed row: %v", err)
	}
	if score != want {
		t.Errorf("stored score = %d, want %d", score, want)
	}

	// next → intermediate → advanced → 409.
	for _, d := range []game.Difficulty{game.Intermediate, game.Advanced} {
		var nv puzzleView
		if code := e.do(t, e.client, "POST", "/puzzle/"+v.ID+"/next", nil, &nv); code != http.StatusOK {
			t.Fatalf("next = %d", code)
		}
		if nv.ID != v.ID || nv.Difficulty != d || nv.HUD.FoundCount != 0 {
			t.Errorf("next view = %+v, want %s", nv, d)
		}
	}
	if code := e.do(t, e.client, "POST", "/puzzle/"+v.ID+"/next", nil, nil); code != http.StatusConflict {
		t.Errorf("next at last level = %d, want 409", code)
	}

	var again puzzleView
	if code := e.do(t, e.client, "POST", "/puzzle/"+v.ID+"/again", nil, &again); code != http.StatusOK || again.Difficulty != game.Advanced {
		t.Errorf("again = %d %+v", code, again)
	}

	var abandoned int
	_ = e.srv.db.QueryRow(`SELECT COUNT(1) FROM games WHERE status='abandoned'`).Scan(&abandoned)
	if abandoned != 2 {
		t.Errorf("abandoned rows = %d, want 2 (intermediate, first advanced)", abandoned)
	}

	if code := e.do(t, e.client, "DELETE", "/puzzle/"+v.ID, nil, nil); code != http.StatusOK {
		t.Errorf("delete = %d", code)
	}
	if code := e.do(t, e.client, "GET", "/puzzle/"+v.ID, nil, nil); code != http.StatusNotFound {
		t.Errorf("get after delete = %d", code)
	}
}

func TestPuzzle_LateCompletionFinishesItsOwnRow(t *testing.T) {
	e := newTestEnv(t, time.Hour)
	v := e.newPuzzle(t, e.client, "beginner")

	var firstRow string
	if err := e.srv.db.QueryRow(`SELECT id FROM games`).Scan(&firstRow); err != nil {
		t.Fatal(err)
	}
	if code := e.do(t, e.client, "POST", "/puzzle/"+v.ID+"/again", nil, nil); code != http.StatusOK {
		t.Fatalf("again = %d", code)
	}

	// The first instance's completion hook lands after the restart.
	e.srv.onLevelComplete(v.ID, game.Result{
		Instance:   1,
		Difficulty: game.Beginner,
		Score:      330,
		FoundCount: 3,
		TotalWords: 3,
	})

	var status string
	var score int
	if err := e.srv.db.QueryRow(`SELECT status, score FROM games WHERE id=?`, firstRow).Scan(&status, &score); err != nil {
		t.Fatal(err)
	}
	if status != string(game.StatusCompleted) || score != 330 {
		t.Errorf("first row = %s/%d, want completed/330", status, score)
	}
	if err := e.srv.db.QueryRow(`SELECT status FROM games WHERE id<>?`, firstRow).Scan(&status); err != nil {
		t.Fatal(err)
	}
	if status != string(game.StatusPlaying) {
		t.Errorf("second row = %s, want playing", status)
	}
}

func TestAuth_StatsAndClaim(t *testing.T) {
	e := newTestEnv(t, time.Hour)

	// Guest plays one puzzle, then signs up: the game is claimed.
	guest := e.newPuzzle(t, e.client, "beginner")
	e.solve(t, e.client, guest.ID)

	creds := credentials{Username: "alice", Password: "correct horse"}
	if code := e.do(t, e.client, "POST", "/auth/signup", creds, nil); code != http.StatusOK {
		t.Fatalf("signup = %d", code)
	}
	if code := e.do(t, newClient(t), "POST", "/auth/signup", creds, nil); code != http.StatusConflict {
		t.Errorf("duplicate signup = %d", code)
	}

	var me authUser
	if code := e.do(t, e.client, "GET", "/auth/me", nil, &me); code != http.StatusOK || me.Username != "alice" {
		t.Fatalf("me = %d %+v", code, me)
	}

	v := e.newPuzzle(t, e.client, "intermediate")
	out := e.solve(t, e.client, v.ID)

	var stats map[string]any
	e.do(t, e.client, "GET", "/stats/me", nil, &stats)
	if stats["gamesPlayed"] != float64(1) || stats["wins"] != float64(1) || stats["bestScore"] != float64(out.Result.Score) {
		t.Errorf("stats = %v", stats)
	}

	var games []gameRow
	e.do(t, e.client, "GET", "/games/mine", nil, &games)
	if len(games) != 2 {
		t.Fatalf("games/mine = %+v, want guest game + intermediate", games)
	}
	for _, g := range games {
		if g.Status != string(game.StatusCompleted) {
			t.Errorf("game %s status %s", g.ID, g.Status)
		}
	}

	if code := e.do(t, e.client, "POST", "/auth/logout", nil, nil); code != http.StatusOK {
		t.Errorf("logout = %d", code)
	}
	if code := e.do(t, e.client, "GET", "/auth/me", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("me after logout = %d", code)
	}

	other := newClient(t)
	if code := e.do(t, other, "POST", "/auth/login", credentials{Username: "ALICE", Password: "wrong password"}, nil); code != http.StatusUnauthorized {
		t.Errorf("bad login = %d", code)
	}
	if code := e.do(t, other, "POST", "/auth/login", credentials{Username: "ALICE", Password: "correct horse"}, nil); code != http.StatusOK {
		t.Errorf("login = %d", code)
	}
}

func TestDaily_OncePerDay(t *testing.T) {
	e := newTestEnv(t, time.Hour)

	var first dailyNewRes
	if code := e.do(t, e.client, "POST", "/daily/new", nil, &first); code != http.StatusCreated || first.Puzzle == nil {
		t.Fatalf("daily/new = %d %+v", code, first)
	}
	var again dailyNewRes
	e.do(t, e.client, "POST", "/daily/new", nil, &again)
	if again.Puzzle == nil || again.Puzzle.ID != first.Puzzle.ID {
		t.Errorf("second daily/new should reuse the puzzle: %+v", again)
	}

	// A second player gets the same grid.
	var other dailyNewRes
	e.do(t, newClient(t), "POST", "/daily/new", nil, &other)
	if other.Puzzle == nil || other.Puzzle.ID == first.Puzzle.ID {
		t.Fatalf("other player = %+v", other)
	}
	if fmt.Sprint(other.Puzzle.Grid.Rows()) != fmt.Sprint(first.Puzzle.Grid.Rows()) {
		t.Error("daily grids differ between players")
	}

	if code := e.do(t, e.client, "POST", "/puzzle/"+first.Puzzle.ID+"/again", nil, nil); code != http.StatusConflict {
		t.Errorf("restart daily = %d, want 409", code)
	}
	if code := e.do(t, e.client, "DELETE", "/puzzle/"+first.Puzzle.ID, nil, nil); code != http.StatusConflict {
		t.Errorf("delete daily = %d, want 409", code)
	}
	var reopened dailyNewRes
	e.do(t, e.client, "POST", "/daily/new", nil, &reopened)
	if reopened.Puzzle == nil || reopened.Puzzle.ID != first.Puzzle.ID {
		t.Errorf("daily after refused delete = %+v, want the original puzzle", reopened)
	}

	out := e.solve(t, e.client, first.Puzzle.ID)

	var done dailyNewRes
	e.do(t, e.client, "POST", "/daily/new", nil, &done)
	if !done.Played || done.Puzzle != nil {
		t.Errorf("after finishing: %+v", done)
	}

	var lb leaderboardRes
	e.do(t, e.client, "GET", "/daily/leaderboard", nil, &lb)
	if len(lb.Top) != 1 || lb.Top[0].Score != out.Result.Score || lb.Date != first.Date {
		t.Errorf("leaderboard = %+v", lb)
	}
}
