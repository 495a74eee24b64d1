// internal/httpserver/puzzles.go
//
// HTTP routes for free-play puzzles.
//   - POST   /puzzle/new                 → generate a puzzle for a difficulty
//   - GET    /puzzle/{id}                → current view
//   - POST   /puzzle/{id}/drag/start     → anchor a selection      {row, col}
//   - POST   /puzzle/{id}/drag/over      → extend the selection    {row, col}
//   - POST   /puzzle/{id}/drag/end       → release and check the selection
//   - POST   /puzzle/{id}/again          → new instance, same difficulty
//   - POST   /puzzle/{id}/next           → new instance, next difficulty
//   - DELETE /puzzle/{id}                → tear down (free play only)
//
// Each puzzle is one game.Controller. Its hooks persist the games row, bump
// user stats, record daily results and metrics, and feed the websocket hub.
// Words still hidden are sent without their cells. Puzzles nobody touches
// for the idle TTL are closed by RunJanitor.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/internal/daily"
	"github.com/robalobadob/wordsearch/internal/game"
)

const hookTimeout = 5 * time.Second

var errPuzzleClosed = errors.New("puzzle closed")

// ErrLastLevel is returned when asking for the level after advanced.
var ErrLastLevel = errors.New("already at the last level")

var errDailyLocked = errors.New("daily puzzles cannot be restarted or deleted")

// owner identifies who a puzzle's games rows belong to.
type owner struct {
	UserID string
	AnonID string
}

// key is the identity used for daily results.
func (o owner) key() string {
	if o.UserID != "" {
		return o.UserID
	}
	return o.AnonID
}

// puzzleMeta is the host-side bookkeeping for one live puzzle.
type puzzleMeta struct {
	owner      owner
	date       string // daily date key; empty for free play
	difficulty game.Difficulty
	gameRow    string // games.id of the current instance
	lastSeen   time.Time

	// rows maps controller instance numbers to games.id so a completion
	// that lands after a restart still finishes its own row. Guarded by s.mu.
	rows     map[uint64]string
	starting *sync.Mutex // serialises startInstance on one puzzle
}

func (s *Server) mountPuzzles(r chi.Router) {
	r.Post("/puzzle/new", s.handleNewPuzzle)
	r.Get("/puzzle/{id}", s.handleGetPuzzle)
	r.Post("/puzzle/{id}/drag/start", s.handleDrag(func(c *game.Controller, cell game.Cell) []game.Cell {
		return c.DragStart(cell)
	}))
	r.Post("/puzzle/{id}/drag/over", s.handleDrag(func(c *game.Controller, cell game.Cell) []game.Cell {
		return c.DragOver(cell)
	}))
	r.Post("/puzzle/{id}/drag/end", s.handleDragEnd)
	r.Post("/puzzle/{id}/again", s.handleRestart(false))
	r.Post("/puzzle/{id}/next", s.handleRestart(true))
	r.Delete("/puzzle/{id}", s.handleDeletePuzzle)
}

// ------------------------------ views --------------------------------------

type wordView struct {
	Word   string      `json:"word"`
	Hint   string      `json:"hint"`
	Length int         `json:"length"`
	Found  bool        `json:"found"`
	Cells  []game.Cell `json:"cells,omitempty"`
}

type puzzleView struct {
	ID         string          `json:"id"`
	Difficulty game.Difficulty `json:"difficulty"`
	GridSize   int             `json:"gridSize"`
	Grid       game.Grid       `json:"grid"`
	Words      []wordView      `json:"words"`
	HUD        game.HUD        `json:"hud"`
	Dropped    int             `json:"dropped"`
	Daily      string          `json:"daily,omitempty"`
}

func newPuzzleView(sess game.Session, date string) puzzleView {
	v := puzzleView{
		ID:         sess.ID,
		Difficulty: sess.Difficulty,
		GridSize:   sess.GridSize,
		Grid:       sess.Grid,
		Words:      make([]wordView, len(sess.Words)),
		HUD: game.HUD{
			FoundCount:     sess.FoundCount,
			TotalWords:     len(sess.Words),
			Score:          sess.Score,
			ElapsedSeconds: sess.ElapsedSeconds,
			Status:         sess.Status,
		},
		Dropped: sess.Dropped,
		Daily:   date,
	}
	for i, w := range sess.Words {
		wv := wordView{Word: w.Word, Hint: w.Hint, Length: len(w.Word), Found: w.Found}
		if w.Found {
			wv.Cells = w.Cells
		}
		v.Words[i] = wv
	}
	return v
}

// ----------------------------- handlers ------------------------------------

type newPuzzleReq struct {
	Difficulty string  `json:"difficulty"`
	Seed       *uint64 `json:"seed,omitempty"`
}

func (s *Server) handleNewPuzzle(w http.ResponseWriter, r *http.Request) {
	var req newPuzzleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	d, err := game.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_difficulty")
		return
	}
	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}

	c, err := s.openPuzzle(r.Context(), s.ownerOf(w, r), "", d, seed)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, newPuzzleView(c.Snapshot(), ""))
}

func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	c, meta, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newPuzzleView(c.Snapshot(), meta.date))
}

type pathRes struct {
	Path []game.Cell `json:"path"`
}

func (s *Server) handleDrag(op func(*game.Controller, game.Cell) []game.Cell) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, _, ok := s.lookup(w, r)
		if !ok {
			return
		}
		var cell game.Cell
		if err := json.NewDecoder(r.Body).Decode(&cell); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json")
			return
		}
		path := op(c, cell)
		if path == nil {
			path = []game.Cell{}
		}
		writeJSON(w, http.StatusOK, pathRes{Path: path})
	}
}

func (s *Server) handleDragEnd(w http.ResponseWriter, r *http.Request) {
	c, _, ok := s.lookup(w, r)
	if !ok {
		return
	}
	out := c.DragEnd()
	if out.Path == nil {
		out.Path = []game.Cell{}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleRestart serves both "play again" and "next level".
func (s *Server) handleRestart(next bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, meta, ok := s.lookup(w, r)
		if !ok {
			return
		}
		if meta.date != "" {
			writeError(w, http.StatusConflict, errDailyLocked.Error())
			return
		}
		d := meta.difficulty
		if next {
			nd, ok := d.Next()
			if !ok {
				writeError(w, http.StatusConflict, ErrLastLevel.Error())
				return
			}
			d = nd
		}
		if err := s.startInstance(r.Context(), c, d, rand.Uint64()); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, newPuzzleView(c.Snapshot(), ""))
	}
}

func (s *Server) handleDeletePuzzle(w http.ResponseWriter, r *http.Request) {
	c, meta, ok := s.lookup(w, r)
	if !ok {
		return
	}
	// Reopening a deleted daily would hand back the same grid on a fresh clock.
	if meta.date != "" {
		writeError(w, http.StatusConflict, errDailyLocked.Error())
		return
	}
	s.closePuzzle(r.Context(), c)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ----------------------------- lifecycle -----------------------------------

// ownerOf returns the signed-in user or the guest cookie.
func (s *Server) ownerOf(w http.ResponseWriter, r *http.Request) owner {
	if me := currentUser(r); me != nil {
		return owner{UserID: me.ID}
	}
	return owner{AnonID: s.ensureAnonID(w, r)}
}

// lookup resolves {id}, marks it active and writes a 404 when it is unknown.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*game.Controller, puzzleMeta, bool) {
	id := chi.URLParam(r, "id")
	c, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, puzzleMeta{}, false
	}
	meta, ok := s.touch(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, puzzleMeta{}, false
	}
	return c, meta, true
}

// meta returns a copy of id's bookkeeping. The rows map is shared and must
// only be read under s.mu.
func (s *Server) meta(id string) (puzzleMeta, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.metas[id]
	if !ok {
		return puzzleMeta{}, false
	}
	return *m, true
}

// touch is meta plus a last-activity bump.
func (s *Server) touch(id string) (puzzleMeta, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.metas[id]
	if !ok {
		return puzzleMeta{}, false
	}
	m.lastSeen = time.Now()
	return *m, true
}

// openPuzzle registers a new controller and starts its first instance.
func (s *Server) openPuzzle(ctx context.Context, o owner, date string, d game.Difficulty, seed uint64) (*game.Controller, error) {
	if _, ok := s.cat.Level(d); !ok {
		return nil, game.ErrUnknownDifficulty
	}
	c := game.New(
		game.WithTickInterval(s.cfg.TickInterval),
		game.WithHooks(game.Hooks{
			OnTick:          s.onTick,
			OnWordFound:     s.onWordFound,
			OnLevelComplete: s.onLevelComplete,
		}),
	)
	s.mu.Lock()
	s.metas[c.ID()] = &puzzleMeta{
		owner:      o,
		date:       date,
		difficulty: d,
		lastSeen:   time.Now(),
		rows:       make(map[uint64]string),
		starting:   new(sync.Mutex),
	}
	s.mu.Unlock()

	if err := s.store.Save(ctx, c); err != nil {
		s.forget(c.ID())
		return nil, err
	}
	s.metrics.PuzzleOpened(ctx)
	if err := s.startInstance(ctx, c, d, seed); err != nil {
		s.closePuzzle(ctx, c)
		return nil, err
	}
	return c, nil
}

// startInstance generates a fresh instance of difficulty d on c. The
// previous instance, if unfinished, is recorded as abandoned.
func (s *Server) startInstance(ctx context.Context, c *game.Controller, d game.Difficulty, seed uint64) error {
	lvl, ok := s.cat.Level(d)
	if !ok {
		return game.ErrUnknownDifficulty
	}

	s.mu.Lock()
	m, ok := s.metas[c.ID()]
	if !ok {
		s.mu.Unlock()
		return errPuzzleClosed
	}
	starting := m.starting
	s.mu.Unlock()

	// Only startInstance calls c.Start, so under starting the next instance
	// number is known before the completion hook can fire.
	starting.Lock()
	defer starting.Unlock()
	next := c.Instance() + 1

	rowID := genID()
	s.mu.Lock()
	m, ok = s.metas[c.ID()]
	if !ok {
		s.mu.Unlock()
		return errPuzzleClosed
	}
	prev := m.gameRow
	m.gameRow = rowID
	m.difficulty = d
	m.lastSeen = time.Now()
	m.rows[next] = rowID
	for n := range m.rows {
		// Keep the previous instance: its completion may still be in flight.
		if n+1 < next {
			delete(m.rows, n)
		}
	}
	o := m.owner
	s.mu.Unlock()

	if prev != "" {
		s.abandonRow(ctx, prev, c.HUD())
	}
	s.insertRow(ctx, rowID, o, d)

	sess := c.Start(lvl, game.NewRandom(seed))
	if sess.Dropped > 0 {
		log.Debug().Str("puzzle", c.ID()).Int("dropped", sess.Dropped).Msg("words dropped during generation")
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE games SET total_words=? WHERE id=?`, len(sess.Words), rowID); err != nil {
		log.Warn().Err(err).Str("gameId", rowID).Msg("update total words")
	}
	s.metrics.RecordStart(ctx, sess)

	hud := c.HUD()
	s.hub.Publish(c.ID(), Event{Type: "restart", HUD: &hud})
	return nil
}

// closePuzzle stops c, drops its streams and forgets it.
func (s *Server) closePuzzle(ctx context.Context, c *game.Controller) {
	if m, ok := s.meta(c.ID()); ok && m.gameRow != "" {
		s.abandonRow(ctx, m.gameRow, c.HUD())
	}
	if err := s.store.Delete(ctx, c.ID()); err != nil {
		log.Warn().Err(err).Str("puzzle", c.ID()).Msg("delete puzzle")
	}
	s.hub.Close(c.ID())
	if s.forget(c.ID()) {
		s.metrics.PuzzleClosed(ctx)
	}
}

func (s *Server) forget(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.metas[id]
	delete(s.metas, id)
	return ok
}

// ------------------------------- hooks -------------------------------------

func (s *Server) onTick(id string, hud game.HUD) {
	s.hub.Publish(id, Event{Type: "tick", HUD: &hud})
}

func (s *Server) onWordFound(id string, word game.PlacedWord, hud game.HUD) {
	if m, ok := s.meta(id); ok {
		s.metrics.RecordWord(context.Background(), m.difficulty)
	}
	s.hub.Publish(id, Event{Type: "found", Word: &word, HUD: &hud})
}

func (s *Server) onLevelComplete(id string, res game.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
	defer cancel()

	s.mu.Lock()
	m, ok := s.metas[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	rowID := m.rows[res.Instance]
	delete(m.rows, res.Instance)
	o, date := m.owner, m.date
	s.mu.Unlock()

	if rowID != "" {
		s.finishRow(ctx, rowID, o, res)
	} else {
		log.Warn().Str("puzzle", id).Uint64("instance", res.Instance).Msg("no games row for completed instance")
	}
	if date != "" {
		if err := s.daily.InsertResult(ctx, daily.Result{
			UserID:         o.key(),
			Date:           date,
			Difficulty:     string(res.Difficulty),
			Score:          res.Score,
			ElapsedSeconds: res.ElapsedSeconds,
			WordsFound:     res.FoundCount,
		}); err != nil {
			log.Warn().Err(err).Str("puzzle", id).Msg("insert daily result")
		}
	}
	s.metrics.RecordComplete(ctx, res)
	log.Info().
		Str("puzzle", id).
		Str("difficulty", string(res.Difficulty)).
		Int("score", res.Score).
		Int("elapsed", res.ElapsedSeconds).
		Msg("puzzle completed")

	s.hub.Publish(id, Event{Type: "complete", Result: &res})
}

// ----------------------------- games rows ----------------------------------

func (s *Server) insertRow(ctx context.Context, rowID string, o owner, d game.Difficulty) {
	now := time.Now().UTC().Format(time.RFC3339)
	var err error
	if o.UserID != "" {
		_, err = s.db.ExecContext(ctx, `INSERT INTO games (id, user_id, difficulty, status, started_at)
		                                VALUES (?,?,?,?,?)`, rowID, o.UserID, string(d), string(game.StatusPlaying), now)
		if err == nil {
			_, err = s.db.ExecContext(ctx, `UPDATE users SET games_played = games_played + 1 WHERE id=?`, o.UserID)
		}
	} else {
		_, err = s.db.ExecContext(ctx, `INSERT INTO games (id, anonymous_id, difficulty, status, started_at)
		                                VALUES (?,?,?,?,?)`, rowID, o.AnonID, string(d), string(game.StatusPlaying), now)
	}
	if err != nil {
		log.Warn().Err(err).Str("gameId", rowID).Msg("insert game row")
	}
}

func (s *Server) abandonRow(ctx context.Context, rowID string, hud game.HUD) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE games SET status='abandoned', words_found=?, score=?, elapsed_seconds=?, finished_at=?
		WHERE id=? AND status=?`,
		hud.FoundCount, hud.Score, hud.ElapsedSeconds, time.Now().UTC().Format(time.RFC3339),
		rowID, string(game.StatusPlaying))
	if err != nil {
		log.Warn().Err(err).Str("gameId", rowID).Msg("abandon game row")
	}
}

// finishRow records a completed instance and bumps the owner's stats in one transaction.
func (s *Server) finishRow(ctx context.Context, rowID string, o owner, res game.Result) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin finish tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		UPDATE games SET status=?, words_found=?, total_words=?, score=?, elapsed_seconds=?, finished_at=?
		WHERE id=?`,
		string(game.StatusCompleted), res.FoundCount, res.TotalWords, res.Score, res.ElapsedSeconds,
		time.Now().UTC().Format(time.RFC3339), rowID); err != nil {
		log.Warn().Err(err).Str("gameId", rowID).Msg("finish game row")
		return
	}
	if o.UserID != "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET wins = wins + 1, best_score = MAX(best_score, ?) WHERE id=?`,
			res.Score, o.UserID); err != nil {
			log.Warn().Err(err).Str("user", o.UserID).Msg("bump stats")
			return
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit finish tx")
	}
}
