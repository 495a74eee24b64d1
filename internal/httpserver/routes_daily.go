// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily puzzle.
//   - POST /daily/new         → start today's puzzle (creates or reuses the player's puzzle)
//   - GET  /daily/leaderboard → top 20 results for today (or ?date=YYYY-MM-DD)
//
// Everyone gets the same grid for a UTC day: the generator is seeded from an
// HMAC of the date. Each player can finish it once per day (enforced by the
// daily_results unique key); the result is written by the completion hook.

package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordsearch/internal/daily"
	"github.com/robalobadob/wordsearch/internal/game"
)

func (s *Server) mountDaily(r chi.Router) {
	r.Post("/daily/new", s.handleDailyNew)
	r.Get("/daily/leaderboard", s.handleDailyLeaderboard)
}

type dailyNewRes struct {
	Date   string      `json:"date"`
	Played bool        `json:"played"`
	Puzzle *puzzleView `json:"puzzle,omitempty"`
}

// handleDailyNew returns the caller's puzzle for today.
//   - A recorded result for today → Played=true, no puzzle.
//   - A live daily puzzle for the caller → that puzzle.
//   - Otherwise a new puzzle seeded from today's date.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	o := s.ownerOf(w, r)
	now := time.Now().UTC()
	date := daily.DateKey(now)

	played, err := s.daily.AlreadyPlayed(r.Context(), o.key(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
		return
	}

	if c := s.findDaily(r.Context(), o, date); c != nil {
		v := newPuzzleView(c.Snapshot(), date)
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Puzzle: &v})
		return
	}

	d, err := game.ParseDifficulty(s.cfg.DailyDifficulty)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "bad_daily_difficulty")
		return
	}
	c, err := s.openPuzzle(r.Context(), o, date, d, daily.Seed(now, s.cfg.DailySalt))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	v := newPuzzleView(c.Snapshot(), date)
	writeJSON(w, http.StatusCreated, dailyNewRes{Date: date, Puzzle: &v})
}

// findDaily returns the live daily puzzle o opened for date, if any.
func (s *Server) findDaily(ctx context.Context, o owner, date string) *game.Controller {
	s.mu.Lock()
	var id string
	for pid, m := range s.metas {
		if m.date == date && m.owner.key() == o.key() {
			id = pid
			m.lastSeen = time.Now()
			break
		}
	}
	s.mu.Unlock()
	if id == "" {
		return nil
	}
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil
	}
	return c
}

type leaderboardRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

func (s *Server) handleDailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	}
	rows, err := s.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, leaderboardRes{Date: date, Top: rows})
}
