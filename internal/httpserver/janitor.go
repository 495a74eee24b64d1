// internal/httpserver/janitor.go
//
// Idle-puzzle eviction.
// Responsibilities:
//   - Close puzzles nobody has touched for the idle TTL, stopping their
//     timers and recording the unfinished games row as abandoned.
//   - Leave alone puzzles with an open stream and today's unfinished daily.
//     A daily closed mid-game could be reopened from scratch on a fresh clock.

package httpserver

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/internal/daily"
	"github.com/robalobadob/wordsearch/internal/game"
)

// RunJanitor sweeps puzzles idle for longer than ttl every interval until ctx is done.
func (s *Server) RunJanitor(ctx context.Context, ttl, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.sweepIdle(ctx, now, ttl); n > 0 {
				log.Info().Int("closed", n).Dur("ttl", ttl).Msg("evicted idle puzzles")
			}
		}
	}
}

// sweepIdle closes every eligible puzzle last seen before now-ttl and
// reports how many it closed.
func (s *Server) sweepIdle(ctx context.Context, now time.Time, ttl time.Duration) int {
	cutoff := now.Add(-ttl)
	today := daily.DateKey(now)

	type candidate struct {
		id   string
		date string
	}
	var idle []candidate
	s.mu.Lock()
	for id, m := range s.metas {
		if m.lastSeen.Before(cutoff) {
			idle = append(idle, candidate{id: id, date: m.date})
		}
	}
	s.mu.Unlock()

	closed := 0
	for _, cand := range idle {
		if s.hub.Count(cand.id) > 0 {
			continue
		}
		c, err := s.store.Get(ctx, cand.id)
		if err != nil {
			if s.forget(cand.id) {
				s.metrics.PuzzleClosed(ctx)
			}
			continue
		}
		if m, ok := s.meta(cand.id); !ok || !m.lastSeen.Before(cutoff) {
			continue // touched since the scan
		}
		if cand.date == today && c.HUD().Status != game.StatusCompleted {
			continue
		}
		s.closePuzzle(ctx, c)
		closed++
	}
	return closed
}
