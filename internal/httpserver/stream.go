package httpserver

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/internal/game"
)

const (
	streamBuffer       = 16
	streamWriteTimeout = 5 * time.Second
)

// Event is one message pushed to a puzzle's stream.
type Event struct {
	Type   string           `json:"type"` // hud | tick | found | complete | restart
	HUD    *game.HUD        `json:"hud,omitempty"`
	Word   *game.PlacedWord `json:"word,omitempty"`
	Result *game.Result     `json:"result,omitempty"`
}

type subscriber struct {
	ch       chan Event
	puzzleID string
}

// Hub fans puzzle events out to websocket subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Subscribe registers a subscriber for puzzleID.
func (h *Hub) Subscribe(puzzleID string) *subscriber {
	sub := &subscriber{ch: make(chan Event, streamBuffer), puzzleID: puzzleID}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes sub and closes its channel.
func (h *Hub) Unsubscribe(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
	h.mu.Unlock()
}

// Publish sends ev to every subscriber of puzzleID. Slow subscribers miss events.
func (h *Hub) Publish(puzzleID string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if sub.puzzleID != puzzleID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// Count returns the number of subscribers for puzzleID.
func (h *Hub) Count(puzzleID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for sub := range h.subs {
		if sub.puzzleID == puzzleID {
			n++
		}
	}
	return n
}

// Close drops every subscriber of puzzleID, ending their streams.
func (h *Hub) Close(puzzleID string) {
	h.mu.Lock()
	for sub := range h.subs {
		if sub.puzzleID == puzzleID {
			delete(h.subs, sub)
			close(sub.ch)
		}
	}
	h.mu.Unlock()
}

// CloseAll drops every subscriber.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.ch)
	}
	h.mu.Unlock()
}

// handleStream upgrades to a websocket and pushes the puzzle's events until
// either side goes away or the puzzle is deleted.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	opts := &websocket.AcceptOptions{}
	if u, err := url.Parse(s.cfg.ClientOrigin); err == nil && u.Host != "" {
		opts.OriginPatterns = []string{u.Host}
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		log.Warn().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	sub := s.hub.Subscribe(c.ID())
	defer s.hub.Unsubscribe(sub)
	// The idle clock restarts when the watcher leaves.
	defer s.touch(c.ID())

	// Clients only listen; CloseRead watches for their close frame.
	ctx := conn.CloseRead(r.Context())

	hud := c.HUD()
	if err := writeEvent(ctx, conn, Event{Type: "hud", HUD: &hud}); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.ch:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "puzzle closed")
				return
			}
			if err := writeEvent(ctx, conn, ev); err != nil {
				log.Debug().Err(err).Str("puzzle", c.ID()).Msg("stream write")
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, ev Event) error {
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, ev)
}
