// internal/httpserver/server.go
//
// HTTP server wiring for the word-search backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/metrics", "/levels".
//   - Puzzle endpoints (optional auth): mounted under /puzzle.
//   - Daily puzzle endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - The websocket stream lives outside the Timeout group; everything else
//     is bounded to 10 seconds.
//   - Live puzzles are held in store.Store; finished games and daily results
//     go to SQLite from the controllers' completion hook.

package httpserver

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/robalobadob/wordsearch/internal/config"
	"github.com/robalobadob/wordsearch/internal/daily"
	"github.com/robalobadob/wordsearch/internal/observe"
	"github.com/robalobadob/wordsearch/internal/store"
	"github.com/robalobadob/wordsearch/internal/words"
)

const requestTimeout = 10 * time.Second

// Deps are the collaborators a Server needs.
type Deps struct {
	Config  config.Config
	Store   store.Store
	DB      *sql.DB
	Catalog *words.Catalog

	// Metrics and MetricsHandler are optional. Without them instruments are
	// no-ops and /metrics is not mounted.
	Metrics        *observe.Metrics
	MetricsHandler http.Handler
}

// Server bundles router, live puzzle registry and DB handle.
type Server struct {
	r       *chi.Mux
	cfg     config.Config
	store   store.Store
	db      *sql.DB
	cat     *words.Catalog
	metrics *observe.Metrics
	hub     *Hub
	daily   *daily.Store

	mu    sync.Mutex
	metas map[string]*puzzleMeta // keyed by puzzle ID
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     d.Config,
		store:   d.Store,
		db:      d.DB,
		cat:     d.Catalog,
		metrics: d.Metrics,
		hub:     NewHub(),
		daily:   daily.NewStore(d.DB),
		metas:   make(map[string]*puzzleMeta),
	}
	if s.metrics == nil {
		m, err := observe.NewMetrics(noop.NewMeterProvider())
		if err != nil {
			log.Fatal().Err(err).Msg("noop metrics")
		}
		s.metrics = m
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(accessLog)
	s.r.Use(jsonContentType)
	s.r.Use(cors(s.cfg.ClientOrigin))

	// Long-lived: no request timeout.
	s.r.With(s.withOptionalAuth()).Get("/puzzle/{id}/stream", s.handleStream)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"wordsearch-go","endpoints":["/health","/levels","POST /puzzle/new","/puzzle/{id}/*","/daily/*","/auth/*"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		if d.MetricsHandler != nil {
			r.Handle("/metrics", d.MetricsHandler)
		}
		r.Get("/levels", s.handleLevels)

		opt := r.With(s.withOptionalAuth())
		s.mountPuzzles(opt)
		s.mountDaily(opt)
		s.mountAuthRoutes(r)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler { return s.r }

// Close tears down live puzzles and their streams.
func (s *Server) Close() error {
	s.hub.CloseAll()
	return s.store.Close()
}

// handleLevels serves the level selector data.
func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cat.Infos())
}

// writeJSON encodes v with status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
