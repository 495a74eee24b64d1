// main.go
//
// Entry point for the word-search server.
// Startup order: config → log level → word catalog → SQLite → metrics → HTTP.
// A janitor closes puzzles left idle past PUZZLE_IDLE_TTL.
// SIGINT/SIGTERM drain the HTTP server, stop every live puzzle and flush metrics.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordsearch/internal/config"
	"github.com/robalobadob/wordsearch/internal/httpserver"
	"github.com/robalobadob/wordsearch/internal/observe"
	"github.com/robalobadob/wordsearch/internal/storage"
	"github.com/robalobadob/wordsearch/internal/store"
	"github.com/robalobadob/wordsearch/internal/words"
)

const (
	version         = "dev"
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !cfg.Production() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if err := words.Init(cfg.CatalogFile); err != nil {
		log.Fatal().Err(err).Msg("failed to load word catalog")
	}

	db, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("open database")
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics, err := observe.InitProvider(ctx, "wordsearch", version)
	if err != nil {
		log.Fatal().Err(err).Msg("init metrics")
	}

	srv := httpserver.New(httpserver.Deps{
		Config:         cfg,
		Store:          store.NewMemoryStore(),
		DB:             db,
		Catalog:        words.Default(),
		Metrics:        metrics.Metrics,
		MetricsHandler: metrics.Handler,
	})
	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", httpSrv.Addr).Msg("starting wordsearch server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		srv.RunJanitor(gctx, cfg.IdleTTL, cfg.SweepInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Streams are hijacked connections; close them before draining.
		err := srv.Close()
		err = errors.Join(err, httpSrv.Shutdown(shutdownCtx), metrics.Shutdown(shutdownCtx))
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
	log.Info().Msg("goodbye")
}
