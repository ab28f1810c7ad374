package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/anitrack/internal/catalog"
	"github.com/example/anitrack/internal/events"
	"github.com/example/anitrack/internal/handlers"
	"github.com/example/anitrack/internal/jikan"
	"github.com/example/anitrack/internal/metacache"
	"github.com/example/anitrack/internal/platform/config"
	"github.com/example/anitrack/internal/platform/httpserver"
	"github.com/example/anitrack/internal/platform/logging"
	"github.com/example/anitrack/internal/platform/natsconn"
	"github.com/example/anitrack/internal/platform/run"
	"github.com/example/anitrack/internal/store"
	"github.com/example/anitrack/internal/tracker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	st := store.New(cfg.Store.DataDir, cfg.Store.Backups, log)
	if err := st.Ping(); err != nil {
		log.Error("data dir unusable", zap.Error(err))
		run.Exit(1)
	}

	// NATS is optional: without a broker the publisher is a no-op and
	// the metadata cache is purely local.
	var nc *nats.Conn
	if cfg.NATSURL != "" {
		nc, err = natsconn.Connect(cfg.NATSURL, log)
		if err != nil {
			log.Error("nats connect", zap.Error(err))
			run.Exit(1)
		}
		defer nc.Close()
	}

	tr := tracker.New(tracker.Options{
		Anime:    catalog.NewAnimeRepo(st),
		Episodes: catalog.NewEpisodeRepo(st),
		Schedule: catalog.NewScheduleRepo(st),
		Provider: jikan.New(cfg.Provider.BaseURL, cfg.Provider.Timeout),
		Cache:    metacache.New(cfg.CacheTTL, nc, events.SubjectCacheInvalidate),
		Events:   events.New(nc, log),
		Logger:   log,
	})
	if err := tr.Load(context.Background()); err != nil {
		log.Error("load collections", zap.Error(err))
		run.Exit(1)
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{ReadyFunc: st.Ping})
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("anitrack admin api"))
	})
	handlers.RegisterRoutes(r, tr)

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, Router: r})

	code := run.WithSignals(log,
		func(_ context.Context) error { return srv.Start(log) },
		srv.Shutdown,
	)

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}
