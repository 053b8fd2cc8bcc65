package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/voyagen/telehaven/internal/catalog"
	"github.com/voyagen/telehaven/internal/config"
	"github.com/voyagen/telehaven/internal/logging"
	"github.com/voyagen/telehaven/internal/metrics"
	"github.com/voyagen/telehaven/internal/notify"
	"github.com/voyagen/telehaven/internal/prefs"
	"github.com/voyagen/telehaven/internal/server"
	"github.com/voyagen/telehaven/internal/store"
	"github.com/voyagen/telehaven/internal/tracker"
)

func main() {
	configPath := flag.String("config", "", "Optional config file path (YAML); else use env FEED_URL")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.AppEnv)
	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect the key-value store. Without REDIS_URL, user state lives in
	// memory only for the session.
	var kv store.Store
	if cfg.RedisURL != "" {
		rds, err := store.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		if err := rds.Ping(ctx); err != nil {
			logger.Fatal().Err(err).Msg("redis ping")
		}
		kv = rds
		logger.Info().Msg("redis connected (state is durable)")
	} else {
		kv = store.NewMemory()
		logger.Warn().Msg("REDIS_URL not set, user state will not survive restarts")
	}
	defer kv.Close()

	// One load attempt at startup; a failed load is fatal here, an empty
	// feed is not.
	cat := catalog.New(cfg.FeedURL, cfg.UserAgent, cfg.Timeout)
	n, err := cat.Load(ctx)
	if err != nil {
		metrics.CatalogLoadErrors.Inc()
		var loadErr *catalog.LoadError
		if errors.As(err, &loadErr) {
			logger.Fatal().Err(loadErr.Err).Str("feed", loadErr.URL).Msg("catalog load failed")
		}
		logger.Fatal().Err(err).Msg("catalog load failed")
	}
	metrics.CatalogLoads.Inc()
	logger.Info().Int("channels", n).Msg("catalog loaded")

	tr := tracker.New(kv, logger.With().Str("component", "tracker").Logger())
	tr.Load(ctx)

	pf := prefs.New(kv, logger.With().Str("component", "prefs").Logger())
	pf.Load(ctx)

	watcher := notify.NewWatcher(
		cat, pf,
		notify.LogNotifier{Log: logger.With().Str("component", "notify").Logger()},
		cfg.PollInterval,
		logger.With().Str("component", "notify").Logger(),
	)
	go watcher.Run(ctx)

	srv := server.New(cat, tr, pf, watcher, cfg.ServerPort, logger.With().Str("component", "server").Logger())
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server")
	}
}
