package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"storeroom/internal/api"
	"storeroom/internal/config"
	"storeroom/internal/database"
	"storeroom/internal/ledger"
	"storeroom/internal/logging"
	"storeroom/internal/monitoring"
	"storeroom/internal/storekeeper"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

const shutdownTimeout = 10 * time.Second

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Metrics.Port = *metricsPort
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("storeroom stopped")
	}
	logger.Info().Msg("storeroom stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	l, technicians, err := initializeLedger(cfg)
	if err != nil {
		return err
	}

	db, err := database.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	metrics := monitoring.NewMetricsCollector()
	hub := api.NewHub(logging.Component(logger, "websocket"))
	defer hub.Close()

	svc := storekeeper.New(l, database.NewProjection(db),
		storekeeper.WithLogger(logging.Component(logger, "storekeeper")),
		storekeeper.WithMetrics(metrics),
		storekeeper.WithPublisher(hub),
		storekeeper.WithTechnicians(technicians),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}

	router := api.NewStorekeeperAPI(svc, hub, logging.Component(logger, "http")).Router
	servers := []*http.Server{{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}}
	if cfg.Metrics.Enabled {
		servers = append(servers, newMetricsServer(cfg, metrics))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			logger.Info().Str("addr", srv.Addr).Msg("starting server")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return errors.Wrapf(err, "server %s", srv.Addr)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		hub.Close()
		var firstErr error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil && firstErr == nil {
				firstErr = errors.Wrapf(err, "shutdown %s", srv.Addr)
			}
		}
		return firstErr
	})
	return g.Wait()
}

func initializeLedger(cfg *config.Config) (*ledger.Ledger, []string, error) {
	seed, err := config.LoadSeed(cfg.SeedFile)
	if err != nil {
		return nil, nil, err
	}
	items, err := seed.Items()
	if err != nil {
		return nil, nil, err
	}
	requests, err := seed.MaterialRequests()
	if err != nil {
		return nil, nil, err
	}

	var opts []ledger.Option
	if cfg.Ledger.LenientTransitions {
		opts = append(opts, ledger.WithLenientTransitions())
	}
	l := ledger.New(opts...)
	if err := l.Seed(items, requests); err != nil {
		return nil, nil, err
	}
	return l, seed.Technicians, nil
}

func newMetricsServer(cfg *config.Config, metrics *monitoring.MetricsCollector) *http.Server {
	metricsRouter := gin.New()
	metricsRouter.Use(gin.Recovery())
	metricsRouter.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: metricsRouter,
	}
}
