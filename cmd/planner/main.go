// Command planner serves retrofit budget simulations over HTTP.
//
// On start it loads the configured scenario, validates it (exiting on
// failure), runs every allocation strategy over the horizon once and stores
// the report. It then serves:
//   - GET  /report/latest?scenario=<name>  latest stored report
//   - POST /simulate                       run a JSON scenario
//   - GET  /scenario/default               the built-in scenario
//   - GET  /healthz                        health check
//   - GET  /metrics                        Prometheus metrics
//
// A standard gRPC health service runs on a separate listener and reports
// SERVING once the startup simulation has completed.
//
// Usage:
//
//	planner \
//	  -scenario=/etc/retrofit/city.yaml \
//	  -storage=redis -redis-addr=redis:6379 \
//	  -parallel
//
// Environment variables:
//
//	LISTEN           - HTTP listen address (default: :8082)
//	GRPC_LISTEN      - gRPC health listen address (default: :50052)
//	SCENARIO         - Startup scenario file path or URL
//	SOURCE           - Startup source kind: default, file, http
//	SOURCE_*         - Source settings (SOURCE_URL, SOURCE_ROOT_PATH, ...)
//	STORAGE          - memory or redis (default: memory)
//	REDIS_ADDR       - Redis address (default: localhost:6379)
//	STALE_AFTER      - Age at which reports are marked stale (default: 1h)
//	LOG_LEVEL        - debug, info, warn, error (default: info)
//	LOG_FORMAT       - text, json (default: text)
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/HatiCode/retrofit/cmd/planner/config"
	"github.com/HatiCode/retrofit/cmd/planner/logger"
	"github.com/HatiCode/retrofit/cmd/planner/metrics"
	"github.com/HatiCode/retrofit/cmd/planner/router"
	"github.com/HatiCode/retrofit/pkg/httpx"
	"github.com/HatiCode/retrofit/pkg/scenario"
	"github.com/HatiCode/retrofit/pkg/storage"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	cfg := config.ParseFlags()

	log := logger.New(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting retrofit planner",
		"version", version,
		"storage", cfg.Storage,
		"source", cfg.Source,
	)

	store, closeStore, err := newStore(cfg, log)
	if err != nil {
		log.Error("failed to create store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	src, err := newSource(cfg)
	if err != nil {
		log.Error("invalid scenario source", "error", err)
		os.Exit(1)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	planner := NewPlanner(store, m, cfg.Parallel, log)

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	reflection.Register(grpcServer)

	grpcErr := make(chan error, 1)
	if cfg.GRPCListen != "" {
		lis, err := net.Listen("tcp", cfg.GRPCListen)
		if err != nil {
			log.Error("failed to listen", "address", cfg.GRPCListen, "error", err)
			os.Exit(1)
		}
		go func() {
			log.Info("grpc health server listening", "address", cfg.GRPCListen)
			grpcErr <- grpcServer.Serve(lis)
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bootCtx, bootCancel := context.WithTimeout(ctx, cfg.SimulateTimeout)
	report, err := planner.Bootstrap(bootCtx, src)
	bootCancel()
	if err != nil {
		log.Error("startup simulation failed", "error", err)
		grpcServer.Stop()
		os.Exit(1)
	}
	log.Info("startup simulation stored",
		"scenario", report.Scenario,
		"run_id", report.RunID,
		"winner", report.Ranking[0].Strategy,
	)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	mux := router.SetupRoutes(store, planner, router.Options{
		StaleAfter:      cfg.StaleAfter,
		SimulateTimeout: cfg.SimulateTimeout,
		MaxBodyBytes:    cfg.MaxBodyBytes,
	}, log)
	handler := httpx.Chain(mux, httpx.RecoveryMiddleware(log), httpx.LoggingMiddleware(log))
	httpServer := httpx.NewServer(cfg.Listen, handler, log, httpx.WithWriteTimeout(cfg.SimulateTimeout+10*time.Second))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig)
	case err := <-serverErr:
		if err != nil {
			log.Error("server failed", "error", err)
		}
	case err := <-grpcErr:
		if err != nil {
			log.Error("grpc server failed", "error", err)
		}
	}

	log.Info("shutting down")
	cancel()
	healthServer.Shutdown()

	if err := httpServer.Stop(10 * time.Second); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()

	log.Info("shutdown complete")
}

func newStore(cfg *config.Config, log *slog.Logger) (storage.Store, func(), error) {
	switch cfg.Storage {
	case "redis":
		rs, err := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using redis store", "addr", cfg.RedisAddr, "ttl", cfg.RedisTTL)
		return rs, func() {
			if err := rs.Close(); err != nil {
				log.Error("failed to close store", "error", err)
			}
		}, nil
	case "memory":
		ms := storage.NewMemoryStoreWithTTL(cfg.RedisTTL, time.Minute)
		log.Info("using memory store", "ttl", cfg.RedisTTL)
		return ms, ms.Stop, nil
	default:
		return nil, nil, errors.New("unknown storage backend: " + cfg.Storage)
	}
}

func newSource(cfg *config.Config) (scenario.Source, error) {
	if cfg.Scenario != "" {
		return scenario.FromLocation(cfg.Scenario)
	}
	return scenario.New(cfg.Source, cfg.SourceConfig)
}
