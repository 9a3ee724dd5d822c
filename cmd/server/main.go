package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"exampro/internal/auth"
	"exampro/internal/cache"
	"exampro/internal/config"
	"exampro/internal/db"
	gradesgrpc "exampro/internal/grpc"
	internalhttp "exampro/internal/http"
	"exampro/internal/jobs"
	"exampro/internal/logging"
	"exampro/internal/metrics"
	"exampro/internal/repository"
	"exampro/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		fatal(logger, "invalid config", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store repository.Repository
	switch cfg.Store {
	case config.StoreMemory:
		memory := repository.NewMemory()
		res, err := seed.Demo(ctx, memory, cfg.BcryptCost)
		if err != nil {
			fatal(logger, "seed failed", err)
		}
		logger.Info("memory store seeded", slog.Int("users", res.Users))
		store = memory
	default:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			fatal(logger, "db connection failed", err)
		}
		defer pool.Close()
		store = repository.NewStore(pool)
	}

	var denylist auth.Denylist = auth.NoopDenylist{}
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			fatal(logger, "redis connection failed", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close error", slog.Any("error", err))
			}
		}()
		denylist = cache.NewRedisDenylist(redisClient)
	} else if cfg.Store == config.StoreMemory {
		denylist = cache.NewMemoryDenylist()
	}

	m := metrics.New()
	server := internalhttp.NewServer(cfg, store, denylist, m, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	var grpcServer *grpc.Server
	if cfg.ServiceAuthToken != "" {
		interceptor, err := gradesgrpc.NewServiceAuthUnaryInterceptor(cfg.ServiceAuthToken)
		if err != nil {
			fatal(logger, "grpc service auth init failed", err)
		}
		grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(
			gradesgrpc.NewLoggingUnaryInterceptor(logger),
			interceptor,
		))
		gradesgrpc.RegisterGradeQueryServiceServer(grpcServer, gradesgrpc.NewGradesServer(store))
	} else {
		logger.Warn("grpc disabled: SERVICE_AUTH_TOKEN not set")
	}

	jobs.StartExamStatusJob(ctx, cfg, jobs.NewExamStatusJob(store, m, logger))

	go func() {
		logger.Info("http listening", slog.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "http server error", err)
		}
	}()

	if grpcServer != nil {
		go func() {
			listener, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				fatal(logger, "grpc listen error", err)
			}
			logger.Info("grpc listening", slog.String("addr", cfg.GRPCAddr))
			if err := grpcServer.Serve(listener); err != nil {
				fatal(logger, "grpc server error", err)
			}
		}()
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	logger.Info("stopped")
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", err))
	os.Exit(1)
}
