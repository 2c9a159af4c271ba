// Package main is the entry point for the Inkwell server.
// Inkwell is a blogging backend serving the same API over REST and gRPC.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/prn-tf/inkwell/internal/cache/memory"
	"github.com/prn-tf/inkwell/internal/cache/redis"
	"github.com/prn-tf/inkwell/internal/config"
	"github.com/prn-tf/inkwell/internal/handler"
	"github.com/prn-tf/inkwell/internal/metrics"
	"github.com/prn-tf/inkwell/internal/pkg/crypto"
	"github.com/prn-tf/inkwell/internal/repository"
	"github.com/prn-tf/inkwell/internal/repository/postgres"
	"github.com/prn-tf/inkwell/internal/repository/sqlite"
	"github.com/prn-tf/inkwell/internal/rpc"
	"github.com/prn-tf/inkwell/internal/rpc/blogpb"
	"github.com/prn-tf/inkwell/internal/service"
	"github.com/prn-tf/inkwell/internal/token"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := newLogger(cfg.Logging)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting Inkwell server")

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, db, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	postRepo := repos.Post
	if cfg.Redis.Enabled {
		cache, err := redis.NewCache(ctx, redis.Config{
			Addr:        cfg.Redis.Addr(),
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			PoolSize:    cfg.Redis.PoolSize,
			DialTimeout: cfg.Redis.DialTimeout,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer cache.Close()
		postRepo = repository.NewCachedPostRepository(postRepo, cache, cfg.Redis.CacheTTL, logger)
	} else {
		cache := memory.NewCache()
		defer cache.Stop()
		postRepo = repository.NewCachedPostRepository(postRepo, cache, cfg.Redis.CacheTTL, logger)
	}

	tokens := token.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := crypto.NewArgon2Hasher()
	authSvc := service.NewAuthService(repos.User, hasher, tokens, logger)
	postSvc := service.NewPostService(postRepo, logger)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler:    handler.NewAuthHandler(authSvc, logger),
		PostHandler:    handler.NewPostHandler(postSvc, tokens, logger),
		Metrics:        m,
		MetricsPath:    cfg.Metrics.Path,
		Database:       db,
		Logger:         logger,
		MaxBodySize:    cfg.Server.MaxBodySize,
		MaxConcurrency: cfg.Server.MaxConcurrency,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var grpcServer *grpc.Server
	if cfg.GRPC.Enabled {
		interceptors := []grpc.UnaryServerInterceptor{rpc.UnaryLogger(logger)}
		if m != nil {
			interceptors = append(interceptors, rpc.UnaryMetrics(m))
		}
		grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
		blogpb.RegisterBlogServiceServer(grpcServer, rpc.NewBlogServer(authSvc, postSvc, tokens, logger))

		lis, err := net.Listen("tcp", cfg.GRPC.Addr())
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.GRPC.Addr(), err)
		}
		go func() {
			logger.Info().Str("addr", cfg.GRPC.Addr()).Msg("gRPC server listening")
			if err := grpcServer.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	return nil
}

// openDatabase connects to the configured backend and returns wired
// repositories. SQLite runs its embedded migrations at startup; Postgres
// schemas are managed by inkwell-migrate.
func openDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*repository.Repositories, repository.DatabaseHealth, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.Config{
			Path:            cfg.Database.Path,
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Hour,
			JournalMode:     cfg.Database.JournalMode,
			BusyTimeout:     cfg.Database.BusyTimeout,
			SynchronousMode: cfg.Database.SynchronousMode,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
		return &repository.Repositories{
			User: sqlite.NewUserRepository(db),
			Post: sqlite.NewPostRepository(db),
		}, db, nil

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		return &repository.Repositories{
			User: postgres.NewUserRepository(db),
			Post: postgres.NewPostRepository(db),
		}, db, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// newLogger builds the process logger from config.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = cfg.TimeFormat

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}

	if cfg.Format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
