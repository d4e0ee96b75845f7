// Command bloglist-server starts the bloglist HTTP API and a gRPC health endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/bloglist/internal/config"
	"github.com/and161185/bloglist/internal/limiter"
	"github.com/and161185/bloglist/internal/migrate"
	"github.com/and161185/bloglist/internal/repository"
	"github.com/and161185/bloglist/internal/repository/memory"
	"github.com/and161185/bloglist/internal/repository/postgres"
	httpserver "github.com/and161185/bloglist/internal/server/http"
	"github.com/and161185/bloglist/internal/service"
	"github.com/and161185/bloglist/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const shutdownTimeout = 5 * time.Second

type stores struct {
	users repository.UserRepository
	blogs repository.BlogRepository
	lim   limiter.Limiter
	close func()
}

// main loads configuration, prepares storage and serves until SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	logger := newLogger(cfg.Dev)
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("storage", zap.Error(err))
	}
	defer st.close()

	// Services
	tokens := token.NewIssuer([]byte(cfg.JWTKey), cfg.AccessTTL)
	authSvc := service.NewAuthService(st.users, st.blogs, tokens, st.lim)
	blogSvc := service.NewBlogService(st.blogs, st.users, logger)

	api := httpserver.New(authSvc, blogSvc, logger, httpserver.Options{
		Dev:         cfg.Dev,
		CORSOrigins: cfg.CORSOrigins,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("listening (http)", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Health & reflection (dev)
	var gs *grpc.Server
	hs := health.NewServer()
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Fatal("listen", zap.Error(err))
		}
		gs = grpc.NewServer()
		healthpb.RegisterHealthServer(gs, hs)
		if cfg.Dev {
			reflection.Register(gs)
		}
		go func() {
			logger.Info("listening (grpc health)", zap.String("addr", cfg.GRPCAddr))
			errCh <- gs.Serve(lis)
		}()
	}
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Wait for stop
	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		stop()
	}

	hs.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if gs != nil {
		done := make(chan struct{})
		go func() {
			gs.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			gs.Stop()
		}
	}

	logger.Info("shutdown complete")
}

func newLogger(dev bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if dev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// openStores builds repositories and the login limiter for the configured backend.
func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("memory storage: data is lost on restart")
		return &stores{
			users: memory.NewUsers(),
			blogs: memory.NewBlogs(),
			lim:   limiter.NewMemory(limiter.DefaultPolicy),
			close: func() {},
		}, nil
	}

	if err := migrate.Up(ctx, cfg.DSN, logger); err != nil {
		return nil, err
	}
	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	return &stores{
		users: postgres.NewUserRepo(db),
		blogs: postgres.NewBlogRepo(db),
		lim:   limiter.NewPG(db.Pool, limiter.DefaultPolicy),
		close: db.Close,
	}, nil
}
