package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	rediscache "github.com/msomdec/blog-api/internal/cache/redis"
	"github.com/msomdec/blog-api/internal/config"
	"github.com/msomdec/blog-api/internal/domain"
	"github.com/msomdec/blog-api/internal/handler"
	"github.com/msomdec/blog-api/internal/repository/postgres"
	"github.com/msomdec/blog-api/internal/repository/sqlite"
	"github.com/msomdec/blog-api/internal/service"
)

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	// A .env file is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		slog.Error("failed to open database", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied", "driver", cfg.DatabaseDriver)

	posts := db.Posts()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unreachable; cache will retry per request", "addr", cfg.RedisAddr, "error", err)
		}
		posts = rediscache.NewPostRepository(posts, client, cfg.RedisTTL, "")
		slog.Info("post cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.RedisTTL)
	}

	authService, err := service.NewAuthService(db.Users(), cfg.JWTSecret, cfg.JWTExpire, cfg.BcryptCost)
	if err != nil {
		slog.Error("failed to create auth service", "error", err)
		os.Exit(1)
	}
	assetService := service.NewAssetService(db.FileStore(), cfg.PublicBaseURL)
	postService := service.NewPostService(posts, assetService)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, db, authService, postService, assetService, cfg.MaxUploadBytes)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.RequestLogger(handler.SecurityHeaders(handler.CORS(cfg.AllowedOrigins, mux))),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func openDatabase(ctx context.Context, cfg config.Config) (domain.Database, error) {
	if cfg.DatabaseDriver == config.DriverPostgres {
		return postgres.New(ctx, cfg.DatabaseURL)
	}
	return sqlite.New(cfg.DatabasePath)
}
