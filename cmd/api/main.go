package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/mentorhub/mentorhub/internal/auth"
	"github.com/mentorhub/mentorhub/internal/config"
	"github.com/mentorhub/mentorhub/internal/database"
	"github.com/mentorhub/mentorhub/internal/email"
	apphttp "github.com/mentorhub/mentorhub/internal/http"
	"github.com/mentorhub/mentorhub/internal/logging"
	"github.com/mentorhub/mentorhub/internal/profile"
	"github.com/mentorhub/mentorhub/internal/ratelimit"
	"github.com/mentorhub/mentorhub/internal/session"
	"github.com/mentorhub/mentorhub/internal/user"
)

// @title MentorHub API
// @version 1.0
// @description Mentorship matching platform with email-verified, session-backed accounts.
// @BasePath /
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting mentorhub api", "env", cfg.Server.Env)

	db, err := initDB(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db.DB); err != nil {
		return err
	}
	logger.Info("database migrations applied")

	redisClient, err := initRedis(&cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	userRepo := user.NewRepository(db)
	profileRepo := profile.NewRepository(db)

	sessions := session.NewStore(redisClient, cfg.Session.TTL, cfg.Session.CookieName)
	limiter := ratelimit.NewLimiter(redisClient)

	mailer := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromAddress,
		cfg.Email.ClientBaseURL,
	)

	authService := auth.NewService(userRepo, profileRepo, mailer, logger)
	authHandler := auth.NewHandler(authService, sessions, limiter, logger, !cfg.Server.IsDevelopment())
	profileHandler := profile.NewHandler(profileRepo, logger)

	router := apphttp.NewRouter(cfg, logger, authHandler, profileHandler, sessions)
	server := apphttp.NewServer(&cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func initDB(cfg *config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return database.NewBunDB(sqlDB), nil
}

func initRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}
