package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mealwise/mealwise/internal/api"
	"github.com/mealwise/mealwise/internal/booking"
	"github.com/mealwise/mealwise/internal/config"
	"github.com/mealwise/mealwise/internal/session"
	"github.com/mealwise/mealwise/internal/tickets"
)

func main() {
	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Env == "development" {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Error("create data dir", "err", err)
		os.Exit(1)
	}

	// Local state is limited to session tokens; everything else lives in
	// the remote meal API.
	db, err := gorm.Open(sqlite.Open(filepath.Join(cfg.DataDir, "sessions.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Error("open session db", "err", err)
		os.Exit(1)
	}

	client := api.New(cfg.APIBaseURL, cfg.APITimeout)

	sessions, err := session.NewStore(db, client, cfg.SessionSecret)
	if err != nil {
		log.Error("init sessions", "err", err)
		os.Exit(1)
	}
	bookings := booking.NewStore()
	drafts, err := tickets.NewStore(filepath.Join(cfg.DataDir, "previews"))
	if err != nil {
		log.Error("init ticket drafts", "err", err)
		os.Exit(1)
	}
	defer drafts.Close()

	app := NewApp(sessions, client, bookings, drafts)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      withLogging(log, app),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "api", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", "err", err)
	}
	log.Info("server stopped")
}

// withLogging adds request logging middleware.
func withLogging(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
