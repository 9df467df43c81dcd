package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/example/workplace-booking/internal/application"
	"github.com/example/workplace-booking/internal/config"
	httptransport "github.com/example/workplace-booking/internal/http"
	"github.com/example/workplace-booking/internal/persistence/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

	pool, err := sqlite.NewPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	userRepo := sqlite.NewUserRepository(pool)
	roomRepo := sqlite.NewRoomRepository(pool)
	bookingRepo := sqlite.NewBookingRepository(pool)
	supplyRepo := sqlite.NewSupplyRepository(pool)
	sessionRepo := sqlite.NewSessionRepository(pool)

	bookingService := application.NewBookingServiceWithLogger(bookingRepo, roomRepo, idGenerator, now, logger)
	roomService := application.NewRoomServiceWithLogger(roomRepo, idGenerator, now, logger)
	userService := application.NewUserService(userRepo, idGenerator, now)
	supplyService := application.NewSupplyServiceWithLogger(supplyRepo, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(userRepo, sessionRepo, application.VerifyPassword, tokenGenerator, now, cfg.SessionTTL, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     httptransport.NewAuthHandler(authService, logger),
		Users:    httptransport.NewUserHandler(userService, logger),
		Rooms:    httptransport.NewRoomHandler(roomService, logger),
		Bookings: httptransport.NewBookingHandler(bookingService, logger),
		Supplies: httptransport.NewSupplyHandler(supplyService, logger),
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicRoute(r.Method, r.URL.Path) {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.SessionSweepSpec, func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := sessionRepo.DeleteExpiredSessions(sweepCtx, time.Now()); err != nil {
			logger.Error("failed to sweep expired sessions", "error", err)
			return
		}
		logger.Debug("expired sessions swept")
	}); err != nil {
		logger.Error("failed to schedule session sweep", "spec", cfg.SessionSweepSpec, "error", err)
		os.Exit(1)
	}
	sweeper.Start()
	defer sweeper.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// isPublicRoute reports whether the request may skip session validation.
// Only signing in and refreshing an existing token are open; refresh carries
// its own token in the body of the check performed by the service.
func isPublicRoute(method, path string) bool {
	if method != http.MethodPost {
		return false
	}
	return path == "/sessions" || path == "/sessions/refresh"
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
