package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/room-reservation/internal/application"
	"github.com/example/room-reservation/internal/auth"
	"github.com/example/room-reservation/internal/config"
	httptransport "github.com/example/room-reservation/internal/http"
	"github.com/example/room-reservation/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.Open(ctx, cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	users := sqlite.NewUserRepository(db)
	rooms := sqlite.NewRoomRepository(db)
	reservations := sqlite.NewReservationRepository(db)
	notifications := sqlite.NewNotificationRepository(db)

	idGenerator := uuid.NewString
	now := time.Now
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL, now)

	notificationService := application.NewNotificationService(notifications, idGenerator, now, logger)
	reservationService := application.NewReservationService(reservations, users, rooms, notificationService, idGenerator, now, logger)
	roomService := application.NewRoomService(rooms, idGenerator, now, logger)
	userService := application.NewUserService(users, nil, idGenerator, now, logger)
	authService := application.NewAuthService(users, tokens, cfg.TokenTTL, idGenerator, now, logger)

	loginLimiter := httptransport.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:          httptransport.NewAuthHandler(authService, logger),
		Users:         httptransport.NewUserHandler(userService, logger),
		Rooms:         httptransport.NewRoomHandler(roomService, reservationService, logger),
		Reservations:  httptransport.NewReservationHandler(reservationService, logger),
		Notifications: httptransport.NewNotificationHandler(notificationService, logger),
		Authenticate:  httptransport.RequireAuth(tokens, logger),
		LoginLimiter:  httptransport.RateLimit(loginLimiter, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
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

	logger.Info("reservation API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
