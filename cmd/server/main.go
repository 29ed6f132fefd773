package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"mindguard/internal/analysis"
	"mindguard/internal/auth"
	"mindguard/internal/config"
	"mindguard/internal/crypto"
	"mindguard/internal/db"
	"mindguard/internal/handlers"
	mw "mindguard/internal/middleware"
	"mindguard/internal/notify"
	"mindguard/internal/reminder"
	"mindguard/internal/session"
	"mindguard/internal/store"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.GeminiAPIKey == "" {
		slog.Error("GEMINI_API_KEY is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbConn, err := sqlx.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	dbConn.SetMaxOpenConns(10)
	dbConn.SetConnMaxLifetime(2 * time.Hour)
	if err = dbConn.Ping(); err != nil {
		slog.Error("failed to ping db", slog.Any("err", err))
		os.Exit(1)
	}
	if err := db.RunMigrations(dbConn); err != nil {
		slog.Error("failed migrations", slog.Any("err", err))
		os.Exit(1)
	}

	guestDB, err := sql.Open("sqlite3", cfg.GuestDBPath)
	if err != nil {
		slog.Error("failed to open guest store", slog.Any("err", err))
		os.Exit(1)
	}
	guestStore, err := store.NewGuestStore(guestDB)
	if err != nil {
		slog.Error("failed to init guest store", slog.Any("err", err))
		os.Exit(1)
	}

	var cipher *crypto.Cipher
	if cfg.EncryptionKey != "" {
		cipher, err = crypto.NewCipher([]byte(cfg.EncryptionKey))
		if err != nil {
			slog.Error("invalid encryption key", slog.Any("err", err))
			os.Exit(1)
		}
	} else {
		slog.Warn("ENCRYPTION_KEY not set; entries stored in plaintext")
	}

	ai, err := analysis.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		slog.Error("failed to init analysis client", slog.Any("err", err))
		os.Exit(1)
	}

	cloudStore := store.NewCloudStore(dbConn, cipher)
	provider := auth.NewProvider(dbConn, guestStore, []byte(cfg.JWTSecret), logger)
	coordinator := session.NewCoordinator(guestStore, cloudStore, provider, ai, logger)
	feed := notify.NewFeed(logger)
	scheduler := reminder.NewScheduler(coordinator, feed, feed, cfg.ReminderInterval, logger)

	zlog, err := zap.NewProduction()
	if err != nil {
		slog.Error("failed to init request logger", slog.Any("err", err))
		os.Exit(1)
	}
	defer zlog.Sync()

	r := chi.NewRouter()
	r.Use(mw.ZapRequestLogger(zlog))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(provider, coordinator)
	moodHandler := handlers.NewMoodHandler(coordinator)
	settingsHandler := handlers.NewSettingsHandler(coordinator)
	healthHandler := handlers.NewHealthHandler(ai)
	notificationsHandler := handlers.NewNotificationsHandler(feed)
	userHandler := handlers.NewUserHandler(provider)
	authMW := mw.NewAuthMiddleware([]byte(cfg.JWTSecret))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", authHandler.Signup)
		api.Post("/auth/login", authHandler.Login)
		api.Post("/auth/logout", authHandler.Logout)

		api.Post("/analyze", moodHandler.Analyze)
		api.Get("/history", moodHandler.History)
		api.Post("/sos", moodHandler.SetSOS)

		api.Get("/settings", settingsHandler.Get)
		api.Put("/settings", settingsHandler.Update)

		api.Post("/health/symptoms", healthHandler.Symptoms)
		api.Post("/health/workout", healthHandler.Workout)

		api.Get("/notifications", notificationsHandler.List)
		api.Post("/notifications/permission", notificationsHandler.SetPermission)

		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)
			pr.Get("/me", userHandler.GetMe)
		})
	})

	// Replay any remembered session before the coordinator subscribes, so
	// its initial delivery reflects the pre-existing identity.
	provider.Resume(ctx)
	go coordinator.Run(ctx)
	go scheduler.Run(ctx)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		slog.Info("server starting", slog.String("addr", ":"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.Any("err", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown initiated")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	slog.Info("server stopped")
}
