package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/fkhayef/plantswap/internal/api"
	"github.com/fkhayef/plantswap/internal/auth"
	"github.com/fkhayef/plantswap/internal/config"
	_ "github.com/fkhayef/plantswap/internal/docs"
	"github.com/fkhayef/plantswap/internal/notification"
	"github.com/fkhayef/plantswap/internal/plant"
	"github.com/fkhayef/plantswap/internal/session"
	"github.com/fkhayef/plantswap/internal/trade"
	"github.com/fkhayef/plantswap/internal/user"
	mw "github.com/fkhayef/plantswap/pkg/middleware"
)

// @title Plantswap Gateway API
// @version 1.0
// @description Client gateway for the plant swapping marketplace.
// @BasePath /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	client, err := api.NewClient(api.Options{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.APITimeout,
		CookieName: cfg.APISessionCookie,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("Failed to create API client: %v", err)
	}

	log.Printf("Using marketplace API at %s", cfg.APIBaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Session-scoped state
	flash := session.NewRegistry(cfg.SessionTTL, notification.NewQueue)
	catalogs := session.NewRegistry(cfg.SessionTTL, plant.NewCatalog)
	boards := session.NewRegistry(cfg.SessionTTL, trade.NewBoard)
	sweep := cfg.SessionTTL / 4
	go flash.Run(ctx, sweep)
	go catalogs.Run(ctx, sweep)
	go boards.Run(ctx, sweep)

	// User feature
	userRepo := user.NewRepository(client)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// Auth feature
	authService := auth.NewService(client, userService, logger)
	authHandler := auth.NewHandler(authService, cfg.APISessionCookie, cfg.CookieSecure, catalogs, boards)

	// Plant feature (owner names resolved through the user service)
	plantRepo := plant.NewRepository(client)
	plantService := plant.NewService(plantRepo, logger)
	plantDirectory := plant.NewDirectoryLoader(plantRepo, userService, cfg.OwnerLookupLimit, logger)
	plantHandler := plant.NewHandler(plantService, plantDirectory, catalogs)

	// Trade feature (plants resolved through the plant repository)
	tradeRepo := trade.NewRepository(client)
	tradeService := trade.NewService(tradeRepo, logger)
	tradeAggregator := trade.NewAggregator(tradeRepo, plantRepo, logger)
	tradeHandler := trade.NewHandler(tradeService, tradeAggregator, boards)

	// Notification feature
	notificationHandler := notification.NewHandler()

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Session(mw.SessionOptions{
			CookieName: cfg.SessionCookie,
			Secure:     cfg.CookieSecure,
			TTL:        cfg.SessionTTL,
		}))
		r.Use(mw.Credential(cfg.APISessionCookie))
		r.Use(notification.Middleware(flash, mw.GetSessionID))

		// Mount feature routers
		r.Mount("/session", authHandler.Routes())
		r.Mount("/users", userHandler.Routes())
		r.Mount("/plants", plantHandler.Routes())
		r.Mount("/trades", tradeHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown failed: %v", err)
		}
	}()

	log.Printf("Server starting on port %s", cfg.Port)
	log.Printf("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed to start: %v", err)
	}
	log.Println("Server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
