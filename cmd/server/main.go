package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/adapter/ai"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/adapter/auth"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/adapter/crypto"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/adapter/google"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/adapter/store"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/handler"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/middleware"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/port"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/service"
	"github.com/arturoeanton/go-inbox-classifier-ollama/pkg/config"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting Inbox Classifier",
		"port", cfg.Port,
		"ollama", cfg.OllamaBaseURL,
		"model", cfg.OllamaModel,
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	// ── Adapters ─────────────────────────────────────────────────────────
	codec, err := crypto.NewAESGCMCodec(cfg.TokenEncryptionKey)
	if err != nil {
		slog.Error("invalid TOKEN_ENCRYPTION_KEY", "error", err)
		os.Exit(1)
	}

	googleAuth := auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	ollamaAI := ai.NewOllamaProvider(ai.OllamaEndpointConfig{
		BaseURL: cfg.OllamaBaseURL,
		Model:   cfg.OllamaModel,
		Token:   cfg.OllamaToken,
	})

	clientCfg := google.ClientConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
	}
	newMail := port.MailSourceFactory(func(ctx context.Context, refreshToken string) (port.MailSource, error) {
		return google.NewGmailSource(ctx, clientCfg, refreshToken)
	})
	newCalendar := port.CalendarSourceFactory(func(ctx context.Context, refreshToken string) (port.CalendarSource, error) {
		return google.NewCalendarSource(ctx, clientCfg, refreshToken)
	})

	// ── Services ─────────────────────────────────────────────────────────
	credService := service.NewCredentialService(pgStore, codec)
	authService := service.NewAuthService(googleAuth, pgStore, credService, cfg)
	syncService := service.NewSyncService(pgStore, pgStore, newMail, newCalendar)
	classifyService := service.NewClassifyService(ollamaAI, pgStore, pgStore)
	refreshService := service.NewRefreshService(credService, syncService, classifyService, pgStore, pgStore)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // classification runs can be slow
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(pgStore))

	// ── Public Routes ────────────────────────────────────────────────────
	authHandler := handler.NewAuthHandler(authService, cfg.FrontendURL)
	authHandler.Register(app)

	// Health check
	app.Get("/api/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	// ── Protected Routes ─────────────────────────────────────────────────
	jwtMiddleware := middleware.JWTMiddleware(middleware.JWTConfig{
		Secret:    cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		ExpiresIn: time.Duration(cfg.JWTExpiration) * time.Hour,
	})

	api := app.Group("/api", jwtMiddleware)

	authHandler.RegisterProtected(api)

	dataHandler := handler.NewDataHandler(refreshService)
	dataHandler.Register(api)

	auditHandler := handler.NewAuditHandler(pgStore)
	auditHandler.Register(api)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
