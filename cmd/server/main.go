package main

import (
	"alcyxob/plan-coach/internal/api"
	"alcyxob/plan-coach/internal/config"
	"alcyxob/plan-coach/internal/domain"
	"alcyxob/plan-coach/internal/llm"
	"alcyxob/plan-coach/internal/logging"
	"alcyxob/plan-coach/internal/repository/mongo"
	"alcyxob/plan-coach/internal/service"
	"alcyxob/plan-coach/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Plan Coach API
// @version 1.0
// @description Conversational training-plan assistant for intervals.icu calendars.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("FATAL: Invalid config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("Starting Plan Coach server...")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("Could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		logger.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("Database connection established", zap.String("database", cfg.Database.Name))

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
			logger.Warn("Index creation failed", zap.Error(err))
			return
		}
		logger.Info("Index creation process completed")
	}()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(context.Background(), cfg.S3, logger)
	if err != nil {
		logger.Fatal("Failed to initialize S3 storage", zap.Error(err))
	}

	// --- Initialize Model ---
	model, err := llm.NewGemini(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Gemini client", zap.Error(err))
	}

	// --- Initialize Repositories ---
	athleteRepo := mongo.NewMongoAthleteRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	replaceRunRepo := mongo.NewMongoReplaceRunRepository(appDB)

	// --- Initialize Services ---
	calendars := service.IntervalsFactory(cfg.Intervals.BaseURL, cfg.Intervals.Timeout)
	defaultCreds := domain.Credentials{AthleteID: cfg.Intervals.AthleteID, APIKey: cfg.Intervals.APIKey}

	authService := service.NewAuthService(athleteRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	assistant := service.NewAssistant(cfg.Assistant, model, calendars, replaceRunRepo, logger)
	chatService := service.NewChatService(sessionRepo, athleteRepo, fileStorage, assistant, defaultCreds, logger)
	calendarService := service.NewCalendarService(calendars, athleteRepo, replaceRunRepo, defaultCreds)

	// --- Initialize Gin Engine ---
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger))
	api.SetupRoutes(router, cfg.JWT.Secret, authService, chatService, calendarService)

	// --- Start HTTP Server ---
	// Model calls and bulk replaces run inside the request.
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
