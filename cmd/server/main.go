package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/sgarlapa/expense-ledger-bot/internal/config"
	"github.com/sgarlapa/expense-ledger-bot/internal/dedup"
	"github.com/sgarlapa/expense-ledger-bot/internal/expense"
	"github.com/sgarlapa/expense-ledger-bot/internal/googleauth"
	"github.com/sgarlapa/expense-ledger-bot/internal/ledger"
	"github.com/sgarlapa/expense-ledger-bot/internal/pipeline"
	"github.com/sgarlapa/expense-ledger-bot/internal/relay"
	"github.com/sgarlapa/expense-ledger-bot/internal/slack"
	"github.com/sgarlapa/expense-ledger-bot/internal/storage"
	"github.com/sgarlapa/expense-ledger-bot/internal/webhook"
	"github.com/sgarlapa/expense-ledger-bot/pkg/utils"
)

func main() {
	// Load .env if present, then configuration
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting expense ledger bot",
		zap.Int("port", cfg.Server.Port),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.String("ledger_backend", cfg.Ledger.Backend))

	location, err := time.LoadLocation(cfg.Expense.Timezone)
	if err != nil {
		logger.Fatal("Invalid timezone", zap.String("timezone", cfg.Expense.Timezone), zap.Error(err))
	}

	ctx := context.Background()

	// Both object store backends and the sheets ledger talk to Google.
	// Missing credentials are fatal here; soft-failing per request would
	// lose expenses silently.
	var googleOpts []option.ClientOption
	googleOpts, err = googleauth.ClientOptions(cfg.Google.CredentialsB64, cfg.Google.CredentialsFile)
	if err != nil {
		logger.Fatal("Failed to load Google credentials", zap.Error(err))
	}

	// Durable object store for relayed attachments
	var objectStore storage.ObjectStore
	switch cfg.Storage.Backend {
	case "drive":
		objectStore, err = storage.NewDriveStore(ctx, cfg.Storage.DriveFolderID, logger, googleOpts...)
	case "gcs":
		objectStore, err = storage.NewGCSStore(ctx, cfg.Storage.GCSBucket, logger, googleOpts...)
	}
	if err != nil {
		logger.Fatal("Failed to initialize object store", zap.Error(err))
	}

	// Ledger backend
	var ledgerBackend ledger.Ledger
	switch cfg.Ledger.Backend {
	case "sheets":
		ledgerBackend, err = ledger.NewSheetsLedger(ctx, cfg.Ledger.SpreadsheetID, cfg.Ledger.Range, logger, googleOpts...)
	case "excel":
		ledgerBackend, err = ledger.NewExcelLedger(cfg.Ledger.WorkbookPath, cfg.Ledger.Sheet, logger)
	}
	if err != nil {
		logger.Fatal("Failed to initialize ledger", zap.Error(err))
	}

	// Dedup store
	var dedupStore dedup.Store
	switch cfg.Dedup.Backend {
	case "sqlite":
		sqliteStore, err := dedup.NewSQLiteStore(cfg.Dedup.Path, logger)
		if err != nil {
			logger.Fatal("Failed to initialize dedup store", zap.Error(err))
		}
		defer sqliteStore.Close()
		dedupStore = sqliteStore
	default:
		dedupStore = dedup.NewMemoryStore()
	}
	deduplicator := dedup.New(dedupStore, cfg.Dedup.TTL, logger)

	// Extraction strategy
	var extractor expense.Extractor = expense.NewRegexExtractor(cfg.Expense.HomeCurrency)
	if cfg.Extractor.Mode == "llm" {
		extractor = expense.NewLLMExtractor(
			cfg.Extractor.OpenAIAPIKey,
			cfg.Extractor.OpenAIModel,
			cfg.Extractor.Timeout,
			extractor,
			logger,
		)
	}

	// Pipeline
	downloader := slack.NewDownloader(cfg.Slack.BotToken, cfg.Slack.DownloadTimeout, logger)
	attachmentRelay := relay.New(downloader, objectStore, logger)
	normalizer := pipeline.NewNormalizer(deduplicator, attachmentRelay, extractor, logger)
	processor := pipeline.NewProcessor(normalizer, ledgerBackend, logger)

	// Webhook handler
	webhookHandler := webhook.NewHandler(processor, location, logger)

	// Set Gin mode based on logger level
	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize HTTP router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(logger))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "expense-ledger-bot",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// Webhook endpoint
	router.POST(cfg.Slack.WebhookPath, webhookHandler.Handle)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// requestIDMiddleware tags every request with an id for log correlation
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("request_id", c.GetString("request_id")),
			zap.String("ip", c.ClientIP()),
		)
	}
}
