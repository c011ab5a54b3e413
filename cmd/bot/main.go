package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/DiscordantST/document-bot/internal/catalog"
	"github.com/DiscordantST/document-bot/internal/config"
	"github.com/DiscordantST/document-bot/internal/conversation"
	"github.com/DiscordantST/document-bot/internal/dispatch"
	"github.com/DiscordantST/document-bot/internal/handler"
	"github.com/DiscordantST/document-bot/internal/repository/postgres"
	"github.com/DiscordantST/document-bot/internal/scheduler"
	"github.com/DiscordantST/document-bot/internal/service"
	"github.com/DiscordantST/document-bot/internal/session"
	"github.com/DiscordantST/document-bot/internal/telegram"

	"github.com/joho/godotenv"
)

const maxLogFiles = 10

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	if cfg.BotToken == "" {
		log.Fatalf("BOT_TOKEN is required")
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	logOutput := io.Writer(os.Stdout)
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, maxLogFiles)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer func() { _ = logFile.Close() }()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("bot starting",
		"environment", cfg.Environment,
		"update_mode", cfg.UpdateMode,
		"table_prefix", cfg.TablePrefix,
	)

	// Root context cancels on SIGINT/SIGTERM so every loop below can wind
	// down cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create pgx connection pool
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names and bring the schema up to date
	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.Migrate(ctx, pool, tables, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	docRepo := postgres.NewDocumentRepository(repoConfig)
	tmplRepo := postgres.NewTemplateRepository(repoConfig)
	reminderRepo := postgres.NewReminderRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Create services
	userService := service.NewUserService(userRepo, logger)
	docService := service.NewDocumentService(docRepo, reminderRepo, txManager, cfg, logger)
	tmplService := service.NewTemplateService(tmplRepo, docRepo, txManager, cfg, logger)

	// Load the message catalog
	messages, err := catalog.New()
	if err != nil {
		log.Fatalf("Failed to load message catalog: %v", err)
	}

	// Conversation machine over per-user sessions
	sessions := session.NewStore()
	machine := conversation.NewMachine(sessions, userService, docService, tmplService, logger, nil)

	// Telegram client, per-user dispatcher and the update handler
	client := telegram.NewClientWithConfig(cfg.BotToken, cfg.TelegramAPIURL, telegram.DefaultTimeout)
	dispatcher := dispatch.New(logger)

	bot := handler.NewBot(handler.BotConfig{
		API:        client,
		Catalog:    messages,
		Machine:    machine,
		Sessions:   sessions,
		Users:      userService,
		Documents:  docService,
		Templates:  tmplService,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	logger.Info("services initialized")

	// Reminder scheduler sweeps once at startup, then daily
	reminders := scheduler.New(scheduler.Config{
		Documents: docRepo,
		Reminders: reminderRepo,
		Sender:    client,
		Catalog:   messages,
		Days:      cfg.ReminderDays,
		Hour:      cfg.ReminderHour,
		Minute:    cfg.ReminderMin,
		Logger:    logger,
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		reminders.Run(ctx)
	}()

	// Receive updates until the context is cancelled
	switch cfg.UpdateMode {
	case "webhook":
		if cfg.WebhookURL == "" {
			log.Fatalf("WEBHOOK_URL is required in webhook mode")
		}
		if err := client.SetWebhook(ctx, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			log.Fatalf("Failed to register webhook: %v", err)
		}
		logger.Info("webhook registered", "url", cfg.WebhookURL, "listen_addr", cfg.WebhookAddr)

		server := telegram.NewWebhookServer(cfg.WebhookSecret, bot, logger)
		if err := server.Serve(ctx, cfg.WebhookAddr); err != nil {
			log.Fatalf("Webhook server failed: %v", err)
		}
	case "polling":
		// A leftover webhook registration makes getUpdates return 409.
		if err := client.DeleteWebhook(ctx); err != nil {
			log.Fatalf("Failed to clear webhook: %v", err)
		}

		poller := telegram.NewPoller(client, bot, cfg.PollTimeout, logger)
		if err := poller.Run(ctx); err != nil {
			log.Fatalf("Polling failed: %v", err)
		}
	default:
		log.Fatalf("Unknown UPDATE_MODE %q (want polling or webhook)", cfg.UpdateMode)
	}

	// Let the scheduler finish its sweep and drain queued updates.
	wg.Wait()
	dispatcher.Close()
	logger.Info("bot stopped")
}
