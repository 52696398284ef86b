package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/common"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/handlers"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/services/aifix"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/services/alerts"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/services/events"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/services/ingestion"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/services/llm"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/services/mailer"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/services/scheduler"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/services/stats"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/services/tickets"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/storage"
	"github.com/ternarybob/arbor"
)

// recordEventInterval throttles per-record WebSocket pushes during bulk uploads
const recordEventInterval = 250 * time.Millisecond

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager
	Location       *time.Location

	// Event-driven services
	EventService     interfaces.EventService
	SchedulerService interfaces.SchedulerService

	// Domain services
	IngestionService *ingestion.Service
	StatsService     *stats.Service
	TicketService    *tickets.Service
	Notifier         interfaces.Notifier
	AlertJob         *alerts.Job
	LLMService       interfaces.LLMService
	AIFixService     interfaces.AIFixService

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	ErrorLogHandler *handlers.ErrorLogHandler
	TicketHandler   *handlers.TicketHandler
	AIFixHandler    *handlers.AIFixHandler
	AlertHandler    *handlers.AlertHandler
	WSHandler       *handlers.WebSocketHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	loc, err := cfg.Alert.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid alert timezone: %w", err)
	}

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Location: loc,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// EventService is needed before the WebSocket handler subscribes to it
	app.EventService = events.NewService(app.Logger)
	if err := events.SubscribeLoggerToAllEvents(app.EventService, app.Logger); err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to subscribe event logger")
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	if err := app.SchedulerService.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info().
		Bool("alert_enabled", app.AlertJob.Enabled()).
		Bool("mail_configured", app.Notifier.IsConfigured()).
		Bool("ai_enabled", app.LLMService != nil).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger) and seeds the user directory
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	count, err := a.StorageManager.LoadUsersFromFile(context.Background(), a.Config.Users.SeedFile)
	if err != nil {
		// Log warning but don't fail startup
		a.Logger.Warn().Err(err).Str("file", a.Config.Users.SeedFile).Msg("Failed to load users from file")
	} else if count > 0 {
		a.Logger.Info().Int("users", count).Str("file", a.Config.Users.SeedFile).Msg("User directory seeded")
	}

	return nil
}

// initServices initializes all business services in dependency order
func (a *App) initServices() error {
	records := a.StorageManager.LogRecordStorage()

	a.IngestionService = ingestion.NewService(records, a.EventService, a.Config.Upload, a.Logger)
	a.StatsService = stats.NewService(records, a.Location, a.Logger)
	a.TicketService = tickets.NewService(a.StorageManager.TicketStorage(), records, a.EventService, a.Logger)

	mailService := mailer.NewService(a.Config.Mail, a.Logger)
	if !mailService.IsConfigured() {
		a.Logger.Warn().Msg("SMTP is not configured; alert emails will fail until mail.smtp_host and mail.smtp_from are set")
	}
	a.Notifier = mailService

	// Alert job on the scheduler
	a.AlertJob = alerts.NewJob(
		records,
		a.StorageManager.UserStorage(),
		a.Notifier,
		a.EventService,
		a.Config.Alert,
		a.Location,
		a.Logger,
	)
	a.SchedulerService = scheduler.NewService(a.Location, a.Logger)
	if err := a.SchedulerService.RegisterJob(
		alerts.JobName,
		a.Config.Alert.Schedule,
		"Email admins about high-volume errors linked to open tickets",
		a.AlertJob.Handler(),
	); err != nil {
		return fmt.Errorf("failed to register alert job: %w", err)
	}

	// AI assist; a missing provider degrades to Failed responses
	policy, err := aifix.PolicyFromConfig(a.Config.AI)
	if err != nil {
		return fmt.Errorf("invalid ai configuration: %w", err)
	}
	if a.Config.AI.Enabled {
		llmService, err := llm.NewLLMService(context.Background(), a.Config, a.Logger)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("AI provider unavailable, fix suggestions disabled")
		} else {
			a.LLMService = llmService
		}
	}
	a.AIFixService = aifix.NewService(a.LLMService, policy, a.Config.AI.Role, a.Logger)

	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Logger)
	a.ErrorLogHandler = handlers.NewErrorLogHandler(a.IngestionService, a.StatsService, a.Config.Upload.MaxSizeBytes, a.Logger)
	a.TicketHandler = handlers.NewTicketHandler(a.TicketService, a.Logger)
	a.AIFixHandler = handlers.NewAIFixHandler(a.AIFixService, a.Logger)
	a.AlertHandler = handlers.NewAlertHandler(a.AlertJob, a.SchedulerService, alerts.JobName, a.Logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.EventService, a.Logger, recordEventInterval)
}

// Close stops background work and releases resources
func (a *App) Close() error {
	// Stop scheduler service
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	// Close LLM service
	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		} else {
			a.Logger.Info().Msg("LLM service closed")
		}
	}

	// Close event service
	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	// Close storage
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
