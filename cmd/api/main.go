package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agencydesk/commerce-api/docs"
	"github.com/agencydesk/commerce-api/internal/auth"
	"github.com/agencydesk/commerce-api/internal/config"
	"github.com/agencydesk/commerce-api/internal/database"
	"github.com/agencydesk/commerce-api/internal/http/handler"
	"github.com/agencydesk/commerce-api/internal/http/middleware"
	"github.com/agencydesk/commerce-api/internal/http/router"
	"github.com/agencydesk/commerce-api/internal/jobs"
	"github.com/agencydesk/commerce-api/internal/logger"
	"github.com/agencydesk/commerce-api/internal/repository"
	"github.com/agencydesk/commerce-api/internal/service"
	"go.uber.org/zap"
)

// @title AgencyDesk Commerce API
// @version 1.0
// @description Commercial document lifecycle API for quotations, contracts and delivery workflows

// @contact.name API Support
// @contact.email support@agencydesk.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch cfg.App.Environment {
	case "production", "staging":
		docs.SwaggerInfo.Host = "api.agencydesk.io"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.App.Port)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Schema migrations run through cmd/migrate in deployed environments;
	// auto-migrate keeps local development friction-free.
	if cfg.App.Environment == "development" || cfg.App.Environment == "local" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
	}

	// Initialize repositories
	leadRepo := repository.NewLeadRepository(db)
	clientRepo := repository.NewClientRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	contractRepo := repository.NewContractRepository(db)
	lineItemRepo := repository.NewLineItemRepository(db)
	workflowRepo := repository.NewWorkflowRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)

	// Initialize services
	numberSequenceService := service.NewNumberSequenceService(numberSequenceRepo, log)
	notificationService := service.NewNotificationService(notificationRepo, log)
	activityService := service.NewActivityService(activityRepo, log)

	quotationService := service.NewQuotationService(quotationRepo, lineItemRepo, leadRepo, clientRepo, numberSequenceService, activityService, notificationService, log, db)
	contractService := service.NewContractService(contractRepo, lineItemRepo, leadRepo, clientRepo, numberSequenceService, activityService, notificationService, log, db)
	workflowService := service.NewWorkflowService(workflowRepo, activityService, log, db)
	leadService := service.NewLeadService(leadRepo, activityService, log)
	clientService := service.NewClientService(clientRepo, activityService, log)
	counterpartyService := service.NewCounterpartyService(leadRepo, clientRepo, quotationRepo, contractRepo, activityService, log, db)
	employeeService := service.NewEmployeeService(employeeRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	quotationHandler := handler.NewQuotationHandler(quotationService, activityService, log)
	contractHandler := handler.NewContractHandler(contractService, activityService, log)
	workflowHandler := handler.NewWorkflowHandler(workflowService, log)
	leadHandler := handler.NewLeadHandler(leadService, counterpartyService, log)
	clientHandler := handler.NewClientHandler(clientService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)
	activityHandler := handler.NewActivityHandler(activityService, log)
	employeeHandler := handler.NewEmployeeHandler(employeeService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		quotationHandler,
		contractHandler,
		workflowHandler,
		leadHandler,
		clientHandler,
		notificationHandler,
		activityHandler,
		employeeHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterExpiryReminderJob(
			scheduler,
			quotationRepo,
			notificationService,
			log,
			cfg.Jobs.ExpiryReminderSchedule,
			cfg.Jobs.ExpiryReminderDays,
		); err != nil {
			log.Error("Failed to register expiry reminder job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started",
				zap.String("cron_expr", cfg.Jobs.ExpiryReminderSchedule),
				zap.Int("days_ahead", cfg.Jobs.ExpiryReminderDays),
			)
		}
	} else {
		log.Info("Background jobs disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
