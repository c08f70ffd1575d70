package router

import (
	"encoding/json"
	"net/http"

	"github.com/agencydesk/commerce-api/internal/auth"
	"github.com/agencydesk/commerce-api/internal/config"
	"github.com/agencydesk/commerce-api/internal/database"
	"github.com/agencydesk/commerce-api/internal/http/handler"
	"github.com/agencydesk/commerce-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/agencydesk/commerce-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	quotationHandler    *handler.QuotationHandler
	contractHandler     *handler.ContractHandler
	workflowHandler     *handler.WorkflowHandler
	leadHandler         *handler.LeadHandler
	clientHandler       *handler.ClientHandler
	notificationHandler *handler.NotificationHandler
	activityHandler     *handler.ActivityHandler
	employeeHandler     *handler.EmployeeHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	quotationHandler *handler.QuotationHandler,
	contractHandler *handler.ContractHandler,
	workflowHandler *handler.WorkflowHandler,
	leadHandler *handler.LeadHandler,
	clientHandler *handler.ClientHandler,
	notificationHandler *handler.NotificationHandler,
	activityHandler *handler.ActivityHandler,
	employeeHandler *handler.EmployeeHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		quotationHandler:    quotationHandler,
		contractHandler:     contractHandler,
		workflowHandler:     workflowHandler,
		leadHandler:         leadHandler,
		clientHandler:       clientHandler,
		notificationHandler: notificationHandler,
		activityHandler:     activityHandler,
		employeeHandler:     employeeHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Auth
			r.Get("/auth/me", rt.employeeHandler.Me)

			// Employees
			r.Route("/employees", func(r chi.Router) {
				r.Get("/", rt.employeeHandler.List)
				r.Get("/{id}", rt.employeeHandler.GetByID)
			})

			// Leads
			r.Route("/leads", func(r chi.Router) {
				r.Get("/", rt.leadHandler.List)
				r.Post("/", rt.leadHandler.Create)
				r.Get("/{id}", rt.leadHandler.GetByID)
				r.Put("/{id}/status", rt.leadHandler.UpdateStatus)
				r.Post("/{id}/convert", rt.leadHandler.Convert)
			})

			// Clients
			r.Route("/clients", func(r chi.Router) {
				r.Get("/", rt.clientHandler.List)
				r.Get("/search", rt.clientHandler.Search)
				r.Get("/{id}", rt.clientHandler.GetByID)
				r.Post("/{id}/deactivate", rt.clientHandler.Deactivate)
			})

			// Quotations
			r.Route("/quotations", func(r chi.Router) {
				r.Get("/", rt.quotationHandler.List)
				r.Post("/", rt.quotationHandler.Create)
				r.Get("/{id}", rt.quotationHandler.GetByID)
				r.Delete("/{id}", rt.quotationHandler.Delete)

				// Lifecycle endpoints
				r.Post("/{id}/send", rt.quotationHandler.Send)
				r.Post("/{id}/accept", rt.quotationHandler.Accept)
				r.Post("/{id}/reject", rt.quotationHandler.Reject)
				r.Post("/{id}/request-modification", rt.quotationHandler.RequestModification)

				// Sub-resources
				r.Post("/{id}/items", rt.quotationHandler.AddItem)
				r.Put("/{id}/items/{itemId}", rt.quotationHandler.UpdateItem)
				r.Delete("/{id}/items/{itemId}", rt.quotationHandler.RemoveItem)
				r.Put("/{id}/rates", rt.quotationHandler.SetRates)
				r.Get("/{id}/activities", rt.quotationHandler.GetActivities)
			})

			// Contracts
			r.Route("/contracts", func(r chi.Router) {
				r.Get("/", rt.contractHandler.List)
				r.Post("/", rt.contractHandler.Create)
				r.Get("/{id}", rt.contractHandler.GetByID)
				r.Delete("/{id}", rt.contractHandler.Delete)

				// Lifecycle endpoints
				r.Post("/{id}/suspend", rt.contractHandler.Suspend)
				r.Post("/{id}/resume", rt.contractHandler.Resume)
				r.Post("/{id}/complete", rt.contractHandler.Complete)
				r.Post("/{id}/cancel", rt.contractHandler.Cancel)

				// Sub-resources
				r.Post("/{id}/items", rt.contractHandler.AddItem)
				r.Put("/{id}/items/{itemId}", rt.contractHandler.UpdateItem)
				r.Delete("/{id}/items/{itemId}", rt.contractHandler.RemoveItem)
				r.Put("/{id}/rates", rt.contractHandler.SetRates)
				r.Get("/{id}/activities", rt.contractHandler.GetActivities)
			})

			// Workflows
			r.Route("/workflows", func(r chi.Router) {
				r.Get("/", rt.workflowHandler.List)
				r.Post("/", rt.workflowHandler.Create)
				r.Get("/{id}", rt.workflowHandler.GetByID)
				r.Delete("/{id}", rt.workflowHandler.Delete)
				r.Get("/{id}/tasks", rt.workflowHandler.ListTasks)
				r.Post("/{id}/tasks", rt.workflowHandler.AddTask)
				r.Get("/{id}/tasks/{taskId}", rt.workflowHandler.GetTask)
				r.Delete("/{id}/tasks/{taskId}", rt.workflowHandler.RemoveTask)
				r.Get("/{id}/execution-order", rt.workflowHandler.ExecutionOrder)
				r.Get("/{id}/estimate", rt.workflowHandler.Estimate)
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notificationHandler.List)
				r.Get("/count", rt.notificationHandler.GetUnreadCount)
				r.Put("/read-all", rt.notificationHandler.MarkAllAsRead)
				r.Put("/{id}/read", rt.notificationHandler.MarkAsRead)
			})

			// Activities
			r.Get("/activities", rt.activityHandler.List)
		})
	})

	return r
}
