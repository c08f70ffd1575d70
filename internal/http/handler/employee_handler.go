package handler

import (
	"errors"
	"net/http"

	"github.com/agencydesk/commerce-api/internal/auth"
	"github.com/agencydesk/commerce-api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type EmployeeHandler struct {
	employeeService *service.EmployeeService
	logger          *zap.Logger
}

func NewEmployeeHandler(employeeService *service.EmployeeService, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		employeeService: employeeService,
		logger:          logger,
	}
}

// @Summary Get current user
// @Description Returns the authenticated user's identity and roles
// @Tags Auth
// @Produce json
// @Success 200 {object} auth.UserContext
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *EmployeeHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	respondJSON(w, http.StatusOK, userCtx)
}

// @Summary List employees
// @Tags Employees
// @Produce json
// @Param activeOnly query bool false "Only active employees" default(false)
// @Success 200 {array} domain.Employee
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /employees [get]
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("activeOnly") == "true"

	employees, err := h.employeeService.List(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error("failed to list employees", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list employees")
		return
	}

	respondJSON(w, http.StatusOK, employees)
}

// @Summary Get employee
// @Tags Employees
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} domain.Employee
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /employees/{id} [get]
func (h *EmployeeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Employee ID is required")
		return
	}

	employee, err := h.employeeService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrEmployeeNotFound) {
			respondWithError(w, http.StatusNotFound, "Employee not found")
			return
		}
		h.logger.Error("failed to get employee", zap.Error(err), zap.String("employee_id", id))
		respondWithError(w, http.StatusInternalServerError, "Failed to get employee")
		return
	}

	respondJSON(w, http.StatusOK, employee)
}
