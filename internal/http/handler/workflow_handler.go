package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/agencydesk/commerce-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WorkflowHandler struct {
	workflowService *service.WorkflowService
	logger          *zap.Logger
}

func NewWorkflowHandler(workflowService *service.WorkflowService, logger *zap.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		workflowService: workflowService,
		logger:          logger,
	}
}

// @Summary List workflows
// @Tags Workflows
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param type query string false "Filter by workflow type"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /workflows [get]
func (h *WorkflowHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var workflowType *string
	if t := r.URL.Query().Get("type"); t != "" {
		workflowType = &t
	}

	workflows, total, err := h.workflowService.List(r.Context(), page, pageSize, workflowType)
	if err != nil {
		h.logger.Error("failed to list workflows", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list workflows")
		return
	}

	respondJSON(w, http.StatusOK, newPaginatedResponse(workflows, page, pageSize, total))
}

// @Summary Create workflow
// @Tags Workflows
// @Accept json
// @Produce json
// @Param request body domain.CreateWorkflowRequest true "Workflow data"
// @Success 201 {object} domain.WorkflowDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /workflows [post]
func (h *WorkflowHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	workflow, err := h.workflowService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create workflow", zap.Error(err))
		h.handleWorkflowError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/workflows/"+workflow.ID.String())
	respondJSON(w, http.StatusCreated, workflow)
}

// @Summary Get workflow
// @Tags Workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {object} domain.WorkflowDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /workflows/{id} [get]
func (h *WorkflowHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid workflow ID: must be a valid UUID")
		return
	}

	workflow, err := h.workflowService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get workflow", zap.Error(err), zap.String("workflow_id", id.String()))
		h.handleWorkflowError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, workflow)
}

// @Summary Delete workflow
// @Tags Workflows
// @Param id path string true "Workflow ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /workflows/{id} [delete]
func (h *WorkflowHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid workflow ID: must be a valid UUID")
		return
	}

	if err := h.workflowService.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete workflow", zap.Error(err), zap.String("workflow_id", id.String()))
		h.handleWorkflowError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Add workflow task
// @Description Appends a task. The order sequence is assigned server-side; dependencies must reference existing tasks and must not close a cycle.
// @Tags Workflows
// @Accept json
// @Produce json
// @Param id path string true "Workflow ID"
// @Param request body domain.CreateWorkflowTaskRequest true "Task data"
// @Success 201 {object} domain.WorkflowTaskDTO
// @Failure 400 {object} domain.APIError "Unknown dependency or invalid duration"
// @Failure 409 {object} domain.APIError "Dependency cycle or duplicate order sequence"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /workflows/{id}/tasks [post]
func (h *WorkflowHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid workflow ID: must be a valid UUID")
		return
	}

	var req domain.CreateWorkflowTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	task, err := h.workflowService.AddTask(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to add workflow task", zap.Error(err), zap.String("workflow_id", id.String()))
		h.handleWorkflowError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// @Summary List workflow tasks
// @Tags Workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {array} domain.WorkflowTaskDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /workflows/{id}/tasks [get]
func (h *WorkflowHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid workflow ID: must be a valid UUID")
		return
	}

	tasks, err := h.workflowService.ListTasks(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list workflow tasks", zap.Error(err), zap.String("workflow_id", id.String()))
		h.handleWorkflowError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, tasks)
}

// @Summary Get workflow task
// @Tags Workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Param taskId path string true "Task ID"
// @Success 200 {object} domain.WorkflowTaskDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /workflows/{id}/tasks/{taskId} [get]
func (h *WorkflowHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid workflow ID: must be a valid UUID")
		return
	}
	taskID, err := uuid.Parse(chi.URLParam(r, "taskId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID: must be a valid UUID")
		return
	}

	task, err := h.workflowService.GetTask(r.Context(), id, taskID)
	if err != nil {
		h.logger.Error("failed to get workflow task", zap.Error(err),
			zap.String("workflow_id", id.String()), zap.String("task_id", taskID.String()))
		h.handleWorkflowError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// @Summary Remove workflow task
// @Description Removes a task unless another task depends on it.
// @Tags Workflows
// @Param id path string true "Workflow ID"
// @Param taskId path string true "Task ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /workflows/{id}/tasks/{taskId} [delete]
func (h *WorkflowHandler) RemoveTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid workflow ID: must be a valid UUID")
		return
	}
	taskID, err := uuid.Parse(chi.URLParam(r, "taskId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID: must be a valid UUID")
		return
	}

	if err := h.workflowService.RemoveTask(r.Context(), id, taskID); err != nil {
		h.logger.Error("failed to remove workflow task", zap.Error(err),
			zap.String("workflow_id", id.String()), zap.String("task_id", taskID.String()))
		h.handleWorkflowError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Get execution order
// @Description Returns the workflow's tasks in a dependency-respecting order, ties broken by order sequence.
// @Tags Workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {object} domain.ExecutionOrderResponse
// @Failure 409 {object} domain.APIError "Dependency cycle"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /workflows/{id}/execution-order [get]
func (h *WorkflowHandler) ExecutionOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid workflow ID: must be a valid UUID")
		return
	}

	order, err := h.workflowService.ExecutionOrder(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to compute execution order", zap.Error(err), zap.String("workflow_id", id.String()))
		h.handleWorkflowError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// @Summary Get total estimated hours
// @Tags Workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {object} map[string]float64
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /workflows/{id}/estimate [get]
func (h *WorkflowHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid workflow ID: must be a valid UUID")
		return
	}

	hours, err := h.workflowService.TotalEstimatedHours(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to estimate workflow", zap.Error(err), zap.String("workflow_id", id.String()))
		h.handleWorkflowError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]float64{"totalEstimatedHours": hours})
}

func (h *WorkflowHandler) handleWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrWorkflowNotFound):
		respondWithError(w, http.StatusNotFound, "Workflow not found")
	case errors.Is(err, service.ErrTaskNotFound):
		respondWithError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, service.ErrInvalidDuration):
		respondWithError(w, http.StatusBadRequest, "Estimated duration must be a positive number of hours")
	case errors.Is(err, service.ErrUnknownDependency):
		respondWithError(w, http.StatusBadRequest, "Dependencies must reference existing tasks of the same workflow")
	case errors.Is(err, service.ErrCyclicDependency):
		respondWithError(w, http.StatusConflict, "Task dependencies must not form a cycle")
	case errors.Is(err, service.ErrTaskHasDependents):
		respondWithError(w, http.StatusConflict, "Other tasks depend on this task")
	case errors.Is(err, service.ErrDuplicateOrderSequence):
		respondWithError(w, http.StatusConflict, "Order sequence already taken, retry the request")
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
