package handler

import (
	"net/http"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/agencydesk/commerce-api/internal/mapper"
	"github.com/agencydesk/commerce-api/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ActivityHandler struct {
	activityService *service.ActivityService
	logger          *zap.Logger
}

func NewActivityHandler(activityService *service.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

// @Summary List activities
// @Description Get the audit trail, optionally filtered to one entity
// @Tags Activities
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param targetType query string false "Filter by target type" Enums(Quotation, Contract, Workflow, Lead, Client)
// @Param targetId query string false "Filter by target ID"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities [get]
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var targetType *domain.ActivityTargetType
	if t := r.URL.Query().Get("targetType"); t != "" {
		tt := domain.ActivityTargetType(t)
		targetType = &tt
	}

	var targetID *uuid.UUID
	if tid := r.URL.Query().Get("targetId"); tid != "" {
		id, err := uuid.Parse(tid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid target ID: must be a valid UUID")
			return
		}
		targetID = &id
	}

	activities, total, err := h.activityService.List(r.Context(), page, pageSize, targetType, targetID)
	if err != nil {
		h.logger.Error("failed to list activities", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list activities")
		return
	}

	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = mapper.ToActivityDTO(&activities[i])
	}
	respondJSON(w, http.StatusOK, newPaginatedResponse(dtos, page, pageSize, total))
}
