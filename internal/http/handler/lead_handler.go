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

type LeadHandler struct {
	leadService         *service.LeadService
	counterpartyService *service.CounterpartyService
	logger              *zap.Logger
}

func NewLeadHandler(leadService *service.LeadService, counterpartyService *service.CounterpartyService, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		leadService:         leadService,
		counterpartyService: counterpartyService,
		logger:              logger,
	}
}

// @Summary List leads
// @Tags Leads
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status" Enums(new, contacted, qualified, converted, archived)
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads [get]
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var status *domain.LeadStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.LeadStatus(s)
		status = &st
	}

	leads, total, err := h.leadService.List(r.Context(), page, pageSize, status)
	if err != nil {
		h.logger.Error("failed to list leads", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list leads")
		return
	}

	respondJSON(w, http.StatusOK, newPaginatedResponse(leads, page, pageSize, total))
}

// @Summary Create lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body domain.CreateLeadRequest true "Lead data"
// @Success 201 {object} domain.LeadDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads [post]
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create lead", zap.Error(err))
		h.handleLeadError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/leads/"+lead.ID.String())
	respondJSON(w, http.StatusCreated, lead)
}

// @Summary Get lead
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.LeadDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id} [get]
func (h *LeadHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	lead, err := h.leadService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get lead", zap.Error(err), zap.String("lead_id", id.String()))
		h.handleLeadError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary Update lead status
// @Description Moves a lead along the funnel. The converted status is reserved for the convert endpoint.
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.UpdateLeadStatusRequest true "New status"
// @Success 200 {object} domain.LeadDTO
// @Failure 409 {object} domain.APIError "Lead is already converted"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id}/status [put]
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	var req domain.UpdateLeadStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to update lead status", zap.Error(err), zap.String("lead_id", id.String()))
		h.handleLeadError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary Convert lead to client
// @Description Creates a client from the lead and re-points all of the lead's quotations and contracts to it, atomically.
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.ConvertLeadResponse
// @Failure 409 {object} domain.APIError "Lead is already converted"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id}/convert [post]
func (h *LeadHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	result, err := h.counterpartyService.ConvertLeadToClient(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to convert lead", zap.Error(err), zap.String("lead_id", id.String()))
		h.handleLeadError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *LeadHandler) handleLeadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrLeadNotFound):
		respondWithError(w, http.StatusNotFound, "Lead not found")
	case errors.Is(err, service.ErrLeadAlreadyConverted):
		respondWithError(w, http.StatusConflict, "Lead is already converted")
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
