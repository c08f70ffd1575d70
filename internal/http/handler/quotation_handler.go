package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/agencydesk/commerce-api/internal/mapper"
	"github.com/agencydesk/commerce-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type QuotationHandler struct {
	quotationService *service.QuotationService
	activityService  *service.ActivityService
	logger           *zap.Logger
}

func NewQuotationHandler(quotationService *service.QuotationService, activityService *service.ActivityService, logger *zap.Logger) *QuotationHandler {
	return &QuotationHandler{
		quotationService: quotationService,
		activityService:  activityService,
		logger:           logger,
	}
}

// @Summary List quotations
// @Tags Quotations
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param leadId query string false "Filter by lead ID"
// @Param clientId query string false "Filter by client ID"
// @Param status query string false "Filter by status" Enums(draft, sent, accepted, rejected, modified)
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations [get]
func (h *QuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var leadID, clientID *uuid.UUID
	if lid := r.URL.Query().Get("leadId"); lid != "" {
		if id, err := uuid.Parse(lid); err == nil {
			leadID = &id
		}
	}
	if cid := r.URL.Query().Get("clientId"); cid != "" {
		if id, err := uuid.Parse(cid); err == nil {
			clientID = &id
		}
	}

	var status *domain.QuotationStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.QuotationStatus(s)
		status = &st
	}

	quotations, total, err := h.quotationService.List(r.Context(), page, pageSize, leadID, clientID, status)
	if err != nil {
		h.logger.Error("failed to list quotations", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list quotations")
		return
	}

	respondJSON(w, http.StatusOK, newPaginatedResponse(quotations, page, pageSize, total))
}

// @Summary Create quotation
// @Description Creates a draft quotation for exactly one counterparty, either a lead or a client.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param request body domain.CreateQuotationRequest true "Quotation data"
// @Success 201 {object} domain.QuotationDTO
// @Failure 400 {object} domain.APIError "Validation error or both/neither counterparty set"
// @Failure 404 {object} domain.APIError "Lead or client not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations [post]
func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create quotation", zap.Error(err))
		h.handleQuotationError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/quotations/"+quotation.ID.String())
	respondJSON(w, http.StatusCreated, quotation)
}

// @Summary Get quotation
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.QuotationDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id} [get]
func (h *QuotationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	quotation, err := h.quotationService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Delete quotation
// @Description Deletes a quotation and its line items. Only editable quotations (draft or modified) can be deleted.
// @Tags Quotations
// @Param id path string true "Quotation ID"
// @Success 204 "No Content"
// @Failure 409 {object} domain.APIError "Quotation is not editable"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id} [delete]
func (h *QuotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	if err := h.quotationService.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Add line item
// @Description Adds a line item and recomputes totals in the same transaction.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.AddLineItemRequest true "Line item data"
// @Success 200 {object} domain.QuotationDTO
// @Failure 409 {object} domain.APIError "Quotation is not editable"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/items [post]
func (h *QuotationHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.AddLineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.AddItem(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to add quotation item", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Update line item
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param itemId path string true "Line item ID"
// @Param request body domain.UpdateLineItemRequest true "Line item fields to update"
// @Success 200 {object} domain.QuotationDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/items/{itemId} [put]
func (h *QuotationHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID: must be a valid UUID")
		return
	}

	var req domain.UpdateLineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.UpdateItem(r.Context(), id, itemID, &req)
	if err != nil {
		h.logger.Error("failed to update quotation item", zap.Error(err),
			zap.String("quotation_id", id.String()), zap.String("item_id", itemID.String()))
		h.handleQuotationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Remove line item
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Param itemId path string true "Line item ID"
// @Success 200 {object} domain.QuotationDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/items/{itemId} [delete]
func (h *QuotationHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID: must be a valid UUID")
		return
	}

	quotation, err := h.quotationService.RemoveItem(r.Context(), id, itemID)
	if err != nil {
		h.logger.Error("failed to remove quotation item", zap.Error(err),
			zap.String("quotation_id", id.String()), zap.String("item_id", itemID.String()))
		h.handleQuotationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Set tax and discount rates
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.UpdateRatesRequest true "Rates as percentage strings, e.g. \"15\" or \"12.5\""
// @Success 200 {object} domain.QuotationDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/rates [put]
func (h *QuotationHandler) SetRates(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.UpdateRatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.SetRates(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to set quotation rates", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Get quotation activities
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {array} domain.ActivityDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/activities [get]
func (h *QuotationHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	activities, err := h.activityService.ListByTarget(r.Context(), domain.ActivityTargetQuotation, id, limit)
	if err != nil {
		h.logger.Error("failed to list quotation activities", zap.Error(err), zap.String("quotation_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to list activities")
		return
	}

	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = mapper.ToActivityDTO(&activities[i])
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *QuotationHandler) handleQuotationError(w http.ResponseWriter, err error) {
	var transitionErr *domain.InvalidTransitionError
	switch {
	case errors.Is(err, service.ErrQuotationNotFound):
		respondWithError(w, http.StatusNotFound, "Quotation not found")
	case errors.Is(err, service.ErrItemNotFound):
		respondWithError(w, http.StatusNotFound, "Line item not found")
	case errors.Is(err, service.ErrLeadNotFound):
		respondWithError(w, http.StatusBadRequest, "Lead not found")
	case errors.Is(err, service.ErrClientNotFound):
		respondWithError(w, http.StatusBadRequest, "Client not found")
	case errors.Is(err, service.ErrInvalidCounterparty):
		respondWithError(w, http.StatusBadRequest, "Exactly one of leadId or clientId must be set")
	case errors.Is(err, service.ErrInvalidQuantity):
		respondWithError(w, http.StatusBadRequest, "Quantity must be a positive integer")
	case errors.Is(err, service.ErrInvalidPrice):
		respondWithError(w, http.StatusBadRequest, "Unit price must be a non-negative decimal amount")
	case errors.Is(err, service.ErrInvalidRate):
		respondWithError(w, http.StatusBadRequest, "Rates must be decimal percentages between 0 and 100")
	case errors.Is(err, service.ErrInvalidDate):
		respondWithError(w, http.StatusBadRequest, "Dates must use the YYYY-MM-DD format")
	case errors.Is(err, service.ErrCurrencyMismatch):
		respondWithError(w, http.StatusConflict, "Item currency does not match the document currency")
	case errors.Is(err, service.ErrDocumentNotEditable):
		respondWithError(w, http.StatusConflict, "Quotation can only be modified in draft or modified status")
	case errors.Is(err, service.ErrEmptyDocument):
		respondWithError(w, http.StatusConflict, "Quotation must have at least one line item to be sent")
	case errors.Is(err, service.ErrMissingReason):
		respondWithError(w, http.StatusBadRequest, "A reason is required")
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.As(err, &transitionErr):
		respondWithError(w, http.StatusConflict, transitionErr.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
