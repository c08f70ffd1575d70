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

type ContractHandler struct {
	contractService *service.ContractService
	activityService *service.ActivityService
	logger          *zap.Logger
}

func NewContractHandler(contractService *service.ContractService, activityService *service.ActivityService, logger *zap.Logger) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		activityService: activityService,
		logger:          logger,
	}
}

// @Summary List contracts
// @Tags Contracts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param leadId query string false "Filter by lead ID"
// @Param clientId query string false "Filter by client ID"
// @Param status query string false "Filter by status" Enums(active, suspended, completed, cancelled)
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts [get]
func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
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

	var status *domain.ContractStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.ContractStatus(s)
		status = &st
	}

	contracts, total, err := h.contractService.List(r.Context(), page, pageSize, leadID, clientID, status)
	if err != nil {
		h.logger.Error("failed to list contracts", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list contracts")
		return
	}

	respondJSON(w, http.StatusOK, newPaginatedResponse(contracts, page, pageSize, total))
}

// @Summary Create contract
// @Description Creates an active contract. The contract number is assigned at creation from the shared yearly sequence.
// @Tags Contracts
// @Accept json
// @Produce json
// @Param request body domain.CreateContractRequest true "Contract data"
// @Success 201 {object} domain.ContractDTO
// @Failure 400 {object} domain.APIError "Validation error, bad dates or both/neither counterparty set"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts [post]
func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	contract, err := h.contractService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create contract", zap.Error(err))
		h.handleContractError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/contracts/"+contract.ID.String())
	respondJSON(w, http.StatusCreated, contract)
}

// @Summary Get contract
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} domain.ContractDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/{id} [get]
func (h *ContractHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID: must be a valid UUID")
		return
	}

	contract, err := h.contractService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get contract", zap.Error(err), zap.String("contract_id", id.String()))
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contract)
}

// @Summary Delete contract
// @Description Deletes a contract and its line items. Completed and cancelled contracts are kept as records and cannot be deleted.
// @Tags Contracts
// @Param id path string true "Contract ID"
// @Success 204 "No Content"
// @Failure 409 {object} domain.APIError "Contract is completed or cancelled"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/{id} [delete]
func (h *ContractHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID: must be a valid UUID")
		return
	}

	if err := h.contractService.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete contract", zap.Error(err), zap.String("contract_id", id.String()))
		h.handleContractError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Add line item
// @Tags Contracts
// @Accept json
// @Produce json
// @Param id path string true "Contract ID"
// @Param request body domain.AddLineItemRequest true "Line item data"
// @Success 200 {object} domain.ContractDTO
// @Failure 409 {object} domain.APIError "Contract is completed or cancelled"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/{id}/items [post]
func (h *ContractHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID: must be a valid UUID")
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

	contract, err := h.contractService.AddItem(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to add contract item", zap.Error(err), zap.String("contract_id", id.String()))
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contract)
}

// @Summary Update line item
// @Tags Contracts
// @Accept json
// @Produce json
// @Param id path string true "Contract ID"
// @Param itemId path string true "Line item ID"
// @Param request body domain.UpdateLineItemRequest true "Line item fields to update"
// @Success 200 {object} domain.ContractDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/{id}/items/{itemId} [put]
func (h *ContractHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID: must be a valid UUID")
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

	contract, err := h.contractService.UpdateItem(r.Context(), id, itemID, &req)
	if err != nil {
		h.logger.Error("failed to update contract item", zap.Error(err),
			zap.String("contract_id", id.String()), zap.String("item_id", itemID.String()))
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contract)
}

// @Summary Remove line item
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Param itemId path string true "Line item ID"
// @Success 200 {object} domain.ContractDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/{id}/items/{itemId} [delete]
func (h *ContractHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID: must be a valid UUID")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID: must be a valid UUID")
		return
	}

	contract, err := h.contractService.RemoveItem(r.Context(), id, itemID)
	if err != nil {
		h.logger.Error("failed to remove contract item", zap.Error(err),
			zap.String("contract_id", id.String()), zap.String("item_id", itemID.String()))
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contract)
}

// @Summary Set tax and discount rates
// @Tags Contracts
// @Accept json
// @Produce json
// @Param id path string true "Contract ID"
// @Param request body domain.UpdateRatesRequest true "Rates as percentage strings"
// @Success 200 {object} domain.ContractDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/{id}/rates [put]
func (h *ContractHandler) SetRates(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID: must be a valid UUID")
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

	contract, err := h.contractService.SetRates(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to set contract rates", zap.Error(err), zap.String("contract_id", id.String()))
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contract)
}

// @Summary Get contract activities
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {array} domain.ActivityDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/{id}/activities [get]
func (h *ContractHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID: must be a valid UUID")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	activities, err := h.activityService.ListByTarget(r.Context(), domain.ActivityTargetContract, id, limit)
	if err != nil {
		h.logger.Error("failed to list contract activities", zap.Error(err), zap.String("contract_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to list activities")
		return
	}

	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = mapper.ToActivityDTO(&activities[i])
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *ContractHandler) handleContractError(w http.ResponseWriter, err error) {
	var transitionErr *domain.InvalidTransitionError
	switch {
	case errors.Is(err, service.ErrContractNotFound):
		respondWithError(w, http.StatusNotFound, "Contract not found")
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
	case errors.Is(err, service.ErrEndBeforeStart):
		respondWithError(w, http.StatusBadRequest, "End date must not be before the start date")
	case errors.Is(err, service.ErrCurrencyMismatch):
		respondWithError(w, http.StatusConflict, "Item currency does not match the document currency")
	case errors.Is(err, service.ErrContractClosed):
		respondWithError(w, http.StatusConflict, "Contract is completed or cancelled and can no longer be modified")
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
