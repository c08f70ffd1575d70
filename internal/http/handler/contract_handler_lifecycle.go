package handler

import (
	"encoding/json"
	"net/http"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// @Summary Suspend contract
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} domain.ContractDTO
// @Failure 409 {object} domain.APIError "Contract is not active"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/{id}/suspend [post]
func (h *ContractHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID: must be a valid UUID")
		return
	}

	contract, err := h.contractService.Suspend(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to suspend contract", zap.Error(err), zap.String("contract_id", id.String()))
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contract)
}

// @Summary Resume contract
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} domain.ContractDTO
// @Failure 409 {object} domain.APIError "Contract is not suspended"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/{id}/resume [post]
func (h *ContractHandler) Resume(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID: must be a valid UUID")
		return
	}

	contract, err := h.contractService.Resume(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to resume contract", zap.Error(err), zap.String("contract_id", id.String()))
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contract)
}

// @Summary Complete contract
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} domain.ContractDTO
// @Failure 409 {object} domain.APIError "Contract is not active"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/{id}/complete [post]
func (h *ContractHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID: must be a valid UUID")
		return
	}

	contract, err := h.contractService.Complete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to complete contract", zap.Error(err), zap.String("contract_id", id.String()))
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contract)
}

// @Summary Cancel contract
// @Description Cancels an active or suspended contract. A reason is required.
// @Tags Contracts
// @Accept json
// @Produce json
// @Param id path string true "Contract ID"
// @Param request body domain.CancelContractRequest true "Cancellation reason"
// @Success 200 {object} domain.ContractDTO
// @Failure 409 {object} domain.APIError "Contract is already closed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/{id}/cancel [post]
func (h *ContractHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID: must be a valid UUID")
		return
	}

	var req domain.CancelContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	contract, err := h.contractService.Cancel(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to cancel contract", zap.Error(err), zap.String("contract_id", id.String()))
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contract)
}
