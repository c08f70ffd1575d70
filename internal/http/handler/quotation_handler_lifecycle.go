package handler

import (
	"encoding/json"
	"net/http"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Lifecycle endpoints. State checks live in the service; the handlers only
// parse and translate errors.

// @Summary Send quotation
// @Description Sends a draft or modified quotation. The document number is assigned on first send and kept on re-sends.
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.QuotationDTO
// @Failure 409 {object} domain.APIError "Invalid state or empty quotation"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/send [post]
func (h *QuotationHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	quotation, err := h.quotationService.Send(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to send quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Accept quotation
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.AcceptQuotationRequest false "Optional notes"
// @Success 200 {object} domain.QuotationDTO
// @Failure 409 {object} domain.APIError "Quotation is not in sent status"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/accept [post]
func (h *QuotationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.AcceptQuotationRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
	}

	quotation, err := h.quotationService.Accept(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to accept quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Reject quotation
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.RejectQuotationRequest true "Rejection reason"
// @Success 200 {object} domain.QuotationDTO
// @Failure 409 {object} domain.APIError "Quotation is not in sent status"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/reject [post]
func (h *QuotationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.RejectQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.Reject(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to reject quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Request quotation modification
// @Description Moves a sent quotation to modified, re-opening it for edits. The number and sent date are preserved.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.RequestModificationRequest false "Optional notes"
// @Success 200 {object} domain.QuotationDTO
// @Failure 409 {object} domain.APIError "Quotation is not in sent status"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/request-modification [post]
func (h *QuotationHandler) RequestModification(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.RequestModificationRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
	}

	quotation, err := h.quotationService.RequestModification(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to request quotation modification", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}
