package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/agencydesk/commerce-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ClientHandler struct {
	clientService *service.ClientService
	logger        *zap.Logger
}

func NewClientHandler(clientService *service.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		logger:        logger,
	}
}

// @Summary List clients
// @Tags Clients
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param activeOnly query bool false "Only active clients" default(false)
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients [get]
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	activeOnly := r.URL.Query().Get("activeOnly") == "true"

	clients, total, err := h.clientService.List(r.Context(), page, pageSize, activeOnly)
	if err != nil {
		h.logger.Error("failed to list clients", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list clients")
		return
	}

	respondJSON(w, http.StatusOK, newPaginatedResponse(clients, page, pageSize, total))
}

// @Summary Get client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} domain.ClientDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id} [get]
func (h *ClientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid client ID: must be a valid UUID")
		return
	}

	client, err := h.clientService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get client", zap.Error(err), zap.String("client_id", id.String()))
		h.handleClientError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, client)
}

// @Summary Search clients
// @Tags Clients
// @Produce json
// @Param q query string true "Search query, matches name or org number"
// @Param limit query int false "Maximum results" default(20)
// @Success 200 {array} domain.ClientDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/search [get]
func (h *ClientHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	clients, err := h.clientService.Search(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("failed to search clients", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to search clients")
		return
	}

	respondJSON(w, http.StatusOK, clients)
}

// @Summary Deactivate client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} domain.ClientDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id}/deactivate [post]
func (h *ClientHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid client ID: must be a valid UUID")
		return
	}

	client, err := h.clientService.Deactivate(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to deactivate client", zap.Error(err), zap.String("client_id", id.String()))
		h.handleClientError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) handleClientError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrClientNotFound):
		respondWithError(w, http.StatusNotFound, "Client not found")
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
