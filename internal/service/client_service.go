package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/agencydesk/commerce-api/internal/mapper"
	"github.com/agencydesk/commerce-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ClientService struct {
	clientRepo      *repository.ClientRepository
	activityService *ActivityService
	logger          *zap.Logger
}

func NewClientService(
	clientRepo *repository.ClientRepository,
	activityService *ActivityService,
	logger *zap.Logger,
) *ClientService {
	return &ClientService{
		clientRepo:      clientRepo,
		activityService: activityService,
		logger:          logger,
	}
}

// GetByID returns a single client
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

// List returns a page of clients
func (s *ClientService) List(ctx context.Context, page, pageSize int, activeOnly bool) ([]domain.ClientDTO, int64, error) {
	clients, total, err := s.clientRepo.List(ctx, page, pageSize, activeOnly)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}

	dtos := make([]domain.ClientDTO, len(clients))
	for i := range clients {
		dtos[i] = mapper.ToClientDTO(&clients[i])
	}
	return dtos, total, nil
}

// Search returns clients matching the query by name or org number
func (s *ClientService) Search(ctx context.Context, query string, limit int) ([]domain.ClientDTO, error) {
	if limit <= 0 {
		limit = 20
	}
	clients, err := s.clientRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search clients: %w", err)
	}

	dtos := make([]domain.ClientDTO, len(clients))
	for i := range clients {
		dtos[i] = mapper.ToClientDTO(&clients[i])
	}
	return dtos, nil
}

// Deactivate soft-disables a client without touching its documents
func (s *ClientService) Deactivate(ctx context.Context, id uuid.UUID) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	client.IsActive = false
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	s.activityService.Log(ctx, domain.ActivityTargetClient, id,
		"Client deactivated", fmt.Sprintf("Client '%s' deactivated", client.Name))

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}
