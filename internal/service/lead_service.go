package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/agencydesk/commerce-api/internal/auth"
	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/agencydesk/commerce-api/internal/mapper"
	"github.com/agencydesk/commerce-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LeadService struct {
	leadRepo        *repository.LeadRepository
	activityService *ActivityService
	logger          *zap.Logger
}

func NewLeadService(
	leadRepo *repository.LeadRepository,
	activityService *ActivityService,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		leadRepo:        leadRepo,
		activityService: activityService,
		logger:          logger,
	}
}

// Create registers a new lead
func (s *LeadService) Create(ctx context.Context, req *domain.CreateLeadRequest) (*domain.LeadDTO, error) {
	lead := &domain.Lead{
		Name:         req.Name,
		CompanyName:  req.CompanyName,
		Email:        req.Email,
		Phone:        req.Phone,
		Source:       req.Source,
		Status:       domain.LeadStatusNew,
		Notes:        req.Notes,
		AssignedToID: req.AssignedToID,
	}
	if lead.AssignedToID == "" {
		if userCtx, ok := auth.FromContext(ctx); ok {
			lead.AssignedToID = userCtx.UserID
		}
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.activityService.Log(ctx, domain.ActivityTargetLead, lead.ID,
		"Lead created", fmt.Sprintf("Lead '%s' registered via %s", lead.Name, orDash(lead.Source)))

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// GetByID returns a single lead
func (s *LeadService) GetByID(ctx context.Context, id uuid.UUID) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// List returns a page of leads, optionally filtered by status
func (s *LeadService) List(ctx context.Context, page, pageSize int, status *domain.LeadStatus) ([]domain.LeadDTO, int64, error) {
	leads, total, err := s.leadRepo.List(ctx, page, pageSize, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}

	dtos := make([]domain.LeadDTO, len(leads))
	for i := range leads {
		dtos[i] = mapper.ToLeadDTO(&leads[i])
	}
	return dtos, total, nil
}

// UpdateStatus moves a lead along the acquisition funnel. The converted
// status is reserved for ConvertToClient.
func (s *LeadService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LeadStatus) (*domain.LeadDTO, error) {
	if status == domain.LeadStatusConverted {
		return nil, fmt.Errorf("use the convert endpoint to convert a lead")
	}

	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	if lead.Status == domain.LeadStatusConverted {
		return nil, ErrLeadAlreadyConverted
	}

	oldStatus := lead.Status
	lead.Status = status
	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	s.activityService.Log(ctx, domain.ActivityTargetLead, id,
		"Lead status changed", fmt.Sprintf("Lead '%s': %s -> %s", lead.Name, oldStatus, status))

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
