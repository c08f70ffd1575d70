package service

// Lead-to-client conversion. Conversion is the one operation that touches
// leads, clients and both document types in a single transaction.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/agencydesk/commerce-api/internal/mapper"
	"github.com/agencydesk/commerce-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CounterpartyService struct {
	leadRepo        *repository.LeadRepository
	clientRepo      *repository.ClientRepository
	quotationRepo   *repository.QuotationRepository
	contractRepo    *repository.ContractRepository
	activityService *ActivityService
	logger          *zap.Logger
	db              *gorm.DB
}

func NewCounterpartyService(
	leadRepo *repository.LeadRepository,
	clientRepo *repository.ClientRepository,
	quotationRepo *repository.QuotationRepository,
	contractRepo *repository.ContractRepository,
	activityService *ActivityService,
	logger *zap.Logger,
	db *gorm.DB,
) *CounterpartyService {
	return &CounterpartyService{
		leadRepo:        leadRepo,
		clientRepo:      clientRepo,
		quotationRepo:   quotationRepo,
		contractRepo:    contractRepo,
		activityService: activityService,
		logger:          logger,
		db:              db,
	}
}

// ConvertLeadToClient converts a lead into a client and re-points every
// document that still references the lead to the new client, atomically.
// After the transaction commits no document references the lead, so a
// crash can never leave the re-pointing half done.
func (s *CounterpartyService) ConvertLeadToClient(ctx context.Context, leadID uuid.UUID) (*domain.ConvertLeadResponse, error) {
	var (
		client              *domain.Client
		repointedQuotations int
		repointedContracts  int
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lead, err := s.leadRepo.GetByIDForUpdate(tx, leadID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLeadNotFound
			}
			return fmt.Errorf("failed to get lead: %w", err)
		}

		if lead.Status == domain.LeadStatusConverted {
			return ErrLeadAlreadyConverted
		}

		client = &domain.Client{
			Name:          lead.Name,
			Email:         lead.Email,
			Phone:         lead.Phone,
			ContactPerson: lead.Name,
			IsActive:      true,
			SourceLeadID:  &lead.ID,
		}
		if lead.CompanyName != "" {
			client.Name = lead.CompanyName
		}
		if err := tx.Create(client).Error; err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}

		// Re-point quotations. Closed documents keep their history too:
		// the lead row itself survives with a converted marker, so the
		// re-point loses nothing.
		quotations, err := s.quotationRepo.ListByLead(tx, leadID)
		if err != nil {
			return fmt.Errorf("failed to list quotations: %w", err)
		}
		for i := range quotations {
			quotations[i].LeadID = nil
			quotations[i].ClientID = &client.ID
			if err := tx.Save(&quotations[i]).Error; err != nil {
				return fmt.Errorf("failed to re-point quotation %s: %w", quotations[i].ID, err)
			}
		}
		repointedQuotations = len(quotations)

		contracts, err := s.contractRepo.ListByLead(tx, leadID)
		if err != nil {
			return fmt.Errorf("failed to list contracts: %w", err)
		}
		for i := range contracts {
			contracts[i].LeadID = nil
			contracts[i].ClientID = &client.ID
			if err := tx.Save(&contracts[i]).Error; err != nil {
				return fmt.Errorf("failed to re-point contract %s: %w", contracts[i].ID, err)
			}
		}
		repointedContracts = len(contracts)

		now := time.Now().UTC()
		lead.Status = domain.LeadStatusConverted
		lead.ConvertedAt = &now
		lead.ConvertedToID = &client.ID
		if err := tx.Save(lead).Error; err != nil {
			return fmt.Errorf("failed to mark lead converted: %w", err)
		}

		if err := s.activityService.LogInTx(ctx, tx, domain.ActivityTargetLead, leadID,
			"Lead converted",
			fmt.Sprintf("Lead '%s' converted to client '%s' (%d quotations, %d contracts re-pointed)",
				lead.Name, client.Name, repointedQuotations, repointedContracts)); err != nil {
			return err
		}
		return s.activityService.LogInTx(ctx, tx, domain.ActivityTargetClient, client.ID,
			"Client created", fmt.Sprintf("Created by converting lead '%s'", lead.Name))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lead converted to client",
		zap.String("leadID", leadID.String()),
		zap.String("clientID", client.ID.String()),
		zap.Int("repointedQuotations", repointedQuotations),
		zap.Int("repointedContracts", repointedContracts))

	return &domain.ConvertLeadResponse{
		Client:              mapper.ToClientDTO(client),
		RepointedQuotations: repointedQuotations,
		RepointedContracts:  repointedContracts,
	}, nil
}
