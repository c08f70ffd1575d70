package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agencydesk/commerce-api/internal/auth"
	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/agencydesk/commerce-api/internal/mapper"
	"github.com/agencydesk/commerce-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ContractService struct {
	contractRepo     *repository.ContractRepository
	lineItemRepo     *repository.LineItemRepository
	leadRepo         *repository.LeadRepository
	clientRepo       *repository.ClientRepository
	numberSeqService *NumberSequenceService
	activityService  *ActivityService
	notifications    *NotificationService
	logger           *zap.Logger
	db               *gorm.DB
}

func NewContractService(
	contractRepo *repository.ContractRepository,
	lineItemRepo *repository.LineItemRepository,
	leadRepo *repository.LeadRepository,
	clientRepo *repository.ClientRepository,
	numberSeqService *NumberSequenceService,
	activityService *ActivityService,
	notifications *NotificationService,
	logger *zap.Logger,
	db *gorm.DB,
) *ContractService {
	return &ContractService{
		contractRepo:     contractRepo,
		lineItemRepo:     lineItemRepo,
		leadRepo:         leadRepo,
		clientRepo:       clientRepo,
		numberSeqService: numberSeqService,
		activityService:  activityService,
		notifications:    notifications,
		logger:           logger,
		db:               db,
	}
}

// Create creates an active contract. Contracts have no draft stage, so the
// document number is assigned immediately from the shared sequence.
func (s *ContractService) Create(ctx context.Context, req *domain.CreateContractRequest) (*domain.ContractDTO, error) {
	if (req.LeadID != nil) == (req.ClientID != nil) {
		return nil, ErrInvalidCounterparty
	}

	if req.LeadID != nil {
		if _, err := s.leadRepo.GetByID(ctx, *req.LeadID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrLeadNotFound
			}
			return nil, fmt.Errorf("failed to verify lead: %w", err)
		}
	}
	if req.ClientID != nil {
		if _, err := s.clientRepo.GetByID(ctx, *req.ClientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrClientNotFound
			}
			return nil, fmt.Errorf("failed to verify client: %w", err)
		}
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	endDate, err := parseDatePtr(req.EndDate)
	if err != nil {
		return nil, err
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, ErrEndBeforeStart
	}

	contract := &domain.Contract{
		LeadID:        req.LeadID,
		ClientID:      req.ClientID,
		Currency:      req.Currency,
		Status:        domain.ContractStatusActive,
		StartDate:     startDate,
		EndDate:       endDate,
		Notes:         req.Notes,
		ResponsibleID: req.ResponsibleID,
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		contract.CreatedByID = userCtx.UserID
		contract.UpdatedByID = userCtx.UserID
		if contract.ResponsibleID == "" {
			contract.ResponsibleID = userCtx.UserID
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.numberSeqService.GenerateContractNumberInTx(tx, time.Now().UTC())
		if err != nil {
			return err
		}
		contract.ContractNumber = number

		if err := tx.Create(contract).Error; err != nil {
			return fmt.Errorf("failed to create contract: %w", err)
		}

		return s.activityService.LogInTx(ctx, tx, domain.ActivityTargetContract, contract.ID,
			"Contract created",
			fmt.Sprintf("Contract %s created in %s", contract.ContractNumber, contract.Currency))
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, contract.ID, "create")
}

// GetByID returns a contract with its items in position order
func (s *ContractService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContractDTO, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	dto := mapper.ToContractDTO(contract)
	return &dto, nil
}

// List returns a page of contracts with optional filters
func (s *ContractService) List(ctx context.Context, page, pageSize int, leadID, clientID *uuid.UUID, status *domain.ContractStatus) ([]domain.ContractDTO, int64, error) {
	contracts, total, err := s.contractRepo.List(ctx, page, pageSize, leadID, clientID, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contracts: %w", err)
	}

	dtos := make([]domain.ContractDTO, len(contracts))
	for i := range contracts {
		dtos[i] = mapper.ToContractDTO(&contracts[i])
	}
	return dtos, total, nil
}

// Delete removes a contract together with its line items. Completed and
// cancelled contracts are kept as records and cannot be deleted.
func (s *ContractService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.lockOpenContract(tx, id); err != nil {
			return err
		}

		if err := s.lineItemRepo.DeleteByParent(tx, domain.DocumentTypeContract, id); err != nil {
			return fmt.Errorf("failed to delete line items: %w", err)
		}
		if err := tx.Delete(&domain.Contract{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete contract: %w", err)
		}
		return nil
	})
}

// AddItem appends a line item to an open contract and recomputes totals.
// Items can be added while the contract is active or suspended; completed
// and cancelled contracts are immutable.
func (s *ContractService) AddItem(ctx context.Context, id uuid.UUID, req *domain.AddLineItemRequest) (*domain.ContractDTO, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	unitPrice, err := parseUnitPrice(req.UnitPrice, req.Currency)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contract, err := s.lockOpenContract(tx, id)
		if err != nil {
			return err
		}

		price, err := resolveItemCurrency(unitPrice, contract.Currency)
		if err != nil {
			return err
		}

		position, err := s.lineItemRepo.NextPosition(tx, domain.DocumentTypeContract, id)
		if err != nil {
			return fmt.Errorf("failed to determine item position: %w", err)
		}

		item := &domain.LineItem{
			ParentType:  domain.DocumentTypeContract,
			ParentID:    id,
			ServiceRef:  req.ServiceRef,
			Quantity:    req.Quantity,
			UnitPrice:   price.Amount,
			Currency:    price.Currency,
			Description: req.Description,
			Notes:       req.Notes,
			Position:    position,
		}
		if err := s.lineItemRepo.Create(tx, item); err != nil {
			return fmt.Errorf("failed to create line item: %w", err)
		}

		return s.recomputeTotals(ctx, tx, contract)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, id, "add item")
}

// UpdateItem applies a partial update to a line item and recomputes totals
func (s *ContractService) UpdateItem(ctx context.Context, id, itemID uuid.UUID, req *domain.UpdateLineItemRequest) (*domain.ContractDTO, error) {
	if req.Quantity != nil && *req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	var unitPrice *domain.Money
	if req.UnitPrice != nil {
		parsed, err := parseUnitPrice(*req.UnitPrice, "")
		if err != nil {
			return nil, err
		}
		unitPrice = &parsed
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contract, err := s.lockOpenContract(tx, id)
		if err != nil {
			return err
		}

		item, err := s.lineItemRepo.GetByID(tx, domain.DocumentTypeContract, id, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("failed to get line item: %w", err)
		}

		if req.Quantity != nil {
			item.Quantity = *req.Quantity
		}
		if unitPrice != nil {
			price, err := resolveItemCurrency(*unitPrice, contract.Currency)
			if err != nil {
				return err
			}
			item.UnitPrice = price.Amount
			item.Currency = price.Currency
		}
		if req.Description != nil {
			item.Description = *req.Description
		}
		if req.Notes != nil {
			item.Notes = *req.Notes
		}

		if err := s.lineItemRepo.Update(tx, item); err != nil {
			return fmt.Errorf("failed to update line item: %w", err)
		}

		return s.recomputeTotals(ctx, tx, contract)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, id, "update item")
}

// RemoveItem deletes a line item and recomputes totals
func (s *ContractService) RemoveItem(ctx context.Context, id, itemID uuid.UUID) (*domain.ContractDTO, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contract, err := s.lockOpenContract(tx, id)
		if err != nil {
			return err
		}

		if _, err := s.lineItemRepo.GetByID(tx, domain.DocumentTypeContract, id, itemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("failed to get line item: %w", err)
		}

		if err := s.lineItemRepo.Delete(tx, domain.DocumentTypeContract, id, itemID); err != nil {
			return fmt.Errorf("failed to delete line item: %w", err)
		}

		return s.recomputeTotals(ctx, tx, contract)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, id, "remove item")
}

// SetRates updates the tax and/or discount rate and recomputes totals
func (s *ContractService) SetRates(ctx context.Context, id uuid.UUID, req *domain.UpdateRatesRequest) (*domain.ContractDTO, error) {
	taxRate, err := parseRatePtr(req.TaxRate)
	if err != nil {
		return nil, err
	}
	discountRate, err := parseRatePtr(req.DiscountRate)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contract, err := s.lockOpenContract(tx, id)
		if err != nil {
			return err
		}

		if taxRate != nil {
			contract.TaxRate = *taxRate
		}
		if discountRate != nil {
			contract.DiscountRate = *discountRate
		}

		return s.recomputeTotals(ctx, tx, contract)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, id, "set rates")
}

// lockOpenContract loads the contract with a row lock and rejects the
// operation when the contract reached a terminal state.
func (s *ContractService) lockOpenContract(tx *gorm.DB, id uuid.UUID) (*domain.Contract, error) {
	contract, err := s.contractRepo.GetByIDForUpdate(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	if domain.IsContractClosed(contract.Status) {
		return nil, ErrContractClosed
	}
	return contract, nil
}

func (s *ContractService) recomputeTotals(ctx context.Context, tx *gorm.DB, contract *domain.Contract) error {
	items, err := s.lineItemRepo.ListByParent(tx, domain.DocumentTypeContract, contract.ID)
	if err != nil {
		return fmt.Errorf("failed to load line items: %w", err)
	}

	totals, err := domain.CalculateDocumentTotals(contract.Currency, items, contract.TaxRate, contract.DiscountRate)
	if err != nil {
		return fmt.Errorf("failed to calculate totals: %w", err)
	}
	contract.Subtotal = totals.Subtotal.Amount
	contract.TaxAmount = totals.TaxAmount.Amount
	contract.DiscountAmount = totals.DiscountAmount.Amount
	contract.TotalAmount = totals.TotalAmount.Amount

	if userCtx, ok := auth.FromContext(ctx); ok {
		contract.UpdatedByID = userCtx.UserID
	}

	if err := tx.Save(contract).Error; err != nil {
		return fmt.Errorf("failed to persist totals: %w", err)
	}
	return nil
}

func (s *ContractService) reload(ctx context.Context, id uuid.UUID, op string) (*domain.ContractDTO, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("failed to reload contract after "+op, zap.Error(err))
		return nil, fmt.Errorf("failed to reload contract: %w", err)
	}
	dto := mapper.ToContractDTO(contract)
	return &dto, nil
}
