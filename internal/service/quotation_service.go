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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuotationService struct {
	quotationRepo    *repository.QuotationRepository
	lineItemRepo     *repository.LineItemRepository
	leadRepo         *repository.LeadRepository
	clientRepo       *repository.ClientRepository
	numberSeqService *NumberSequenceService
	activityService  *ActivityService
	notifications    *NotificationService
	logger           *zap.Logger
	db               *gorm.DB
}

func NewQuotationService(
	quotationRepo *repository.QuotationRepository,
	lineItemRepo *repository.LineItemRepository,
	leadRepo *repository.LeadRepository,
	clientRepo *repository.ClientRepository,
	numberSeqService *NumberSequenceService,
	activityService *ActivityService,
	notifications *NotificationService,
	logger *zap.Logger,
	db *gorm.DB,
) *QuotationService {
	return &QuotationService{
		quotationRepo:    quotationRepo,
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

// Create creates a new draft quotation. Exactly one of leadId/clientId must
// be provided and must reference an existing row.
func (s *QuotationService) Create(ctx context.Context, req *domain.CreateQuotationRequest) (*domain.QuotationDTO, error) {
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

	validUntil, err := parseDatePtr(req.ValidUntil)
	if err != nil {
		return nil, err
	}

	quotation := &domain.Quotation{
		LeadID:        req.LeadID,
		ClientID:      req.ClientID,
		Currency:      req.Currency,
		Status:        domain.QuotationStatusDraft,
		ValidUntil:    validUntil,
		Notes:         req.Notes,
		ResponsibleID: req.ResponsibleID,
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		quotation.CreatedByID = userCtx.UserID
		quotation.UpdatedByID = userCtx.UserID
		if quotation.ResponsibleID == "" {
			quotation.ResponsibleID = userCtx.UserID
		}
	}

	if err := s.quotationRepo.Create(ctx, quotation); err != nil {
		return nil, fmt.Errorf("failed to create quotation: %w", err)
	}

	// Reload with relations
	quotation, err = s.quotationRepo.GetByID(ctx, quotation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quotation: %w", err)
	}

	s.activityService.Log(ctx, domain.ActivityTargetQuotation, quotation.ID,
		"Quotation created", fmt.Sprintf("Draft quotation created in %s", quotation.Currency))

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// GetByID returns a quotation with its items in position order
func (s *QuotationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuotationNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}
	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// List returns a page of quotations with optional filters
func (s *QuotationService) List(ctx context.Context, page, pageSize int, leadID, clientID *uuid.UUID, status *domain.QuotationStatus) ([]domain.QuotationDTO, int64, error) {
	quotations, total, err := s.quotationRepo.List(ctx, page, pageSize, leadID, clientID, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quotations: %w", err)
	}

	dtos := make([]domain.QuotationDTO, len(quotations))
	for i := range quotations {
		dtos[i] = mapper.ToQuotationDTO(&quotations[i])
	}
	return dtos, total, nil
}

// Delete removes a quotation and its items. Only editable (draft or
// modified) quotations can be deleted; sent and closed ones are records.
func (s *QuotationService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotation, err := s.quotationRepo.GetByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuotationNotFound
			}
			return fmt.Errorf("failed to get quotation: %w", err)
		}

		if !domain.IsQuotationEditable(quotation.Status) {
			return ErrDocumentNotEditable
		}

		if err := s.lineItemRepo.DeleteByParent(tx, domain.DocumentTypeQuotation, id); err != nil {
			return fmt.Errorf("failed to delete line items: %w", err)
		}
		if err := tx.Delete(&domain.Quotation{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete quotation: %w", err)
		}
		return nil
	})
}

// AddItem appends a line item to an editable quotation and recomputes the
// document totals in the same transaction.
func (s *QuotationService) AddItem(ctx context.Context, id uuid.UUID, req *domain.AddLineItemRequest) (*domain.QuotationDTO, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	unitPrice, err := parseUnitPrice(req.UnitPrice, req.Currency)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotation, err := s.quotationRepo.GetByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuotationNotFound
			}
			return fmt.Errorf("failed to get quotation: %w", err)
		}

		if !domain.IsQuotationEditable(quotation.Status) {
			return ErrDocumentNotEditable
		}

		price, err := resolveItemCurrency(unitPrice, quotation.Currency)
		if err != nil {
			return err
		}

		position, err := s.lineItemRepo.NextPosition(tx, domain.DocumentTypeQuotation, id)
		if err != nil {
			return fmt.Errorf("failed to determine item position: %w", err)
		}

		item := &domain.LineItem{
			ParentType:  domain.DocumentTypeQuotation,
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

		return s.recomputeTotals(ctx, tx, quotation)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, id, "add item")
}

// UpdateItem applies a partial update to a line item and recomputes totals
func (s *QuotationService) UpdateItem(ctx context.Context, id, itemID uuid.UUID, req *domain.UpdateLineItemRequest) (*domain.QuotationDTO, error) {
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
		quotation, err := s.quotationRepo.GetByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuotationNotFound
			}
			return fmt.Errorf("failed to get quotation: %w", err)
		}

		if !domain.IsQuotationEditable(quotation.Status) {
			return ErrDocumentNotEditable
		}

		item, err := s.lineItemRepo.GetByID(tx, domain.DocumentTypeQuotation, id, itemID)
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
			price, err := resolveItemCurrency(*unitPrice, quotation.Currency)
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

		return s.recomputeTotals(ctx, tx, quotation)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, id, "update item")
}

// RemoveItem deletes a line item and recomputes totals. Removing the last
// item leaves a valid empty draft with zero totals.
func (s *QuotationService) RemoveItem(ctx context.Context, id, itemID uuid.UUID) (*domain.QuotationDTO, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotation, err := s.quotationRepo.GetByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuotationNotFound
			}
			return fmt.Errorf("failed to get quotation: %w", err)
		}

		if !domain.IsQuotationEditable(quotation.Status) {
			return ErrDocumentNotEditable
		}

		if _, err := s.lineItemRepo.GetByID(tx, domain.DocumentTypeQuotation, id, itemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("failed to get line item: %w", err)
		}

		if err := s.lineItemRepo.Delete(tx, domain.DocumentTypeQuotation, id, itemID); err != nil {
			return fmt.Errorf("failed to delete line item: %w", err)
		}

		return s.recomputeTotals(ctx, tx, quotation)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, id, "remove item")
}

// SetRates updates the tax and/or discount rate and recomputes totals
func (s *QuotationService) SetRates(ctx context.Context, id uuid.UUID, req *domain.UpdateRatesRequest) (*domain.QuotationDTO, error) {
	taxRate, err := parseRatePtr(req.TaxRate)
	if err != nil {
		return nil, err
	}
	discountRate, err := parseRatePtr(req.DiscountRate)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotation, err := s.quotationRepo.GetByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuotationNotFound
			}
			return fmt.Errorf("failed to get quotation: %w", err)
		}

		if !domain.IsQuotationEditable(quotation.Status) {
			return ErrDocumentNotEditable
		}

		if taxRate != nil {
			quotation.TaxRate = *taxRate
		}
		if discountRate != nil {
			quotation.DiscountRate = *discountRate
		}

		return s.recomputeTotals(ctx, tx, quotation)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, id, "set rates")
}

// recomputeTotals reloads the quotation's items inside the transaction,
// recalculates the derived totals and persists the document. The caller
// holds the quotation row lock.
func (s *QuotationService) recomputeTotals(ctx context.Context, tx *gorm.DB, quotation *domain.Quotation) error {
	items, err := s.lineItemRepo.ListByParent(tx, domain.DocumentTypeQuotation, quotation.ID)
	if err != nil {
		return fmt.Errorf("failed to load line items: %w", err)
	}

	totals, err := domain.CalculateDocumentTotals(quotation.Currency, items, quotation.TaxRate, quotation.DiscountRate)
	if err != nil {
		return fmt.Errorf("failed to calculate totals: %w", err)
	}
	quotation.Subtotal = totals.Subtotal.Amount
	quotation.TaxAmount = totals.TaxAmount.Amount
	quotation.DiscountAmount = totals.DiscountAmount.Amount
	quotation.TotalAmount = totals.TotalAmount.Amount

	if userCtx, ok := auth.FromContext(ctx); ok {
		quotation.UpdatedByID = userCtx.UserID
	}

	if err := tx.Save(quotation).Error; err != nil {
		return fmt.Errorf("failed to persist totals: %w", err)
	}
	return nil
}

func (s *QuotationService) reload(ctx context.Context, id uuid.UUID, op string) (*domain.QuotationDTO, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("failed to reload quotation after "+op, zap.Error(err))
		return nil, fmt.Errorf("failed to reload quotation: %w", err)
	}
	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// parseUnitPrice parses a request amount into a non-negative Money value.
// The request currency may be empty; resolveItemCurrency applies the
// document currency once the document row is loaded.
func parseUnitPrice(amount, currency string) (domain.Money, error) {
	m, err := domain.NewMoneyFromString(amount, currency)
	if err != nil {
		return domain.Money{}, ErrInvalidPrice
	}
	if m.IsNegative() {
		return domain.Money{}, ErrInvalidPrice
	}
	return m, nil
}

// resolveItemCurrency fills an omitted item currency from the document and
// rejects an explicit one that disagrees with it.
func resolveItemCurrency(m domain.Money, docCurrency string) (domain.Money, error) {
	if m.Currency == "" {
		m.Currency = docCurrency
	}
	if m.Currency != docCurrency {
		return domain.Money{}, ErrCurrencyMismatch
	}
	return m, nil
}

// parseRatePtr parses an optional percentage rate string, enforcing 0-100
func parseRatePtr(value *string) (*decimal.Decimal, error) {
	if value == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*value)
	if err != nil {
		return nil, ErrInvalidRate
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return nil, ErrInvalidRate
	}
	return &d, nil
}

// parseDatePtr parses an optional YYYY-MM-DD date string
func parseDatePtr(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}
