package repository

import (
	"context"
	"strings"
	"time"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

func (r *QuotationRepository) Create(ctx context.Context, quotation *domain.Quotation) error {
	return r.db.WithContext(ctx).Create(quotation).Error
}

func (r *QuotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Lead").
		Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

// GetByIDForUpdate loads the quotation with a row lock. Must run inside a
// transaction; items are loaded separately to keep the locking clause off
// the preload queries.
func (r *QuotationRepository) GetByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *QuotationRepository) Update(ctx context.Context, quotation *domain.Quotation) error {
	return r.db.WithContext(ctx).Save(quotation).Error
}

func (r *QuotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Quotation{}, "id = ?", id).Error
}

func (r *QuotationRepository) List(ctx context.Context, page, pageSize int, leadID, clientID *uuid.UUID, status *domain.QuotationStatus) ([]domain.Quotation, int64, error) {
	var quotations []domain.Quotation
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Preload("Lead").
		Preload("Client")

	if leadID != nil {
		query = query.Where("lead_id = ?", *leadID)
	}

	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&quotations).Error

	return quotations, total, err
}

// ListExpiring returns sent quotations whose validUntil falls on or before
// the cutoff date. Used by the expiry reminder job.
func (r *QuotationRepository) ListExpiring(ctx context.Context, cutoff time.Time) ([]domain.Quotation, error) {
	var quotations []domain.Quotation
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.QuotationStatusSent).
		Where("valid_until IS NOT NULL AND valid_until <= ?", cutoff).
		Order("valid_until ASC").
		Find(&quotations).Error
	return quotations, err
}

// ListByLead returns all quotations referencing the lead, without paging.
// Used during lead conversion.
func (r *QuotationRepository) ListByLead(tx *gorm.DB, leadID uuid.UUID) ([]domain.Quotation, error) {
	var quotations []domain.Quotation
	err := tx.Where("lead_id = ?", leadID).Find(&quotations).Error
	return quotations, err
}

func (r *QuotationRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Quotation, error) {
	var quotations []domain.Quotation
	searchPattern := "%" + strings.ToLower(searchQuery) + "%"
	err := r.db.WithContext(ctx).
		Preload("Lead").
		Preload("Client").
		Where("LOWER(quotation_number) LIKE ? OR LOWER(notes) LIKE ?", searchPattern, searchPattern).
		Limit(limit).
		Find(&quotations).Error
	return quotations, err
}
