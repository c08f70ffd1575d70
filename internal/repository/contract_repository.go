package repository

import (
	"context"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	var contract domain.Contract
	err := r.db.WithContext(ctx).
		Preload("Lead").
		Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// GetByIDForUpdate loads the contract with a row lock. Must run inside a
// transaction.
func (r *ContractRepository) GetByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*domain.Contract, error) {
	var contract domain.Contract
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepository) Update(ctx context.Context, contract *domain.Contract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

func (r *ContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Contract{}, "id = ?", id).Error
}

func (r *ContractRepository) List(ctx context.Context, page, pageSize int, leadID, clientID *uuid.UUID, status *domain.ContractStatus) ([]domain.Contract, int64, error) {
	var contracts []domain.Contract
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Contract{}).
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
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&contracts).Error

	return contracts, total, err
}

// ListByLead returns all contracts referencing the lead, without paging.
// Used during lead conversion.
func (r *ContractRepository) ListByLead(tx *gorm.DB, leadID uuid.UUID) ([]domain.Contract, error) {
	var contracts []domain.Contract
	err := tx.Where("lead_id = ?", leadID).Find(&contracts).Error
	return contracts, err
}
