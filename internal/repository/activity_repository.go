package repository

import (
	"context"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityRepository handles database operations for the audit trail.
// Activities are append-only; there is no update or delete.
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// CreateInTx records an activity inside the caller's transaction so the
// audit entry commits or rolls back together with the change it describes.
func (r *ActivityRepository) CreateInTx(tx *gorm.DB, activity *domain.Activity) error {
	return tx.Create(activity).Error
}

func (r *ActivityRepository) List(ctx context.Context, page, pageSize int, targetType *domain.ActivityTargetType, targetID *uuid.UUID) ([]domain.Activity, int64, error) {
	var activities []domain.Activity
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Activity{})

	if targetType != nil {
		query = query.Where("target_type = ?", *targetType)
	}

	if targetID != nil {
		query = query.Where("target_id = ?", *targetID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("occurred_at DESC").Find(&activities).Error

	return activities, total, err
}

func (r *ActivityRepository) ListByTarget(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, limit int) ([]domain.Activity, error) {
	var activities []domain.Activity
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
