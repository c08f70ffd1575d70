package repository

import (
	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LineItemRepository handles database operations for line items. Items are
// polymorphic children of quotations and contracts; every method that
// touches a specific item filters on parent as well, so an item id from one
// document can never address another document's item.
type LineItemRepository struct {
	db *gorm.DB
}

func NewLineItemRepository(db *gorm.DB) *LineItemRepository {
	return &LineItemRepository{db: db}
}

func (r *LineItemRepository) Create(tx *gorm.DB, item *domain.LineItem) error {
	return tx.Create(item).Error
}

func (r *LineItemRepository) GetByID(tx *gorm.DB, parentType domain.DocumentType, parentID, itemID uuid.UUID) (*domain.LineItem, error) {
	var item domain.LineItem
	err := tx.
		Where("id = ? AND parent_type = ? AND parent_id = ?", itemID, parentType, parentID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *LineItemRepository) Update(tx *gorm.DB, item *domain.LineItem) error {
	return tx.Save(item).Error
}

func (r *LineItemRepository) Delete(tx *gorm.DB, parentType domain.DocumentType, parentID, itemID uuid.UUID) error {
	return tx.
		Where("id = ? AND parent_type = ? AND parent_id = ?", itemID, parentType, parentID).
		Delete(&domain.LineItem{}).Error
}

// ListByParent returns the parent document's items in position order.
func (r *LineItemRepository) ListByParent(tx *gorm.DB, parentType domain.DocumentType, parentID uuid.UUID) ([]domain.LineItem, error) {
	var items []domain.LineItem
	err := tx.
		Where("parent_type = ? AND parent_id = ?", parentType, parentID).
		Order("position ASC").
		Find(&items).Error
	return items, err
}

// NextPosition returns the position for a newly appended item.
func (r *LineItemRepository) NextPosition(tx *gorm.DB, parentType domain.DocumentType, parentID uuid.UUID) (int, error) {
	var maxPos *int
	err := tx.Model(&domain.LineItem{}).
		Where("parent_type = ? AND parent_id = ?", parentType, parentID).
		Select("MAX(position)").
		Scan(&maxPos).Error
	if err != nil {
		return 0, err
	}
	if maxPos == nil {
		return 1, nil
	}
	return *maxPos + 1, nil
}

// CountByParent counts a document's items inside the caller's transaction
// so the count is consistent with the row lock the caller holds.
func (r *LineItemRepository) CountByParent(tx *gorm.DB, parentType domain.DocumentType, parentID uuid.UUID) (int, error) {
	var count int64
	err := tx.Model(&domain.LineItem{}).
		Where("parent_type = ? AND parent_id = ?", parentType, parentID).
		Count(&count).Error
	return int(count), err
}

// DeleteByParent removes all items of a document. Called when a draft
// document is deleted.
func (r *LineItemRepository) DeleteByParent(tx *gorm.DB, parentType domain.DocumentType, parentID uuid.UUID) error {
	return tx.
		Where("parent_type = ? AND parent_id = ?", parentType, parentID).
		Delete(&domain.LineItem{}).Error
}
