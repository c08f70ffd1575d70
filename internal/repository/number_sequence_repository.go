package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/agencydesk/commerce-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository handles database operations for number sequences.
// Number sequences are SHARED between quotations and contracts to ensure
// unique document numbers across both types within a year.
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// NextNumberInTx atomically retrieves and increments the sequence for a year
// inside the caller's transaction. Uses SELECT FOR UPDATE so concurrent
// document sends serialize on the sequence row. If no sequence exists for
// the year, it creates one starting at 1.
func (r *NumberSequenceRepository) NextNumberInTx(tx *gorm.DB, year int) (int, error) {
	var seq domain.NumberSequence

	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("year = ?", year).
		First(&seq)

	if result.Error == gorm.ErrRecordNotFound {
		seq = domain.NumberSequence{
			Year:         year,
			LastSequence: 1,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, fmt.Errorf("failed to create number sequence: %w", err)
		}
		return 1, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}

	nextSeq := seq.LastSequence + 1
	if err := tx.Model(&seq).Updates(map[string]interface{}{
		"last_sequence": nextSeq,
		"updated_at":    time.Now(),
	}).Error; err != nil {
		return 0, fmt.Errorf("failed to update number sequence: %w", err)
	}

	return nextSeq, nil
}

// GetNextNumber atomically retrieves and increments the sequence for a year
// in its own transaction.
func (r *NumberSequenceRepository) GetNextNumber(ctx context.Context, year int) (int, error) {
	var nextSeq int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		nextSeq, txErr = r.NextNumberInTx(tx, year)
		return txErr
	})
	if err != nil {
		return 0, err
	}
	return nextSeq, nil
}

// GetCurrentSequence retrieves the current sequence value without incrementing.
// Returns 0 if no sequence exists for the year.
func (r *NumberSequenceRepository) GetCurrentSequence(ctx context.Context, year int) (int, error) {
	var seq domain.NumberSequence
	result := r.db.WithContext(ctx).
		Where("year = ?", year).
		First(&seq)

	if result.Error == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}

	return seq.LastSequence, nil
}

// ListSequences returns all sequences (useful for debugging/admin)
func (r *NumberSequenceRepository) ListSequences(ctx context.Context) ([]domain.NumberSequence, error) {
	var sequences []domain.NumberSequence
	err := r.db.WithContext(ctx).
		Order("year DESC").
		Find(&sequences).Error
	return sequences, err
}
