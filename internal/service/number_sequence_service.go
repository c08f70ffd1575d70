package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/agencydesk/commerce-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Document number prefixes. Quotations and contracts draw from the SAME
// per-year counter, so QUO-2025-003 and CON-2025-003 can never both exist.
const (
	PrefixQuotation = "QUO"
	PrefixContract  = "CON"
)

var documentNumberPattern = regexp.MustCompile(`^(QUO|CON)-\d{4}-\d{3,}$`)

// NumberSequenceService handles generation of unique, formatted numbers
// for quotations and contracts.
//
// Format: {PREFIX}-{YEAR}-{SEQUENCE}
// Example: QUO-2025-001, CON-2025-014
type NumberSequenceService struct {
	repo   *repository.NumberSequenceRepository
	logger *zap.Logger
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(
	repo *repository.NumberSequenceRepository,
	logger *zap.Logger,
) *NumberSequenceService {
	return &NumberSequenceService{
		repo:   repo,
		logger: logger,
	}
}

// GenerateQuotationNumber generates a unique quotation number. Called when a
// quotation first leaves draft.
func (s *NumberSequenceService) GenerateQuotationNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	nextSeq, err := s.repo.GetNextNumber(ctx, year)
	if err != nil {
		return "", fmt.Errorf("failed to generate quotation number: %w", err)
	}
	return s.format(PrefixQuotation, year, nextSeq), nil
}

// GenerateQuotationNumberInTx generates a quotation number inside the
// caller's transaction, so the number allocation rolls back if the send does.
func (s *NumberSequenceService) GenerateQuotationNumberInTx(tx *gorm.DB, now time.Time) (string, error) {
	return s.generateInTx(tx, PrefixQuotation, now)
}

// GenerateContractNumberInTx generates a contract number inside the caller's
// transaction.
func (s *NumberSequenceService) GenerateContractNumberInTx(tx *gorm.DB, now time.Time) (string, error) {
	return s.generateInTx(tx, PrefixContract, now)
}

func (s *NumberSequenceService) generateInTx(tx *gorm.DB, prefix string, now time.Time) (string, error) {
	year := now.Year()
	nextSeq, err := s.repo.NextNumberInTx(tx, year)
	if err != nil {
		s.logger.Error("failed to get next sequence number",
			zap.Int("year", year),
			zap.String("prefix", prefix),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate document number: %w", err)
	}

	number := s.format(prefix, year, nextSeq)

	s.logger.Info("generated document number",
		zap.String("number", number),
		zap.Int("year", year),
		zap.Int("sequence", nextSeq))

	return number, nil
}

// format renders PREFIX-YYYY-NNN (sequence zero-padded to 3 digits, growing
// past 999 without truncation).
func (s *NumberSequenceService) format(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%03d", prefix, year, seq)
}

// GetCurrentSequence returns the current sequence value for a year without
// incrementing it. Returns 0 if no sequence exists.
func (s *NumberSequenceService) GetCurrentSequence(ctx context.Context, year int) (int, error) {
	return s.repo.GetCurrentSequence(ctx, year)
}

// ValidateDocumentNumber checks if a number follows the expected format.
func (s *NumberSequenceService) ValidateDocumentNumber(number string) bool {
	return documentNumberPattern.MatchString(number)
}
