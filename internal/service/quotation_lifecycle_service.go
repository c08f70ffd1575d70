package service

// Quotation lifecycle methods split out of quotation_service.go:
// Send, Accept, Reject and RequestModification.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agencydesk/commerce-api/internal/auth"
	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Send transitions a draft or modified quotation to sent.
//
// Leaving draft for the first time assigns the document number; re-sends
// after a modification request keep the original number and the original
// sentDate. A quotation without line items cannot be sent.
func (s *QuotationService) Send(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	var oldStatus domain.QuotationStatus

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotation, err := s.quotationRepo.GetByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuotationNotFound
			}
			return fmt.Errorf("failed to get quotation: %w", err)
		}

		if !domain.CanTransitionQuotation(quotation.Status, domain.QuotationStatusSent) {
			return domain.NewInvalidQuotationTransition(quotation.Status, domain.QuotationStatusSent)
		}

		if !quotation.CounterpartySet() {
			return ErrInvalidCounterparty
		}

		itemCount, err := s.lineItemRepo.CountByParent(tx, domain.DocumentTypeQuotation, id)
		if err != nil {
			return fmt.Errorf("failed to count line items: %w", err)
		}
		if itemCount == 0 {
			return ErrEmptyDocument
		}

		oldStatus = quotation.Status
		now := time.Now().UTC()

		// Assign the document number once, on the first send
		if quotation.QuotationNumber == "" {
			number, err := s.numberSeqService.GenerateQuotationNumberInTx(tx, now)
			if err != nil {
				return err
			}
			quotation.QuotationNumber = number
		}

		// Stamp the sent date only on the first send; re-sends after a
		// modification request keep the original date
		if quotation.SentDate == nil {
			quotation.SentDate = &now
		}

		quotation.Status = domain.QuotationStatusSent
		if userCtx, ok := auth.FromContext(ctx); ok {
			quotation.UpdatedByID = userCtx.UserID
		}

		if err := tx.Save(quotation).Error; err != nil {
			return fmt.Errorf("failed to update quotation: %w", err)
		}

		return s.activityService.LogInTx(ctx, tx, domain.ActivityTargetQuotation, id,
			"Quotation sent",
			fmt.Sprintf("Quotation %s sent (%s -> sent)", quotation.QuotationNumber, oldStatus))
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, id, "send")
}

// Accept transitions a sent quotation to accepted, its terminal success state
func (s *QuotationService) Accept(ctx context.Context, id uuid.UUID, req *domain.AcceptQuotationRequest) (*domain.QuotationDTO, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotation, err := s.quotationRepo.GetByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuotationNotFound
			}
			return fmt.Errorf("failed to get quotation: %w", err)
		}

		if !domain.CanTransitionQuotation(quotation.Status, domain.QuotationStatusAccepted) {
			return domain.NewInvalidQuotationTransition(quotation.Status, domain.QuotationStatusAccepted)
		}

		now := time.Now().UTC()
		quotation.Status = domain.QuotationStatusAccepted
		quotation.AcceptedDate = &now
		if userCtx, ok := auth.FromContext(ctx); ok {
			quotation.UpdatedByID = userCtx.UserID
		}

		if err := tx.Save(quotation).Error; err != nil {
			return fmt.Errorf("failed to update quotation: %w", err)
		}

		body := fmt.Sprintf("Quotation %s accepted", quotation.QuotationNumber)
		if req != nil && req.Notes != "" {
			body = fmt.Sprintf("%s. Notes: %s", body, req.Notes)
		}
		return s.activityService.LogInTx(ctx, tx, domain.ActivityTargetQuotation, id,
			"Quotation accepted", body)
	})
	if err != nil {
		return nil, err
	}

	dto, err := s.reload(ctx, id, "accept")
	if err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, dto.ResponsibleID, domain.NotificationTypeQuotationAccepted,
		"Quotation accepted",
		fmt.Sprintf("Quotation %s was accepted", dto.QuotationNumber),
		&id, string(domain.ActivityTargetQuotation))

	return dto, nil
}

// Reject transitions a sent quotation to rejected. A reason is required and
// kept on the document.
func (s *QuotationService) Reject(ctx context.Context, id uuid.UUID, req *domain.RejectQuotationRequest) (*domain.QuotationDTO, error) {
	if req == nil || req.Reason == "" {
		return nil, ErrMissingReason
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotation, err := s.quotationRepo.GetByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuotationNotFound
			}
			return fmt.Errorf("failed to get quotation: %w", err)
		}

		if !domain.CanTransitionQuotation(quotation.Status, domain.QuotationStatusRejected) {
			return domain.NewInvalidQuotationTransition(quotation.Status, domain.QuotationStatusRejected)
		}

		now := time.Now().UTC()
		quotation.Status = domain.QuotationStatusRejected
		quotation.RejectedDate = &now
		quotation.RejectionReason = req.Reason
		if userCtx, ok := auth.FromContext(ctx); ok {
			quotation.UpdatedByID = userCtx.UserID
		}

		if err := tx.Save(quotation).Error; err != nil {
			return fmt.Errorf("failed to update quotation: %w", err)
		}

		return s.activityService.LogInTx(ctx, tx, domain.ActivityTargetQuotation, id,
			"Quotation rejected",
			fmt.Sprintf("Quotation %s rejected. Reason: %s", quotation.QuotationNumber, req.Reason))
	})
	if err != nil {
		return nil, err
	}

	dto, err := s.reload(ctx, id, "reject")
	if err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, dto.ResponsibleID, domain.NotificationTypeQuotationRejected,
		"Quotation rejected",
		fmt.Sprintf("Quotation %s was rejected: %s", dto.QuotationNumber, req.Reason),
		&id, string(domain.ActivityTargetQuotation))

	return dto, nil
}

// RequestModification transitions a sent quotation back to modified,
// re-opening item and rate edits. The document number, sentDate and items
// are preserved; the request notes live in the activity trail.
func (s *QuotationService) RequestModification(ctx context.Context, id uuid.UUID, req *domain.RequestModificationRequest) (*domain.QuotationDTO, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotation, err := s.quotationRepo.GetByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuotationNotFound
			}
			return fmt.Errorf("failed to get quotation: %w", err)
		}

		if !domain.CanTransitionQuotation(quotation.Status, domain.QuotationStatusModified) {
			return domain.NewInvalidQuotationTransition(quotation.Status, domain.QuotationStatusModified)
		}

		quotation.Status = domain.QuotationStatusModified
		if userCtx, ok := auth.FromContext(ctx); ok {
			quotation.UpdatedByID = userCtx.UserID
		}

		if err := tx.Save(quotation).Error; err != nil {
			return fmt.Errorf("failed to update quotation: %w", err)
		}

		body := fmt.Sprintf("Modification requested for quotation %s", quotation.QuotationNumber)
		if req != nil && req.Notes != "" {
			body = fmt.Sprintf("%s. Notes: %s", body, req.Notes)
		}
		return s.activityService.LogInTx(ctx, tx, domain.ActivityTargetQuotation, id,
			"Modification requested", body)
	})
	if err != nil {
		return nil, err
	}

	dto, err := s.reload(ctx, id, "request modification")
	if err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, dto.ResponsibleID, domain.NotificationTypeQuotationModified,
		"Modification requested",
		fmt.Sprintf("The counterparty requested changes to quotation %s", dto.QuotationNumber),
		&id, string(domain.ActivityTargetQuotation))

	return dto, nil
}
