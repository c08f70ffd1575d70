package service

// Contract lifecycle methods split out of contract_service.go:
// Suspend, Resume, Complete and Cancel.

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

// Suspend transitions an active contract to suspended
func (s *ContractService) Suspend(ctx context.Context, id uuid.UUID) (*domain.ContractDTO, error) {
	return s.transition(ctx, id, domain.ContractStatusSuspended, "Contract suspended", "",
		func(contract *domain.Contract, now time.Time) {
			contract.SuspendedDate = &now
		})
}

// Resume transitions a suspended contract back to active
func (s *ContractService) Resume(ctx context.Context, id uuid.UUID) (*domain.ContractDTO, error) {
	return s.transition(ctx, id, domain.ContractStatusActive, "Contract resumed", "",
		func(contract *domain.Contract, now time.Time) {
			contract.SuspendedDate = nil
		})
}

// Complete transitions an active contract to completed. Suspended contracts
// must be resumed first.
func (s *ContractService) Complete(ctx context.Context, id uuid.UUID) (*domain.ContractDTO, error) {
	return s.transition(ctx, id, domain.ContractStatusCompleted, "Contract completed", "",
		func(contract *domain.Contract, now time.Time) {
			contract.CompletedDate = &now
		})
}

// Cancel transitions an active or suspended contract to cancelled. A reason
// is required and kept on the document.
func (s *ContractService) Cancel(ctx context.Context, id uuid.UUID, req *domain.CancelContractRequest) (*domain.ContractDTO, error) {
	if req == nil || req.Reason == "" {
		return nil, ErrMissingReason
	}

	dto, err := s.transition(ctx, id, domain.ContractStatusCancelled, "Contract cancelled", req.Reason,
		func(contract *domain.Contract, now time.Time) {
			contract.CancelledDate = &now
			contract.CancellationReason = req.Reason
		})
	if err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, dto.ResponsibleID, domain.NotificationTypeContractCancelled,
		"Contract cancelled",
		fmt.Sprintf("Contract %s was cancelled: %s", dto.ContractNumber, req.Reason),
		&id, string(domain.ActivityTargetContract))

	return dto, nil
}

// transition applies a single status change under the contract row lock,
// with the legal-transition table as the only gatekeeper.
func (s *ContractService) transition(ctx context.Context, id uuid.UUID, to domain.ContractStatus, title, reason string, apply func(*domain.Contract, time.Time)) (*domain.ContractDTO, error) {
	var oldStatus domain.ContractStatus

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contract, err := s.contractRepo.GetByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContractNotFound
			}
			return fmt.Errorf("failed to get contract: %w", err)
		}

		if !domain.CanTransitionContract(contract.Status, to) {
			return domain.NewInvalidContractTransition(contract.Status, to)
		}

		oldStatus = contract.Status
		now := time.Now().UTC()
		contract.Status = to
		apply(contract, now)

		if userCtx, ok := auth.FromContext(ctx); ok {
			contract.UpdatedByID = userCtx.UserID
		}

		if err := tx.Save(contract).Error; err != nil {
			return fmt.Errorf("failed to update contract: %w", err)
		}

		body := fmt.Sprintf("Contract %s: %s -> %s", contract.ContractNumber, oldStatus, to)
		if reason != "" {
			body = fmt.Sprintf("%s. Reason: %s", body, reason)
		}
		return s.activityService.LogInTx(ctx, tx, domain.ActivityTargetContract, id, title, body)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, id, string(to))
}
