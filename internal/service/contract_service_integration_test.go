package service_test

import (
	"context"
	"testing"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/agencydesk/commerce-api/internal/repository"
	"github.com/agencydesk/commerce-api/internal/service"
	"github.com/agencydesk/commerce-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newContractService(t *testing.T, db *gorm.DB) *service.ContractService {
	log := zap.NewNop()
	return service.NewContractService(
		repository.NewContractRepository(db),
		repository.NewLineItemRepository(db),
		repository.NewLeadRepository(db),
		repository.NewClientRepository(db),
		service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), log),
		service.NewActivityService(repository.NewActivityRepository(db), log),
		service.NewNotificationService(repository.NewNotificationRepository(db), log),
		log,
		db,
	)
}

func createActiveContract(t *testing.T, svc *service.ContractService, db *gorm.DB) *domain.ContractDTO {
	t.Helper()
	client := testutil.CreateTestClient(t, db, "Contract Client")
	dto, err := svc.Create(context.Background(), &domain.CreateContractRequest{
		ClientID:  &client.ID,
		Currency:  "SAR",
		StartDate: "2026-01-01",
	})
	require.NoError(t, err)
	return dto
}

func TestContractService_Create(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newContractService(t, db)
	ctx := context.Background()

	t.Run("contract is active with a number from day one", func(t *testing.T) {
		dto := createActiveContract(t, svc, db)
		assert.Equal(t, domain.ContractStatusActive, dto.Status)
		assert.Regexp(t, `^CON-\d{4}-\d{3,}$`, dto.ContractNumber)
		assert.Equal(t, "2026-01-01", dto.StartDate)
	})

	t.Run("end date before start date is rejected", func(t *testing.T) {
		client := testutil.CreateTestClient(t, db, "Backwards Client")
		end := "2025-12-31"
		_, err := svc.Create(ctx, &domain.CreateContractRequest{
			ClientID:  &client.ID,
			Currency:  "SAR",
			StartDate: "2026-01-01",
			EndDate:   &end,
		})
		assert.ErrorIs(t, err, service.ErrEndBeforeStart)
	})

	t.Run("malformed start date is rejected", func(t *testing.T) {
		client := testutil.CreateTestClient(t, db, "Dateless Client")
		_, err := svc.Create(ctx, &domain.CreateContractRequest{
			ClientID:  &client.ID,
			Currency:  "SAR",
			StartDate: "January 1st",
		})
		assert.ErrorIs(t, err, service.ErrInvalidDate)
	})
}

func TestContractService_ItemsAndTotals(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newContractService(t, db)
	ctx := context.Background()

	dto := createActiveContract(t, svc, db)

	dto, err := svc.AddItem(ctx, dto.ID, &domain.AddLineItemRequest{
		ServiceRef: "retainer", Quantity: 12, UnitPrice: "5000.00",
	})
	require.NoError(t, err)
	assert.Equal(t, "60000.00", dto.Subtotal)

	dto, err = svc.SetRates(ctx, dto.ID, &domain.UpdateRatesRequest{
		TaxRate:      strPtr("15"),
		DiscountRate: strPtr("5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "9000.00", dto.TaxAmount)
	assert.Equal(t, "3000.00", dto.DiscountAmount)
	assert.Equal(t, "66000.00", dto.TotalAmount)
}

func TestContractService_Lifecycle(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newContractService(t, db)
	ctx := context.Background()

	t.Run("suspend and resume", func(t *testing.T) {
		dto := createActiveContract(t, svc, db)

		suspended, err := svc.Suspend(ctx, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ContractStatusSuspended, suspended.Status)
		require.NotNil(t, suspended.SuspendedDate)

		// Item edits stay locked out while suspended
		_, err = svc.AddItem(ctx, dto.ID, &domain.AddLineItemRequest{
			ServiceRef: "extra", Quantity: 1, UnitPrice: "100.00",
		})
		assert.Error(t, err)

		resumed, err := svc.Resume(ctx, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ContractStatusActive, resumed.Status)
	})

	t.Run("suspended contract cannot be completed", func(t *testing.T) {
		dto := createActiveContract(t, svc, db)
		_, err := svc.Suspend(ctx, dto.ID)
		require.NoError(t, err)

		var transitionErr *domain.InvalidTransitionError
		_, err = svc.Complete(ctx, dto.ID)
		assert.ErrorAs(t, err, &transitionErr)
	})

	t.Run("completion is terminal", func(t *testing.T) {
		dto := createActiveContract(t, svc, db)
		completed, err := svc.Complete(ctx, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ContractStatusCompleted, completed.Status)
		require.NotNil(t, completed.CompletedDate)

		_, err = svc.Suspend(ctx, dto.ID)
		assert.Error(t, err)
		_, err = svc.AddItem(ctx, dto.ID, &domain.AddLineItemRequest{
			ServiceRef: "late", Quantity: 1, UnitPrice: "100.00",
		})
		assert.Error(t, err)
	})

	t.Run("cancel requires a reason", func(t *testing.T) {
		dto := createActiveContract(t, svc, db)

		_, err := svc.Cancel(ctx, dto.ID, &domain.CancelContractRequest{})
		assert.ErrorIs(t, err, service.ErrMissingReason)

		cancelled, err := svc.Cancel(ctx, dto.ID, &domain.CancelContractRequest{Reason: "scope change"})
		require.NoError(t, err)
		assert.Equal(t, domain.ContractStatusCancelled, cancelled.Status)
		assert.Equal(t, "scope change", cancelled.CancellationReason)
		require.NotNil(t, cancelled.CancelledDate)
	})

	t.Run("delete removes the contract and its items", func(t *testing.T) {
		dto := createActiveContract(t, svc, db)
		_, err := svc.AddItem(ctx, dto.ID, &domain.AddLineItemRequest{
			ServiceRef: "retainer", Quantity: 1, UnitPrice: "5000.00",
		})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, dto.ID))

		_, err = svc.GetByID(ctx, dto.ID)
		assert.ErrorIs(t, err, service.ErrContractNotFound)

		var orphans int64
		require.NoError(t, db.Model(&domain.LineItem{}).
			Where("parent_type = ? AND parent_id = ?", domain.DocumentTypeContract, dto.ID).
			Count(&orphans).Error)
		assert.Zero(t, orphans)
	})

	t.Run("closed contracts cannot be deleted", func(t *testing.T) {
		dto := createActiveContract(t, svc, db)
		_, err := svc.Complete(ctx, dto.ID)
		require.NoError(t, err)

		err = svc.Delete(ctx, dto.ID)
		assert.ErrorIs(t, err, service.ErrContractClosed)
	})

	t.Run("suspended contract can be cancelled", func(t *testing.T) {
		dto := createActiveContract(t, svc, db)
		_, err := svc.Suspend(ctx, dto.ID)
		require.NoError(t, err)

		cancelled, err := svc.Cancel(ctx, dto.ID, &domain.CancelContractRequest{Reason: "client folded"})
		require.NoError(t, err)
		assert.Equal(t, domain.ContractStatusCancelled, cancelled.Status)
	})
}
