package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/agencydesk/commerce-api/internal/repository"
	"github.com/agencydesk/commerce-api/internal/service"
	"github.com/agencydesk/commerce-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newQuotationService(t *testing.T, db *gorm.DB) *service.QuotationService {
	log := zap.NewNop()
	return service.NewQuotationService(
		repository.NewQuotationRepository(db),
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

func createDraftQuotation(t *testing.T, svc *service.QuotationService, leadID uuid.UUID) *domain.QuotationDTO {
	t.Helper()
	dto, err := svc.Create(context.Background(), &domain.CreateQuotationRequest{
		LeadID:   &leadID,
		Currency: "SAR",
	})
	require.NoError(t, err)
	return dto
}

func strPtr(s string) *string { return &s }

func TestQuotationService_Create(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newQuotationService(t, db)
	ctx := context.Background()

	lead := testutil.CreateTestLead(t, db, "Acme Lead")
	client := testutil.CreateTestClient(t, db, "Acme Client")

	t.Run("draft for a lead starts with zero totals", func(t *testing.T) {
		dto := createDraftQuotation(t, svc, lead.ID)
		assert.Equal(t, domain.QuotationStatusDraft, dto.Status)
		assert.Empty(t, dto.QuotationNumber, "number is assigned on first send, not on create")
		assert.Equal(t, "0.00", dto.Subtotal)
		assert.Equal(t, "0.00", dto.TotalAmount)
		require.NotNil(t, dto.LeadID)
		assert.Equal(t, lead.ID, *dto.LeadID)
	})

	t.Run("both lead and client is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateQuotationRequest{
			LeadID:   &lead.ID,
			ClientID: &client.ID,
			Currency: "SAR",
		})
		assert.ErrorIs(t, err, service.ErrInvalidCounterparty)
	})

	t.Run("neither lead nor client is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateQuotationRequest{Currency: "SAR"})
		assert.ErrorIs(t, err, service.ErrInvalidCounterparty)
	})

	t.Run("unknown lead is rejected", func(t *testing.T) {
		missing := uuid.New()
		_, err := svc.Create(ctx, &domain.CreateQuotationRequest{
			LeadID:   &missing,
			Currency: "SAR",
		})
		assert.ErrorIs(t, err, service.ErrLeadNotFound)
	})
}

func TestQuotationService_TotalsPipeline(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newQuotationService(t, db)
	ctx := context.Background()

	lead := testutil.CreateTestLead(t, db, "Totals Lead")
	dto := createDraftQuotation(t, svc, lead.ID)

	dto, err := svc.AddItem(ctx, dto.ID, &domain.AddLineItemRequest{
		ServiceRef: "design", Quantity: 2, UnitPrice: "500.00",
	})
	require.NoError(t, err)
	assert.Equal(t, "1000.00", dto.Subtotal)

	dto, err = svc.AddItem(ctx, dto.ID, &domain.AddLineItemRequest{
		ServiceRef: "development", Quantity: 1, UnitPrice: "1200.00",
	})
	require.NoError(t, err)
	assert.Equal(t, "2200.00", dto.Subtotal)
	require.Len(t, dto.Items, 2)
	assert.Equal(t, "1000.00", dto.Items[0].LineTotal)
	assert.Equal(t, "1200.00", dto.Items[1].LineTotal)

	dto, err = svc.SetRates(ctx, dto.ID, &domain.UpdateRatesRequest{TaxRate: strPtr("15")})
	require.NoError(t, err)
	assert.Equal(t, "2200.00", dto.Subtotal)
	assert.Equal(t, "330.00", dto.TaxAmount)
	assert.Equal(t, "0.00", dto.DiscountAmount)
	assert.Equal(t, "2530.00", dto.TotalAmount)

	t.Run("removing an item recomputes totals", func(t *testing.T) {
		updated, err := svc.RemoveItem(ctx, dto.ID, dto.Items[1].ID)
		require.NoError(t, err)
		assert.Equal(t, "1000.00", updated.Subtotal)
		assert.Equal(t, "150.00", updated.TaxAmount)
		assert.Equal(t, "1150.00", updated.TotalAmount)
	})

	t.Run("item currency must match the document currency", func(t *testing.T) {
		_, err := svc.AddItem(ctx, dto.ID, &domain.AddLineItemRequest{
			ServiceRef: "offshore", Quantity: 1, UnitPrice: "10.00", Currency: "USD",
		})
		assert.ErrorIs(t, err, service.ErrCurrencyMismatch)

		// An explicit matching currency is accepted
		updated, err := svc.AddItem(ctx, dto.ID, &domain.AddLineItemRequest{
			ServiceRef: "local", Quantity: 1, UnitPrice: "10.00", Currency: "SAR",
		})
		require.NoError(t, err)

		last := updated.Items[len(updated.Items)-1]
		_, err = svc.RemoveItem(ctx, dto.ID, last.ID)
		require.NoError(t, err)
	})

	t.Run("negative unit price is rejected", func(t *testing.T) {
		_, err := svc.AddItem(ctx, dto.ID, &domain.AddLineItemRequest{
			ServiceRef: "oops", Quantity: 1, UnitPrice: "-10.00",
		})
		assert.ErrorIs(t, err, service.ErrInvalidPrice)
	})

	t.Run("zero quantity is rejected", func(t *testing.T) {
		_, err := svc.AddItem(ctx, dto.ID, &domain.AddLineItemRequest{
			ServiceRef: "oops", Quantity: 0, UnitPrice: "10.00",
		})
		assert.ErrorIs(t, err, service.ErrInvalidQuantity)
	})

	t.Run("rate above 100 is rejected", func(t *testing.T) {
		_, err := svc.SetRates(ctx, dto.ID, &domain.UpdateRatesRequest{TaxRate: strPtr("101")})
		assert.ErrorIs(t, err, service.ErrInvalidRate)
	})
}

func TestQuotationService_Lifecycle(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newQuotationService(t, db)
	ctx := context.Background()

	lead := testutil.CreateTestLead(t, db, "Lifecycle Lead")

	t.Run("empty draft cannot be sent", func(t *testing.T) {
		dto := createDraftQuotation(t, svc, lead.ID)
		_, err := svc.Send(ctx, dto.ID)
		assert.ErrorIs(t, err, service.ErrEmptyDocument)
	})

	t.Run("send assigns number once and locks edits", func(t *testing.T) {
		dto := createDraftQuotation(t, svc, lead.ID)
		_, err := svc.AddItem(ctx, dto.ID, &domain.AddLineItemRequest{
			ServiceRef: "design", Quantity: 1, UnitPrice: "100.00",
		})
		require.NoError(t, err)

		sent, err := svc.Send(ctx, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuotationStatusSent, sent.Status)
		assert.Regexp(t, `^QUO-\d{4}-\d{3,}$`, sent.QuotationNumber)
		require.NotNil(t, sent.SentDate)

		_, err = svc.AddItem(ctx, dto.ID, &domain.AddLineItemRequest{
			ServiceRef: "extra", Quantity: 1, UnitPrice: "50.00",
		})
		assert.ErrorIs(t, err, service.ErrDocumentNotEditable)

		// Modification re-opens edits and the re-send keeps the number
		modified, err := svc.RequestModification(ctx, dto.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.QuotationStatusModified, modified.Status)

		_, err = svc.AddItem(ctx, dto.ID, &domain.AddLineItemRequest{
			ServiceRef: "extra", Quantity: 1, UnitPrice: "50.00",
		})
		require.NoError(t, err)

		resent, err := svc.Send(ctx, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, sent.QuotationNumber, resent.QuotationNumber)
		assert.Equal(t, sent.SentDate, resent.SentDate)
	})

	t.Run("accept is terminal", func(t *testing.T) {
		dto := createDraftQuotation(t, svc, lead.ID)
		_, err := svc.AddItem(ctx, dto.ID, &domain.AddLineItemRequest{
			ServiceRef: "design", Quantity: 1, UnitPrice: "100.00",
		})
		require.NoError(t, err)
		_, err = svc.Send(ctx, dto.ID)
		require.NoError(t, err)

		accepted, err := svc.Accept(ctx, dto.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.QuotationStatusAccepted, accepted.Status)
		require.NotNil(t, accepted.AcceptedDate)

		var transitionErr *domain.InvalidTransitionError
		_, err = svc.Accept(ctx, dto.ID, nil)
		assert.ErrorAs(t, err, &transitionErr)
		_, err = svc.Send(ctx, dto.ID)
		assert.ErrorAs(t, err, &transitionErr)
	})

	t.Run("reject requires a reason and keeps it", func(t *testing.T) {
		dto := createDraftQuotation(t, svc, lead.ID)
		_, err := svc.AddItem(ctx, dto.ID, &domain.AddLineItemRequest{
			ServiceRef: "design", Quantity: 1, UnitPrice: "100.00",
		})
		require.NoError(t, err)
		_, err = svc.Send(ctx, dto.ID)
		require.NoError(t, err)

		_, err = svc.Reject(ctx, dto.ID, &domain.RejectQuotationRequest{})
		assert.ErrorIs(t, err, service.ErrMissingReason)

		rejected, err := svc.Reject(ctx, dto.ID, &domain.RejectQuotationRequest{Reason: "too expensive"})
		require.NoError(t, err)
		assert.Equal(t, domain.QuotationStatusRejected, rejected.Status)
		assert.Equal(t, "too expensive", rejected.RejectionReason)
		require.NotNil(t, rejected.RejectedDate)
	})

	t.Run("delete only while editable", func(t *testing.T) {
		dto := createDraftQuotation(t, svc, lead.ID)
		require.NoError(t, svc.Delete(ctx, dto.ID))
		_, err := svc.GetByID(ctx, dto.ID)
		assert.ErrorIs(t, err, service.ErrQuotationNotFound)

		sent := createDraftQuotation(t, svc, lead.ID)
		_, err = svc.AddItem(ctx, sent.ID, &domain.AddLineItemRequest{
			ServiceRef: "design", Quantity: 1, UnitPrice: "100.00",
		})
		require.NoError(t, err)
		_, err = svc.Send(ctx, sent.ID)
		require.NoError(t, err)
		assert.ErrorIs(t, svc.Delete(ctx, sent.ID), service.ErrDocumentNotEditable)
	})
}

func TestQuotationService_SharedNumberSequence(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newQuotationService(t, db)
	ctx := context.Background()

	lead := testutil.CreateTestLead(t, db, "Sequence Lead")

	first := createDraftQuotation(t, svc, lead.ID)
	second := createDraftQuotation(t, svc, lead.ID)

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		_, err := svc.AddItem(ctx, id, &domain.AddLineItemRequest{
			ServiceRef: "design", Quantity: 1, UnitPrice: "100.00",
		})
		require.NoError(t, err)
	}

	sentFirst, err := svc.Send(ctx, first.ID)
	require.NoError(t, err)
	sentSecond, err := svc.Send(ctx, second.ID)
	require.NoError(t, err)

	assert.NotEqual(t, sentFirst.QuotationNumber, sentSecond.QuotationNumber)
}

func TestQuotationService_ConcurrentNumberAssignment(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newQuotationService(t, db)
	ctx := context.Background()

	lead := testutil.CreateTestLead(t, db, "Contended Lead")

	const senders = 4
	ids := make([]uuid.UUID, senders)
	for i := range ids {
		dto := createDraftQuotation(t, svc, lead.ID)
		_, err := svc.AddItem(ctx, dto.ID, &domain.AddLineItemRequest{
			ServiceRef: "design", Quantity: 1, UnitPrice: "100.00",
		})
		require.NoError(t, err)
		ids[i] = dto.ID
	}

	numbers := make(chan string, senders)
	errs := make(chan error, senders)
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			dto, err := svc.Send(ctx, id)
			if err != nil {
				errs <- err
				return
			}
			numbers <- dto.QuotationNumber
		}(id)
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	seen := make(map[string]bool, senders)
	for number := range numbers {
		assert.Regexp(t, `^QUO-\d{4}-\d{3,}$`, number)
		assert.False(t, seen[number], "number %s assigned twice", number)
		seen[number] = true
	}
	assert.Len(t, seen, senders)
}
