package service_test

import (
	"context"
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

func newCounterpartyService(t *testing.T, db *gorm.DB) *service.CounterpartyService {
	log := zap.NewNop()
	return service.NewCounterpartyService(
		repository.NewLeadRepository(db),
		repository.NewClientRepository(db),
		repository.NewQuotationRepository(db),
		repository.NewContractRepository(db),
		service.NewActivityService(repository.NewActivityRepository(db), log),
		log,
		db,
	)
}

func TestConvertLeadToClient(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newCounterpartyService(t, db)
	quotations := newQuotationService(t, db)
	ctx := context.Background()

	t.Run("conversion re-points open documents", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, "Convertible Lead")

		first := createDraftQuotation(t, quotations, lead.ID)
		second := createDraftQuotation(t, quotations, lead.ID)

		resp, err := svc.ConvertLeadToClient(ctx, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, resp.RepointedQuotations)
		assert.Equal(t, 0, resp.RepointedContracts)
		assert.True(t, resp.Client.IsActive)
		require.NotNil(t, resp.Client.SourceLeadID)
		assert.Equal(t, lead.ID, *resp.Client.SourceLeadID)

		for _, id := range []uuid.UUID{first.ID, second.ID} {
			dto, err := quotations.GetByID(ctx, id)
			require.NoError(t, err)
			assert.Nil(t, dto.LeadID)
			require.NotNil(t, dto.ClientID)
			assert.Equal(t, resp.Client.ID, *dto.ClientID)
		}

		var updated domain.Lead
		require.NoError(t, db.First(&updated, "id = ?", lead.ID).Error)
		assert.Equal(t, domain.LeadStatusConverted, updated.Status)
		require.NotNil(t, updated.ConvertedToID)
		assert.Equal(t, resp.Client.ID, *updated.ConvertedToID)
	})

	t.Run("company name wins over person name", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, "Jane Prospect")
		lead.CompanyName = "Prospect Industries"
		require.NoError(t, db.Save(lead).Error)

		resp, err := svc.ConvertLeadToClient(ctx, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, "Prospect Industries", resp.Client.Name)
		assert.Equal(t, "Jane Prospect", resp.Client.ContactPerson)
	})

	t.Run("double conversion is rejected", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, "One-shot Lead")
		_, err := svc.ConvertLeadToClient(ctx, lead.ID)
		require.NoError(t, err)

		_, err = svc.ConvertLeadToClient(ctx, lead.ID)
		assert.ErrorIs(t, err, service.ErrLeadAlreadyConverted)
	})

	t.Run("unknown lead", func(t *testing.T) {
		_, err := svc.ConvertLeadToClient(ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrLeadNotFound)
	})
}
