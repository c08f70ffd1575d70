package domain_test

import (
	"testing"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(quantity int, unitPrice string) domain.LineItem {
	return domain.LineItem{
		Quantity:  quantity,
		UnitPrice: decimal.RequireFromString(unitPrice),
		Currency:  "SAR",
	}
}

func TestCalculateDocumentTotals(t *testing.T) {
	tests := []struct {
		name         string
		items        []domain.LineItem
		taxRate      string
		discountRate string
		subtotal     string
		tax          string
		discount     string
		total        string
	}{
		{
			name: "two items with 15 percent tax",
			items: []domain.LineItem{
				item(2, "500.00"),
				item(1, "1200.00"),
			},
			taxRate:      "15",
			discountRate: "0",
			subtotal:     "2200.00",
			tax:          "330.00",
			discount:     "0.00",
			total:        "2530.00",
		},
		{
			name: "tax and discount together",
			items: []domain.LineItem{
				item(1, "1000.00"),
			},
			taxRate:      "15",
			discountRate: "10",
			subtotal:     "1000.00",
			tax:          "150.00",
			discount:     "100.00",
			total:        "1050.00",
		},
		{
			name:         "no items yields zero totals",
			items:        nil,
			taxRate:      "15",
			discountRate: "5",
			subtotal:     "0.00",
			tax:          "0.00",
			discount:     "0.00",
			total:        "0.00",
		},
		{
			name: "fractional unit price rounds half up once",
			items: []domain.LineItem{
				item(3, "33.335"),
			},
			taxRate:      "0",
			discountRate: "0",
			subtotal:     "100.01",
			tax:          "0.00",
			discount:     "0.00",
			total:        "100.01",
		},
		{
			name: "tax rounding happens on the precise intermediate",
			items: []domain.LineItem{
				item(1, "0.10"),
			},
			taxRate:      "15",
			discountRate: "0",
			subtotal:     "0.10",
			tax:          "0.02",
			discount:     "0.00",
			total:        "0.12",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			totals, err := domain.CalculateDocumentTotals(
				"SAR",
				tc.items,
				decimal.RequireFromString(tc.taxRate),
				decimal.RequireFromString(tc.discountRate),
			)
			require.NoError(t, err)

			assert.Equal(t, tc.subtotal, totals.Subtotal.Amount.StringFixed(2), "subtotal")
			assert.Equal(t, tc.tax, totals.TaxAmount.Amount.StringFixed(2), "tax amount")
			assert.Equal(t, tc.discount, totals.DiscountAmount.Amount.StringFixed(2), "discount amount")
			assert.Equal(t, tc.total, totals.TotalAmount.Amount.StringFixed(2), "total amount")
			assert.Equal(t, "SAR", totals.TotalAmount.Currency)
		})
	}
}

func TestCalculateDocumentTotalsCurrencyMismatch(t *testing.T) {
	foreign := item(1, "100.00")
	foreign.Currency = "USD"
	items := []domain.LineItem{
		item(1, "500.00"),
		foreign,
	}

	_, err := domain.CalculateDocumentTotals("SAR", items, decimal.Zero, decimal.Zero)

	var mismatch *domain.ErrCurrencyMismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "SAR", mismatch.Left)
	assert.Equal(t, "USD", mismatch.Right)
}

func TestLineTotalFullPrecision(t *testing.T) {
	li := item(3, "10.005")
	// 3 * 10.005 = 30.015, kept unrounded until the document boundary
	require.True(t, li.LineTotal().Equal(domain.NewMoney(decimal.RequireFromString("30.015"), "SAR")))
}

func TestCalculateDocumentTotalsIsDeterministic(t *testing.T) {
	items := []domain.LineItem{
		item(2, "500.00"),
		item(1, "1200.00"),
	}
	taxRate := decimal.RequireFromString("15")

	first, err := domain.CalculateDocumentTotals("SAR", items, taxRate, decimal.Zero)
	require.NoError(t, err)
	second, err := domain.CalculateDocumentTotals("SAR", items, taxRate, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, first.TotalAmount.Equal(second.TotalAmount))
	assert.True(t, first.Subtotal.Equal(second.Subtotal))
}
