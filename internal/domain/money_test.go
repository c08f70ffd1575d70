package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoneyFromString(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		wantErr  bool
		expected string
	}{
		{
			name:     "plain integer amount",
			amount:   "1200",
			currency: "SAR",
			expected: "1200.00 SAR",
		},
		{
			name:     "two decimal places",
			amount:   "500.50",
			currency: "NOK",
			expected: "500.50 NOK",
		},
		{
			name:     "high precision amount is preserved until rounding",
			amount:   "10.12345",
			currency: "EUR",
			expected: "10.12 EUR",
		},
		{
			name:     "negative amount parses",
			amount:   "-42.00",
			currency: "USD",
			expected: "-42.00 USD",
		},
		{
			name:    "garbage is rejected",
			amount:  "twelve",
			wantErr: true,
		},
		{
			name:    "empty string is rejected",
			amount:  "",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := domain.NewMoneyFromString(tc.amount, tc.currency)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, m.String())
		})
	}
}

func TestMoneyAddSub(t *testing.T) {
	a, err := domain.NewMoneyFromString("100.25", "SAR")
	require.NoError(t, err)
	b, err := domain.NewMoneyFromString("0.75", "SAR")
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "101.00 SAR", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "99.50 SAR", diff.String())
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	sar := domain.ZeroMoney("SAR")
	nok := domain.ZeroMoney("NOK")

	_, err := sar.Add(nok)
	require.Error(t, err)
	var mismatch *domain.ErrCurrencyMismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "SAR", mismatch.Left)
	assert.Equal(t, "NOK", mismatch.Right)

	_, err = sar.Sub(nok)
	assert.Error(t, err)
}

func TestMoneyMultiplyAndRate(t *testing.T) {
	unit, err := domain.NewMoneyFromString("500.00", "SAR")
	require.NoError(t, err)

	line := unit.MultiplyQty(2)
	assert.Equal(t, "1000.00 SAR", line.String())

	tax := line.ApplyRate(decimal.NewFromInt(15))
	assert.Equal(t, "150.00 SAR", tax.String())
}

func TestMoneyRoundHalfUp(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected string
	}{
		{name: "exact midpoint rounds up", amount: "10.005", expected: "10.01"},
		{name: "below midpoint rounds down", amount: "10.004", expected: "10.00"},
		{name: "above midpoint rounds up", amount: "10.006", expected: "10.01"},
		{name: "already rounded is unchanged", amount: "10.01", expected: "10.01"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := domain.NewMoneyFromString(tc.amount, "SAR")
			require.NoError(t, err)
			rounded := m.Round()
			assert.Equal(t, tc.expected+" SAR", rounded.String())
		})
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m, err := domain.NewMoneyFromString("2530.00", "SAR")
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"2530.00","currency":"SAR"}`, string(data))

	var decoded domain.Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equal(decoded), "round-trip changed the value: %s vs %s", m, decoded)
}

func TestMoneyIsNegative(t *testing.T) {
	neg, err := domain.NewMoneyFromString("-0.01", "SAR")
	require.NoError(t, err)
	assert.True(t, neg.IsNegative())
	assert.False(t, domain.ZeroMoney("SAR").IsNegative())
}
