package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrCurrencyMismatch is returned when arithmetic is attempted between two
// Money values in different currencies.
type ErrCurrencyMismatch struct {
	Left  string
	Right string
}

func (e *ErrCurrencyMismatch) Error() string {
	return fmt.Sprintf("currency mismatch: %s vs %s", e.Left, e.Right)
}

// moneyScale is the number of decimal places a Money value carries when
// persisted or displayed. Intermediate arithmetic keeps full decimal
// precision and is rounded exactly once, at the boundary.
const moneyScale = 2

// Money is a fixed-precision monetary amount in a single currency.
// Amounts are never represented as binary floating point; all arithmetic
// goes through shopspring/decimal.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewMoney creates a Money value from a decimal amount and ISO currency code.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// NewMoneyFromString parses a decimal string (e.g. "1200.00") into a Money
// value. Parsing happens once at the ingestion boundary; downstream code
// never re-parses string amounts.
func NewMoneyFromString(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return Money{Amount: d, Currency: currency}, nil
}

// ZeroMoney returns a zero amount in the given currency.
func ZeroMoney(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// Add returns m + other. Both values must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, &ErrCurrencyMismatch{Left: m.Currency, Right: other.Currency}
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub returns m - other. Both values must share a currency.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, &ErrCurrencyMismatch{Left: m.Currency, Right: other.Currency}
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// MultiplyQty returns m * quantity at full precision.
func (m Money) MultiplyQty(quantity int) Money {
	return Money{
		Amount:   m.Amount.Mul(decimal.NewFromInt(int64(quantity))),
		Currency: m.Currency,
	}
}

// ApplyRate returns m * ratePercent/100 at full precision. Used for tax and
// discount rates expressed as percentages (15 means 15%).
func (m Money) ApplyRate(ratePercent decimal.Decimal) Money {
	return Money{
		Amount:   m.Amount.Mul(ratePercent).Div(decimal.NewFromInt(100)),
		Currency: m.Currency,
	}
}

// Round rounds the amount half-up to two decimal places. This is the single
// rounding point: callers round when persisting or displaying, never between
// intermediate operations.
func (m Money) Round() Money {
	return Money{Amount: m.Amount.Round(moneyScale), Currency: m.Currency}
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// Equal reports whether two Money values have the same currency and amount.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// String renders the rounded amount with its currency, e.g. "2530.00 SAR".
func (m Money) String() string {
	return m.Amount.Round(moneyScale).StringFixed(moneyScale) + " " + m.Currency
}

// MarshalJSON renders the amount as a fixed two-decimal string so wire
// round-trips cannot drift.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}{
		Amount:   m.Amount.Round(moneyScale).StringFixed(moneyScale),
		Currency: m.Currency,
	})
}

// UnmarshalJSON accepts the wire shape produced by MarshalJSON.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewMoneyFromString(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer so Money amounts can be scanned by GORM
// when embedded in raw queries. The currency travels in its own column.
func (m Money) Value() (driver.Value, error) {
	return m.Amount.Round(moneyScale).String(), nil
}
