package domain

import "github.com/shopspring/decimal"

// DocumentTotals holds the derived monetary fields of a commercial document.
// Subtotal, tax and discount are rounded for persistence; TotalAmount is
// computed from the precise intermediates and rounded once, so summing
// already-rounded line totals can never drift from unitPrice*quantity
// computed at full precision.
type DocumentTotals struct {
	Subtotal       Money
	TaxAmount      Money
	DiscountAmount Money
	TotalAmount    Money
}

// Price returns the item's unit price as a Money value in the item currency.
func (li *LineItem) Price() Money {
	return NewMoney(li.UnitPrice, li.Currency)
}

// LineTotal returns unitPrice * quantity for a line item at full precision.
func (li *LineItem) LineTotal() Money {
	return li.Price().MultiplyQty(li.Quantity)
}

// CalculateDocumentTotals recomputes a document's totals from its current
// line items and percentage rates. Pure and deterministic: the caller is
// responsible for persisting the result in the same transaction as the
// line-item mutation that triggered it. Line totals are summed as Money in
// the document currency, so an item whose currency diverges fails with
// ErrCurrencyMismatch instead of being silently mixed in.
func CalculateDocumentTotals(currency string, items []LineItem, taxRate, discountRate decimal.Decimal) (DocumentTotals, error) {
	subtotal := ZeroMoney(currency)
	for i := range items {
		sum, err := subtotal.Add(items[i].LineTotal())
		if err != nil {
			return DocumentTotals{}, err
		}
		subtotal = sum
	}

	tax := subtotal.ApplyRate(taxRate)
	discount := subtotal.ApplyRate(discountRate)

	total, err := subtotal.Add(tax)
	if err != nil {
		return DocumentTotals{}, err
	}
	total, err = total.Sub(discount)
	if err != nil {
		return DocumentTotals{}, err
	}

	return DocumentTotals{
		Subtotal:       subtotal.Round(),
		TaxAmount:      tax.Round(),
		DiscountAmount: discount.Round(),
		TotalAmount:    total.Round(),
	}, nil
}
