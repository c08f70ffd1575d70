package domain

import "fmt"

// InvalidTransitionError reports an attempted status change the current
// state does not permit.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// NewInvalidQuotationTransition builds the error for a forbidden quotation move.
func NewInvalidQuotationTransition(from, to QuotationStatus) error {
	return &InvalidTransitionError{From: string(from), To: string(to)}
}

// NewInvalidContractTransition builds the error for a forbidden contract move.
func NewInvalidContractTransition(from, to ContractStatus) error {
	return &InvalidTransitionError{From: string(from), To: string(to)}
}

// quotationTransitions is the full legal-transition table for quotations.
// A draft is sent, then either accepted, rejected, or sent back as modified;
// modified re-opens editability and may be re-sent. accepted and rejected
// are terminal for the send cycle.
var quotationTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationStatusDraft:    {QuotationStatusSent},
	QuotationStatusModified: {QuotationStatusSent},
	QuotationStatusSent:     {QuotationStatusAccepted, QuotationStatusRejected, QuotationStatusModified},
	QuotationStatusAccepted: {},
	QuotationStatusRejected: {},
}

// contractTransitions is the legal-transition table for contracts.
// Suspension is reversible, completion and cancellation are not; only an
// active contract can be completed.
var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractStatusActive:    {ContractStatusSuspended, ContractStatusCompleted, ContractStatusCancelled},
	ContractStatusSuspended: {ContractStatusActive, ContractStatusCancelled},
	ContractStatusCompleted: {},
	ContractStatusCancelled: {},
}

// CanTransitionQuotation reports whether moving from one quotation status to
// another is legal.
func CanTransitionQuotation(from, to QuotationStatus) bool {
	for _, next := range quotationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionContract reports whether moving from one contract status to
// another is legal.
func CanTransitionContract(from, to ContractStatus) bool {
	for _, next := range contractTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsQuotationEditable reports whether line items and rates may be changed.
// Only draft and modified quotations are editable.
func IsQuotationEditable(status QuotationStatus) bool {
	return status == QuotationStatusDraft || status == QuotationStatusModified
}

// IsQuotationClosed reports whether the quotation finished its send cycle.
func IsQuotationClosed(status QuotationStatus) bool {
	return status == QuotationStatusAccepted || status == QuotationStatusRejected
}

// IsContractClosed reports whether the contract reached a terminal state.
// Closed contracts permit no outgoing transitions and no item edits.
func IsContractClosed(status ContractStatus) bool {
	return status == ContractStatusCompleted || status == ContractStatusCancelled
}
