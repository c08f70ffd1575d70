package domain_test

import (
	"testing"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionQuotation(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.QuotationStatus
		to      domain.QuotationStatus
		allowed bool
	}{
		{"draft can be sent", domain.QuotationStatusDraft, domain.QuotationStatusSent, true},
		{"draft cannot be accepted", domain.QuotationStatusDraft, domain.QuotationStatusAccepted, false},
		{"draft cannot be rejected", domain.QuotationStatusDraft, domain.QuotationStatusRejected, false},
		{"sent can be accepted", domain.QuotationStatusSent, domain.QuotationStatusAccepted, true},
		{"sent can be rejected", domain.QuotationStatusSent, domain.QuotationStatusRejected, true},
		{"sent can be modified", domain.QuotationStatusSent, domain.QuotationStatusModified, true},
		{"sent cannot go back to draft", domain.QuotationStatusSent, domain.QuotationStatusDraft, false},
		{"modified can be re-sent", domain.QuotationStatusModified, domain.QuotationStatusSent, true},
		{"modified cannot be accepted directly", domain.QuotationStatusModified, domain.QuotationStatusAccepted, false},
		{"accepted is terminal", domain.QuotationStatusAccepted, domain.QuotationStatusSent, false},
		{"rejected is terminal", domain.QuotationStatusRejected, domain.QuotationStatusSent, false},
		{"rejected cannot be modified", domain.QuotationStatusRejected, domain.QuotationStatusModified, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, domain.CanTransitionQuotation(tc.from, tc.to))
		})
	}
}

func TestCanTransitionContract(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.ContractStatus
		to      domain.ContractStatus
		allowed bool
	}{
		{"active can be suspended", domain.ContractStatusActive, domain.ContractStatusSuspended, true},
		{"active can be completed", domain.ContractStatusActive, domain.ContractStatusCompleted, true},
		{"active can be cancelled", domain.ContractStatusActive, domain.ContractStatusCancelled, true},
		{"suspended can be resumed", domain.ContractStatusSuspended, domain.ContractStatusActive, true},
		{"suspended can be cancelled", domain.ContractStatusSuspended, domain.ContractStatusCancelled, true},
		{"suspended cannot be completed", domain.ContractStatusSuspended, domain.ContractStatusCompleted, false},
		{"completed is terminal", domain.ContractStatusCompleted, domain.ContractStatusActive, false},
		{"cancelled is terminal", domain.ContractStatusCancelled, domain.ContractStatusActive, false},
		{"cancelled cannot be suspended", domain.ContractStatusCancelled, domain.ContractStatusSuspended, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, domain.CanTransitionContract(tc.from, tc.to))
		})
	}
}

func TestIsQuotationEditable(t *testing.T) {
	assert.True(t, domain.IsQuotationEditable(domain.QuotationStatusDraft))
	assert.True(t, domain.IsQuotationEditable(domain.QuotationStatusModified))
	assert.False(t, domain.IsQuotationEditable(domain.QuotationStatusSent))
	assert.False(t, domain.IsQuotationEditable(domain.QuotationStatusAccepted))
	assert.False(t, domain.IsQuotationEditable(domain.QuotationStatusRejected))
}

func TestIsQuotationClosed(t *testing.T) {
	assert.True(t, domain.IsQuotationClosed(domain.QuotationStatusAccepted))
	assert.True(t, domain.IsQuotationClosed(domain.QuotationStatusRejected))
	assert.False(t, domain.IsQuotationClosed(domain.QuotationStatusDraft))
	assert.False(t, domain.IsQuotationClosed(domain.QuotationStatusSent))
	assert.False(t, domain.IsQuotationClosed(domain.QuotationStatusModified))
}

func TestIsContractClosed(t *testing.T) {
	assert.True(t, domain.IsContractClosed(domain.ContractStatusCompleted))
	assert.True(t, domain.IsContractClosed(domain.ContractStatusCancelled))
	assert.False(t, domain.IsContractClosed(domain.ContractStatusActive))
	assert.False(t, domain.IsContractClosed(domain.ContractStatusSuspended))
}

func TestInvalidTransitionError(t *testing.T) {
	err := domain.NewInvalidQuotationTransition(domain.QuotationStatusDraft, domain.QuotationStatusAccepted)
	require.Error(t, err)

	var transitionErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, "draft", transitionErr.From)
	assert.Equal(t, "accepted", transitionErr.To)
	assert.Contains(t, err.Error(), "invalid transition")
}
