package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDocumentNumberFormat(t *testing.T) {
	s := NewNumberSequenceService(nil, zap.NewNop())

	tests := []struct {
		name     string
		prefix   string
		year     int
		sequence int
		expected string
	}{
		{"single digit sequence pads to three", PrefixQuotation, 2025, 1, "QUO-2025-001"},
		{"double digit sequence", PrefixQuotation, 2025, 42, "QUO-2025-042"},
		{"triple digit sequence", PrefixContract, 2025, 123, "CON-2025-123"},
		{"sequence past 999 grows without truncation", PrefixContract, 2025, 1000, "CON-2025-1000"},
		{"different year", PrefixQuotation, 2024, 5, "QUO-2024-005"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, s.format(tc.prefix, tc.year, tc.sequence))
		})
	}
}

func TestValidateDocumentNumber(t *testing.T) {
	s := NewNumberSequenceService(nil, zap.NewNop())

	tests := []struct {
		name   string
		number string
		valid  bool
	}{
		{"valid quotation number", "QUO-2025-001", true},
		{"valid contract number", "CON-2025-014", true},
		{"long sequence is valid", "QUO-2025-1234", true},
		{"unknown prefix", "INV-2025-001", false},
		{"missing padding", "QUO-2025-1", false},
		{"two digit year", "QUO-25-001", false},
		{"empty string", "", false},
		{"lowercase prefix", "quo-2025-001", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, s.ValidateDocumentNumber(tc.number))
		})
	}
}
