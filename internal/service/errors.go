package service

import "errors"

// Common service errors
var (
	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrQuotationNotFound is returned when a quotation is not found
	ErrQuotationNotFound = errors.New("quotation not found")

	// ErrContractNotFound is returned when a contract is not found
	ErrContractNotFound = errors.New("contract not found")

	// ErrItemNotFound is returned when a line item is not found on the document
	ErrItemNotFound = errors.New("line item not found")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrClientNotFound is returned when a client is not found
	ErrClientNotFound = errors.New("client not found")

	// ErrWorkflowNotFound is returned when a workflow is not found
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrTaskNotFound is returned when a workflow task is not found
	ErrTaskNotFound = errors.New("workflow task not found")

	// ErrEmployeeNotFound is returned when an employee is not found
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrInvalidQuantity is returned when a line item quantity is zero or negative
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrInvalidPrice is returned when a unit price is negative or not a valid decimal
	ErrInvalidPrice = errors.New("unit price must be a non-negative decimal")

	// ErrInvalidRate is returned when a tax or discount rate is outside 0-100
	ErrInvalidRate = errors.New("rate must be between 0 and 100")

	// ErrCurrencyMismatch is returned when an item currency differs from the document currency
	ErrCurrencyMismatch = errors.New("item currency does not match document currency")

	// ErrDocumentNotEditable is returned when items or rates are changed on a
	// document that left its editable states
	ErrDocumentNotEditable = errors.New("document is not editable in its current status")

	// ErrEmptyDocument is returned when a quotation without line items is sent
	ErrEmptyDocument = errors.New("document has no line items")

	// ErrMissingReason is returned when a rejection or cancellation lacks a reason
	ErrMissingReason = errors.New("a reason is required")

	// ErrInvalidCounterparty is returned when not exactly one of lead/client is referenced
	ErrInvalidCounterparty = errors.New("exactly one of leadId and clientId must be set")

	// ErrLeadAlreadyConverted is returned when converting a lead twice
	ErrLeadAlreadyConverted = errors.New("lead is already converted")

	// ErrContractClosed is returned on operations against completed or cancelled contracts
	ErrContractClosed = errors.New("contract is completed or cancelled")

	// ErrInvalidDuration is returned when a task duration is zero or negative
	ErrInvalidDuration = errors.New("estimated duration must be positive")

	// ErrUnknownDependency is returned when a task dependency references no
	// task in the same workflow
	ErrUnknownDependency = errors.New("dependency references an unknown task")

	// ErrCyclicDependency is returned when adding a task would close a dependency cycle
	ErrCyclicDependency = errors.New("dependencies would form a cycle")

	// ErrTaskHasDependents is returned when removing a task other tasks depend on
	ErrTaskHasDependents = errors.New("other tasks depend on this task")

	// ErrDuplicateOrderSequence is returned when a task's order sequence is
	// already taken within the workflow
	ErrDuplicateOrderSequence = errors.New("order sequence already in use for this workflow")

	// ErrInvalidDate is returned when a date string cannot be parsed
	ErrInvalidDate = errors.New("invalid date format, expected YYYY-MM-DD")

	// ErrEndBeforeStart is returned when a contract end date precedes its start date
	ErrEndBeforeStart = errors.New("end date must not be before start date")
)
