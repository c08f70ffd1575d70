package domain

import (
	"github.com/google/uuid"
)

// DTOs for API responses. Monetary amounts travel as fixed two-decimal
// strings so a serialize/deserialize round-trip can never drift; dates are
// ISO 8601 strings.

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PaginatedResponse wraps list results with paging metadata
type PaginatedResponse struct {
	Items      interface{} `json:"items"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalCount int64       `json:"totalCount"`
	TotalPages int         `json:"totalPages"`
}

type LeadDTO struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	CompanyName   string     `json:"companyName,omitempty"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone,omitempty"`
	Source        string     `json:"source,omitempty"`
	Status        LeadStatus `json:"status"`
	Notes         string     `json:"notes,omitempty"`
	AssignedToID  string     `json:"assignedToId,omitempty"`
	ConvertedAt   *string    `json:"convertedAt,omitempty"`
	ConvertedToID *uuid.UUID `json:"convertedToId,omitempty"`
	CreatedAt     string     `json:"createdAt"` // ISO 8601
	UpdatedAt     string     `json:"updatedAt"` // ISO 8601
}

type ClientDTO struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	OrgNumber     string     `json:"orgNumber,omitempty"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone,omitempty"`
	Address       string     `json:"address,omitempty"`
	City          string     `json:"city,omitempty"`
	Country       string     `json:"country,omitempty"`
	ContactPerson string     `json:"contactPerson,omitempty"`
	IsActive      bool       `json:"isActive"`
	SourceLeadID  *uuid.UUID `json:"sourceLeadId,omitempty"`
	CreatedAt     string     `json:"createdAt"`
	UpdatedAt     string     `json:"updatedAt"`
}

type LineItemDTO struct {
	ID          uuid.UUID `json:"id"`
	ServiceRef  string    `json:"serviceRef"`
	Quantity    int       `json:"quantity"`
	UnitPrice   string    `json:"unitPrice"`
	Currency    string    `json:"currency"`
	LineTotal   string    `json:"lineTotal"`
	Description string    `json:"description,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Position    int       `json:"position"`
}

type QuotationDTO struct {
	ID               uuid.UUID       `json:"id"`
	QuotationNumber  string          `json:"quotationNumber,omitempty"`
	LeadID           *uuid.UUID      `json:"leadId,omitempty"`
	ClientID         *uuid.UUID      `json:"clientId,omitempty"`
	CounterpartyName string          `json:"counterpartyName,omitempty"`
	Currency         string          `json:"currency"`
	Status           QuotationStatus `json:"status"`
	Subtotal         string          `json:"subtotal"`
	TaxRate          string          `json:"taxRate"`
	TaxAmount        string          `json:"taxAmount"`
	DiscountRate     string          `json:"discountRate"`
	DiscountAmount   string          `json:"discountAmount"`
	TotalAmount      string          `json:"totalAmount"`
	ValidUntil       *string         `json:"validUntil,omitempty"`
	SentDate         *string         `json:"sentDate,omitempty"`
	AcceptedDate     *string         `json:"acceptedDate,omitempty"`
	RejectedDate     *string         `json:"rejectedDate,omitempty"`
	RejectionReason  string          `json:"rejectionReason,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	ResponsibleID    string          `json:"responsibleId,omitempty"`
	Items            []LineItemDTO   `json:"items"`
	CreatedAt        string          `json:"createdAt"`
	UpdatedAt        string          `json:"updatedAt"`
}

type ContractDTO struct {
	ID                 uuid.UUID      `json:"id"`
	ContractNumber     string         `json:"contractNumber,omitempty"`
	LeadID             *uuid.UUID     `json:"leadId,omitempty"`
	ClientID           *uuid.UUID     `json:"clientId,omitempty"`
	CounterpartyName   string         `json:"counterpartyName,omitempty"`
	Currency           string         `json:"currency"`
	Status             ContractStatus `json:"status"`
	Subtotal           string         `json:"subtotal"`
	TaxRate            string         `json:"taxRate"`
	TaxAmount          string         `json:"taxAmount"`
	DiscountRate       string         `json:"discountRate"`
	DiscountAmount     string         `json:"discountAmount"`
	TotalAmount        string         `json:"totalAmount"`
	StartDate          string         `json:"startDate"`
	EndDate            *string        `json:"endDate,omitempty"`
	SuspendedDate      *string        `json:"suspendedDate,omitempty"`
	CompletedDate      *string        `json:"completedDate,omitempty"`
	CancelledDate      *string        `json:"cancelledDate,omitempty"`
	CancellationReason string         `json:"cancellationReason,omitempty"`
	Notes              string         `json:"notes,omitempty"`
	ResponsibleID      string         `json:"responsibleId,omitempty"`
	Items              []LineItemDTO  `json:"items"`
	CreatedAt          string         `json:"createdAt"`
	UpdatedAt          string         `json:"updatedAt"`
}

type WorkflowDTO struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	WorkflowType string            `json:"workflowType,omitempty"`
	IsActive     bool              `json:"isActive"`
	Tasks        []WorkflowTaskDTO `json:"tasks,omitempty"`
	CreatedAt    string            `json:"createdAt"`
	UpdatedAt    string            `json:"updatedAt"`
}

type WorkflowTaskDTO struct {
	ID                     uuid.UUID `json:"id"`
	WorkflowID             uuid.UUID `json:"workflowId"`
	Name                   string    `json:"name"`
	TaskType               string    `json:"taskType"`
	EstimatedDurationHours float64   `json:"estimatedDurationHours"`
	OrderSequence          int       `json:"orderSequence"`
	Dependencies           []string  `json:"dependencies"`
	IsRequired             bool      `json:"isRequired"`
	RequiredSkills         []string  `json:"requiredSkills"`
	AssignedToID           string    `json:"assignedToId,omitempty"`
	CreatedAt              string    `json:"createdAt"`
	UpdatedAt              string    `json:"updatedAt"`
}

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

// CreateQuotationRequest creates a draft quotation. Exactly one of leadId
// and clientId must be provided.
type CreateQuotationRequest struct {
	LeadID        *uuid.UUID `json:"leadId,omitempty"`
	ClientID      *uuid.UUID `json:"clientId,omitempty"`
	Currency      string     `json:"currency" validate:"required,len=3"`
	ValidUntil    *string    `json:"validUntil,omitempty"` // ISO 8601 date
	Notes         string     `json:"notes,omitempty" validate:"max=2000"`
	ResponsibleID string     `json:"responsibleId,omitempty" validate:"max=100"`
}

type AddLineItemRequest struct {
	ServiceRef string `json:"serviceRef" validate:"required,max=100"`
	Quantity   int    `json:"quantity" validate:"required"`
	UnitPrice  string `json:"unitPrice" validate:"required"`
	// Currency is optional; when set it must match the document currency.
	Currency    string `json:"currency,omitempty" validate:"omitempty,len=3"`
	Description string `json:"description,omitempty" validate:"max=500"`
	Notes       string `json:"notes,omitempty" validate:"max=2000"`
}

// UpdateLineItemRequest is a partial update: nil fields keep their value.
type UpdateLineItemRequest struct {
	Quantity    *int    `json:"quantity,omitempty"`
	UnitPrice   *string `json:"unitPrice,omitempty"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type UpdateRatesRequest struct {
	TaxRate      *string `json:"taxRate,omitempty"`
	DiscountRate *string `json:"discountRate,omitempty"`
}

type AcceptQuotationRequest struct {
	Notes string `json:"notes,omitempty" validate:"max=2000"`
}

type RejectQuotationRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type RequestModificationRequest struct {
	Notes string `json:"notes,omitempty" validate:"max=2000"`
}

type CreateContractRequest struct {
	LeadID        *uuid.UUID `json:"leadId,omitempty"`
	ClientID      *uuid.UUID `json:"clientId,omitempty"`
	Currency      string     `json:"currency" validate:"required,len=3"`
	StartDate     string     `json:"startDate" validate:"required"`
	EndDate       *string    `json:"endDate,omitempty"`
	Notes         string     `json:"notes,omitempty" validate:"max=2000"`
	ResponsibleID string     `json:"responsibleId,omitempty" validate:"max=100"`
}

type CancelContractRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type CreateWorkflowRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Description  string `json:"description,omitempty" validate:"max=2000"`
	WorkflowType string `json:"workflowType,omitempty" validate:"max=100"`
}

// CreateWorkflowTaskRequest creates a task. The order sequence is assigned
// server-side; any client-supplied value is ignored.
type CreateWorkflowTaskRequest struct {
	Name                   string   `json:"name" validate:"required,max=200"`
	TaskType               string   `json:"taskType" validate:"required,max=100"`
	EstimatedDurationHours float64  `json:"estimatedDurationHours" validate:"required"`
	Dependencies           []string `json:"dependencies,omitempty"`
	IsRequired             *bool    `json:"isRequired,omitempty"`
	RequiredSkills         []string `json:"requiredSkills,omitempty"`
	AssignedToID           string   `json:"assignedToId,omitempty" validate:"max=100"`
}

type CreateLeadRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	CompanyName  string `json:"companyName,omitempty" validate:"max=200"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone,omitempty" validate:"max=50"`
	Source       string `json:"source,omitempty" validate:"max=100"`
	Notes        string `json:"notes,omitempty" validate:"max=2000"`
	AssignedToID string `json:"assignedToId,omitempty" validate:"max=100"`
}

// UpdateLeadStatusRequest moves a lead along the funnel. The converted
// status is set through the convert endpoint, never directly.
type UpdateLeadStatusRequest struct {
	Status LeadStatus `json:"status" validate:"required,oneof=new contacted qualified archived"`
}

// ConvertLeadResponse returns the new client plus the documents re-pointed
// from the lead during conversion.
type ConvertLeadResponse struct {
	Client              ClientDTO `json:"client"`
	RepointedQuotations int       `json:"repointedQuotations"`
	RepointedContracts  int       `json:"repointedContracts"`
}

// ExecutionOrderResponse is the topological order of a workflow's tasks
type ExecutionOrderResponse struct {
	WorkflowID uuid.UUID         `json:"workflowId"`
	Tasks      []WorkflowTaskDTO `json:"tasks"`
}

type ActivityDTO struct {
	ID         uuid.UUID          `json:"id"`
	TargetType ActivityTargetType `json:"targetType"`
	TargetID   uuid.UUID          `json:"targetId"`
	Title      string             `json:"title"`
	Body       string             `json:"body,omitempty"`
	OccurredAt string             `json:"occurredAt"`
	ActorID    string             `json:"actorId,omitempty"`
	ActorName  string             `json:"actorName,omitempty"`
}

type NotificationDTO struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	Read       bool       `json:"read"`
	ReadAt     *string    `json:"readAt,omitempty"`
	EntityID   *uuid.UUID `json:"entityId,omitempty"`
	EntityType string     `json:"entityType,omitempty"`
	CreatedAt  string     `json:"createdAt"`
}

// UnreadCountDTO carries the unread notification count for a user
type UnreadCountDTO struct {
	Count int `json:"count"`
}
