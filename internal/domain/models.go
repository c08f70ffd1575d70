package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// LeadStatus represents the status of a lead in the acquisition funnel
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusArchived  LeadStatus = "archived"
)

// Lead represents a prospective counterparty that has not been converted
// to a client yet. Draft and sent documents may reference a lead; accepted
// work requires conversion to a client first.
type Lead struct {
	BaseModel
	Name          string     `gorm:"type:varchar(200);not null;index"`
	CompanyName   string     `gorm:"type:varchar(200);column:company_name"`
	Email         string     `gorm:"type:varchar(255);not null"`
	Phone         string     `gorm:"type:varchar(50)"`
	Source        string     `gorm:"type:varchar(100)"`
	Status        LeadStatus `gorm:"type:varchar(50);not null;default:'new';index"`
	Notes         string     `gorm:"type:text"`
	AssignedToID  string     `gorm:"type:varchar(100);column:assigned_to_id;index"`
	ConvertedAt   *time.Time `gorm:"column:converted_at"`
	ConvertedToID *uuid.UUID `gorm:"type:uuid;column:converted_to_id"`
}

// Client represents an established counterparty
type Client struct {
	BaseModel
	Name          string     `gorm:"type:varchar(200);not null;index"`
	OrgNumber     string     `gorm:"type:varchar(20);index;column:org_number"`
	Email         string     `gorm:"type:varchar(255);not null"`
	Phone         string     `gorm:"type:varchar(50)"`
	Address       string     `gorm:"type:varchar(500)"`
	City          string     `gorm:"type:varchar(100)"`
	Country       string     `gorm:"type:varchar(100)"`
	ContactPerson string     `gorm:"type:varchar(200);column:contact_person"`
	IsActive      bool       `gorm:"not null;default:true;column:is_active"`
	SourceLeadID  *uuid.UUID `gorm:"type:uuid;column:source_lead_id;index"`
}

// DocumentType identifies which kind of commercial document a line item
// belongs to
type DocumentType string

const (
	DocumentTypeQuotation DocumentType = "quotation"
	DocumentTypeContract  DocumentType = "contract"
)

// QuotationStatus represents the lifecycle status of a quotation
type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "draft"
	QuotationStatusSent     QuotationStatus = "sent"
	QuotationStatusAccepted QuotationStatus = "accepted"
	QuotationStatusRejected QuotationStatus = "rejected"
	QuotationStatusModified QuotationStatus = "modified"
)

// IsValid checks if the QuotationStatus is a valid enum value
func (qs QuotationStatus) IsValid() bool {
	switch qs {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusAccepted,
		QuotationStatusRejected, QuotationStatusModified:
		return true
	}
	return false
}

// Quotation represents a priced proposal issued to a lead or a client.
// Exactly one of LeadID/ClientID is set; the invariant is enforced at
// creation and again before the document leaves draft.
//
// Subtotal, TaxAmount, DiscountAmount and TotalAmount are derived fields:
// every write to line items or rates recomputes them in the same
// transaction. They are never independently settable.
type Quotation struct {
	BaseModel
	QuotationNumber string          `gorm:"type:varchar(50);uniqueIndex;column:quotation_number"`
	LeadID          *uuid.UUID      `gorm:"type:uuid;index;column:lead_id"`
	Lead            *Lead           `gorm:"foreignKey:LeadID"`
	ClientID        *uuid.UUID      `gorm:"type:uuid;index;column:client_id"`
	Client          *Client         `gorm:"foreignKey:ClientID"`
	Currency        string          `gorm:"type:varchar(3);not null"`
	Status          QuotationStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0;column:tax_rate"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0;column:tax_amount"`
	DiscountRate    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0;column:discount_rate"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0;column:discount_amount"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0;column:total_amount"`
	ValidUntil      *time.Time      `gorm:"type:date;column:valid_until"`
	SentDate        *time.Time      `gorm:"column:sent_date"`
	AcceptedDate    *time.Time      `gorm:"column:accepted_date"`
	RejectedDate    *time.Time      `gorm:"column:rejected_date"`
	RejectionReason string          `gorm:"type:varchar(500);column:rejection_reason"`
	Notes           string          `gorm:"type:text"`
	ResponsibleID   string          `gorm:"type:varchar(100);column:responsible_id;index"`
	CreatedByID     string          `gorm:"type:varchar(100);column:created_by_id"`
	UpdatedByID     string          `gorm:"type:varchar(100);column:updated_by_id"`
	Items           []LineItem      `gorm:"polymorphic:Parent;polymorphicValue:quotation;constraint:OnDelete:CASCADE"`
}

// CounterpartySet reports whether exactly one of lead/client is referenced
func (q *Quotation) CounterpartySet() bool {
	return (q.LeadID != nil) != (q.ClientID != nil)
}

// ContractStatus represents the lifecycle status of a contract
type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "active"
	ContractStatusSuspended ContractStatus = "suspended"
	ContractStatusCompleted ContractStatus = "completed"
	ContractStatusCancelled ContractStatus = "cancelled"
)

// IsValid checks if the ContractStatus is a valid enum value
func (cs ContractStatus) IsValid() bool {
	switch cs {
	case ContractStatusActive, ContractStatusSuspended, ContractStatusCompleted, ContractStatusCancelled:
		return true
	}
	return false
}

// Contract represents an agreed engagement with a counterparty. Contracts
// share the line-item and totals machinery with quotations.
type Contract struct {
	BaseModel
	ContractNumber     string          `gorm:"type:varchar(50);uniqueIndex;column:contract_number"`
	LeadID             *uuid.UUID      `gorm:"type:uuid;index;column:lead_id"`
	Lead               *Lead           `gorm:"foreignKey:LeadID"`
	ClientID           *uuid.UUID      `gorm:"type:uuid;index;column:client_id"`
	Client             *Client         `gorm:"foreignKey:ClientID"`
	Currency           string          `gorm:"type:varchar(3);not null"`
	Status             ContractStatus  `gorm:"type:varchar(50);not null;default:'active';index"`
	Subtotal           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate            decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0;column:tax_rate"`
	TaxAmount          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0;column:tax_amount"`
	DiscountRate       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0;column:discount_rate"`
	DiscountAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0;column:discount_amount"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0;column:total_amount"`
	StartDate          time.Time       `gorm:"type:date;not null;column:start_date"`
	EndDate            *time.Time      `gorm:"type:date;column:end_date"`
	SuspendedDate      *time.Time      `gorm:"column:suspended_date"`
	CompletedDate      *time.Time      `gorm:"column:completed_date"`
	CancelledDate      *time.Time      `gorm:"column:cancelled_date"`
	CancellationReason string          `gorm:"type:varchar(500);column:cancellation_reason"`
	Notes              string          `gorm:"type:text"`
	ResponsibleID      string          `gorm:"type:varchar(100);column:responsible_id;index"`
	CreatedByID        string          `gorm:"type:varchar(100);column:created_by_id"`
	UpdatedByID        string          `gorm:"type:varchar(100);column:updated_by_id"`
	Items              []LineItem      `gorm:"polymorphic:Parent;polymorphicValue:contract;constraint:OnDelete:CASCADE"`
}

// CounterpartySet reports whether exactly one of lead/client is referenced
func (c *Contract) CounterpartySet() bool {
	return (c.LeadID != nil) != (c.ClientID != nil)
}

// LineItem represents one priced service entry on a quotation or contract.
// Items are exclusively owned by their parent document and deleted with it.
// Position preserves insertion order, which is also display order.
type LineItem struct {
	BaseModel
	ParentType  DocumentType    `gorm:"type:varchar(50);not null;index:idx_line_items_parent;column:parent_type"`
	ParentID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_line_items_parent;column:parent_id"`
	ServiceRef  string          `gorm:"type:varchar(100);not null;column:service_ref"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;column:unit_price"`
	Currency    string          `gorm:"type:varchar(3);not null"`
	Description string          `gorm:"type:varchar(500)"`
	Notes       string          `gorm:"type:text"`
	Position    int             `gorm:"not null;default:0"`
}

// Workflow represents a named set of ordered, dependency-linked tasks
type Workflow struct {
	BaseModel
	Name         string         `gorm:"type:varchar(200);not null;index"`
	Description  string         `gorm:"type:text"`
	WorkflowType string         `gorm:"type:varchar(100);column:workflow_type"`
	IsActive     bool           `gorm:"not null;default:true;column:is_active"`
	CreatedByID  string         `gorm:"type:varchar(100);column:created_by_id"`
	Tasks        []WorkflowTask `gorm:"foreignKey:WorkflowID;constraint:OnDelete:CASCADE"`
}

// WorkflowTask represents one step in a workflow.
//
// OrderSequence is unique per workflow (composite unique index); a duplicate
// insert fails rather than being silently renumbered. Dependencies holds ids
// of tasks in the same workflow and must keep the per-workflow graph acyclic.
type WorkflowTask struct {
	BaseModel
	WorkflowID             uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_workflow_tasks_sequence,priority:1;column:workflow_id"`
	Workflow               *Workflow      `gorm:"foreignKey:WorkflowID"`
	Name                   string         `gorm:"type:varchar(200);not null"`
	TaskType               string         `gorm:"type:varchar(100);not null;column:task_type"`
	EstimatedDurationHours float64        `gorm:"type:decimal(6,2);not null;column:estimated_duration_hours"`
	OrderSequence          int            `gorm:"not null;uniqueIndex:idx_workflow_tasks_sequence,priority:2;column:order_sequence"`
	Dependencies           pq.StringArray `gorm:"type:text[]"`
	IsRequired             bool           `gorm:"not null;default:true;column:is_required"`
	RequiredSkills         pq.StringArray `gorm:"type:text[];column:required_skills"`
	AssignedToID           string         `gorm:"type:varchar(100);column:assigned_to_id"`
	CreatedByID            string         `gorm:"type:varchar(100);column:created_by_id"`
}

// Employee represents a back-office user resolved by the identity layer
type Employee struct {
	ID          string         `gorm:"type:varchar(100);primaryKey" json:"id"`
	Email       string         `gorm:"type:varchar(255);not null;unique" json:"email"`
	DisplayName string         `gorm:"type:varchar(200);not null;column:display_name" json:"displayName"`
	Department  string         `gorm:"type:varchar(100)" json:"department,omitempty"`
	Roles       pq.StringArray `gorm:"type:text[];not null" json:"roles"`
	IsActive    bool           `gorm:"not null;default:true;column:is_active" json:"isActive"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// ActivityTargetType represents the type of entity an activity is attached to
type ActivityTargetType string

const (
	ActivityTargetQuotation ActivityTargetType = "Quotation"
	ActivityTargetContract  ActivityTargetType = "Contract"
	ActivityTargetWorkflow  ActivityTargetType = "Workflow"
	ActivityTargetLead      ActivityTargetType = "Lead"
	ActivityTargetClient    ActivityTargetType = "Client"
)

// Activity represents an immutable audit-trail entry. Lifecycle transitions,
// line-item mutations and conversions all log here; modification-request
// notes survive later send cycles through these rows.
type Activity struct {
	BaseModel
	TargetType ActivityTargetType `gorm:"type:varchar(50);not null;index;column:target_type"`
	TargetID   uuid.UUID          `gorm:"type:uuid;not null;index;column:target_id"`
	Title      string             `gorm:"type:varchar(200);not null"`
	Body       string             `gorm:"type:varchar(2000)"`
	OccurredAt time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP;index;column:occurred_at"`
	ActorID    string             `gorm:"type:varchar(100);column:actor_id"`
	ActorName  string             `gorm:"type:varchar(200);column:actor_name"`
}

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeQuotationAccepted NotificationType = "quotation_accepted"
	NotificationTypeQuotationRejected NotificationType = "quotation_rejected"
	NotificationTypeQuotationModified NotificationType = "quotation_modified"
	NotificationTypeExpiryReminder    NotificationType = "expiry_reminder"
	NotificationTypeContractCancelled NotificationType = "contract_cancelled"
)

// Notification represents a user notification
type Notification struct {
	BaseModel
	UserID     string     `gorm:"type:varchar(100);not null;index;column:user_id"`
	Type       string     `gorm:"type:varchar(50);not null"`
	Title      string     `gorm:"type:varchar(200);not null"`
	Message    string     `gorm:"type:varchar(500);not null"`
	Read       bool       `gorm:"column:read;not null;default:false;index"`
	ReadAt     *time.Time `gorm:"column:read_at"`
	EntityID   *uuid.UUID `gorm:"type:uuid;column:entity_id"`
	EntityType string     `gorm:"type:varchar(50);column:entity_type"`
}

// NumberSequence tracks the last used document number per year. The counter
// is SHARED between quotations and contracts so document numbers stay unique
// across both types within a year.
type NumberSequence struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Year         int       `gorm:"not null;uniqueIndex"`
	LastSequence int       `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}
