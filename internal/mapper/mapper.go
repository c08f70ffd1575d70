package mapper

import (
	"time"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/shopspring/decimal"
)

const timeFormat = "2006-01-02T15:04:05Z"
const dateFormat = "2006-01-02"

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timeFormat)
	return &s
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateFormat)
	return &s
}

// money renders a stored amount as a fixed two-decimal string
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// rate renders a percentage rate without trailing-zero noise
func rate(d decimal.Decimal) string {
	return d.String()
}

// ToLeadDTO converts Lead to LeadDTO
func ToLeadDTO(lead *domain.Lead) domain.LeadDTO {
	return domain.LeadDTO{
		ID:            lead.ID,
		Name:          lead.Name,
		CompanyName:   lead.CompanyName,
		Email:         lead.Email,
		Phone:         lead.Phone,
		Source:        lead.Source,
		Status:        lead.Status,
		Notes:         lead.Notes,
		AssignedToID:  lead.AssignedToID,
		ConvertedAt:   formatTimePtr(lead.ConvertedAt),
		ConvertedToID: lead.ConvertedToID,
		CreatedAt:     lead.CreatedAt.Format(timeFormat),
		UpdatedAt:     lead.UpdatedAt.Format(timeFormat),
	}
}

// ToClientDTO converts Client to ClientDTO
func ToClientDTO(client *domain.Client) domain.ClientDTO {
	return domain.ClientDTO{
		ID:            client.ID,
		Name:          client.Name,
		OrgNumber:     client.OrgNumber,
		Email:         client.Email,
		Phone:         client.Phone,
		Address:       client.Address,
		City:          client.City,
		Country:       client.Country,
		ContactPerson: client.ContactPerson,
		IsActive:      client.IsActive,
		SourceLeadID:  client.SourceLeadID,
		CreatedAt:     client.CreatedAt.Format(timeFormat),
		UpdatedAt:     client.UpdatedAt.Format(timeFormat),
	}
}

// ToLineItemDTO converts LineItem to LineItemDTO. The line total is derived
// from unit price and quantity at full precision and rounded for display.
func ToLineItemDTO(item *domain.LineItem) domain.LineItemDTO {
	return domain.LineItemDTO{
		ID:          item.ID,
		ServiceRef:  item.ServiceRef,
		Quantity:    item.Quantity,
		UnitPrice:   money(item.UnitPrice),
		Currency:    item.Currency,
		LineTotal:   money(item.LineTotal().Amount),
		Description: item.Description,
		Notes:       item.Notes,
		Position:    item.Position,
	}
}

// ToQuotationDTO converts Quotation to QuotationDTO
func ToQuotationDTO(quotation *domain.Quotation) domain.QuotationDTO {
	items := make([]domain.LineItemDTO, len(quotation.Items))
	for i, item := range quotation.Items {
		items[i] = ToLineItemDTO(&item)
	}

	counterpartyName := ""
	if quotation.Lead != nil {
		counterpartyName = quotation.Lead.Name
	}
	if quotation.Client != nil {
		counterpartyName = quotation.Client.Name
	}

	return domain.QuotationDTO{
		ID:               quotation.ID,
		QuotationNumber:  quotation.QuotationNumber,
		LeadID:           quotation.LeadID,
		ClientID:         quotation.ClientID,
		CounterpartyName: counterpartyName,
		Currency:         quotation.Currency,
		Status:           quotation.Status,
		Subtotal:         money(quotation.Subtotal),
		TaxRate:          rate(quotation.TaxRate),
		TaxAmount:        money(quotation.TaxAmount),
		DiscountRate:     rate(quotation.DiscountRate),
		DiscountAmount:   money(quotation.DiscountAmount),
		TotalAmount:      money(quotation.TotalAmount),
		ValidUntil:       formatDatePtr(quotation.ValidUntil),
		SentDate:         formatTimePtr(quotation.SentDate),
		AcceptedDate:     formatTimePtr(quotation.AcceptedDate),
		RejectedDate:     formatTimePtr(quotation.RejectedDate),
		RejectionReason:  quotation.RejectionReason,
		Notes:            quotation.Notes,
		ResponsibleID:    quotation.ResponsibleID,
		Items:            items,
		CreatedAt:        quotation.CreatedAt.Format(timeFormat),
		UpdatedAt:        quotation.UpdatedAt.Format(timeFormat),
	}
}

// ToContractDTO converts Contract to ContractDTO
func ToContractDTO(contract *domain.Contract) domain.ContractDTO {
	items := make([]domain.LineItemDTO, len(contract.Items))
	for i, item := range contract.Items {
		items[i] = ToLineItemDTO(&item)
	}

	counterpartyName := ""
	if contract.Lead != nil {
		counterpartyName = contract.Lead.Name
	}
	if contract.Client != nil {
		counterpartyName = contract.Client.Name
	}

	return domain.ContractDTO{
		ID:                 contract.ID,
		ContractNumber:     contract.ContractNumber,
		LeadID:             contract.LeadID,
		ClientID:           contract.ClientID,
		CounterpartyName:   counterpartyName,
		Currency:           contract.Currency,
		Status:             contract.Status,
		Subtotal:           money(contract.Subtotal),
		TaxRate:            rate(contract.TaxRate),
		TaxAmount:          money(contract.TaxAmount),
		DiscountRate:       rate(contract.DiscountRate),
		DiscountAmount:     money(contract.DiscountAmount),
		TotalAmount:        money(contract.TotalAmount),
		StartDate:          contract.StartDate.Format(dateFormat),
		EndDate:            formatDatePtr(contract.EndDate),
		SuspendedDate:      formatTimePtr(contract.SuspendedDate),
		CompletedDate:      formatTimePtr(contract.CompletedDate),
		CancelledDate:      formatTimePtr(contract.CancelledDate),
		CancellationReason: contract.CancellationReason,
		Notes:              contract.Notes,
		ResponsibleID:      contract.ResponsibleID,
		Items:              items,
		CreatedAt:          contract.CreatedAt.Format(timeFormat),
		UpdatedAt:          contract.UpdatedAt.Format(timeFormat),
	}
}

// ToWorkflowDTO converts Workflow to WorkflowDTO
func ToWorkflowDTO(workflow *domain.Workflow) domain.WorkflowDTO {
	tasks := make([]domain.WorkflowTaskDTO, len(workflow.Tasks))
	for i, task := range workflow.Tasks {
		tasks[i] = ToWorkflowTaskDTO(&task)
	}

	return domain.WorkflowDTO{
		ID:           workflow.ID,
		Name:         workflow.Name,
		Description:  workflow.Description,
		WorkflowType: workflow.WorkflowType,
		IsActive:     workflow.IsActive,
		Tasks:        tasks,
		CreatedAt:    workflow.CreatedAt.Format(timeFormat),
		UpdatedAt:    workflow.UpdatedAt.Format(timeFormat),
	}
}

// ToWorkflowTaskDTO converts WorkflowTask to WorkflowTaskDTO
func ToWorkflowTaskDTO(task *domain.WorkflowTask) domain.WorkflowTaskDTO {
	deps := []string(task.Dependencies)
	if deps == nil {
		deps = []string{}
	}
	skills := []string(task.RequiredSkills)
	if skills == nil {
		skills = []string{}
	}

	return domain.WorkflowTaskDTO{
		ID:                     task.ID,
		WorkflowID:             task.WorkflowID,
		Name:                   task.Name,
		TaskType:               task.TaskType,
		EstimatedDurationHours: task.EstimatedDurationHours,
		OrderSequence:          task.OrderSequence,
		Dependencies:           deps,
		IsRequired:             task.IsRequired,
		RequiredSkills:         skills,
		AssignedToID:           task.AssignedToID,
		CreatedAt:              task.CreatedAt.Format(timeFormat),
		UpdatedAt:              task.UpdatedAt.Format(timeFormat),
	}
}

// ToActivityDTO converts Activity to ActivityDTO
func ToActivityDTO(activity *domain.Activity) domain.ActivityDTO {
	return domain.ActivityDTO{
		ID:         activity.ID,
		TargetType: activity.TargetType,
		TargetID:   activity.TargetID,
		Title:      activity.Title,
		Body:       activity.Body,
		OccurredAt: activity.OccurredAt.Format(timeFormat),
		ActorID:    activity.ActorID,
		ActorName:  activity.ActorName,
	}
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(notification *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:         notification.ID,
		Type:       notification.Type,
		Title:      notification.Title,
		Message:    notification.Message,
		Read:       notification.Read,
		ReadAt:     formatTimePtr(notification.ReadAt),
		EntityID:   notification.EntityID,
		EntityType: notification.EntityType,
		CreatedAt:  notification.CreatedAt.Format(timeFormat),
	}
}
