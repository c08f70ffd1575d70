package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExpiryReminderJobName is the name of the quotation expiry reminder job
const ExpiryReminderJobName = "quotation_expiry_reminder"

// DefaultExpiryJobTimeout bounds a single run of the reminder job
const DefaultExpiryJobTimeout = 5 * time.Minute

// ExpiringQuotationLister lists sent quotations whose validity ends on or
// before the cutoff. This interface lets the job avoid importing the
// repository package directly.
type ExpiringQuotationLister interface {
	ListExpiring(ctx context.Context, cutoff time.Time) ([]domain.Quotation, error)
}

// ReminderNotifier delivers at-most-once notifications per entity.
type ReminderNotifier interface {
	NotifyOnce(ctx context.Context, userID string, notificationType domain.NotificationType, title, message string, entityID uuid.UUID, entityType string) error
}

// ExpiryReminderJob notifies the responsible employee of sent quotations
// that are about to expire. NotifyOnce keeps repeated runs from producing
// duplicate reminders for the same quotation.
type ExpiryReminderJob struct {
	quotations ExpiringQuotationLister
	notifier   ReminderNotifier
	logger     *zap.Logger
	daysAhead  int
	timeout    time.Duration
}

// NewExpiryReminderJob creates a new expiry reminder job. daysAhead controls
// how far before the valid-until date the reminder fires.
func NewExpiryReminderJob(quotations ExpiringQuotationLister, notifier ReminderNotifier, logger *zap.Logger, daysAhead int, timeout time.Duration) *ExpiryReminderJob {
	if daysAhead <= 0 {
		daysAhead = 3
	}
	if timeout <= 0 {
		timeout = DefaultExpiryJobTimeout
	}
	return &ExpiryReminderJob{
		quotations: quotations,
		notifier:   notifier,
		logger:     logger,
		daysAhead:  daysAhead,
		timeout:    timeout,
	}
}

// Run executes the expiry reminder job. Called by the scheduler according
// to the configured cron expression.
func (j *ExpiryReminderJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	cutoff := start.UTC().AddDate(0, 0, j.daysAhead)

	expiring, err := j.quotations.ListExpiring(ctx, cutoff)
	if err != nil {
		j.logger.Error("expiry reminder job failed to list quotations",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	notified := 0
	for i := range expiring {
		q := &expiring[i]
		if q.ResponsibleID == "" {
			continue
		}

		validUntil := ""
		if q.ValidUntil != nil {
			validUntil = q.ValidUntil.Format("2006-01-02")
		}

		err := j.notifier.NotifyOnce(ctx, q.ResponsibleID,
			domain.NotificationTypeExpiryReminder,
			"Quotation about to expire",
			fmt.Sprintf("Quotation %s is valid until %s", q.QuotationNumber, validUntil),
			q.ID, "quotation")
		if err != nil {
			j.logger.Warn("failed to deliver expiry reminder",
				zap.String("quotation_id", q.ID.String()),
				zap.Error(err))
			continue
		}
		notified++
	}

	j.logger.Info("expiry reminder job completed",
		zap.Int("expiring", len(expiring)),
		zap.Int("notified", notified),
		zap.Duration("duration", time.Since(start)))
}

// RegisterExpiryReminderJob registers the expiry reminder job with the
// scheduler using the given cron expression.
func RegisterExpiryReminderJob(scheduler *Scheduler, quotations ExpiringQuotationLister, notifier ReminderNotifier, logger *zap.Logger, cronExpr string, daysAhead int) error {
	job := NewExpiryReminderJob(quotations, notifier, logger, daysAhead, DefaultExpiryJobTimeout)
	return scheduler.AddJob(ExpiryReminderJobName, cronExpr, job.Run)
}
