package service

import (
	"context"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/agencydesk/commerce-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService creates and queries user notifications. Notification
// failures are logged and swallowed; a lifecycle transition never fails
// because its notification could not be written.
type NotificationService struct {
	repo   *repository.NotificationRepository
	logger *zap.Logger
}

func NewNotificationService(repo *repository.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger}
}

// Notify creates a notification for a user
func (s *NotificationService) Notify(ctx context.Context, userID string, notificationType domain.NotificationType, title, message string, entityID *uuid.UUID, entityType string) {
	if userID == "" {
		return
	}
	notification := &domain.Notification{
		UserID:     userID,
		Type:       string(notificationType),
		Title:      title,
		Message:    message,
		EntityID:   entityID,
		EntityType: entityType,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create notification",
			zap.String("userID", userID),
			zap.String("type", string(notificationType)),
			zap.Error(err))
	}
}

// NotifyOnce creates a notification unless one of the same type already
// exists for the user and entity. Used by scheduled jobs to stay idempotent.
func (s *NotificationService) NotifyOnce(ctx context.Context, userID string, notificationType domain.NotificationType, title, message string, entityID uuid.UUID, entityType string) error {
	if userID == "" {
		return nil
	}
	exists, err := s.repo.ExistsForEntity(ctx, userID, string(notificationType), entityID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.repo.Create(ctx, &domain.Notification{
		UserID:     userID,
		Type:       string(notificationType),
		Title:      title,
		Message:    message,
		EntityID:   &entityID,
		EntityType: entityType,
	})
}

// ListByUser returns a user's notifications, newest first
func (s *NotificationService) ListByUser(ctx context.Context, userID string, page, pageSize int, unreadOnly bool, notificationType string) ([]domain.Notification, int64, error) {
	return s.repo.ListByUser(ctx, userID, page, pageSize, unreadOnly, notificationType)
}

// MarkAsRead marks a single notification as read
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all of a user's notifications as read
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// CountUnread returns the number of unread notifications for a user
func (s *NotificationService) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
