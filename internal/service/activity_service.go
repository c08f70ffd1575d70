package service

import (
	"context"
	"time"

	"github.com/agencydesk/commerce-api/internal/auth"
	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/agencydesk/commerce-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ActivityService records and queries the audit trail. Logging failures are
// reported to the caller's logger but never fail the operation that
// triggered them, except for LogInTx which shares the caller's transaction.
type ActivityService struct {
	repo   *repository.ActivityRepository
	logger *zap.Logger
}

func NewActivityService(repo *repository.ActivityRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{repo: repo, logger: logger}
}

// Log records an activity against a target entity
func (s *ActivityService) Log(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, title, body string) {
	activity := s.build(ctx, targetType, targetID, title, body)
	if err := s.repo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity",
			zap.String("targetType", string(targetType)),
			zap.String("targetID", targetID.String()),
			zap.String("title", title),
			zap.Error(err))
	}
}

// LogInTx records an activity inside the caller's transaction so the audit
// entry commits and rolls back with the change it describes.
func (s *ActivityService) LogInTx(ctx context.Context, tx *gorm.DB, targetType domain.ActivityTargetType, targetID uuid.UUID, title, body string) error {
	return s.repo.CreateInTx(tx, s.build(ctx, targetType, targetID, title, body))
}

func (s *ActivityService) build(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, title, body string) *domain.Activity {
	activity := &domain.Activity{
		TargetType: targetType,
		TargetID:   targetID,
		Title:      title,
		Body:       body,
		OccurredAt: time.Now().UTC(),
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		activity.ActorID = userCtx.UserID
		activity.ActorName = userCtx.DisplayName
	}
	return activity
}

// ListByTarget returns the most recent activities for a target entity
func (s *ActivityService) ListByTarget(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, limit int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListByTarget(ctx, targetType, targetID, limit)
}

// List returns a paginated activity feed, optionally filtered by target
func (s *ActivityService) List(ctx context.Context, page, pageSize int, targetType *domain.ActivityTargetType, targetID *uuid.UUID) ([]domain.Activity, int64, error) {
	return s.repo.List(ctx, page, pageSize, targetType, targetID)
}
