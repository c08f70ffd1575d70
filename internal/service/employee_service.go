package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/agencydesk/commerce-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EmployeeService exposes the employee directory. Profiles are synced from
// the identity layer on authenticated requests; this service only reads.
type EmployeeService struct {
	employeeRepo *repository.EmployeeRepository
	logger       *zap.Logger
}

func NewEmployeeService(employeeRepo *repository.EmployeeRepository, logger *zap.Logger) *EmployeeService {
	return &EmployeeService{employeeRepo: employeeRepo, logger: logger}
}

// GetByID returns a single employee profile
func (s *EmployeeService) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	employee, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return employee, nil
}

// List returns the employee directory
func (s *EmployeeService) List(ctx context.Context, activeOnly bool) ([]domain.Employee, error) {
	return s.employeeRepo.List(ctx, activeOnly)
}

// SyncProfile upserts an employee row from the authenticated user context
func (s *EmployeeService) SyncProfile(ctx context.Context, employee *domain.Employee) error {
	if err := s.employeeRepo.Upsert(ctx, employee); err != nil {
		s.logger.Warn("failed to sync employee profile",
			zap.String("employeeID", employee.ID),
			zap.Error(err))
		return err
	}
	return nil
}
