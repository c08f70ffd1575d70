package repository

import (
	"context"

	"github.com/agencydesk/commerce-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	var employee domain.Employee
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	var employee domain.Employee
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// Upsert inserts the employee or refreshes its profile fields on conflict.
// Called on first authenticated request per token to keep the local
// directory in sync with the identity provider.
func (r *EmployeeRepository) Upsert(ctx context.Context, employee *domain.Employee) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "department", "roles", "is_active", "updated_at"}),
		}).
		Create(employee).Error
}

func (r *EmployeeRepository) List(ctx context.Context, activeOnly bool) ([]domain.Employee, error) {
	var employees []domain.Employee
	query := r.db.WithContext(ctx).Model(&domain.Employee{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("display_name ASC").Find(&employees).Error
	return employees, err
}
