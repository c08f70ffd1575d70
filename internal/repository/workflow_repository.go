package repository

import (
	"context"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WorkflowRepository struct {
	db *gorm.DB
}

func NewWorkflowRepository(db *gorm.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

func (r *WorkflowRepository) Create(ctx context.Context, workflow *domain.Workflow) error {
	return r.db.WithContext(ctx).Create(workflow).Error
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workflow, error) {
	var workflow domain.Workflow
	err := r.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_sequence ASC")
		}).
		Where("id = ?", id).
		First(&workflow).Error
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *WorkflowRepository) Update(ctx context.Context, workflow *domain.Workflow) error {
	return r.db.WithContext(ctx).Save(workflow).Error
}

func (r *WorkflowRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Workflow{}, "id = ?", id).Error
}

func (r *WorkflowRepository) List(ctx context.Context, page, pageSize int, workflowType *string) ([]domain.Workflow, int64, error) {
	var workflows []domain.Workflow
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Workflow{})

	if workflowType != nil {
		query = query.Where("workflow_type = ?", *workflowType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&workflows).Error

	return workflows, total, err
}

// LockWorkflow locks the workflow row for the duration of the surrounding
// transaction. Task creation locks the parent first so that concurrent
// inserts into the same workflow serialize, which keeps the assigned order
// sequences gap-free.
func (r *WorkflowRepository) LockWorkflow(tx *gorm.DB, id uuid.UUID) (*domain.Workflow, error) {
	var workflow domain.Workflow
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&workflow).Error
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

// NextOrderSequence returns max(order_sequence)+1 for the workflow. Caller
// must hold the workflow row lock.
func (r *WorkflowRepository) NextOrderSequence(tx *gorm.DB, workflowID uuid.UUID) (int, error) {
	var maxSeq *int
	err := tx.Model(&domain.WorkflowTask{}).
		Where("workflow_id = ?", workflowID).
		Select("MAX(order_sequence)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	if maxSeq == nil {
		return 1, nil
	}
	return *maxSeq + 1, nil
}

func (r *WorkflowRepository) CreateTask(tx *gorm.DB, task *domain.WorkflowTask) error {
	return tx.Create(task).Error
}

func (r *WorkflowRepository) GetTaskByID(ctx context.Context, workflowID, taskID uuid.UUID) (*domain.WorkflowTask, error) {
	var task domain.WorkflowTask
	err := r.db.WithContext(ctx).
		Where("id = ? AND workflow_id = ?", taskID, workflowID).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns the workflow's tasks in order-sequence order.
func (r *WorkflowRepository) ListTasks(ctx context.Context, workflowID uuid.UUID) ([]domain.WorkflowTask, error) {
	var tasks []domain.WorkflowTask
	err := r.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Order("order_sequence ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *WorkflowRepository) DeleteTask(ctx context.Context, workflowID, taskID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND workflow_id = ?", taskID, workflowID).
		Delete(&domain.WorkflowTask{}).Error
}
