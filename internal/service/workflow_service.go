package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agencydesk/commerce-api/internal/auth"
	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/agencydesk/commerce-api/internal/mapper"
	"github.com/agencydesk/commerce-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type WorkflowService struct {
	workflowRepo    *repository.WorkflowRepository
	activityService *ActivityService
	logger          *zap.Logger
	db              *gorm.DB
}

func NewWorkflowService(
	workflowRepo *repository.WorkflowRepository,
	activityService *ActivityService,
	logger *zap.Logger,
	db *gorm.DB,
) *WorkflowService {
	return &WorkflowService{
		workflowRepo:    workflowRepo,
		activityService: activityService,
		logger:          logger,
		db:              db,
	}
}

// Create creates a new empty workflow
func (s *WorkflowService) Create(ctx context.Context, req *domain.CreateWorkflowRequest) (*domain.WorkflowDTO, error) {
	workflow := &domain.Workflow{
		Name:         req.Name,
		Description:  req.Description,
		WorkflowType: req.WorkflowType,
		IsActive:     true,
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		workflow.CreatedByID = userCtx.UserID
	}

	if err := s.workflowRepo.Create(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	s.activityService.Log(ctx, domain.ActivityTargetWorkflow, workflow.ID,
		"Workflow created", fmt.Sprintf("Workflow '%s' created", workflow.Name))

	dto := mapper.ToWorkflowDTO(workflow)
	return &dto, nil
}

// GetByID returns a workflow with its tasks in order-sequence order
func (s *WorkflowService) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkflowDTO, error) {
	workflow, err := s.workflowRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	dto := mapper.ToWorkflowDTO(workflow)
	return &dto, nil
}

// List returns a page of workflows
func (s *WorkflowService) List(ctx context.Context, page, pageSize int, workflowType *string) ([]domain.WorkflowDTO, int64, error) {
	workflows, total, err := s.workflowRepo.List(ctx, page, pageSize, workflowType)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workflows: %w", err)
	}

	dtos := make([]domain.WorkflowDTO, len(workflows))
	for i := range workflows {
		dtos[i] = mapper.ToWorkflowDTO(&workflows[i])
	}
	return dtos, total, nil
}

// Delete removes a workflow and its tasks
func (s *WorkflowService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.workflowRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkflowNotFound
		}
		return fmt.Errorf("failed to get workflow: %w", err)
	}
	return s.workflowRepo.Delete(ctx, id)
}

// AddTask appends a task to a workflow.
//
// The order sequence is assigned server-side as max+1 under the workflow
// row lock, so concurrent inserts serialize instead of colliding. The
// dependency list must reference existing tasks of the same workflow and
// must not close a cycle.
func (s *WorkflowService) AddTask(ctx context.Context, workflowID uuid.UUID, req *domain.CreateWorkflowTaskRequest) (*domain.WorkflowTaskDTO, error) {
	if req.EstimatedDurationHours <= 0 {
		return nil, ErrInvalidDuration
	}

	task := &domain.WorkflowTask{
		WorkflowID:             workflowID,
		Name:                   req.Name,
		TaskType:               req.TaskType,
		EstimatedDurationHours: req.EstimatedDurationHours,
		Dependencies:           req.Dependencies,
		IsRequired:             true,
		RequiredSkills:         req.RequiredSkills,
		AssignedToID:           req.AssignedToID,
	}
	if req.IsRequired != nil {
		task.IsRequired = *req.IsRequired
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		task.CreatedByID = userCtx.UserID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.workflowRepo.LockWorkflow(tx, workflowID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkflowNotFound
			}
			return fmt.Errorf("failed to lock workflow: %w", err)
		}

		var existing []domain.WorkflowTask
		if err := tx.Where("workflow_id = ?", workflowID).Order("order_sequence ASC").Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}

		// Validate the graph as it would look with the new task included.
		// The new task has no id yet, so give it a placeholder.
		task.ID = uuid.New()
		if err := validateTaskGraph(append(existing, *task)); err != nil {
			return err
		}

		seq, err := s.workflowRepo.NextOrderSequence(tx, workflowID)
		if err != nil {
			return fmt.Errorf("failed to determine order sequence: %w", err)
		}
		task.OrderSequence = seq

		if err := s.workflowRepo.CreateTask(tx, task); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateOrderSequence
			}
			return fmt.Errorf("failed to create task: %w", err)
		}

		return s.activityService.LogInTx(ctx, tx, domain.ActivityTargetWorkflow, workflowID,
			"Task added",
			fmt.Sprintf("Task '%s' added at sequence %d", task.Name, task.OrderSequence))
	})
	if err != nil {
		return nil, err
	}

	dto := mapper.ToWorkflowTaskDTO(task)
	return &dto, nil
}

// GetTask returns a single task of a workflow
func (s *WorkflowService) GetTask(ctx context.Context, workflowID, taskID uuid.UUID) (*domain.WorkflowTaskDTO, error) {
	task, err := s.workflowRepo.GetTaskByID(ctx, workflowID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	dto := mapper.ToWorkflowTaskDTO(task)
	return &dto, nil
}

// ListTasks returns a workflow's tasks in order-sequence order
func (s *WorkflowService) ListTasks(ctx context.Context, workflowID uuid.UUID) ([]domain.WorkflowTaskDTO, error) {
	if _, err := s.workflowRepo.GetByID(ctx, workflowID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	tasks, err := s.workflowRepo.ListTasks(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	dtos := make([]domain.WorkflowTaskDTO, len(tasks))
	for i := range tasks {
		dtos[i] = mapper.ToWorkflowTaskDTO(&tasks[i])
	}
	return dtos, nil
}

// RemoveTask deletes a task unless another task depends on it
func (s *WorkflowService) RemoveTask(ctx context.Context, workflowID, taskID uuid.UUID) error {
	tasks, err := s.workflowRepo.ListTasks(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	found := false
	for i := range tasks {
		if tasks[i].ID == taskID {
			found = true
			continue
		}
		for _, dep := range tasks[i].Dependencies {
			if dep == taskID.String() {
				return fmt.Errorf("task '%s': %w", tasks[i].Name, ErrTaskHasDependents)
			}
		}
	}
	if !found {
		return ErrTaskNotFound
	}

	if err := s.workflowRepo.DeleteTask(ctx, workflowID, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.activityService.Log(ctx, domain.ActivityTargetWorkflow, workflowID,
		"Task removed", fmt.Sprintf("Task %s removed", taskID))
	return nil
}

// ExecutionOrder returns the workflow's tasks in a dependency-respecting
// order, breaking ties by order sequence.
func (s *WorkflowService) ExecutionOrder(ctx context.Context, workflowID uuid.UUID) (*domain.ExecutionOrderResponse, error) {
	if _, err := s.workflowRepo.GetByID(ctx, workflowID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	tasks, err := s.workflowRepo.ListTasks(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	ordered, err := topologicalOrder(tasks)
	if err != nil {
		return nil, err
	}

	dtos := make([]domain.WorkflowTaskDTO, len(ordered))
	for i := range ordered {
		dtos[i] = mapper.ToWorkflowTaskDTO(&ordered[i])
	}
	return &domain.ExecutionOrderResponse{
		WorkflowID: workflowID,
		Tasks:      dtos,
	}, nil
}

// TotalEstimatedHours returns the summed duration of a workflow's tasks
func (s *WorkflowService) TotalEstimatedHours(ctx context.Context, workflowID uuid.UUID) (float64, error) {
	tasks, err := s.workflowRepo.ListTasks(ctx, workflowID)
	if err != nil {
		return 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return totalEstimatedHours(tasks), nil
}

// isUniqueViolation reports whether the error is a unique-index violation.
// Matches on SQLSTATE 23505 text so it works without importing the driver's
// error type.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}
