package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/agencydesk/commerce-api/internal/repository"
	"github.com/agencydesk/commerce-api/internal/service"
	"github.com/agencydesk/commerce-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newWorkflowService(t *testing.T, db *gorm.DB) *service.WorkflowService {
	log := zap.NewNop()
	return service.NewWorkflowService(
		repository.NewWorkflowRepository(db),
		service.NewActivityService(repository.NewActivityRepository(db), log),
		log,
		db,
	)
}

func addTask(t *testing.T, svc *service.WorkflowService, workflowID uuid.UUID, name string, hours float64, deps ...uuid.UUID) *domain.WorkflowTaskDTO {
	t.Helper()

	depStrings := make([]string, len(deps))
	for i, d := range deps {
		depStrings[i] = d.String()
	}
	task, err := svc.AddTask(context.Background(), workflowID, &domain.CreateWorkflowTaskRequest{
		Name:                   name,
		TaskType:               "generic",
		EstimatedDurationHours: hours,
		Dependencies:           depStrings,
	})
	require.NoError(t, err)
	return task
}

func TestWorkflowService_Tasks(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newWorkflowService(t, db)
	ctx := context.Background()

	wf, err := svc.Create(ctx, &domain.CreateWorkflowRequest{Name: "Campaign Delivery"})
	require.NoError(t, err)

	t.Run("order sequence is assigned server-side", func(t *testing.T) {
		first := addTask(t, svc, wf.ID, "brief", 4)
		second := addTask(t, svc, wf.ID, "design", 8, first.ID)

		assert.Less(t, first.OrderSequence, second.OrderSequence)

		tasks, err := svc.ListTasks(ctx, wf.ID)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "brief", tasks[0].Name)
		assert.Equal(t, "design", tasks[1].Name)
	})

	t.Run("zero duration is rejected", func(t *testing.T) {
		_, err := svc.AddTask(ctx, wf.ID, &domain.CreateWorkflowTaskRequest{
			Name: "noop", TaskType: "generic", EstimatedDurationHours: 0,
		})
		assert.ErrorIs(t, err, service.ErrInvalidDuration)
	})

	t.Run("unknown dependency is rejected", func(t *testing.T) {
		_, err := svc.AddTask(ctx, wf.ID, &domain.CreateWorkflowTaskRequest{
			Name: "floating", TaskType: "generic", EstimatedDurationHours: 2,
			Dependencies: []string{uuid.NewString()},
		})
		assert.ErrorIs(t, err, service.ErrUnknownDependency)
	})

	t.Run("task with dependents cannot be removed", func(t *testing.T) {
		tasks, err := svc.ListTasks(ctx, wf.ID)
		require.NoError(t, err)
		brief := tasks[0]

		err = svc.RemoveTask(ctx, wf.ID, brief.ID)
		assert.ErrorIs(t, err, service.ErrTaskHasDependents)

		// Removing the dependent first unblocks the dependency
		design := tasks[1]
		require.NoError(t, svc.RemoveTask(ctx, wf.ID, design.ID))
		require.NoError(t, svc.RemoveTask(ctx, wf.ID, brief.ID))
	})

	t.Run("unknown task removal", func(t *testing.T) {
		err := svc.RemoveTask(ctx, wf.ID, uuid.New())
		assert.ErrorIs(t, err, service.ErrTaskNotFound)
	})
}

func TestWorkflowService_SequenceAssignment(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newWorkflowService(t, db)
	ctx := context.Background()

	t.Run("sequences count up from one", func(t *testing.T) {
		wf, err := svc.Create(ctx, &domain.CreateWorkflowRequest{Name: "Sequential Build"})
		require.NoError(t, err)

		for i := 1; i <= 3; i++ {
			task := addTask(t, svc, wf.ID, fmt.Sprintf("step-%d", i), 1)
			assert.Equal(t, i, task.OrderSequence)
		}

		fourth := addTask(t, svc, wf.ID, "step-4", 1)
		assert.Equal(t, 4, fourth.OrderSequence)
	})

	t.Run("concurrent creators get distinct sequences", func(t *testing.T) {
		wf, err := svc.Create(ctx, &domain.CreateWorkflowRequest{Name: "Contended Build"})
		require.NoError(t, err)

		const creators = 4
		sequences := make(chan int, creators)
		errs := make(chan error, creators)
		var wg sync.WaitGroup
		for i := 0; i < creators; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				task, err := svc.AddTask(ctx, wf.ID, &domain.CreateWorkflowTaskRequest{
					Name:                   fmt.Sprintf("parallel-%d", n),
					TaskType:               "generic",
					EstimatedDurationHours: 1,
				})
				if err != nil {
					errs <- err
					return
				}
				sequences <- task.OrderSequence
			}(i)
		}
		wg.Wait()
		close(sequences)
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		seen := make(map[int]bool, creators)
		for seq := range sequences {
			assert.False(t, seen[seq], "sequence %d assigned twice", seq)
			seen[seq] = true
		}
		assert.Len(t, seen, creators)
	})
}

func TestWorkflowService_ExecutionOrderAndEstimate(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newWorkflowService(t, db)
	ctx := context.Background()

	wf, err := svc.Create(ctx, &domain.CreateWorkflowRequest{Name: "Site Build"})
	require.NoError(t, err)

	brief := addTask(t, svc, wf.ID, "brief", 4)
	copywriting := addTask(t, svc, wf.ID, "copy", 6, brief.ID)
	visuals := addTask(t, svc, wf.ID, "visuals", 10, brief.ID)
	assemble := addTask(t, svc, wf.ID, "assemble", 12, copywriting.ID, visuals.ID)

	order, err := svc.ExecutionOrder(ctx, wf.ID)
	require.NoError(t, err)
	require.Len(t, order.Tasks, 4)
	assert.Equal(t, "brief", order.Tasks[0].Name)
	// copy was added before visuals so it holds the lower sequence
	assert.Equal(t, "copy", order.Tasks[1].Name)
	assert.Equal(t, "visuals", order.Tasks[2].Name)
	assert.Equal(t, "assemble", order.Tasks[3].Name)
	_ = assemble

	hours, err := svc.TotalEstimatedHours(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, 32.0, hours)

	t.Run("unknown workflow", func(t *testing.T) {
		_, err := svc.ExecutionOrder(ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrWorkflowNotFound)
	})

	t.Run("delete cascades to tasks", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, wf.ID))
		_, err := svc.GetByID(ctx, wf.ID)
		assert.ErrorIs(t, err, service.ErrWorkflowNotFound)
	})
}
