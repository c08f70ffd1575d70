package service

import (
	"testing"

	"github.com/agencydesk/commerce-api/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphTask(name string, sequence int, deps ...uuid.UUID) domain.WorkflowTask {
	depStrings := make(pq.StringArray, len(deps))
	for i, d := range deps {
		depStrings[i] = d.String()
	}
	task := domain.WorkflowTask{
		Name:          name,
		OrderSequence: sequence,
		Dependencies:  depStrings,
	}
	task.ID = uuid.New()
	return task
}

func TestValidateTaskGraph(t *testing.T) {
	t.Run("empty graph is valid", func(t *testing.T) {
		assert.NoError(t, validateTaskGraph(nil))
	})

	t.Run("linear chain is valid", func(t *testing.T) {
		a := graphTask("design", 1)
		b := graphTask("build", 2, a.ID)
		c := graphTask("review", 3, b.ID)
		assert.NoError(t, validateTaskGraph([]domain.WorkflowTask{a, b, c}))
	})

	t.Run("diamond is valid", func(t *testing.T) {
		a := graphTask("brief", 1)
		b := graphTask("copy", 2, a.ID)
		c := graphTask("visuals", 3, a.ID)
		d := graphTask("assemble", 4, b.ID, c.ID)
		assert.NoError(t, validateTaskGraph([]domain.WorkflowTask{a, b, c, d}))
	})

	t.Run("unknown dependency is rejected", func(t *testing.T) {
		a := graphTask("design", 1, uuid.New())
		err := validateTaskGraph([]domain.WorkflowTask{a})
		assert.ErrorIs(t, err, ErrUnknownDependency)
	})

	t.Run("two-task cycle is rejected", func(t *testing.T) {
		a := graphTask("first", 1)
		b := graphTask("second", 2, a.ID)
		a.Dependencies = pq.StringArray{b.ID.String()}
		err := validateTaskGraph([]domain.WorkflowTask{a, b})
		assert.ErrorIs(t, err, ErrCyclicDependency)
	})

	t.Run("self-dependency is rejected", func(t *testing.T) {
		a := graphTask("solo", 1)
		a.Dependencies = pq.StringArray{a.ID.String()}
		err := validateTaskGraph([]domain.WorkflowTask{a})
		assert.ErrorIs(t, err, ErrCyclicDependency)
	})

	t.Run("longer cycle behind a valid prefix is rejected", func(t *testing.T) {
		a := graphTask("intake", 1)
		b := graphTask("plan", 2, a.ID)
		c := graphTask("execute", 3, b.ID)
		d := graphTask("verify", 4, c.ID)
		b.Dependencies = append(b.Dependencies, d.ID.String())
		err := validateTaskGraph([]domain.WorkflowTask{a, b, c, d})
		assert.ErrorIs(t, err, ErrCyclicDependency)
	})
}

func TestTopologicalOrder(t *testing.T) {
	t.Run("dependencies come before dependents", func(t *testing.T) {
		a := graphTask("design", 1)
		b := graphTask("build", 2, a.ID)
		c := graphTask("review", 3, b.ID)

		ordered, err := topologicalOrder([]domain.WorkflowTask{c, b, a})
		require.NoError(t, err)
		require.Len(t, ordered, 3)
		assert.Equal(t, "design", ordered[0].Name)
		assert.Equal(t, "build", ordered[1].Name)
		assert.Equal(t, "review", ordered[2].Name)
	})

	t.Run("ties break on order sequence", func(t *testing.T) {
		// Three independent tasks: ordering must follow the sequence,
		// not the slice order or map iteration.
		a := graphTask("third", 30)
		b := graphTask("first", 10)
		c := graphTask("second", 20)

		ordered, err := topologicalOrder([]domain.WorkflowTask{a, b, c})
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second", "third"},
			[]string{ordered[0].Name, ordered[1].Name, ordered[2].Name})
	})

	t.Run("mixed graph orders deterministically", func(t *testing.T) {
		a := graphTask("brief", 1)
		b := graphTask("visuals", 3, a.ID)
		c := graphTask("copy", 2, a.ID)
		d := graphTask("assemble", 4, b.ID, c.ID)

		ordered, err := topologicalOrder([]domain.WorkflowTask{d, b, c, a})
		require.NoError(t, err)
		// copy (sequence 2) becomes ready together with visuals (3) and
		// must run first
		assert.Equal(t, []string{"brief", "copy", "visuals", "assemble"},
			[]string{ordered[0].Name, ordered[1].Name, ordered[2].Name, ordered[3].Name})
	})

	t.Run("cycle surfaces as error", func(t *testing.T) {
		a := graphTask("first", 1)
		b := graphTask("second", 2, a.ID)
		a.Dependencies = pq.StringArray{b.ID.String()}

		_, err := topologicalOrder([]domain.WorkflowTask{a, b})
		assert.ErrorIs(t, err, ErrCyclicDependency)
	})

	t.Run("unknown dependency surfaces as error", func(t *testing.T) {
		a := graphTask("orphan", 1, uuid.New())
		_, err := topologicalOrder([]domain.WorkflowTask{a})
		assert.ErrorIs(t, err, ErrUnknownDependency)
	})
}

func TestTotalEstimatedHours(t *testing.T) {
	a := graphTask("design", 1)
	a.EstimatedDurationHours = 8
	b := graphTask("build", 2, a.ID)
	b.EstimatedDurationHours = 24.5

	assert.Equal(t, 32.5, totalEstimatedHours([]domain.WorkflowTask{a, b}))
	assert.Equal(t, float64(0), totalEstimatedHours(nil))
}
