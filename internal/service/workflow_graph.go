package service

// Pure dependency-graph logic for workflow tasks. Tasks reference their
// dependencies by task id; edges point from a dependency to the tasks that
// wait on it. No graph library is used: the graphs are tiny (tens of tasks)
// and the two operations needed, cycle detection and a topological sort with
// a deterministic tie-break, fit in a page of code.

import (
	"sort"

	"github.com/agencydesk/commerce-api/internal/domain"
)

// buildAdjacency indexes tasks by id and returns dependency -> dependents
// edges. Returns ErrUnknownDependency when an edge references an id outside
// the task set.
func buildAdjacency(tasks []domain.WorkflowTask) (map[string][]string, error) {
	known := make(map[string]struct{}, len(tasks))
	for i := range tasks {
		known[tasks[i].ID.String()] = struct{}{}
	}

	adjacency := make(map[string][]string, len(tasks))
	for i := range tasks {
		taskID := tasks[i].ID.String()
		for _, dep := range tasks[i].Dependencies {
			if _, ok := known[dep]; !ok {
				return nil, ErrUnknownDependency
			}
			adjacency[dep] = append(adjacency[dep], taskID)
		}
	}
	return adjacency, nil
}

// validateTaskGraph checks that every dependency resolves within the task
// set and that the dependency edges stay acyclic.
func validateTaskGraph(tasks []domain.WorkflowTask) error {
	adjacency, err := buildAdjacency(tasks)
	if err != nil {
		return err
	}
	if hasCycle(tasks, adjacency) {
		return ErrCyclicDependency
	}
	return nil
}

// hasCycle runs a recursion-stack DFS over the dependency edges
func hasCycle(tasks []domain.WorkflowTask, adjacency map[string][]string) bool {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(tasks))

	var visit func(id string) bool
	visit = func(id string) bool {
		state[id] = inStack
		for _, next := range adjacency[id] {
			switch state[next] {
			case inStack:
				return true
			case unvisited:
				if visit(next) {
					return true
				}
			}
		}
		state[id] = done
		return false
	}

	for i := range tasks {
		id := tasks[i].ID.String()
		if state[id] == unvisited {
			if visit(id) {
				return true
			}
		}
	}
	return false
}

// topologicalOrder returns the tasks in a dependency-respecting execution
// order. Among tasks whose dependencies are all satisfied, the one with the
// lowest order sequence runs first, so the result is deterministic for a
// given task set.
func topologicalOrder(tasks []domain.WorkflowTask) ([]domain.WorkflowTask, error) {
	adjacency, err := buildAdjacency(tasks)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.WorkflowTask, len(tasks))
	indegree := make(map[string]int, len(tasks))
	for i := range tasks {
		id := tasks[i].ID.String()
		byID[id] = &tasks[i]
		indegree[id] = len(tasks[i].Dependencies)
	}

	ready := make([]string, 0, len(tasks))
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}

	ordered := make([]domain.WorkflowTask, 0, len(tasks))
	for len(ready) > 0 {
		// Pick the ready task with the lowest order sequence
		sort.Slice(ready, func(a, b int) bool {
			return byID[ready[a]].OrderSequence < byID[ready[b]].OrderSequence
		})
		id := ready[0]
		ready = ready[1:]

		ordered = append(ordered, *byID[id])
		for _, next := range adjacency[id] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(ordered) != len(tasks) {
		return nil, ErrCyclicDependency
	}
	return ordered, nil
}

// totalEstimatedHours sums the estimated duration across tasks
func totalEstimatedHours(tasks []domain.WorkflowTask) float64 {
	var total float64
	for i := range tasks {
		total += tasks[i].EstimatedDurationHours
	}
	return total
}
