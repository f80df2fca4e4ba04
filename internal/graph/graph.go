// Package graph provides the dependency-aware task graph that drives
// wave-based scheduling.
package graph

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nexus-swarm/nexus/pkg/models"
)

// TaskGraph holds tasks and their dependency edges for one swarm run.
// It owns every task added to it: callers mutate tasks only through the
// graph's transition methods. A graph is created empty per run and
// discarded when the run completes.
type TaskGraph struct {
	mu sync.RWMutex
	// tasks maps task ID to the task itself.
	tasks map[string]*models.Task
	// order preserves insertion order so Ready and Summary are stable
	// across calls.
	order []string
	// debugLog is an optional logging function.
	debugLog func(format string, args ...interface{})
}

// New creates a new empty task graph.
func New() *TaskGraph {
	return &TaskGraph{
		tasks:    make(map[string]*models.Task),
		debugLog: func(format string, args ...interface{}) {}, // no-op by default
	}
}

// SetDebugLog sets the debug logging function.
func (g *TaskGraph) SetDebugLog(fn func(format string, args ...interface{})) {
	if fn != nil {
		g.debugLog = fn
	}
}

// Add inserts a task into the graph. A task with an empty ID is
// assigned a fresh one. Returns an error if the ID already exists.
func (g *TaskGraph) Add(task *models.Task) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if task.ID == "" {
		task.ID = models.NewTaskID()
	}
	if _, exists := g.tasks[task.ID]; exists {
		return fmt.Errorf("task %s already in graph", task.ID)
	}
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	g.debugLog("[graph.Add] id=%s title=%q depends_on=%v", task.ID, task.Title, task.DependsOn)
	g.tasks[task.ID] = task
	g.order = append(g.order, task.ID)
	return nil
}

// Get returns the task for a given ID, or nil if not found.
func (g *TaskGraph) Get(id string) *models.Task {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.tasks[id]
}

// Ready returns every pending task whose dependencies have all
// completed, in insertion order. A task depending on an ID that is not
// in the graph is never ready.
func (g *TaskGraph) Ready() []*models.Task {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var ready []*models.Task
	for _, id := range g.order {
		task := g.tasks[id]
		if task.Status != models.TaskStatusPending {
			continue
		}

		depsMet := true
		for _, depID := range task.DependsOn {
			dep, exists := g.tasks[depID]
			if !exists || dep.Status != models.TaskStatusCompleted {
				g.debugLog("[graph.Ready] task %s blocked on dep %s", id, depID)
				depsMet = false
				break
			}
		}
		if depsMet {
			ready = append(ready, task)
		}
	}

	g.debugLog("[graph.Ready] %d of %d tasks ready", len(ready), len(g.order))
	return ready
}

// MarkInProgress transitions a task to in_progress. Unknown IDs are a
// no-op.
func (g *TaskGraph) MarkInProgress(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if task, ok := g.tasks[id]; ok {
		task.Status = models.TaskStatusInProgress
	}
}

// MarkCompleted transitions a task to completed, records its result,
// and returns the tasks that became ready as a consequence. Unknown
// IDs are a no-op and return nil.
func (g *TaskGraph) MarkCompleted(id string, result string) []*models.Task {
	g.mu.Lock()
	task, ok := g.tasks[id]
	if !ok {
		g.mu.Unlock()
		return nil
	}

	now := time.Now().UTC()
	task.Status = models.TaskStatusCompleted
	task.Result = result
	task.CompletedAt = &now
	g.debugLog("[graph.MarkCompleted] task %s completed", id)
	g.mu.Unlock()

	return g.Ready()
}

// MarkFailed transitions a task to failed with the given error
// message. Unknown IDs are a no-op.
func (g *TaskGraph) MarkFailed(id string, errMsg string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	task, ok := g.tasks[id]
	if !ok {
		return
	}
	now := time.Now().UTC()
	task.Status = models.TaskStatusFailed
	task.Error = errMsg
	task.CompletedAt = &now
	g.debugLog("[graph.MarkFailed] task %s failed: %s", id, errMsg)
}

// IsComplete returns true iff every task is in a terminal state.
func (g *TaskGraph) IsComplete() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, task := range g.tasks {
		if !task.Status.Terminal() {
			return false
		}
	}
	return true
}

// Pending returns all tasks still in the pending state, in insertion
// order. The orchestrator uses this to apply the deadlock policy when
// Ready is empty but the graph is not complete.
func (g *TaskGraph) Pending() []*models.Task {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var pending []*models.Task
	for _, id := range g.order {
		if g.tasks[id].Status == models.TaskStatusPending {
			pending = append(pending, g.tasks[id])
		}
	}
	return pending
}

// AllTasks returns every task in insertion order.
func (g *TaskGraph) AllTasks() []*models.Task {
	g.mu.RLock()
	defer g.mu.RUnlock()

	tasks := make([]*models.Task, 0, len(g.order))
	for _, id := range g.order {
		tasks = append(tasks, g.tasks[id])
	}
	return tasks
}

// Size returns the number of tasks in the graph.
func (g *TaskGraph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.tasks)
}

// Results returns task ID -> result for every completed task with a
// non-empty result.
func (g *TaskGraph) Results() map[string]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	results := make(map[string]string)
	for id, task := range g.tasks {
		if task.Status == models.TaskStatusCompleted && task.Result != "" {
			results[id] = task.Result
		}
	}
	return results
}

// Summary returns a human-readable snapshot of the graph.
func (g *TaskGraph) Summary() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	icons := map[models.TaskStatus]string{
		models.TaskStatusPending:    "[ ]",
		models.TaskStatusInProgress: "[~]",
		models.TaskStatusCompleted:  "[x]",
		models.TaskStatusFailed:     "[!]",
		models.TaskStatusCancelled:  "[-]",
	}

	var b strings.Builder
	for i, id := range g.order {
		task := g.tasks[id]
		icon, ok := icons[task.Status]
		if !ok {
			icon = "[?]"
		}
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  %s %s: %s", icon, shortID(task.ID), task.Title)
		if len(task.DependsOn) > 0 {
			fmt.Fprintf(&b, " (depends on: %s)", strings.Join(task.DependsOn, ", "))
		}
		if task.AssignedTo != "" {
			fmt.Fprintf(&b, " -> %s", task.AssignedTo)
		}
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
