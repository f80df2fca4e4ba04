package graph

import (
	"testing"

	"github.com/nexus-swarm/nexus/pkg/models"
)

func pendingTask(id string, deps ...string) *models.Task {
	return &models.Task{
		ID:        id,
		Title:     "Task " + id,
		Status:    models.TaskStatusPending,
		DependsOn: deps,
	}
}

func TestAddRejectsDuplicateID(t *testing.T) {
	g := New()
	if err := g.Add(pendingTask("t1")); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := g.Add(pendingTask("t1")); err == nil {
		t.Error("expected error adding duplicate task ID")
	}
}

func TestAddAssignsIDWhenEmpty(t *testing.T) {
	g := New()
	task := &models.Task{Title: "untitled"}
	if err := g.Add(task); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if task.ID == "" {
		t.Error("expected an auto-assigned task ID")
	}
	if task.Status != models.TaskStatusPending {
		t.Errorf("expected pending status, got %s", task.Status)
	}
}

func TestReadyOnlyReturnsSatisfiedTasks(t *testing.T) {
	g := New()
	g.Add(pendingTask("t1"))
	g.Add(pendingTask("t2", "t1"))

	ready := g.Ready()
	if len(ready) != 1 || ready[0].ID != "t1" {
		t.Fatalf("expected only t1 ready, got %v", readyIDs(ready))
	}

	g.MarkCompleted("t1", "done")
	ready = g.Ready()
	if len(ready) != 1 || ready[0].ID != "t2" {
		t.Fatalf("expected only t2 ready after t1 completes, got %v", readyIDs(ready))
	}
}

func TestReadyNeverReturnsTaskWithMissingDependency(t *testing.T) {
	g := New()
	g.Add(pendingTask("t1", "ghost"))

	if ready := g.Ready(); len(ready) != 0 {
		t.Errorf("task depending on a nonexistent ID must never be ready, got %v", readyIDs(ready))
	}
}

func TestIndependentChainsExposeOnlyHeads(t *testing.T) {
	g := New()
	g.Add(pendingTask("a1"))
	g.Add(pendingTask("a2", "a1"))
	g.Add(pendingTask("b1"))
	g.Add(pendingTask("b2", "b1"))

	ready := readyIDs(g.Ready())
	if len(ready) != 2 || ready[0] != "a1" || ready[1] != "b1" {
		t.Fatalf("expected initial ready set [a1 b1], got %v", ready)
	}

	g.MarkCompleted("a1", "out-a1")
	ready = readyIDs(g.Ready())
	if len(ready) != 2 || ready[0] != "a2" || ready[1] != "b1" {
		t.Fatalf("expected [a2 b1] after a1 completes, got %v", ready)
	}
	for _, id := range ready {
		if id == "b2" {
			t.Error("b2 must not be ready before b1 completes")
		}
	}
}

func TestMarkCompletedReturnsNewlyReady(t *testing.T) {
	g := New()
	g.Add(pendingTask("t1"))
	g.Add(pendingTask("t2", "t1"))
	g.Add(pendingTask("t3", "t1"))

	newly := g.MarkCompleted("t1", "out")
	ids := readyIDs(newly)
	if len(ids) != 2 || ids[0] != "t2" || ids[1] != "t3" {
		t.Errorf("expected [t2 t3] newly ready, got %v", ids)
	}
}

func TestMarkCompletedUnknownIDIsNoOp(t *testing.T) {
	g := New()
	g.Add(pendingTask("t1"))
	if newly := g.MarkCompleted("missing", "out"); newly != nil {
		t.Errorf("expected nil for unknown ID, got %v", readyIDs(newly))
	}
}

func TestIsComplete(t *testing.T) {
	g := New()
	if !g.IsComplete() {
		t.Error("empty graph should be complete")
	}

	g.Add(pendingTask("t1"))
	g.Add(pendingTask("t2"))
	if g.IsComplete() {
		t.Error("graph with pending tasks should not be complete")
	}

	g.MarkCompleted("t1", "out")
	if g.IsComplete() {
		t.Error("graph with one pending task should not be complete")
	}

	// Failing the rest also completes the graph.
	g.MarkFailed("t2", "boom")
	if !g.IsComplete() {
		t.Error("graph with all tasks terminal should be complete")
	}
}

func TestMarkFailedRecordsError(t *testing.T) {
	g := New()
	g.Add(pendingTask("t1"))
	g.MarkFailed("t1", "exploded")

	task := g.Get("t1")
	if task.Status != models.TaskStatusFailed {
		t.Errorf("expected failed status, got %s", task.Status)
	}
	if task.Error != "exploded" {
		t.Errorf("expected error message recorded, got %q", task.Error)
	}
	if task.CompletedAt == nil {
		t.Error("expected CompletedAt set on failure")
	}
}

func TestResultsOnlyIncludesCompleted(t *testing.T) {
	g := New()
	g.Add(pendingTask("t1"))
	g.Add(pendingTask("t2"))
	g.MarkCompleted("t1", "out-1")
	g.MarkFailed("t2", "boom")

	results := g.Results()
	if len(results) != 1 || results["t1"] != "out-1" {
		t.Errorf("expected results map {t1: out-1}, got %v", results)
	}
}

func TestReadyOrderIsStable(t *testing.T) {
	g := New()
	g.Add(pendingTask("c"))
	g.Add(pendingTask("a"))
	g.Add(pendingTask("b"))

	first := readyIDs(g.Ready())
	for i := 0; i < 5; i++ {
		again := readyIDs(g.Ready())
		if len(again) != len(first) {
			t.Fatalf("ready size changed between calls: %v vs %v", first, again)
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("ready order changed between calls: %v vs %v", first, again)
			}
		}
	}
}

func readyIDs(tasks []*models.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
