package pool

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nexus-swarm/nexus/internal/agent"
	"github.com/nexus-swarm/nexus/pkg/models"
)

func newTestPool(max int) *WorkerPool {
	return New(max, agent.Options{})
}

func TestSpawnAssignsRolePrefixedID(t *testing.T) {
	p := newTestPool(2)

	w, err := p.Spawn(models.RoleResearcher)
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}
	if !strings.HasPrefix(w.ID, "researcher_") {
		t.Errorf("expected role-prefixed ID, got %q", w.ID)
	}
	if w.State() != models.StateIdle {
		t.Errorf("spawned worker should be idle, got %s", w.State())
	}
	if p.Size() != 1 {
		t.Errorf("expected pool size 1, got %d", p.Size())
	}
}

func TestSpawnRejectsUnknownRole(t *testing.T) {
	p := newTestPool(2)

	if _, err := p.Spawn(models.AgentRole("wizard")); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestAcquireReusesIdleWorker(t *testing.T) {
	p := newTestPool(2)

	first, err := p.Acquire(models.RoleExecutor)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if first.State() != models.StateWorking {
		t.Errorf("acquired worker should be working, got %s", first.State())
	}

	p.Release(first.ID)
	if first.State() != models.StateIdle {
		t.Errorf("released worker should be idle, got %s", first.State())
	}

	second, err := p.Acquire(models.RoleExecutor)
	if err != nil {
		t.Fatalf("second acquire failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected idle worker reuse, got %s and %s", first.ID, second.ID)
	}
	if p.Spawned() != 1 {
		t.Errorf("expected a single spawn, got %d", p.Spawned())
	}
}

func TestAcquireSpawnsWhenAllBusy(t *testing.T) {
	p := newTestPool(2)

	first, _ := p.Acquire(models.RoleExecutor)
	second, err := p.Acquire(models.RoleExecutor)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if second.ID == first.ID {
		t.Error("expected a fresh worker while the first is busy")
	}
	if p.Size() != 2 {
		t.Errorf("expected pool size 2, got %d", p.Size())
	}
}

func TestAcquireDoesNotReuseAcrossRoles(t *testing.T) {
	p := newTestPool(2)

	exec, _ := p.Acquire(models.RoleExecutor)
	p.Release(exec.ID)

	critic, err := p.Acquire(models.RoleCritic)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if critic.ID == exec.ID {
		t.Error("idle executor must not serve a critic acquisition")
	}
}

func TestReleaseUnknownIDIsNoop(t *testing.T) {
	p := newTestPool(2)
	p.Release("ghost_000000")
}

func TestSlotSemaphoreBoundsConcurrency(t *testing.T) {
	p := newTestPool(1)
	ctx := context.Background()

	if err := p.AcquireSlot(ctx); err != nil {
		t.Fatalf("first slot acquire failed: %v", err)
	}

	blockedCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	if err := p.AcquireSlot(blockedCtx); err == nil {
		t.Fatal("second slot acquire should block until release")
	}

	p.ReleaseSlot()
	if err := p.AcquireSlot(ctx); err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
	p.ReleaseSlot()
}

func TestCountByState(t *testing.T) {
	p := newTestPool(4)

	w1, _ := p.Acquire(models.RoleExecutor)
	p.Acquire(models.RoleResearcher)
	p.Release(w1.ID)

	counts := p.CountByState()
	if counts[models.StateIdle] != 1 || counts[models.StateWorking] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestStatusSummaryListsWorkers(t *testing.T) {
	p := newTestPool(3)

	p.Spawn(models.RoleExecutor)
	p.Spawn(models.RoleCritic)

	summary := p.StatusSummary()
	if !strings.Contains(summary, "Workers: 2") {
		t.Errorf("expected worker count in summary:\n%s", summary)
	}
	if !strings.Contains(summary, "executor") || !strings.Contains(summary, "critic") {
		t.Errorf("expected roles in summary:\n%s", summary)
	}
}
