// Package pool manages the lifecycle of swarm workers: spawning,
// acquisition for task execution, and release back to the idle set.
package pool

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/nexus-swarm/nexus/internal/agent"
	"github.com/nexus-swarm/nexus/pkg/models"
)

// DefaultMaxConcurrent bounds simultaneous task execution when the
// caller does not configure a limit.
const DefaultMaxConcurrent = 4

// WorkerPool spawns workers on demand and reuses idle ones. Acquire
// never blocks; the concurrency bound is enforced separately through
// the slot semaphore, which callers acquire before running a task.
type WorkerPool struct {
	mu      sync.RWMutex
	workers map[string]*agent.Worker
	order   []string

	opts  agent.Options
	slots *semaphore.Weighted
	max   int64

	spawned int

	debugLog func(format string, args ...any)
}

// New creates a pool. maxConcurrent bounds simultaneous execution
// slots; non-positive values use DefaultMaxConcurrent. opts is the
// template applied to every spawned worker.
func New(maxConcurrent int, opts agent.Options) *WorkerPool {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &WorkerPool{
		workers: make(map[string]*agent.Worker),
		opts:    opts,
		slots:   semaphore.NewWeighted(int64(maxConcurrent)),
		max:     int64(maxConcurrent),
	}
}

// SetDebugLog installs an optional debug logger.
func (p *WorkerPool) SetDebugLog(fn func(format string, args ...any)) {
	p.mu.Lock()
	p.debugLog = fn
	p.mu.Unlock()
}

func (p *WorkerPool) logf(format string, args ...any) {
	if p.debugLog != nil {
		p.debugLog(format, args...)
	}
}

// Spawn creates and registers a new idle worker for the role.
func (p *WorkerPool) Spawn(role models.AgentRole) (*agent.Worker, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("spawn worker: unknown role %q", role)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.spawnLocked(role)
}

func (p *WorkerPool) spawnLocked(role models.AgentRole) (*agent.Worker, error) {
	id := fmt.Sprintf("%s_%s", role, shortID())
	w := agent.New(id, role, p.opts)
	p.workers[id] = w
	p.order = append(p.order, id)
	p.spawned++
	p.logf("[pool] spawned %s", id)
	return w, nil
}

// Acquire returns a worker for the role, marked working. An idle
// worker of the role is reused; otherwise a new one is spawned.
// Acquire never blocks.
func (p *WorkerPool) Acquire(role models.AgentRole) (*agent.Worker, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("acquire worker: unknown role %q", role)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, id := range p.order {
		w := p.workers[id]
		if w.Role == role && w.State() == models.StateIdle {
			w.SetState(models.StateWorking)
			p.logf("[pool] reusing %s", id)
			return w, nil
		}
	}

	w, err := p.spawnLocked(role)
	if err != nil {
		return nil, err
	}
	w.SetState(models.StateWorking)
	return w, nil
}

// Release marks a worker idle so it can be reused. Unknown IDs are
// ignored.
func (p *WorkerPool) Release(id string) {
	p.mu.RLock()
	w, ok := p.workers[id]
	p.mu.RUnlock()
	if ok {
		w.SetState(models.StateIdle)
	}
}

// Get returns a registered worker by ID.
func (p *WorkerPool) Get(id string) (*agent.Worker, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	w, ok := p.workers[id]
	return w, ok
}

// AcquireSlot blocks until an execution slot is free or the context
// is cancelled. Every AcquireSlot must be paired with a ReleaseSlot.
func (p *WorkerPool) AcquireSlot(ctx context.Context) error {
	return p.slots.Acquire(ctx, 1)
}

// ReleaseSlot frees an execution slot.
func (p *WorkerPool) ReleaseSlot() {
	p.slots.Release(1)
}

// MaxConcurrent returns the configured execution slot limit.
func (p *WorkerPool) MaxConcurrent() int {
	return int(p.max)
}

// AllWorkers returns all registered workers in spawn order.
func (p *WorkerPool) AllWorkers() []*agent.Worker {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*agent.Worker, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.workers[id])
	}
	return out
}

// Size returns the number of registered workers.
func (p *WorkerPool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.workers)
}

// Spawned returns how many workers the pool has created in total.
func (p *WorkerPool) Spawned() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.spawned
}

// CountByState tallies workers by their current state.
func (p *WorkerPool) CountByState() map[models.AgentState]int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	counts := make(map[models.AgentState]int)
	for _, w := range p.workers {
		counts[w.State()]++
	}
	return counts
}

// StatusSummary returns a human-readable roster of the pool.
func (p *WorkerPool) StatusSummary() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Workers: %d (max concurrent %d)\n", len(p.workers), p.max)

	byRole := make(map[models.AgentRole][]string)
	for _, id := range p.order {
		w := p.workers[id]
		byRole[w.Role] = append(byRole[w.Role], fmt.Sprintf("%s (%s)", w.ID, w.State()))
	}

	roles := make([]string, 0, len(byRole))
	for role := range byRole {
		roles = append(roles, string(role))
	}
	sort.Strings(roles)

	for _, role := range roles {
		fmt.Fprintf(&b, "  %s: %s\n", role, strings.Join(byRole[models.AgentRole(role)], ", "))
	}
	return b.String()
}

func shortID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
}
