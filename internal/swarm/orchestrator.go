// Package swarm contains the orchestrator that drives a goal through
// evaluation, decomposition, wave-based parallel execution, optional
// review, and final synthesis.
package swarm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/nexus-swarm/nexus/internal/agent"
	"github.com/nexus-swarm/nexus/internal/consensus"
	"github.com/nexus-swarm/nexus/internal/eventbus"
	"github.com/nexus-swarm/nexus/internal/graph"
	"github.com/nexus-swarm/nexus/internal/llm"
	"github.com/nexus-swarm/nexus/internal/memory"
	"github.com/nexus-swarm/nexus/internal/pool"
	"github.com/nexus-swarm/nexus/internal/router"
	"github.com/nexus-swarm/nexus/pkg/models"
)

// updateBuffer sizes the per-run update channel.
const updateBuffer = 16

// Config configures an orchestrator. LLM is required; everything else
// has working defaults.
type Config struct {
	// LLM is the completion backend shared by all workers.
	LLM llm.Completer
	// Memory is the optional episodic memory collaborator.
	Memory *memory.Manager
	// Bus is the optional observability event bus.
	Bus *eventbus.Bus
	// MaxConcurrent bounds simultaneous task executions. Non-positive
	// uses the pool default.
	MaxConcurrent int
	// DisableReview skips the critic review step.
	DisableReview bool
	// ConsensusStrategy selects vote resolution. Empty uses majority.
	ConsensusStrategy consensus.Strategy
	// PromptOverrides replaces role system prompts, typically loaded
	// from prompts.yaml.
	PromptOverrides map[models.AgentRole]string
	// MailboxSize overrides the per-worker inbox capacity.
	MailboxSize int
}

// Orchestrator owns one swarm: its pool, router, consensus engine,
// and the coordinator worker held for the lifetime of the run.
type Orchestrator struct {
	llm    llm.Completer
	memory *memory.Manager
	bus    *eventbus.Bus

	pool      *pool.WorkerPool
	router    *router.MessageRouter
	consensus *consensus.Engine

	coordinator *agent.Worker

	review bool
}

// New creates an orchestrator and spawns its coordinator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.LLM == nil {
		return nil, fmt.Errorf("swarm: completion backend is required")
	}

	p := pool.New(cfg.MaxConcurrent, agent.Options{
		LLM:             cfg.LLM,
		Memory:          cfg.Memory,
		MailboxSize:     cfg.MailboxSize,
		PromptOverrides: cfg.PromptOverrides,
	})
	r := router.New(cfg.Bus)

	coordinator, err := p.Spawn(models.RoleCoordinator)
	if err != nil {
		return nil, fmt.Errorf("swarm: spawn coordinator: %w", err)
	}
	r.Register(coordinator.ID, coordinator)

	return &Orchestrator{
		llm:         cfg.LLM,
		memory:      cfg.Memory,
		bus:         cfg.Bus,
		pool:        p,
		router:      r,
		consensus:   consensus.NewEngine(cfg.ConsensusStrategy),
		coordinator: coordinator,
		review:      !cfg.DisableReview,
	}, nil
}

// Pool exposes the worker pool for introspection.
func (o *Orchestrator) Pool() *pool.WorkerPool { return o.pool }

// Router exposes the message router for introspection.
func (o *Orchestrator) Router() *router.MessageRouter { return o.router }

// Consensus exposes the consensus engine.
func (o *Orchestrator) Consensus() *consensus.Engine { return o.consensus }

// ExecuteGoal runs a goal to completion, streaming progress updates.
// The returned channel always carries exactly one final update and is
// then closed.
func (o *Orchestrator) ExecuteGoal(ctx context.Context, goal, contextText string) <-chan models.SwarmUpdate {
	updates := make(chan models.SwarmUpdate, updateBuffer)
	go func() {
		defer close(updates)
		o.run(ctx, goal, contextText, updates)
	}()
	return updates
}

func (o *Orchestrator) run(ctx context.Context, goal, contextText string, updates chan<- models.SwarmUpdate) {
	emit := func(u models.SwarmUpdate) {
		updates <- u
	}

	emit(models.SwarmUpdate{Type: models.UpdateStatus, Content: "Evaluating goal complexity..."})

	decision, err := o.coordinator.EvaluateGoal(ctx, goal)
	if err != nil {
		emit(models.SwarmUpdate{
			Type:    models.UpdateError,
			Content: fmt.Sprintf("Goal evaluation failed: %v", err),
			Final:   true,
		})
		return
	}
	emit(models.SwarmUpdate{
		Type:    models.UpdateStatus,
		Content: fmt.Sprintf("Strategy: %s. %s", decision.Strategy, decision.Reasoning),
	})

	if decision.Strategy == "direct" {
		o.runDirect(ctx, goal, contextText, emit)
		return
	}

	results := o.runWaves(ctx, goal, contextText, emit)

	if o.review && len(results) > 0 {
		o.runReview(ctx, goal, results, emit)
	}

	emit(models.SwarmUpdate{Type: models.UpdateStatus, Content: "Synthesizing final answer..."})
	final, err := o.coordinator.SynthesizeResults(ctx, goal, results)
	if err != nil {
		emit(models.SwarmUpdate{
			Type:    models.UpdateError,
			Content: fmt.Sprintf("Synthesis failed: %v", err),
			Final:   true,
		})
		return
	}
	emit(models.SwarmUpdate{Type: models.UpdateResult, Content: final, Final: true})
}

// runDirect answers a simple goal with one completion call instead of
// the coordinator's JSON evaluation prompt.
func (o *Orchestrator) runDirect(ctx context.Context, goal, contextText string, emit func(models.SwarmUpdate)) {
	emit(models.SwarmUpdate{Type: models.UpdateStatus, Content: "Handling directly..."})

	messages := []llm.Message{
		{Role: "system", Content: agent.DirectSystemPrompt},
	}
	if contextText != "" {
		messages = append(messages, llm.Message{Role: "system", Content: "Context:\n" + contextText})
	}
	messages = append(messages, llm.Message{Role: "user", Content: goal})

	resp, err := o.llm.Complete(ctx, llm.Request{Messages: messages}, llm.ComplexityMedium)
	if err != nil {
		emit(models.SwarmUpdate{
			Type:    models.UpdateError,
			Content: fmt.Sprintf("Direct completion failed: %v", err),
			Final:   true,
		})
		return
	}
	emit(models.SwarmUpdate{Type: models.UpdateResult, Content: resp.Content, Final: true})
}

// runWaves decomposes the goal and executes the resulting graph in
// dependency waves, returning the completed task results.
func (o *Orchestrator) runWaves(ctx context.Context, goal, contextText string, emit func(models.SwarmUpdate)) map[string]string {
	emit(models.SwarmUpdate{Type: models.UpdateStatus, Content: "Decomposing goal into tasks..."})

	planner, err := o.pool.Acquire(models.RolePlanner)
	if err != nil {
		emit(models.SwarmUpdate{Type: models.UpdateError, Content: fmt.Sprintf("Planner unavailable: %v", err)})
		return nil
	}
	o.router.Register(planner.ID, planner)
	tasks, err := planner.Decompose(ctx, goal, contextText)
	o.pool.Release(planner.ID)
	if err != nil {
		emit(models.SwarmUpdate{Type: models.UpdateError, Content: fmt.Sprintf("Decomposition failed: %v", err)})
		return nil
	}

	g := graph.New()
	for _, t := range tasks {
		if err := g.Add(t); err != nil {
			log.Printf("[swarm] skipping task %q: %v", t.Title, err)
			continue
		}
		o.publish(eventbus.Event{Type: eventbus.EventTaskCreated, Source: "orchestrator", TaskID: t.ID, Detail: t.Title})
	}

	emit(models.SwarmUpdate{
		Type:    models.UpdateStatus,
		Content: fmt.Sprintf("Plan created: %d tasks\n%s", g.Size(), g.Summary()),
	})

	for !g.IsComplete() {
		ready := g.Ready()
		if len(ready) == 0 {
			if pending := g.Pending(); len(pending) > 0 {
				emit(models.SwarmUpdate{
					Type:    models.UpdateError,
					Content: "Deadlock detected: some tasks have unmet dependencies",
				})
				for _, t := range pending {
					g.MarkFailed(t.ID, "deadlock: unresolvable dependencies")
				}
			}
			break
		}

		titles := make([]string, len(ready))
		for i, t := range ready {
			titles[i] = t.Title
		}
		emit(models.SwarmUpdate{
			Type:    models.UpdateStatus,
			Content: "Executing wave: " + strings.Join(titles, ", "),
		})

		outcomes := make([]error, len(ready))
		outputs := make([]string, len(ready))

		var wg sync.WaitGroup
		for i, t := range ready {
			g.MarkInProgress(t.ID)
			emit(models.SwarmUpdate{Type: models.UpdateTaskStart, Content: t.Title, TaskID: t.ID})

			wg.Add(1)
			go func(i int, t *models.Task) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						outcomes[i] = fmt.Errorf("task panicked: %v", r)
					}
				}()
				outputs[i], outcomes[i] = o.executeTask(ctx, t, g, contextText)
			}(i, t)
		}
		wg.Wait()

		for i, t := range ready {
			if outcomes[i] != nil {
				g.MarkFailed(t.ID, outcomes[i].Error())
				emit(models.SwarmUpdate{
					Type:    models.UpdateError,
					Content: fmt.Sprintf("Task %q failed: %v", t.Title, outcomes[i]),
					TaskID:  t.ID,
					AgentID: t.AssignedTo,
				})
				continue
			}
			g.MarkCompleted(t.ID, outputs[i])
			emit(models.SwarmUpdate{
				Type:    models.UpdateTaskDone,
				Content: "Completed: " + t.Title,
				TaskID:  t.ID,
				AgentID: t.AssignedTo,
			})
			o.publish(eventbus.Event{
				Type:   eventbus.EventTaskCompleted,
				Source: "orchestrator",
				TaskID: t.ID,
				Detail: truncate(outputs[i], 200),
			})
			o.remember(t, outputs[i])
		}
	}

	return g.Results()
}

// executeTask runs one task on a worker of its preferred role. The
// worker is always released, whatever the outcome.
func (o *Orchestrator) executeTask(ctx context.Context, t *models.Task, g *graph.TaskGraph, contextText string) (string, error) {
	if err := o.pool.AcquireSlot(ctx); err != nil {
		return "", fmt.Errorf("acquire execution slot: %w", err)
	}
	defer o.pool.ReleaseSlot()

	role := t.PreferredRole
	if !role.Valid() {
		role = models.RoleExecutor
	}
	w, err := o.pool.Acquire(role)
	if err != nil {
		return "", err
	}
	defer o.pool.Release(w.ID)

	t.AssignedTo = w.ID
	o.router.Register(w.ID, w)

	depContext := contextText
	for _, depID := range t.DependsOn {
		dep := g.Get(depID)
		if dep == nil || dep.Result == "" {
			continue
		}
		depContext += fmt.Sprintf("\n\n--- Result from %q ---\n%s", dep.Title, dep.Result)
		o.router.Send(models.AgentMessage{
			From:    o.coordinator.ID,
			To:      w.ID,
			Content: dep.Result,
			Type:    "task_context",
		})
	}

	return w.ProcessTask(ctx, t.Description, depContext)
}

// runReview has a critic assess the collected results. The critique
// is informational; failures here never gate synthesis.
func (o *Orchestrator) runReview(ctx context.Context, goal string, results map[string]string, emit func(models.SwarmUpdate)) {
	emit(models.SwarmUpdate{Type: models.UpdateStatus, Content: "Critic reviewing results..."})

	critic, err := o.pool.Acquire(models.RoleCritic)
	if err != nil {
		log.Printf("[swarm] critic unavailable: %v", err)
		return
	}
	o.router.Register(critic.ID, critic)
	defer o.pool.Release(critic.ID)

	var b strings.Builder
	for id, res := range results {
		fmt.Fprintf(&b, "%s: %s\n\n", id, truncate(res, 300))
	}

	review, err := critic.Review(ctx, goal, b.String())
	if err != nil {
		log.Printf("[swarm] review failed: %v", err)
		return
	}
	emit(models.SwarmUpdate{
		Type:    models.UpdateStatus,
		Content: "Critic says: " + truncate(review, 200),
		AgentID: critic.ID,
	})
}

func (o *Orchestrator) publish(ev eventbus.Event) {
	if o.bus != nil {
		o.bus.Publish(ev)
	}
}

func (o *Orchestrator) remember(t *models.Task, result string) {
	if o.memory == nil {
		return
	}
	episode := fmt.Sprintf("Task %q: %s", t.Title, truncate(result, 500))
	if _, err := o.memory.StoreEpisodic(episode, memory.Metadata{
		EpisodeType: "task_result",
		AgentID:     t.AssignedTo,
	}); err != nil {
		log.Printf("[swarm] store episode: %v", err)
	}
}

// StatusSummary reports the swarm's pool, router, and consensus state.
func (o *Orchestrator) StatusSummary() string {
	return fmt.Sprintf("=== Swarm ===\n%s\n%s\n%s",
		o.pool.StatusSummary(),
		o.router.StatusSummary(),
		o.consensus.Summary(),
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
