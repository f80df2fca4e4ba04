// Package agent provides role-specialized workers that execute tasks
// and protocol steps via the completion backend.
package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nexus-swarm/nexus/internal/llm"
	"github.com/nexus-swarm/nexus/internal/memory"
	"github.com/nexus-swarm/nexus/pkg/models"
)

// DefaultMailboxSize is the per-worker inbox capacity.
const DefaultMailboxSize = 128

// Options configures a new worker.
type Options struct {
	// LLM is the completion backend. Required.
	LLM llm.Completer
	// Memory is the optional episodic memory collaborator. Used only
	// to inject context, never required for correctness.
	Memory *memory.Manager
	// MailboxSize overrides the inbox capacity when positive.
	MailboxSize int
	// SystemPrompt overrides the role's default system prompt when
	// non-empty.
	SystemPrompt string
	// PromptOverrides replaces role system prompts by role name,
	// typically loaded from prompts.yaml. SystemPrompt, when set,
	// takes precedence.
	PromptOverrides map[models.AgentRole]string
}

// Worker is one role-specialized unit in the swarm. Its behavior is
// fixed at creation by its role profile.
type Worker struct {
	// ID is the unique worker identifier.
	ID string
	// Role is the worker's specialization.
	Role models.AgentRole

	llm     llm.Completer
	memory  *memory.Manager
	profile roleProfile

	mu    sync.Mutex
	state models.AgentState

	inbox chan models.AgentMessage
}

// New creates a worker of the given role.
func New(id string, role models.AgentRole, opts Options) *Worker {
	size := opts.MailboxSize
	if size <= 0 {
		size = DefaultMailboxSize
	}

	profile := profileFor(role)
	if p := opts.PromptOverrides[role]; p != "" {
		profile.systemPrompt = p
	}
	if opts.SystemPrompt != "" {
		profile.systemPrompt = opts.SystemPrompt
	}

	return &Worker{
		ID:      id,
		Role:    role,
		llm:     opts.LLM,
		memory:  opts.Memory,
		profile: profile,
		state:   models.StateIdle,
		inbox:   make(chan models.AgentMessage, size),
	}
}

// State returns the worker's lifecycle state.
func (w *Worker) State() models.AgentState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// SetState updates the worker's lifecycle state.
func (w *Worker) SetState(state models.AgentState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = state
}

// Deliver enqueues a message into the worker's mailbox without
// blocking. Returns false if the mailbox is full.
func (w *Worker) Deliver(msg models.AgentMessage) bool {
	select {
	case w.inbox <- msg:
		return true
	default:
		return false
	}
}

// ReceiveMessage waits up to timeout for the next inbound message.
// Returns the zero message and false on timeout instead of blocking
// forever.
func (w *Worker) ReceiveMessage(timeout time.Duration) (models.AgentMessage, bool) {
	select {
	case msg := <-w.inbox:
		return msg, true
	case <-time.After(timeout):
		return models.AgentMessage{}, false
	}
}

// MailboxLen returns the number of queued inbound messages.
func (w *Worker) MailboxLen() int {
	return len(w.inbox)
}

// Think runs one completion with the worker's system prompt, optional
// context, and the given prompt.
func (w *Worker) Think(ctx context.Context, prompt, contextText string, hint llm.Complexity) (string, error) {
	messages := []llm.Message{
		{Role: "system", Content: w.profile.systemPrompt},
	}
	if contextText != "" {
		messages = append(messages, llm.Message{Role: "system", Content: "Context:\n" + contextText})
	}
	messages = append(messages, llm.Message{Role: "user", Content: prompt})

	resp, err := w.llm.Complete(ctx, llm.Request{Messages: messages}, hint)
	if err != nil {
		return "", fmt.Errorf("worker %s think: %w", w.ID, err)
	}
	return resp.Content, nil
}

// ProcessTask executes a single task description and returns its
// output. The prompt framing and complexity hint come from the
// worker's role profile. Recalled episodic memory, when available, is
// appended to the context.
func (w *Worker) ProcessTask(ctx context.Context, description, contextText string) (string, error) {
	if w.memory != nil {
		if entries, err := w.memory.Recall(description, 2); err == nil && len(entries) > 0 {
			var recalled string
			for _, e := range entries {
				recalled += "\n- " + e.Content
			}
			contextText += "\n\nRelevant past episodes:" + recalled
		}
	}

	prompt := w.profile.taskPrefix + description
	return w.Think(ctx, prompt, contextText, w.profile.taskComplexity)
}
