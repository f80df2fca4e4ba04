// Package consensus implements proposal voting for the swarm:
// agents cast votes on proposals and the engine resolves them under a
// configurable strategy.
package consensus

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nexus-swarm/nexus/pkg/models"
)

// Strategy selects how votes decide a proposal.
type Strategy string

const (
	// StrategyMajority accepts when approvals exceed half the cast votes.
	StrategyMajority Strategy = "majority"
	// StrategySupermajority accepts when approvals reach two thirds of
	// the cast votes.
	StrategySupermajority Strategy = "supermajority"
	// StrategyUnanimous accepts when there are no rejections and at
	// least one approval.
	StrategyUnanimous Strategy = "unanimous"
	// StrategyWeighted accepts when approval confidence strictly
	// outweighs rejection confidence.
	StrategyWeighted Strategy = "weighted"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyMajority, StrategySupermajority, StrategyUnanimous, StrategyWeighted:
		return true
	}
	return false
}

// Outcome is the tri-state result of a resolution attempt.
type Outcome int

const (
	// Undetermined means too few votes were cast to resolve.
	Undetermined Outcome = iota
	Accepted
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return "undetermined"
	}
}

var (
	// ErrUnknownProposal is returned for operations on a proposal ID
	// that was never created.
	ErrUnknownProposal = errors.New("consensus: unknown proposal")
	// ErrProposalResolved is returned when voting on an already
	// resolved proposal.
	ErrProposalResolved = errors.New("consensus: proposal already resolved")
	// ErrDuplicateProposal is returned when creating a proposal with
	// an ID that already exists.
	ErrDuplicateProposal = errors.New("consensus: proposal already exists")
)

// Engine records proposals and votes and resolves them. Safe for
// concurrent use.
type Engine struct {
	mu        sync.RWMutex
	strategy  Strategy
	proposals map[string]*models.Proposal
	order     []string
}

// NewEngine creates an engine. Invalid strategies fall back to
// majority.
func NewEngine(strategy Strategy) *Engine {
	if !strategy.Valid() {
		strategy = StrategyMajority
	}
	return &Engine{
		strategy:  strategy,
		proposals: make(map[string]*models.Proposal),
	}
}

// Strategy returns the configured strategy.
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// CreateProposal registers a new unresolved proposal.
func (e *Engine) CreateProposal(id, title string, content any, submittedBy string) (*models.Proposal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.proposals[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateProposal, id)
	}
	p := &models.Proposal{
		ID:          id,
		Title:       title,
		Content:     content,
		SubmittedBy: submittedBy,
	}
	e.proposals[id] = p
	e.order = append(e.order, id)
	return p, nil
}

// CastVote records a vote on a proposal. Voting twice is an idempotent
// no-op returning the original vote. Voting on an unknown or resolved
// proposal is an error.
func (e *Engine) CastVote(proposalID, voterID string, vote models.VoteType, reasoning string, confidence float64) (models.Vote, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.proposals[proposalID]
	if !ok {
		return models.Vote{}, fmt.Errorf("%w: %s", ErrUnknownProposal, proposalID)
	}
	if p.Resolved {
		return models.Vote{}, fmt.Errorf("%w: %s", ErrProposalResolved, proposalID)
	}

	for _, v := range p.Votes {
		if v.AgentID == voterID {
			return v, nil
		}
	}

	v := models.Vote{
		AgentID:    voterID,
		Vote:       vote,
		Reasoning:  reasoning,
		Confidence: confidence,
	}
	p.Votes = append(p.Votes, v)
	return v, nil
}

// Resolve evaluates a proposal. With fewer than minVoters non-abstain
// votes the result is Undetermined and the proposal stays open.
// Otherwise the strategy decides and the proposal is permanently
// resolved. Resolving an already resolved proposal returns its
// recorded outcome.
func (e *Engine) Resolve(proposalID string, minVoters int) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.proposals[proposalID]
	if !ok {
		return Undetermined, fmt.Errorf("%w: %s", ErrUnknownProposal, proposalID)
	}
	if p.Resolved {
		if p.Accepted {
			return Accepted, nil
		}
		return Rejected, nil
	}

	var approve, reject int
	var approveWeight, rejectWeight float64
	for _, v := range p.Votes {
		switch v.Vote {
		case models.VoteApprove:
			approve++
			approveWeight += v.Confidence
		case models.VoteReject:
			reject++
			rejectWeight += v.Confidence
		}
	}
	cast := approve + reject

	if cast < minVoters {
		return Undetermined, nil
	}

	var accepted bool
	if cast == 0 {
		// minVoters satisfied through abstains alone rejects by
		// definition.
		accepted = false
	} else {
		switch e.strategy {
		case StrategySupermajority:
			accepted = approve*3 >= cast*2
		case StrategyUnanimous:
			accepted = reject == 0 && approve > 0
		case StrategyWeighted:
			accepted = approveWeight > rejectWeight
		default:
			accepted = approve*2 > cast
		}
	}

	p.Resolved = true
	p.Accepted = accepted
	if accepted {
		return Accepted, nil
	}
	return Rejected, nil
}

// Get returns a proposal by ID.
func (e *Engine) Get(proposalID string) (*models.Proposal, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.proposals[proposalID]
	return p, ok
}

// PendingProposals returns all unresolved proposals in creation order.
func (e *Engine) PendingProposals() []*models.Proposal {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var pending []*models.Proposal
	for _, id := range e.order {
		if p := e.proposals[id]; !p.Resolved {
			pending = append(pending, p)
		}
	}
	return pending
}

// Summary returns a human-readable snapshot of engine state.
func (e *Engine) Summary() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	resolved := 0
	for _, p := range e.proposals {
		if p.Resolved {
			resolved++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Consensus (%s): %d proposals, %d resolved\n", e.strategy, len(e.proposals), resolved)
	for _, id := range e.order {
		p := e.proposals[id]
		status := "open"
		if p.Resolved {
			status = "rejected"
			if p.Accepted {
				status = "accepted"
			}
		}
		fmt.Fprintf(&b, "  %s %q: %d votes, %s\n", p.ID, p.Title, len(p.Votes), status)
	}
	return b.String()
}
