package consensus

import (
	"errors"
	"testing"

	"github.com/nexus-swarm/nexus/pkg/models"
)

func proposalWithVotes(t *testing.T, e *Engine, votes ...models.Vote) string {
	t.Helper()
	const id = "p1"
	if _, err := e.CreateProposal(id, "adopt the plan", "plan body", "coordinator_x"); err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	for _, v := range votes {
		if _, err := e.CastVote(id, v.AgentID, v.Vote, v.Reasoning, v.Confidence); err != nil {
			t.Fatalf("cast vote for %s: %v", v.AgentID, err)
		}
	}
	return id
}

func TestCreateProposalRejectsDuplicateID(t *testing.T) {
	e := NewEngine(StrategyMajority)
	if _, err := e.CreateProposal("p1", "first", nil, "a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := e.CreateProposal("p1", "second", nil, "b"); !errors.Is(err, ErrDuplicateProposal) {
		t.Errorf("expected ErrDuplicateProposal, got %v", err)
	}
}

func TestCastVoteUnknownProposal(t *testing.T) {
	e := NewEngine(StrategyMajority)
	if _, err := e.CastVote("ghost", "a", models.VoteApprove, "", 1); !errors.Is(err, ErrUnknownProposal) {
		t.Errorf("expected ErrUnknownProposal, got %v", err)
	}
}

func TestCastVoteDuplicateVoterIsIdempotent(t *testing.T) {
	e := NewEngine(StrategyMajority)
	id := proposalWithVotes(t, e,
		models.Vote{AgentID: "a", Vote: models.VoteApprove, Reasoning: "looks good", Confidence: 0.9},
	)

	v, err := e.CastVote(id, "a", models.VoteReject, "changed my mind", 0.1)
	if err != nil {
		t.Fatalf("duplicate vote errored: %v", err)
	}
	if v.Vote != models.VoteApprove || v.Reasoning != "looks good" {
		t.Errorf("expected the original vote back unchanged, got %+v", v)
	}
	p, _ := e.Get(id)
	if len(p.Votes) != 1 {
		t.Errorf("expected 1 recorded vote, got %d", len(p.Votes))
	}
}

func TestCastVoteOnResolvedProposal(t *testing.T) {
	e := NewEngine(StrategyMajority)
	id := proposalWithVotes(t, e,
		models.Vote{AgentID: "a", Vote: models.VoteApprove},
	)
	if _, err := e.Resolve(id, 1); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := e.CastVote(id, "late", models.VoteApprove, "", 1); !errors.Is(err, ErrProposalResolved) {
		t.Errorf("expected ErrProposalResolved, got %v", err)
	}
}

func TestMajorityAccepts(t *testing.T) {
	e := NewEngine(StrategyMajority)
	id := proposalWithVotes(t, e,
		models.Vote{AgentID: "a", Vote: models.VoteApprove},
		models.Vote{AgentID: "b", Vote: models.VoteApprove},
		models.Vote{AgentID: "c", Vote: models.VoteReject},
	)

	outcome, err := e.Resolve(id, 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if outcome != Accepted {
		t.Errorf("2 approve vs 1 reject should be accepted, got %s", outcome)
	}
}

func TestMajorityEvenSplitRejects(t *testing.T) {
	e := NewEngine(StrategyMajority)
	id := proposalWithVotes(t, e,
		models.Vote{AgentID: "a", Vote: models.VoteApprove},
		models.Vote{AgentID: "b", Vote: models.VoteReject},
	)

	if outcome, _ := e.Resolve(id, 1); outcome != Rejected {
		t.Errorf("1-1 split is not a majority, got %s", outcome)
	}
}

func TestSupermajorityBoundary(t *testing.T) {
	// 2 of 3 is exactly two thirds and passes; 2 of 4 does not.
	e := NewEngine(StrategySupermajority)
	id := proposalWithVotes(t, e,
		models.Vote{AgentID: "a", Vote: models.VoteApprove},
		models.Vote{AgentID: "b", Vote: models.VoteApprove},
		models.Vote{AgentID: "c", Vote: models.VoteReject},
	)
	if outcome, _ := e.Resolve(id, 1); outcome != Accepted {
		t.Errorf("2/3 should meet the supermajority threshold, got %s", outcome)
	}

	e2 := NewEngine(StrategySupermajority)
	id2 := proposalWithVotes(t, e2,
		models.Vote{AgentID: "a", Vote: models.VoteApprove},
		models.Vote{AgentID: "b", Vote: models.VoteApprove},
		models.Vote{AgentID: "c", Vote: models.VoteReject},
		models.Vote{AgentID: "d", Vote: models.VoteReject},
	)
	if outcome, _ := e2.Resolve(id2, 1); outcome != Rejected {
		t.Errorf("2/4 should miss the supermajority threshold, got %s", outcome)
	}
}

func TestUnanimousRejectsOnAnyReject(t *testing.T) {
	e := NewEngine(StrategyUnanimous)
	id := proposalWithVotes(t, e,
		models.Vote{AgentID: "a", Vote: models.VoteApprove},
		models.Vote{AgentID: "b", Vote: models.VoteApprove},
		models.Vote{AgentID: "c", Vote: models.VoteReject},
	)
	if outcome, _ := e.Resolve(id, 1); outcome != Rejected {
		t.Errorf("any rejection breaks unanimity, got %s", outcome)
	}
}

func TestUnanimousAcceptsWithAbstains(t *testing.T) {
	e := NewEngine(StrategyUnanimous)
	id := proposalWithVotes(t, e,
		models.Vote{AgentID: "a", Vote: models.VoteApprove},
		models.Vote{AgentID: "b", Vote: models.VoteAbstain},
	)
	if outcome, _ := e.Resolve(id, 1); outcome != Accepted {
		t.Errorf("abstains do not break unanimity, got %s", outcome)
	}
}

func TestWeightedComparesConfidenceSums(t *testing.T) {
	e := NewEngine(StrategyWeighted)
	id := proposalWithVotes(t, e,
		models.Vote{AgentID: "a", Vote: models.VoteApprove, Confidence: 0.9},
		models.Vote{AgentID: "b", Vote: models.VoteReject, Confidence: 0.4},
		models.Vote{AgentID: "c", Vote: models.VoteReject, Confidence: 0.4},
	)
	if outcome, _ := e.Resolve(id, 1); outcome != Accepted {
		t.Errorf("0.9 approve vs 0.8 reject should be accepted, got %s", outcome)
	}
}

func TestWeightedTieRejects(t *testing.T) {
	e := NewEngine(StrategyWeighted)
	id := proposalWithVotes(t, e,
		models.Vote{AgentID: "a", Vote: models.VoteApprove, Confidence: 0.5},
		models.Vote{AgentID: "b", Vote: models.VoteReject, Confidence: 0.5},
	)
	if outcome, _ := e.Resolve(id, 1); outcome != Rejected {
		t.Errorf("an exact confidence tie resolves rejected, got %s", outcome)
	}
}

func TestResolveDefersBelowMinVoters(t *testing.T) {
	e := NewEngine(StrategyMajority)
	id := proposalWithVotes(t, e,
		models.Vote{AgentID: "a", Vote: models.VoteApprove},
		models.Vote{AgentID: "b", Vote: models.VoteAbstain},
	)

	outcome, err := e.Resolve(id, 2)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if outcome != Undetermined {
		t.Errorf("abstains do not count toward the quorum, got %s", outcome)
	}
	p, _ := e.Get(id)
	if p.Resolved {
		t.Error("a deferred proposal must stay open")
	}

	if _, err := e.CastVote(id, "c", models.VoteApprove, "", 1); err != nil {
		t.Fatalf("voting after deferral should work: %v", err)
	}
	if outcome, _ := e.Resolve(id, 2); outcome != Accepted {
		t.Errorf("expected acceptance once quorum is met, got %s", outcome)
	}
}

func TestResolveAbstainsOnlyRejects(t *testing.T) {
	e := NewEngine(StrategyMajority)
	id := proposalWithVotes(t, e,
		models.Vote{AgentID: "a", Vote: models.VoteAbstain},
		models.Vote{AgentID: "b", Vote: models.VoteAbstain},
	)

	if outcome, _ := e.Resolve(id, 0); outcome != Rejected {
		t.Errorf("zero cast votes with quorum satisfied rejects, got %s", outcome)
	}
}

func TestResolveIsPermanent(t *testing.T) {
	e := NewEngine(StrategyMajority)
	id := proposalWithVotes(t, e,
		models.Vote{AgentID: "a", Vote: models.VoteApprove},
	)

	if outcome, _ := e.Resolve(id, 1); outcome != Accepted {
		t.Fatal("expected acceptance")
	}
	if outcome, _ := e.Resolve(id, 1); outcome != Accepted {
		t.Errorf("re-resolving returns the recorded outcome, got %s", outcome)
	}
}

func TestPendingProposals(t *testing.T) {
	e := NewEngine(StrategyMajority)
	e.CreateProposal("p1", "first", nil, "a")
	e.CreateProposal("p2", "second", nil, "a")
	e.CastVote("p1", "a", models.VoteApprove, "", 1)
	e.Resolve("p1", 1)

	pending := e.PendingProposals()
	if len(pending) != 1 || pending[0].ID != "p2" {
		t.Errorf("expected only p2 pending, got %+v", pending)
	}
}
