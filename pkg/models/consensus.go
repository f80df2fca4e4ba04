package models

// VoteType is the value of a single vote.
type VoteType string

const (
	// VoteApprove accepts the proposal.
	VoteApprove VoteType = "approve"
	// VoteReject declines the proposal.
	VoteReject VoteType = "reject"
	// VoteAbstain declines to take a position.
	VoteAbstain VoteType = "abstain"
)

// Vote is one worker's position on a proposal.
type Vote struct {
	// AgentID is the voter.
	AgentID string `json:"agent_id"`
	// Vote is the vote value.
	Vote VoteType `json:"vote"`
	// Reasoning is the voter's free-text justification.
	Reasoning string `json:"reasoning,omitempty"`
	// Confidence is in [0.0, 1.0] and weights the vote under the
	// weighted strategy.
	Confidence float64 `json:"confidence"`
}

// Proposal is a decision submitted for group voting. Votes are kept in
// arrival order, one per voter. Resolved and Accepted are set exactly
// once when the proposal is resolved.
type Proposal struct {
	// ID is the unique proposal identifier.
	ID string `json:"id"`
	// Title is the short proposal summary.
	Title string `json:"title"`
	// Content is the opaque proposal body.
	Content any `json:"content"`
	// SubmittedBy is the submitter's worker ID.
	SubmittedBy string `json:"submitted_by"`
	// Votes holds one vote per voter in arrival order.
	Votes []Vote `json:"votes"`
	// Resolved is set once the proposal has been evaluated.
	Resolved bool `json:"resolved"`
	// Accepted is the outcome, meaningful only once Resolved is true.
	Accepted bool `json:"accepted"`
}

// VoteCounts tallies votes by type.
func (p *Proposal) VoteCounts() map[VoteType]int {
	counts := map[VoteType]int{
		VoteApprove: 0,
		VoteReject:  0,
		VoteAbstain: 0,
	}
	for _, v := range p.Votes {
		counts[v.Vote]++
	}
	return counts
}
