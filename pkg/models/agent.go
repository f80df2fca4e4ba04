package models

// AgentRole identifies a worker specialization. The set is closed:
// adding a role is a compile-time change, not a registry mutation.
type AgentRole string

const (
	// RolePlanner decomposes goals into task graphs.
	RolePlanner AgentRole = "planner"
	// RoleExecutor carries out tasks and produces output.
	RoleExecutor AgentRole = "executor"
	// RoleResearcher gathers and synthesizes information.
	RoleResearcher AgentRole = "researcher"
	// RoleCritic reviews output from other workers.
	RoleCritic AgentRole = "critic"
	// RoleCoordinator decides strategy and synthesizes final answers.
	RoleCoordinator AgentRole = "coordinator"
)

// Roles lists every known role in a fixed order.
var Roles = []AgentRole{RolePlanner, RoleExecutor, RoleResearcher, RoleCritic, RoleCoordinator}

// Valid returns true if the role is a known value.
func (r AgentRole) Valid() bool {
	switch r {
	case RolePlanner, RoleExecutor, RoleResearcher, RoleCritic, RoleCoordinator:
		return true
	default:
		return false
	}
}

// ParseRole maps a role string from planner output to an AgentRole.
// Unknown or empty strings default to RoleExecutor.
func ParseRole(s string) AgentRole {
	r := AgentRole(s)
	if r.Valid() {
		return r
	}
	return RoleExecutor
}

// AgentState is the lifecycle state of a worker.
type AgentState string

const (
	// StateIdle means the worker is registered but not executing.
	StateIdle AgentState = "idle"
	// StateWorking means the worker is executing a task.
	StateWorking AgentState = "working"
	// StateWaiting means the worker is blocked on a mailbox receive.
	StateWaiting AgentState = "waiting"
	// StateSuspended means the worker has been taken out of rotation.
	StateSuspended AgentState = "suspended"
)

// AgentMessage is a message between workers. Messages exist only in
// transit; they are never persisted.
type AgentMessage struct {
	// From is the sender worker ID.
	From string `json:"from"`
	// To is the recipient worker ID, or empty for broadcast/topic sends.
	To string `json:"to"`
	// Content is the opaque message payload.
	Content any `json:"content"`
	// Type tags the kind of message (e.g. "generic", "broadcast", "topic").
	Type string `json:"type"`
	// InReplyTo optionally references a prior message.
	InReplyTo string `json:"in_reply_to,omitempty"`
}
