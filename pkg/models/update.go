package models

// UpdateType is the kind of progress update emitted during a swarm run.
type UpdateType string

const (
	// UpdateStatus is an informational progress message.
	UpdateStatus UpdateType = "status"
	// UpdateTaskStart indicates a task began executing.
	UpdateTaskStart UpdateType = "task_start"
	// UpdateTaskDone indicates a task completed successfully.
	UpdateTaskDone UpdateType = "task_done"
	// UpdateResult carries the final synthesized answer.
	UpdateResult UpdateType = "result"
	// UpdateError reports a task failure or an unrecoverable run error.
	UpdateError UpdateType = "error"
)

// SwarmUpdate is an immutable progress record produced by the
// orchestrator and consumed by presentation layers. The update stream
// for a run is finite and ends with exactly one update whose Final
// flag is set.
type SwarmUpdate struct {
	// Type is the update kind.
	Type UpdateType `json:"type"`
	// Content is the human-readable update text.
	Content string `json:"content"`
	// TaskID is the related task, if applicable.
	TaskID string `json:"task_id,omitempty"`
	// AgentID is the related worker, if applicable.
	AgentID string `json:"agent_id,omitempty"`
	// Final marks the terminal update of a run.
	Final bool `json:"final"`
}
