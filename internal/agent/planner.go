package agent

import (
	"context"
	"encoding/json"
	"log"

	"github.com/nexus-swarm/nexus/internal/llm"
	"github.com/nexus-swarm/nexus/pkg/models"
)

// taskDefinition is the JSON structure the planner returns for a
// single task.
type taskDefinition struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	DependsOn     []string `json:"depends_on"`
	PreferredRole string   `json:"preferred_role"`
}

// Decompose asks the planner to break a goal into task definitions.
// Malformed planner output is recovered locally: the fallback is a
// single executor task wrapping the whole goal, never an error. The
// only error returned is a completion backend failure.
func (w *Worker) Decompose(ctx context.Context, goal, contextText string) ([]*models.Task, error) {
	prompt := "Decompose this goal into tasks:\n\n" + goal

	response, err := w.Think(ctx, prompt, contextText, llm.ComplexityComplex)
	if err != nil {
		return nil, err
	}

	jsonStr := extractJSONArray(response)

	var defs []taskDefinition
	if jsonStr == "" || json.Unmarshal([]byte(jsonStr), &defs) != nil || len(defs) == 0 {
		log.Printf("[agent] failed to parse planner output, using single fallback task")
		fallback := models.NewTask("Execute goal", goal)
		fallback.PreferredRole = models.RoleExecutor
		return []*models.Task{fallback}, nil
	}

	tasks := make([]*models.Task, 0, len(defs))
	for _, def := range defs {
		task := models.NewTask(def.Title, def.Description)
		if def.ID != "" {
			task.ID = def.ID
		}
		task.DependsOn = def.DependsOn
		task.PreferredRole = models.ParseRole(def.PreferredRole)
		tasks = append(tasks, task)
	}

	log.Printf("[agent] planner decomposed goal into %d tasks", len(tasks))
	return tasks, nil
}
