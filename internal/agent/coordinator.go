package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/nexus-swarm/nexus/internal/llm"
)

// GoalDecision is the coordinator's structured strategy evaluation.
type GoalDecision struct {
	// Strategy is "direct" or "swarm".
	Strategy string `json:"strategy"`
	// Reasoning explains the choice.
	Reasoning string `json:"reasoning"`
	// Complexity is the coordinator's estimate: simple, medium, complex.
	Complexity string `json:"complexity"`
}

// EvaluateGoal asks the coordinator to classify a goal as direct or
// swarm. Unparseable responses default to direct with a fallback
// reasoning string; only a completion backend failure is an error.
func (w *Worker) EvaluateGoal(ctx context.Context, goal string) (GoalDecision, error) {
	prompt := "Evaluate this goal and decide the execution strategy:\n\n" + goal

	response, err := w.Think(ctx, prompt, "", llm.ComplexitySimple)
	if err != nil {
		return GoalDecision{}, err
	}

	jsonStr := extractJSONObject(response)

	var decision GoalDecision
	if jsonStr == "" || json.Unmarshal([]byte(jsonStr), &decision) != nil || decision.Strategy == "" {
		log.Printf("[agent] could not parse coordinator evaluation, defaulting to direct")
		return GoalDecision{
			Strategy:   "direct",
			Reasoning:  "Fallback: treating as simple goal",
			Complexity: "simple",
		}, nil
	}
	return decision, nil
}

// SynthesizeResults combines task results into one final answer. It
// issues a dedicated synthesis call rather than reusing the
// coordinator's system prompt, which would elicit a JSON strategy
// decision instead of prose.
func (w *Worker) SynthesizeResults(ctx context.Context, goal string, results map[string]string) (string, error) {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var resultsText strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&resultsText, "\n### Task %s:\n%s\n", id, results[id])
	}

	prompt := fmt.Sprintf(
		"Original goal: %s\n\nTask results:\n%s\n\nSynthesize these results into a single, coherent, well-structured response that fully addresses the original goal. Combine insights, remove redundancy, and ensure the response flows naturally. If any tasks failed, acknowledge gaps gracefully.",
		goal, resultsText.String(),
	)

	resp, err := w.llm.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: synthesisSystemPrompt},
			{Role: "user", Content: prompt},
		},
	}, llm.ComplexityComplex)
	if err != nil {
		return "", fmt.Errorf("synthesize results: %w", err)
	}
	return resp.Content, nil
}

// HandleConflict resolves divergent outputs for the same task by
// asking the coordinator to pick or combine the best result.
func (w *Worker) HandleConflict(ctx context.Context, taskTitle string, outputs []string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Multiple agents produced different results for: %s\n\n", taskTitle)
	for i, out := range outputs {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		fmt.Fprintf(&b, "Output %d:\n%s", i+1, out)
	}
	b.WriteString("\n\nAnalyze the differences, determine which is most accurate, and produce the best combined result.")

	return w.Think(ctx, b.String(), "", llm.ComplexityComplex)
}
