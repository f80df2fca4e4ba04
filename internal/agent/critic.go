package agent

import (
	"context"
	"fmt"

	"github.com/nexus-swarm/nexus/internal/llm"
)

// Review asks the critic for a quality assessment of output produced
// for the original task.
func (w *Worker) Review(ctx context.Context, originalTask, output string) (string, error) {
	prompt := fmt.Sprintf(
		"Original task: %s\n\nAgent output:\n%s\n\nProvide a brief quality assessment. Is this output accurate, complete, and well-structured? If it needs improvement, suggest specific changes.",
		originalTask, output,
	)
	return w.Think(ctx, prompt, "", llm.ComplexityMedium)
}
