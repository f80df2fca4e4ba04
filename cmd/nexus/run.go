package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nexus-swarm/nexus/internal/config"
	"github.com/nexus-swarm/nexus/internal/consensus"
	"github.com/nexus-swarm/nexus/internal/eventbus"
	"github.com/nexus-swarm/nexus/internal/llm"
	"github.com/nexus-swarm/nexus/internal/memory"
	"github.com/nexus-swarm/nexus/internal/swarm"
	"github.com/nexus-swarm/nexus/internal/tui"
	"github.com/nexus-swarm/nexus/pkg/models"
)

var (
	runContextText   string
	runContextFile   string
	runMaxConcurrent int
	runNoReview      bool
	runNoMemory      bool
	runConsensus     string
	runUseTUI        bool
)

var runCmd = &cobra.Command{
	Use:   "run [goal]",
	Short: "Execute a goal with the swarm",
	Long: `Execute a goal. The coordinator decides whether to answer directly
or decompose the goal into a task graph executed by parallel agents.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGoal,
}

func init() {
	runCmd.Flags().StringVar(&runContextText, "context", "", "Additional context passed to every agent")
	runCmd.Flags().StringVar(&runContextFile, "context-file", "", "File whose contents are appended to the context")
	runCmd.Flags().IntVar(&runMaxConcurrent, "max-concurrent", 0, "Max concurrent task executions (0 = config default)")
	runCmd.Flags().BoolVar(&runNoReview, "no-review", false, "Skip the critic review step")
	runCmd.Flags().BoolVar(&runNoMemory, "no-memory", false, "Disable episodic memory for this run")
	runCmd.Flags().StringVar(&runConsensus, "consensus", "", "Consensus strategy: majority, supermajority, unanimous, weighted")
	runCmd.Flags().BoolVar(&runUseTUI, "tui", false, "Watch the run in an interactive TUI")
}

func runGoal(cmd *cobra.Command, args []string) error {
	goal := strings.Join(args, " ")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	contextText := runContextText
	if runContextFile != "" {
		data, err := os.ReadFile(runContextFile)
		if err != nil {
			return fmt.Errorf("read context file: %w", err)
		}
		if contextText != "" {
			contextText += "\n\n"
		}
		contextText += string(data)
	}

	provider, err := llm.NewAnthropicProvider(llm.AnthropicConfig{
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.AWS.UseBedrock,
		AWSRegion:     cfg.AWS.Region,
		AWSProfile:    cfg.AWS.Profile,
	})
	if err != nil {
		return err
	}
	backend := llm.NewRouter(provider.Name())
	backend.Register(provider)

	ctx := context.Background()

	var mem *memory.Manager
	if cfg.Memory.Enabled && !runNoMemory {
		path := cfg.Memory.Path
		if path == "" {
			path = memory.DefaultPath()
		}
		mem, err = memory.Open(path)
		if err != nil {
			return fmt.Errorf("open memory: %w", err)
		}
		defer mem.Close()

		consolidationCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		memory.NewConsolidator(mem, cfg.Memory.ConsolidationInterval).Start(consolidationCtx)
	}

	bus := eventbus.New(64)
	defer bus.Stop()

	prompts, err := config.LoadPrompts(config.PromptsPath())
	if err != nil {
		log.Printf("[nexus] ignoring prompt overrides: %v", err)
		prompts = config.Prompts{}
	}
	overrides := make(map[models.AgentRole]string)
	for name, prompt := range prompts {
		if role := models.AgentRole(name); role.Valid() {
			overrides[role] = prompt
		}
	}

	strategy := cfg.Swarm.ConsensusStrategy
	if runConsensus != "" {
		strategy = runConsensus
	}
	maxConcurrent := cfg.Swarm.MaxConcurrent
	if runMaxConcurrent > 0 {
		maxConcurrent = runMaxConcurrent
	}

	orch, err := swarm.New(swarm.Config{
		LLM:               backend,
		Memory:            mem,
		Bus:               bus,
		MaxConcurrent:     maxConcurrent,
		DisableReview:     runNoReview || cfg.Swarm.DisableReview,
		ConsensusStrategy: consensus.Strategy(strategy),
		PromptOverrides:   overrides,
		MailboxSize:       cfg.Swarm.MailboxSize,
	})
	if err != nil {
		return err
	}

	updates := orch.ExecuteGoal(ctx, goal, contextText)

	if runUseTUI {
		return runWithTUI(goal, updates)
	}
	return streamToTerminal(updates, backend)
}

// runWithTUI renders the run in an interactive TUI. Log output is
// suppressed while the alt-screen is active.
func runWithTUI(goal string, updates <-chan models.SwarmUpdate) error {
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	program, _ := tui.NewRunProgram(goal)
	go tui.Forward(program, updates)

	_, err := program.Run()
	return err
}

// streamToTerminal prints updates as colored lines.
func streamToTerminal(updates <-chan models.SwarmUpdate, backend *llm.Router) error {
	var runErr error

	for u := range updates {
		switch u.Type {
		case models.UpdateStatus:
			color.Cyan("• %s", u.Content)
		case models.UpdateTaskStart:
			fmt.Printf("%s %s\n", color.YellowString("→"), u.Content)
		case models.UpdateTaskDone:
			fmt.Printf("%s %s\n", color.GreenString("✓"), u.Content)
		case models.UpdateError:
			fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("✗"), u.Content)
			if u.Final {
				runErr = errors.New(u.Content)
			}
		case models.UpdateResult:
			fmt.Println()
			fmt.Println(u.Content)
		}
	}

	if in, out := backend.Tracker().Total(); backend.Tracker().Calls() > 0 {
		color.HiBlack("\ntokens: %d in / %d out across %d calls", in, out, backend.Tracker().Calls())
	}
	return runErr
}
