package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nexus",
	Short: "Multi-agent swarm orchestrator",
	Long: `Nexus coordinates a swarm of role-specialized LLM agents on a goal.

A coordinator evaluates the goal, a planner decomposes it into a
dependency graph, and executor/researcher/critic agents work the
graph in parallel waves before the coordinator synthesizes one final
answer.

Core capabilities:
- Decomposes goals into parallelizable task graphs
- Executes independent tasks concurrently with bounded fan-out
- Routes dependency context between agents
- Optionally reviews results with a critic before synthesis
- Remembers episodes across runs via a local memory store`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
