package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nexus-swarm/nexus/internal/config"
	"github.com/nexus-swarm/nexus/internal/memory"
	"github.com/nexus-swarm/nexus/internal/version"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and memory state",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		fmt.Printf("nexus %s\n\n", version.Get())
		fmt.Printf("config: %s\n", config.GetUserConfigPath())
		fmt.Printf("swarm: max_concurrent=%d consensus=%s review=%t\n",
			cfg.Swarm.MaxConcurrent, cfg.Swarm.ConsensusStrategy, !cfg.Swarm.DisableReview)

		if !cfg.Memory.Enabled {
			fmt.Println("memory: disabled")
			return nil
		}

		path := cfg.Memory.Path
		if path == "" {
			path = memory.DefaultPath()
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			fmt.Printf("memory: %s (empty)\n", path)
			return nil
		}

		mem, err := memory.Open(path)
		if err != nil {
			return fmt.Errorf("open memory: %w", err)
		}
		defer mem.Close()

		episodes, facts, err := mem.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("memory: %s\n", path)
		fmt.Printf("  %s %d episodes, %d facts\n", color.GreenString("•"), episodes, facts)
		return nil
	},
}
