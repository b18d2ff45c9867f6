package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aletheia-ai/retrace/cmd/retrace/internal/commands"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "retrace",
	Short: "Self-improving tool-use agent demonstration harness",
	Long: `retrace runs a tool-using travel-planning agent, detects rule-based
mistakes in how it uses its tools, and promotes repeated mistake patterns
into constraints injected into future prompts.

The CLI provides:
- A demonstration loop that visibly improves run over run
- Persistent agent memory with JSON or SQLite backends
- Learning statistics and the current constraint list`,
	Version: "0.1.0",
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (built-in defaults when omitted)")
	rootCmd.AddCommand(
		commands.NewRunCommand(&configPath),
		commands.NewStatsCommand(&configPath),
		commands.NewConstraintsCommand(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
