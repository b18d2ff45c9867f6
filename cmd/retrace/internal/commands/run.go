package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aletheia-ai/retrace/cmd/retrace/internal/display"
	"github.com/aletheia-ai/retrace/pkg/logging"
	"github.com/aletheia-ai/retrace/pkg/trace"
)

func NewRunCommand(configPath *string) *cobra.Command {
	var runs int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the demonstration loop and learn from mistakes",
		Long: `Run the tool-using agent against the configured tasks, evaluate every run
for tool-usage mistakes, and promote repeated mistake patterns into
constraints that are injected into future prompts.

State persists across invocations: constraints learned in one run of the
command keep steering the agent in the next.`,
		Example: `  # Run the default 10-run demonstration with the scripted model
  retrace run

  # Run 3 more tasks against previously learned state
  retrace run -n 3

  # Use a custom configuration
  retrace run --config retrace.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if runs > 0 {
				cfg.Runs = runs
			}

			logging.SetLogger(logging.NewLogger(logging.Config{
				Severity: logging.ParseSeverity(cfg.LogLevel),
				Outputs:  []logging.Output{logging.NewConsoleOutput(true)},
			}))

			mem, err := openMemory(cfg)
			if err != nil {
				return err
			}
			defer mem.Close()

			r, err := buildRunner(cfg, mem)
			if err != nil {
				return err
			}

			err = r.RunDemo(cmd.Context(), cfg.Runs, cfg.Tasks, func(t *trace.ExecutionTrace) {
				fmt.Fprintln(cmd.OutOrStdout(), display.FormatRun(t))
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), display.FormatSummary(r.Statistics(), mem.Constraints()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&runs, "runs", "n", 0, "number of runs to execute (overrides config)")
	return cmd
}
