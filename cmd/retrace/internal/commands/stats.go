package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aletheia-ai/retrace/cmd/retrace/internal/display"
)

func NewStatsCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics from persisted state",
		Long: `Summarize the persisted run history: totals, mistake pattern counts, and
the improvement rate comparing the most recent five runs against the
preceding five.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			mem, err := openMemory(cfg)
			if err != nil {
				return err
			}
			defer mem.Close()

			fmt.Fprintln(cmd.OutOrStdout(), display.FormatSummary(mem.Statistics(), mem.Constraints()))
			return nil
		},
	}
}
