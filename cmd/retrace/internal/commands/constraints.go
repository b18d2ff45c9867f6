package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aletheia-ai/retrace/cmd/retrace/internal/display"
)

func NewConstraintsCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "constraints",
		Short: "List the learned constraints",
		Long: `Print the constraints learned so far, in the order they were triggered.
Constraint text is frozen at creation time and is injected verbatim into
every future prompt.`,
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

			fmt.Fprintln(cmd.OutOrStdout(), display.FormatConstraints(mem.Constraints()))
			return nil
		},
	}
}
