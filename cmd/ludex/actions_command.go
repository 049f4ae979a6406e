package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newActionsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "Show the log of destructive operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			actions, err := store.ListActions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(actions) == 0 {
				fmt.Fprintln(out, "No actions recorded.")
				return nil
			}

			rows := make([][]string, 0, len(actions))
			for _, action := range actions {
				rows = append(rows, []string{
					fmt.Sprint(action.ID),
					action.CreatedAt.Local().Format(time.DateTime),
					action.Kind,
					action.Path,
					action.Detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]column{numCol("ID"), col("When"), col("Action"), col("Path"), col("Detail")},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum actions to show (0 for all)")
	return cmd
}
