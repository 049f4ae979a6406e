package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ludex/internal/catalog"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize the indexed library",
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

			counts, err := store.StatusCounts(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			var totalBytes int64
			perSystem := map[string]int{}
			for _, entry := range entries {
				totalBytes += entry.Size
				perSystem[entry.System]++
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Indexed entries: %d (%s)\n", len(entries), humanize.IBytes(uint64(totalBytes)))

			statuses := []string{
				catalog.StatusVerified, catalog.StatusKnown, catalog.StatusUnknown,
				catalog.StatusCompressed, catalog.StatusCorrupt, catalog.StatusError,
			}
			statusRows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				statusRows = append(statusRows, []string{status, fmt.Sprint(counts[status])})
			}
			fmt.Fprintln(out, renderTable(
				[]column{col("Status"), numCol("Entries")},
				statusRows,
			))

			systems := make([]string, 0, len(perSystem))
			for system := range perSystem {
				systems = append(systems, system)
			}
			sort.Strings(systems)
			systemRows := make([][]string, 0, len(systems))
			for _, system := range systems {
				systemRows = append(systemRows, []string{system, fmt.Sprint(perSystem[system])})
			}
			if len(systemRows) > 0 {
				fmt.Fprintln(out, renderTable(
					[]column{col("System"), numCol("Entries")},
					systemRows,
				))
			}
			return nil
		},
	}
}
