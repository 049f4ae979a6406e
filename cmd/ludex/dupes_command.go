package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ludex/internal/dupes"
)

func newDupesCommand(ctx *commandContext) *cobra.Command {
	var byName bool
	var hashOnly bool

	cmd := &cobra.Command{
		Use:   "dupes",
		Short: "Report duplicate library entries",
		Long: `Group indexed entries that hold the same game. Hash groups collect
byte-identical copies; name groups additionally collect regional variants and
format conversions whose filenames normalize to the same title.`,
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
			out := cmd.OutOrStdout()

			hashed, err := store.ListHashed(cmd.Context())
			if err != nil {
				return err
			}
			hashGroups := dupes.ByHash(hashed)
			printGroups(out, "Identical content", hashGroups)

			if byName && !hashOnly {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				printGroups(out, "Similar names", dupes.ByName(entries))
			}

			if len(hashGroups) == 0 && !byName {
				fmt.Fprintln(out, "No duplicate content found.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&byName, "by-name", false, "Also group by normalized filename")
	cmd.Flags().BoolVar(&hashOnly, "hash-only", false, "Only report byte-identical duplicates")
	return cmd
}

func printGroups(out interface{ Write([]byte) (int, error) }, title string, groups []dupes.Group) {
	if len(groups) == 0 {
		return
	}
	var total int64
	rows := make([][]string, 0, len(groups))
	for _, group := range groups {
		total += group.Wasted
		paths := make([]string, 0, len(group.Entries))
		for _, entry := range group.Entries {
			paths = append(paths, entry.Path)
		}
		rows = append(rows, []string{
			group.Key,
			fmt.Sprint(len(group.Entries)),
			humanize.IBytes(uint64(group.Wasted)),
			strings.Join(paths, "\n"),
		})
	}
	fmt.Fprintf(out, "%s: %d groups, %s reclaimable\n", title, len(groups), humanize.IBytes(uint64(total)))
	fmt.Fprintln(out, renderTable(
		[]column{col("Group"), numCol("Copies"), numCol("Wasted"), col("Paths")},
		rows,
	))
}
