package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"ludex/internal/library"
)

func newRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <file>...",
		Short: "Rename indexed files to their canonical titles",
		Long: `Rename one or more indexed files to the canonical filename derived from
their extracted metadata ("Title [SERIAL].ext"). Files must already be in the
catalog; run a scan first. Files whose names are already canonical are left
alone.`,
		Args: cobra.MinimumNArgs(1),
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

			registry := ctx.newRegistry(cfg)
			ops := library.NewOps(store, cfg.Paths.LibraryDir)
			out := cmd.OutOrStdout()
			for _, arg := range args {
				path, err := filepath.Abs(arg)
				if err != nil {
					return err
				}
				entry, err := store.Get(cmd.Context(), path)
				if err != nil {
					return err
				}
				if entry == nil {
					return fmt.Errorf("%s is not indexed; scan it first", path)
				}
				prov, ok := registry.BySystem(entry.System)
				if !ok {
					prov = registry.ForFile(path)
				}
				dest, err := ops.Rename(cmd.Context(), entry, prov)
				if err != nil {
					return err
				}
				if dest == path {
					fmt.Fprintf(out, "Already canonical: %s\n", path)
					continue
				}
				fmt.Fprintf(out, "Renamed %s -> %s\n", path, dest)
			}
			return nil
		},
	}
}
