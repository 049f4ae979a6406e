package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"ludex/internal/library"
)

func newQuarantineCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "quarantine <file>...",
		Short: "Move suspect files into the quarantine directory",
		Long: `Move one or more library files into the quarantine directory under the
library root and drop their catalog entries. Quarantined files are ignored by
subsequent scans and can be brought back with "ludex restore".`,
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

			ops := library.NewOps(store, cfg.Paths.LibraryDir)
			out := cmd.OutOrStdout()
			for _, arg := range args {
				path, err := filepath.Abs(arg)
				if err != nil {
					return err
				}
				dest, err := ops.Quarantine(cmd.Context(), path)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Quarantined %s -> %s\n", path, dest)
			}
			return nil
		},
	}
}

func newRestoreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>...",
		Short: "Return quarantined files to their original locations",
		Args:  cobra.MinimumNArgs(1),
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

			ops := library.NewOps(store, cfg.Paths.LibraryDir)
			out := cmd.OutOrStdout()
			for _, arg := range args {
				path, err := filepath.Abs(arg)
				if err != nil {
					return err
				}
				if err := ops.Restore(cmd.Context(), path); err != nil {
					return err
				}
				fmt.Fprintf(out, "Restored %s\n", path)
			}
			return nil
		},
	}
}
