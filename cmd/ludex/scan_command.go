package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"ludex/internal/scanner"
	"ludex/internal/tools"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var deep bool
	var workers int

	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Index and verify the game library",
		Long: `Walk the library root, classify every image by its console-family
directory, extract serials and titles, and verify hashes against the DAT
catalogs. Without a root argument the configured library_dir is scanned.

Unchanged files (same size, same mtime) are skipped unless --deep is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root := cfg.Paths.LibraryDir
			if len(args) > 0 {
				root = strings.TrimSpace(args[0])
			}
			if root == "" {
				return fmt.Errorf("no scan root given and no library_dir configured")
			}

			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}
			store, err := ctx.openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-runCtx.Done()
				tools.CancelAll()
			}()

			opts := scanner.Options{
				DeepScan:   deep || cfg.Scan.DeepScan,
				Workers:    workers,
				QueueDepth: cfg.Scan.QueueDepth,
			}
			if workers == 0 {
				opts.Workers = cfg.Scan.Workers
			}
			if isatty.IsTerminal(os.Stdout.Fd()) {
				opts.Progress = func(fraction float64, message string) {
					fmt.Fprintf(cmd.OutOrStdout(), "\r\033[K[%3.0f%%] %s", fraction*100, message)
				}
			}

			stats, err := ctx.newScanner(cfg, store, logger).Scan(runCtx, root, opts)
			if opts.Progress != nil {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]column{numCol("Added"), numCol("Updated"), numCol("Removed"), numCol("Skipped"), numCol("Verified")},
				[][]string{{
					fmt.Sprint(stats.Added),
					fmt.Sprint(stats.Updated),
					fmt.Sprint(stats.Removed),
					fmt.Sprint(stats.Skipped),
					fmt.Sprint(stats.Verified),
				}},
			))
			if runCtx.Err() != nil {
				fmt.Fprintln(out, "Scan interrupted; partial results were saved.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&deep, "deep", false, "Re-hash files even when size and mtime are unchanged")
	cmd.Flags().IntVar(&workers, "workers", 0, "Hashing worker count (default: CPU count minus one)")
	return cmd
}
