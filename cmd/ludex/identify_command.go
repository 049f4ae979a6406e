package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "identify <file>",
		Short: "Classify a single image and show its extracted metadata",
		Long: `Resolve the console family for one file by extension and content
signature, then extract its serial and title. Useful for checking how a file
would be indexed without running a full scan.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			registry := ctx.newRegistry(cfg)
			prov := registry.ForFile(path)
			if prov == nil {
				return fmt.Errorf("no provider recognizes %s", filepath.Base(path))
			}

			meta, metaErr := prov.ExtractMetadata(cmd.Context(), path)
			report := map[string]string{
				"path":    path,
				"system":  prov.SystemID(),
				"family":  prov.DisplayName(),
				"serial":  meta.Serial,
				"title":   meta.Title,
				"ideal":   prov.IdealFilename(path, meta),
				"convert": yesNo(prov.NeedsConversion(path)),
			}
			for key, value := range meta.Extra {
				report["extra."+key] = value
			}
			if metaErr != nil {
				report["note"] = metaErr.Error()
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(report)
			}

			keys := make([]string, 0, len(report))
			for key := range report {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				rows = append(rows, []string{key, report[key]})
			}
			fmt.Fprintln(out, renderTable(
				[]column{col("Field"), col("Value")},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the report as JSON")
	return cmd
}
