package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSystemsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "systems",
		Short: "List recognized console families",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			registry := ctx.newRegistry(cfg)

			rows := make([][]string, 0, 8)
			for _, prov := range registry.Providers() {
				compression := prov.PreferredCompression()
				if compression == "" {
					compression = "-"
				}
				rows = append(rows, []string{
					prov.SystemID(),
					prov.DisplayName(),
					strings.Join(prov.SupportedExtensions(), " "),
					compression,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]column{col("System"), col("Family"), col("Extensions"), col("Preferred")},
				rows,
			))
			return nil
		},
	}
}
