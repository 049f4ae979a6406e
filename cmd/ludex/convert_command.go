package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ludex/internal/catalog"
	"ludex/internal/fileutil"
	"ludex/internal/tools"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var removeOriginal bool

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Compress an image into its family's preferred format",
		Long: `Convert a disc image to the compressed format preferred by its console
family: CHD (chdman) for PlayStation discs, RVZ (dolphin-tool) for GameCube
and Wii. The original file is kept unless --remove is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			input, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			info, err := os.Stat(input)
			if err != nil {
				return fmt.Errorf("stat input: %w", err)
			}

			registry := ctx.newRegistry(cfg)
			prov := registry.ForFile(input)
			if prov == nil {
				return fmt.Errorf("no provider recognizes %s", filepath.Base(input))
			}
			format := prov.PreferredCompression()
			if format == "" {
				return fmt.Errorf("%s images have no preferred compressed format", prov.DisplayName())
			}
			if strings.EqualFold(strings.TrimPrefix(filepath.Ext(input), "."), format) {
				return fmt.Errorf("%s is already a %s archive", filepath.Base(input), strings.ToUpper(format))
			}

			output := strings.TrimSpace(outputPath)
			if output == "" {
				stem := strings.TrimSuffix(input, filepath.Ext(input))
				output = fileutil.UniquePath(stem + "." + format)
			}

			// Worst case the archive is as large as the source.
			free, err := fileutil.FreeSpace(filepath.Dir(output))
			if err == nil && free < uint64(info.Size()) {
				return fmt.Errorf("not enough free space for %s: need %d bytes, have %d", output, info.Size(), free)
			}

			timeout := tools.WithTimeout(ctx.toolTimeout(cfg))
			switch format {
			case "chd":
				err = tools.NewChdman(cfg.ChdmanBinary(), timeout).CreateCHD(cmd.Context(), input, output)
			case "rvz":
				err = tools.NewDolphinTool(cfg.DolphinToolBinary(), timeout).ConvertToRVZ(cmd.Context(), input, output, tools.RVZOptions{})
			default:
				return fmt.Errorf("no converter produces %s archives", format)
			}
			if err != nil {
				return err
			}

			store, storeErr := ctx.openStore(cfg)
			if storeErr != nil {
				return storeErr
			}
			defer store.Close()
			if _, err := store.RecordAction(cmd.Context(), catalog.Action{
				Kind:   catalog.ActionConvert,
				Path:   input,
				Detail: output,
			}); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Converted %s -> %s\n", input, output)
			if removeOriginal {
				if err := os.Remove(input); err != nil {
					return fmt.Errorf("remove original: %w", err)
				}
				if err := store.Delete(cmd.Context(), input); err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %s\n", input)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination path for the converted archive")
	cmd.Flags().BoolVar(&removeOriginal, "remove", false, "Delete the source file after a successful conversion")
	return cmd
}
