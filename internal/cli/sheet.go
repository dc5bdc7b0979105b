package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/quantsweep/internal/image"
)

func newSheetCmd() *cobra.Command {
	flags := &sweepFlags{}
	var (
		output  string
		columns int
		cell    int
	)

	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Lay sweep outputs out on a contact sheet",
		Long: `Combine every existing output of a sweep into a single PNG, one labelled
thumbnail per level. Missing outputs are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			tmpl, err := cfg.Template()
			if err != nil {
				return err
			}

			logger := newLogger(cmd)
			loader := image.NewFileLoader()

			var tiles []image.Tile
			for _, level := range cfg.Range.Levels() {
				path := tmpl.OutputPath(level)
				if _, err := os.Stat(path); err != nil {
					logger.Debug("skipping missing output", "level", level, "path", path)
					continue
				}
				img, err := loader.Load(path)
				if err != nil {
					logger.Warn("skipping unreadable output", "level", level, "error", err)
					continue
				}
				tiles = append(tiles, image.Tile{Label: fmt.Sprintf("%d colours", level), Image: img})
			}

			if len(tiles) == 0 {
				return fmt.Errorf("no outputs found in %s", tmpl.HostDir)
			}

			sheet, err := image.ContactSheet(tiles, columns, cell)
			if err != nil {
				return err
			}
			if err := image.WritePNG(output, sheet); err != nil {
				return err
			}

			if !isQuiet(cmd) {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d levels to %s\n", len(tiles), output)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "sheet.png", "contact sheet output path")
	cmd.Flags().IntVar(&columns, "columns", 7, "thumbnails per row")
	cmd.Flags().IntVar(&cell, "cell", 160, "thumbnail size in pixels")

	return cmd
}
