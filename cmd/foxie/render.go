package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"foxie/internal/logging"
)

var (
	renderInput  string
	renderOut    string
	renderLegend string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a report timeline to SVG",
	Long:  "render loads a report file or link and writes the board, and optionally the legend, as SVG documents.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		applyOptionFlags(cmd, cfg)
		ctx := logging.NewContext(context.Background(), logger)
		sess, err := openSession(ctx, cfg, renderInput)
		if err != nil {
			return err
		}
		defer sess.Close()

		if err := writeOutput(renderOut, sess.BoardSVG()); err != nil {
			return err
		}
		if renderLegend != "" {
			if err := os.WriteFile(renderLegend, []byte(sess.LegendSVG()), 0o644); err != nil {
				return err
			}
		}
		logger.Info("rendered", "encounter", sess.Log.Encounter, "rows", sess.Rows(), "width", sess.Dims.Width)
		return nil
	},
}

// writeOutput writes doc to path, or to STDOUT for "" and "-".
func writeOutput(path, doc string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprintln(os.Stdout, doc)
		return err
	}
	return os.WriteFile(path, []byte(doc), 0o644)
}

func init() {
	renderCmd.Flags().StringVar(&renderInput, "input", "", "Elite Insights JSON file or dps.report link")
	renderCmd.Flags().StringVar(&renderOut, "out", "-", "Board SVG output path (- for STDOUT)")
	renderCmd.Flags().StringVar(&renderLegend, "legend", "", "Legend SVG output path")
	renderCmd.MarkFlagRequired("input")
	addOptionFlags(renderCmd)
}
