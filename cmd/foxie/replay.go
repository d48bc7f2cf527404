package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"foxie/internal/export"
	"foxie/internal/viewer"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
	replaySVG       string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay an exported cast log file",
	Long:  "replay feeds cast rows from a JSONL export back into GreptimeDB or STDOUT, and can redraw them as SVG.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		writer, _, cleanup, err := newWriters(cfg, replayPrintOnly, "", logger)
		if err != nil {
			return err
		}
		defer cleanup()

		var collector *export.LogCollector
		if replaySVG != "" {
			collector = export.NewLogCollector()
			writer = export.NewMultiWriter([]export.CastWriter{writer, collector}, nil)
		}
		if err := export.ReplayCastFile(replayInput, writer, replaySpeed); err != nil {
			return err
		}
		if collector == nil {
			return nil
		}

		vcfg, err := viewer.ConfigFrom(cfg)
		if err != nil {
			return err
		}
		sess, err := viewer.NewSession(context.Background(), collector.Log(), nil, vcfg)
		if err != nil {
			return err
		}
		defer sess.Close()
		return writeOutput(replaySVG, sess.BoardSVG())
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to cast log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier (0 for no delay)")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	replayCmd.Flags().StringVar(&replaySVG, "svg", "", "Redraw the replayed casts to this SVG path (- for STDOUT)")
	replayCmd.MarkFlagRequired("input")
}
