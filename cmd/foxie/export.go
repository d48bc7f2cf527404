package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"foxie/internal/export"
	"foxie/internal/logging"
)

var (
	exportInput     string
	exportSession   string
	exportStart     string
	exportPrintOnly bool
	exportLogFile   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export casts and damage of a report",
	Long:  "export writes every cast and the aggregate damage series of a report to GreptimeDB, STDOUT and an optional JSONL file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		base := time.Now().UTC()
		if exportStart != "" {
			base, err = time.Parse(time.RFC3339, exportStart)
			if err != nil {
				return err
			}
		}
		ctx := logging.NewContext(context.Background(), logger)
		sess, err := openSession(ctx, cfg, exportInput)
		if err != nil {
			return err
		}
		defer sess.Close()
		id := exportSession
		if id == "" {
			id = sess.ID
		}

		cw, dw, cleanup, err := newWriters(cfg, exportPrintOnly, exportLogFile, logger)
		if err != nil {
			return err
		}
		defer cleanup()
		if err := export.Export(sess.Log, id, base, cw, dw); err != nil {
			return err
		}
		logger.Info("exported", "session", id, "encounter", sess.Log.Encounter)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportInput, "input", "", "Elite Insights JSON file or dps.report link")
	exportCmd.Flags().StringVar(&exportSession, "session", "", "Session tag of the exported rows (default: a new uuid)")
	exportCmd.Flags().StringVar(&exportStart, "start", "", "Wall time of the log start, RFC3339 (default: now)")
	exportCmd.Flags().BoolVar(&exportPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	exportCmd.Flags().StringVar(&exportLogFile, "log-file", "", "Also write rows to this JSONL file (damage rows to <file>.damage)")
	exportCmd.MarkFlagRequired("input")
}
