package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"foxie/internal/logging"
	"foxie/internal/tui"
)

var (
	tuiInput   string
	tuiLogFile string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse a report timeline in the terminal",
	Long:  "tui loads a report file or link and shows its cast timeline with a keyboard driven needle.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		applyOptionFlags(cmd, cfg)

		fd := int(os.Stdout.Fd())
		if !term.IsTerminal(fd) {
			return fmt.Errorf("tui needs a terminal; use render for SVG output")
		}
		width, height, err := term.GetSize(fd)
		if err != nil {
			return err
		}

		// the board owns the screen, so logs go to a file or nowhere
		var out io.Writer = io.Discard
		if tuiLogFile != "" {
			f, err := tea.LogToFile(tuiLogFile, "foxie")
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		logger := logging.NewWithWriter(out, cfg.LogLevel)
		slog.SetDefault(logger)
		ctx := logging.NewContext(context.Background(), logger)

		sess, err := openSession(ctx, cfg, tuiInput)
		if err != nil {
			return err
		}
		defer sess.Close()
		return tui.Run(sess, width, height)
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiInput, "input", "", "Elite Insights JSON file or dps.report link")
	tuiCmd.Flags().StringVar(&tuiLogFile, "log-file", "", "Write logs to this file while the viewer runs")
	tuiCmd.MarkFlagRequired("input")
	addOptionFlags(tuiCmd)
}
