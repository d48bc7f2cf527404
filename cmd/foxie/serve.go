package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"foxie/internal/report"
	"foxie/internal/server"
	"foxie/internal/viewer"
)

var (
	serveListen   string
	serveSessions int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the timeline viewer over HTTP",
	Long:  "serve starts the web viewer: a setup page to load a report and a board page driven over a websocket.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		applyOptionFlags(cmd, cfg)
		if serveListen != "" {
			cfg.Listen = serveListen
		}
		timeout, err := cfg.Timeout()
		if err != nil {
			return err
		}
		vcfg, err := viewer.ConfigFrom(cfg)
		if err != nil {
			return err
		}
		loader, err := newSkillLoader(cfg)
		if err != nil {
			return err
		}

		srv := server.NewServer(vcfg,
			report.NewClient(cfg.DpsReportURL, timeout),
			loader,
			viewer.NewRegistry(serveSessions),
			logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = srv.Start(ctx, cfg.Listen)
		logger.Info("viewer stopped")
		return err
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address; overrides the config file")
	serveCmd.Flags().IntVar(&serveSessions, "sessions", viewer.DefaultRegistryLimit, "Number of reports kept loaded")
	addOptionFlags(serveCmd)
}
