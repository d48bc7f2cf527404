package main

import (
	"github.com/spf13/cobra"

	"foxie/internal/dashboard"
)

var dashboardOut string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render the Grafana dashboard for exported tables",
	Long:  "dashboard writes a Grafana dashboard JSON querying the GreptimeDB cast and damage tables. GREPTIMEDB_DATASOURCE_UID must be set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if err := dashboard.Render(dashboardOut, dashboard.TablesFrom(cfg.Greptime)); err != nil {
			return err
		}
		logger.Info("dashboard rendered", "dir", dashboardOut)
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardOut, "out", "build", "Output directory")
}
