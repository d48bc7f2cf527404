package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"foxie/internal/config"
	"foxie/internal/report"
	"foxie/internal/skills"
	"foxie/internal/timeline"
	"foxie/internal/viewer"
)

var (
	optShowDps          bool
	optSortByProfession bool
	optShowIcons        bool
	optVideoOffset      float64
)

// addOptionFlags registers the board toggles on cmd. Only flags set on the
// command line override the config file.
func addOptionFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&optShowDps, timeline.OptionShowDps, false, "Draw the aggregate damage graph")
	cmd.Flags().BoolVar(&optSortByProfession, timeline.OptionSortByProfession, false, "Order players by profession instead of group")
	cmd.Flags().BoolVar(&optShowIcons, timeline.OptionShowIcons, true, "Label casts with skill icons instead of names")
	cmd.Flags().Float64Var(&optVideoOffset, "video-offset", 0, "Seconds of video before the log starts")
}

func applyOptionFlags(cmd *cobra.Command, cfg *config.ViewerConfig) {
	flags := cmd.Flags()
	if flags.Changed(timeline.OptionShowDps) {
		cfg.Options.ShowDps = optShowDps
	}
	if flags.Changed(timeline.OptionSortByProfession) {
		cfg.Options.SortByProfession = optSortByProfession
	}
	if flags.Changed(timeline.OptionShowIcons) {
		cfg.Options.ShowIcons = optShowIcons
	}
	if flags.Changed("video-offset") {
		cfg.VideoOffset = optVideoOffset
	}
}

// loadLog reads a report from a dps.report/wvw.report link or a local JSON file.
func loadLog(ctx context.Context, cfg *config.ViewerConfig, input string) (*report.Log, error) {
	if input == "" {
		return nil, fmt.Errorf("input file or report link required")
	}
	if strings.Contains(input, "://") {
		slug, err := report.ParseReportURL(input)
		if err != nil {
			return nil, err
		}
		timeout, err := cfg.Timeout()
		if err != nil {
			return nil, err
		}
		return report.NewClient(cfg.DpsReportURL, timeout).FetchBySlug(ctx, slug)
	}
	f, err := os.Open(input)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return report.ParseJSON(f)
}

func newSkillLoader(cfg *config.ViewerConfig) (*skills.Client, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	return skills.NewClient(cfg.SkillsURL, timeout), nil
}

// openSession loads input and prepares it for display.
func openSession(ctx context.Context, cfg *config.ViewerConfig, input string) (*viewer.Session, error) {
	l, err := loadLog(ctx, cfg, input)
	if err != nil {
		return nil, err
	}
	loader, err := newSkillLoader(cfg)
	if err != nil {
		return nil, err
	}
	vcfg, err := viewer.ConfigFrom(cfg)
	if err != nil {
		return nil, err
	}
	return viewer.NewSession(ctx, l, loader, vcfg)
}
