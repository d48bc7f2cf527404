package main

import (
	"log/slog"

	"foxie/internal/config"
	"foxie/internal/export"
)

// newWriters sets up cast and damage writers based on flags and config.
// It returns the writers and a cleanup function to close any resources.
func newWriters(cfg *config.ViewerConfig, printOnly bool, logFile string, logger *slog.Logger) (export.CastWriter, export.DamageWriter, func(), error) {
	cleanup := func() {}

	cw, dw, err := baseWriters(cfg, printOnly, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	if logFile == "" {
		return cw, dw, cleanup, nil
	}
	fw, err := export.NewFileWriter(logFile, logFile+".damage")
	if err != nil {
		return nil, nil, nil, err
	}
	mw := export.NewMultiWriter([]export.CastWriter{cw, fw}, []export.DamageWriter{dw, fw})
	cleanup = func() { fw.Close() }
	return mw, mw, cleanup, nil
}

// baseWriters chooses STDOUT unless a GreptimeDB endpoint is configured.
func baseWriters(cfg *config.ViewerConfig, printOnly bool, logger *slog.Logger) (export.CastWriter, export.DamageWriter, error) {
	if printOnly || cfg.Greptime.Endpoint == "" {
		sw := &export.StdoutWriter{}
		return sw, sw, nil
	}
	w, err := export.NewGreptimeDBWriter(cfg.Greptime, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("writing to greptimedb", "endpoint", cfg.Greptime.Endpoint, "database", cfg.Greptime.Database)
	return w, w, nil
}
