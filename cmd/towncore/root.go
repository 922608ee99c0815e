package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"towncore/internal/config"
	"towncore/internal/core"
	"towncore/internal/infra/datasource"
)

// app carries state shared by the subcommands.
type app struct {
	configPath string
	logLevel   string
	cfg        config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "towncore",
		Short:         "Indexed town registry with a master/vassal hierarchy",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (defaults to $"+config.EnvConfigFile+" or ./towncore.*)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	root.AddCommand(newReportCmd(a), newServeCmd(a), newImportCmd(a), newDatasetsCmd(a))
	return root
}

func (a *app) init(stderr io.Writer) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		a.cfg.Log.Level = a.logLevel
	}
	a.logger, err = newLogger(a.cfg.Log, stderr)
	return err
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// load opens the configured dataset source and loads it into svc.
func (a *app) load(ctx context.Context, svc *core.Service) (string, core.LoadReport, error) {
	src, closeFn, err := datasource.Open(ctx, a.cfg.Dataset)
	if err != nil {
		return "", core.LoadReport{}, err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil {
			a.logger.Warn("close dataset source", "error", cerr)
		}
	}()
	ds, err := src.Load(ctx)
	if err != nil {
		return src.Describe(), core.LoadReport{}, fmt.Errorf("load %s: %w", src.Describe(), err)
	}
	if err := ds.Validate(); err != nil {
		a.logger.Warn("dataset has invalid rows", "source", src.Describe(), "error", err)
	}
	report, err := svc.Load(ctx, ds)
	if err != nil {
		return src.Describe(), report, err
	}
	a.logger.Info("dataset loaded", "source", src.Describe(), "towns", report.Towns, "vassalships", report.Vassalships, "skipped", len(report.Skipped))
	return src.Describe(), report, nil
}
