package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	app "github.com/okian/transferiq/internal/app"
	"github.com/okian/transferiq/internal/config"
	"github.com/okian/transferiq/internal/sample"
	"github.com/okian/transferiq/pkg/logger"
)

const defaultSamplePath = "data/raw/transfers_with_performance.csv"

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "transferiq",
		Short: "Transfer value-for-money pipeline",
		Long: `Derives efficiency metrics for paid football transfers, aggregates them
by fee bracket, position, league and age group, and renders the charts.

Examples:
  transferiq run
  transferiq derive --config pipeline.yaml
  transferiq generate --count 1000 --seed 7`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default: $"+config.EnvConfigFile+")")

	stages := []struct {
		use, short string
		run        func(*app.Service, context.Context) error
	}{
		{"derive", "Derive per-transfer metrics and the summary", (*app.Service).Derive},
		{"report", "Aggregate the enriched table into reports", (*app.Service).Report},
		{"chart", "Render the dashboard and league figures", (*app.Service).Chart},
		{"run", "Run derive, report and chart in order", (*app.Service).Run},
	}
	for _, st := range stages {
		st := st
		root.AddCommand(&cobra.Command{
			Use:   st.use,
			Short: st.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, err := setup(cmd, configPath)
				if err != nil {
					return err
				}
				return st.run(svc, cmd.Context())
			},
		})
	}
	root.AddCommand(generateCmd())
	return root
}

// setup loads configuration, initializes logging and builds the service.
func setup(cmd *cobra.Command, configPath string) (*app.Service, error) {
	ctx := cmd.Context()
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return app.New(
		app.WithConfig(cfg),
		app.WithLogger(logger.Get()),
		app.WithConsole(cmd.OutOrStdout()),
	), nil
}

func generateCmd() *cobra.Command {
	cfg := sample.DefaultConfig()
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic transfer table with indicator columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			records, st, err := sample.Generate(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer func() {
				if cerr := f.Close(); err == nil && cerr != nil {
					err = cerr
				}
			}()
			if err := sample.WriteCSV(f, records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d transfers (%d free, %d missing fee) to %s\n",
				st.Rows, st.FreeTransfers, st.MissingFees, out)
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.Count, "count", cfg.Count, "number of transfers")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "generator seed")
	cmd.Flags().StringVar(&out, "out", defaultSamplePath, "output CSV path")
	return cmd
}
