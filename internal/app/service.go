// Package service runs the pipeline stages: it loads each stage's input,
// calls the domain component and commits the stage's outputs as one batch.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/okian/transferiq/internal/adapters/chart"
	"github.com/okian/transferiq/internal/adapters/export"
	"github.com/okian/transferiq/internal/adapters/repository"
	"github.com/okian/transferiq/internal/config"
	"github.com/okian/transferiq/internal/domain/aggregate"
	"github.com/okian/transferiq/internal/domain/efficiency"
	"github.com/okian/transferiq/internal/domain/ranking"
	"github.com/okian/transferiq/pkg/logger"
	"github.com/okian/transferiq/pkg/metrics"
)

// Stage names used in logs and metrics.
const (
	StageDerive = "derive"
	StageReport = "report"
	StageChart  = "chart"
)

// Output file names under the results and figures directories.
const (
	FileCorrelations = "efficiency_correlations.csv"
	FileInsights     = "efficiency_insights.json"
	FileWorkbook     = "efficiency_analysis.xlsx"
	FileDashboard    = "efficiency_dashboard.png"
	FileLeagueChart  = "league_efficiency_comparison.png"
)

// Output kinds counted by the outputs metric.
const (
	kindEnriched     = "enriched_csv"
	kindSummary      = "summary_json"
	kindDimension    = "dimension_csv"
	kindCorrelations = "correlations_csv"
	kindInsights     = "insights_json"
	kindWorkbook     = "workbook_xlsx"
	kindFigure       = "figure_png"
)

// dimensionFiles names each dimension's table file.
var dimensionFiles = map[aggregate.Dimension]string{
	aggregate.FeeBracket: "efficiency_by_fee_bracket.csv",
	aggregate.Position:   "efficiency_by_position.csv",
	aggregate.League:     "efficiency_by_league.csv",
	aggregate.AgeGroup:   "efficiency_by_age_group.csv",
}

// Service wires the store, the domain components and the output batch.
type Service struct {
	cfg     *config.Config
	store   repository.Store
	console io.Writer
	runID   string
	logger  logger.Logger
	metrics *metrics.Manager
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:     config.New(),
		console: os.Stdout,
		runID:   uuid.NewString(),
		metrics: metrics.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger = s.logger.With(logger.String("run_id", s.runID))
	if s.store == nil {
		s.store = repository.NewFileStore(repository.WithLogger(s.logger.Named("repository")))
	}
	return s
}

// RunID returns the identifier attached to every log line and summary.
func (s *Service) RunID() string { return s.runID }

// Run executes derive, report and chart in order, stopping at the first
// failure.
func (s *Service) Run(ctx context.Context) error {
	start := time.Now()
	s.logger.Info(ctx, "pipeline starting", logger.String("input", s.cfg.Paths.Input))

	for _, step := range []func(context.Context) error{s.Derive, s.Report, s.Chart} {
		if err := step(ctx); err != nil {
			return err
		}
	}

	s.logger.Info(ctx, "pipeline complete", logger.Duration("took", time.Since(start)))
	return nil
}

// Derive reads the raw table, derives every metric and writes the enriched
// table and the summary.
func (s *Service) Derive(ctx context.Context) error {
	return s.stage(ctx, StageDerive, ErrDerive, func(ctx context.Context, b *repository.Batch) error {
		in, err := s.store.LoadTransfers(ctx, s.cfg.Paths.Input)
		if err != nil {
			return err
		}

		d := efficiency.NewDeriver(
			efficiency.WithConfig(s.cfg.Metrics),
			efficiency.WithRunID(s.runID),
			efficiency.WithLogger(s.logger.Named("deriver")),
			efficiency.WithMetrics(s.metrics),
		)
		res, err := d.Derive(ctx, in)
		if err != nil {
			return err
		}

		b.Add(s.cfg.Paths.Enriched, kindEnriched, func(w io.Writer) error {
			return repository.WriteEnriched(w, res.Records)
		})
		b.Add(s.cfg.Paths.Summary, kindSummary, func(w io.Writer) error {
			return repository.WriteJSON(w, res.Summary)
		})

		if s.cfg.Report.Console {
			con := export.NewConsole(s.console)
			con.Ranking(fmt.Sprintf("Top %d Most Efficient Transfers", s.cfg.Metrics.TopN), res.Top)
			if bottom, err := ranking.BottomN(res.Records, s.cfg.Metrics.TopN); err == nil {
				con.Ranking(fmt.Sprintf("Top %d Least Efficient Transfers", s.cfg.Metrics.TopN), bottom)
			}
		}
		return nil
	})
}

// Report aggregates the enriched table and writes the dimension tables,
// correlations, insights and the optional workbook.
func (s *Service) Report(ctx context.Context) error {
	return s.stage(ctx, StageReport, ErrReport, func(ctx context.Context, b *repository.Batch) error {
		records, err := s.store.LoadEnriched(ctx, s.cfg.Paths.Enriched)
		if err != nil {
			return err
		}

		agg, err := s.aggregator()
		if err != nil {
			return err
		}
		rep, err := agg.Aggregate(ctx, records)
		if err != nil {
			return err
		}

		dir := s.cfg.Paths.ResultsDir
		for _, t := range rep.Tables {
			t := t
			b.Add(filepath.Join(dir, dimensionFiles[t.Dimension]), kindDimension, func(w io.Writer) error {
				return repository.WriteCSV(w, t.Header(), t.Records())
			})
		}
		b.Add(filepath.Join(dir, FileCorrelations), kindCorrelations, func(w io.Writer) error {
			return repository.WriteCSV(w, aggregate.CorrelationHeader, aggregate.CorrelationRecords(rep.EfficiencyCorrelations))
		})
		b.Add(filepath.Join(dir, FileInsights), kindInsights, func(w io.Writer) error {
			return repository.WriteJSON(w, rep.Summary())
		})
		if s.cfg.Report.ExportXLSX {
			b.Add(filepath.Join(dir, FileWorkbook), kindWorkbook, func(w io.Writer) error {
				return export.WriteWorkbook(w, rep)
			})
		}

		if s.cfg.Report.Console {
			export.NewConsole(s.console).Report(rep)
		}
		return nil
	})
}

// Chart renders the dashboard and the league comparison from the enriched
// table.
func (s *Service) Chart(ctx context.Context) error {
	return s.stage(ctx, StageChart, ErrChart, func(ctx context.Context, b *repository.Batch) error {
		records, err := s.store.LoadEnriched(ctx, s.cfg.Paths.Enriched)
		if err != nil {
			return err
		}
		s.metrics.RecordsLoaded(StageChart, len(records))

		agg, err := s.aggregator()
		if err != nil {
			return err
		}
		r := chart.New(s.cfg.Charts, agg,
			chart.WithLogger(s.logger.Named("chart")),
			chart.WithRankedCount(s.cfg.Metrics.TopN),
		)

		dash, err := r.Dashboard(ctx, records)
		if err != nil {
			return err
		}
		league, err := r.LeagueComparison(ctx, records)
		if err != nil {
			return err
		}

		dir := s.cfg.Paths.FiguresDir
		b.Add(filepath.Join(dir, FileDashboard), kindFigure, dash.WritePNG)
		b.Add(filepath.Join(dir, FileLeagueChart), kindFigure, league.WritePNG)
		return nil
	})
}

func (s *Service) aggregator() (*aggregate.Aggregator, error) {
	return aggregate.New(s.cfg.Buckets,
		aggregate.WithLogger(s.logger.Named("aggregator")),
		aggregate.WithMetrics(s.metrics),
	)
}

// stage runs build, commits whatever it queued and records the outcome.
// Nothing is written when build fails.
func (s *Service) stage(ctx context.Context, name string, kind error, build func(context.Context, *repository.Batch) error) (err error) {
	log := s.logger.With(logger.String("stage", name))
	start := time.Now()
	log.Info(ctx, "stage starting")

	defer func() {
		took := time.Since(start)
		s.metrics.ObserveStage(name, took, err)
		if werr := s.metrics.WriteTextfile(s.cfg.Paths.MetricsFile); werr != nil {
			log.Warn(ctx, "metrics textfile not written", logger.Error(werr))
		}
		if err != nil {
			log.Error(ctx, "stage failed", logger.Error(err), logger.Duration("took", took))
			return
		}
		log.Info(ctx, "stage complete", logger.Duration("took", took))
	}()

	b := repository.NewBatch(repository.WithBatchLogger(log))
	if err := build(ctx, b); err != nil {
		return fmt.Errorf("%w: %w", kind, err)
	}
	if err := b.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %w", kind, err)
	}
	for _, k := range b.Kinds() {
		s.metrics.OutputWritten(k)
	}
	return nil
}
