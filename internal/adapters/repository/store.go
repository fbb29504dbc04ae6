// Package repository reads and writes the pipeline's flat files: the raw
// transfer table, the enriched table, JSON reports and summary tables.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/okian/transferiq/internal/domain/model"
	"github.com/okian/transferiq/internal/domain/types"
	"github.com/okian/transferiq/pkg/logger"
)

// Store loads the tables each stage consumes.
type Store interface {
	// LoadTransfers reads the raw transfer + performance table.
	// Returns ErrMissingInput, ErrMissingColumn or ErrInvalidValue.
	LoadTransfers(ctx context.Context, path string) ([]model.TransferRecord, error)

	// LoadEnriched reads a table written by WriteEnriched.
	LoadEnriched(ctx context.Context, path string) ([]model.EnrichedRecord, error)
}

// FileStore implements Store over CSV files on local disk.
type FileStore struct {
	logger logger.Logger
}

// NewFileStore constructs a file store with configuration options.
func NewFileStore(opts ...Option) *FileStore {
	s := &FileStore{logger: logger.Get().Named("repository")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// nanValues are the cells read as missing.
var nanValues = []string{"", "NA", "NaN", "nan", "<nil>"}

// table is a loaded CSV with string columns and its header set.
type table struct {
	path  string
	df    dataframe.DataFrame
	names map[string]struct{}
	cols  map[string][]string
}

func (s *FileStore) readTable(ctx context.Context, path string, required []string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrReadTable, path, err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nanValues),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadTable, path, df.Err)
	}

	t := &table{path: path, df: df, names: map[string]struct{}{}, cols: map[string][]string{}}
	for _, n := range df.Names() {
		t.names[n] = struct{}{}
	}
	for _, col := range required {
		if !t.has(col) {
			return nil, fmt.Errorf("%w: %q in %s", ErrMissingColumn, col, path)
		}
	}
	s.logger.Debug(ctx, "loaded table",
		logger.String("path", path),
		logger.Int("rows", df.Nrow()),
		logger.Int("columns", df.Ncol()),
	)
	return t, nil
}

func (t *table) has(col string) bool {
	_, ok := t.names[col]
	return ok
}

func (t *table) rows() int { return t.df.Nrow() }

// cells returns the raw cells of col with missing cells as "".
func (t *table) cells(col string) []string {
	if c, ok := t.cols[col]; ok {
		return c
	}
	ser := t.df.Col(col)
	recs := ser.Records()
	nan := ser.IsNaN()
	for i := range recs {
		if nan[i] || isNaNCell(recs[i]) {
			recs[i] = ""
		}
	}
	t.cols[col] = recs
	return recs
}

// text returns cell i of col, or fallback when the column is absent or the
// cell is empty.
func (t *table) text(col string, i int, fallback string) string {
	if !t.has(col) {
		return fallback
	}
	v := strings.TrimSpace(t.cells(col)[i])
	if v == "" {
		return fallback
	}
	return v
}

// number parses cell i of col; empty cells are missing.
func (t *table) number(col string, i int) (types.NullFloat, error) {
	if !t.has(col) {
		return types.None(), nil
	}
	raw := strings.TrimSpace(t.cells(col)[i])
	if raw == "" {
		return types.None(), nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// header is line 1
		return types.None(), fmt.Errorf("%w: %s row %d column %q: %q", ErrInvalidValue, t.path, i+2, col, raw)
	}
	return types.FromFloat(v), nil
}

// flag reports whether an indicator cell is set.
func (t *table) flag(col string, i int) bool {
	raw := strings.ToLower(strings.TrimSpace(t.cells(col)[i]))
	switch raw {
	case "true", "yes":
		return true
	}
	v, err := strconv.ParseFloat(raw, 64)
	return err == nil && v == 1
}

func isNaNCell(s string) bool {
	for _, n := range nanValues {
		if s == n {
			return true
		}
	}
	return false
}

// LoadTransfers implements Store.LoadTransfers.
func (s *FileStore) LoadTransfers(ctx context.Context, path string) ([]model.TransferRecord, error) {
	t, err := s.readTable(ctx, path, RequiredInputColumns)
	if err != nil {
		return nil, err
	}

	leagueCols := make([]string, 0)
	for _, n := range t.df.Names() {
		if strings.HasPrefix(n, leagueIndicatorPrefix) {
			leagueCols = append(leagueCols, n)
		}
	}

	out := make([]model.TransferRecord, t.rows())
	for i := range out {
		r := model.TransferRecord{
			PlayerName: t.text(ColPlayerName, i, ""),
			ClubName:   t.text(ColClubName, i, ""),
			Season:     t.text(ColSeason, i, ""),
			Position:   t.position(i),
			League:     t.league(i, leagueCols),
		}
		nums := []struct {
			col string
			dst *types.NullFloat
		}{
			{ColAge, &r.Age},
			{ColFeeMillions, &r.FeeMillions},
			{ColGoals, &r.Goals},
			{ColAssists, &r.Assists},
			{ColMinutes, &r.Minutes},
		}
		for _, n := range nums {
			if *n.dst, err = t.number(n.col, i); err != nil {
				return nil, err
			}
		}
		out[i] = r

		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}

	s.logger.Info(ctx, "loaded transfers",
		logger.String("path", path),
		logger.Int("records", len(out)),
		logger.Int("league_indicators", len(leagueCols)),
	)
	return out, nil
}

func (t *table) position(i int) string {
	if t.has(ColPosition) {
		return t.text(ColPosition, i, model.UnknownPosition)
	}
	pos := model.UnknownPosition
	for _, ind := range PositionIndicators {
		if t.has(ind.Column) && t.flag(ind.Column, i) {
			pos = ind.Label
		}
	}
	return pos
}

func (t *table) league(i int, indicators []string) string {
	if t.has(ColLeague) {
		return t.text(ColLeague, i, model.UnknownLeague)
	}
	league := model.UnknownLeague
	for _, col := range indicators {
		if t.flag(col, i) {
			league = strings.TrimPrefix(col, leagueIndicatorPrefix)
		}
	}
	return league
}

// LoadEnriched implements Store.LoadEnriched.
func (s *FileStore) LoadEnriched(ctx context.Context, path string) ([]model.EnrichedRecord, error) {
	t, err := s.readTable(ctx, path, requiredEnrichedColumns)
	if err != nil {
		return nil, err
	}

	out := make([]model.EnrichedRecord, t.rows())
	for i := range out {
		r := model.EnrichedRecord{}
		r.PlayerName = t.text(ColPlayerName, i, "")
		r.ClubName = t.text(ColClubName, i, "")
		r.Season = t.text(ColSeason, i, "")
		r.Position = t.text(ColPosition, i, model.UnknownPosition)
		r.League = t.text(ColLeague, i, model.UnknownLeague)
		r.EfficiencyCategory = t.text(ColEfficiencyCategory, i, model.CategoryUnknown)

		nums := []struct {
			col string
			dst *types.NullFloat
		}{
			{ColAge, &r.Age},
			{ColFeeMillions, &r.FeeMillions},
			{ColGoals, &r.Goals},
			{ColAssists, &r.Assists},
			{ColMinutes, &r.Minutes},
			{ColGoalContribution, &r.GoalContribution},
			{ColPerformanceIndex, &r.PerformanceIndex},
			{ColPerformanceIndexNrm, &r.PerformanceIndexNormalized},
			{ColVfMScore, &r.VfMScore},
			{ColCostPerGoal, &r.CostPerGoal},
			{ColCostPerAssist, &r.CostPerAssist},
			{ColCostPerContribution, &r.CostPerContribution},
			{ColEfficiencyScore, &r.EfficiencyScore},
		}
		for _, n := range nums {
			if *n.dst, err = t.number(n.col, i); err != nil {
				return nil, err
			}
		}
		out[i] = r
	}

	s.logger.Info(ctx, "loaded enriched records",
		logger.String("path", path),
		logger.Int("records", len(out)),
	)
	return out, nil
}
