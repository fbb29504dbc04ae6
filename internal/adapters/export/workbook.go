// Package export renders report tables to an XLSX workbook and to the
// console.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/okian/transferiq/internal/domain/aggregate"
	"github.com/okian/transferiq/internal/domain/types"
)

// ErrWorkbook wraps every workbook failure.
var ErrWorkbook = errors.New("workbook export failed")

// Sheet names beyond the dimension tables.
const (
	SheetCorrelations = "Correlations"
	SheetEfficiency   = "Efficiency Correlations"
	SheetInsights     = "Insights"

	defaultSheet = "Sheet1"
	colWidth     = 18
)

// WriteWorkbook renders rep as an XLSX workbook into w: one sheet per
// dimension table, then the correlation matrix, the efficiency
// correlations and the insights.
func WriteWorkbook(w io.Writer, rep aggregate.Report) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("%w: %v", ErrWorkbook, cerr)
		}
	}()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DCE6F1"}},
	})
	if err != nil {
		return fmt.Errorf("%w: style: %v", ErrWorkbook, err)
	}
	b := &book{f: f, header: header}

	for _, t := range rep.Tables {
		rows := make([][]any, len(t.Rows))
		for i, r := range t.Rows {
			rows[i] = []any{
				r.Label, r.Records,
				cell(r.EfficiencyMean), cell(r.EfficiencyMedian), cell(r.EfficiencyStd), r.EfficiencyCount,
				cell(r.VfMMean), cell(r.CostPerGoalMean), cell(r.CostPerContributionMean),
				cell(r.FeeMean), cell(r.GoalsMean), cell(r.AssistsMean),
			}
		}
		b.sheet(t.Dimension.Title(), t.Header(), rows)
	}

	matrixHeader := append([]string{"metric"}, rep.Matrix.Metrics...)
	matrixRows := make([][]any, len(rep.Matrix.Metrics))
	for i, name := range rep.Matrix.Metrics {
		row := []any{name}
		for _, v := range rep.Matrix.Values[i] {
			row = append(row, cellPrec(v, 3))
		}
		matrixRows[i] = row
	}
	b.sheet(SheetCorrelations, matrixHeader, matrixRows)

	effRows := make([][]any, len(rep.EfficiencyCorrelations))
	for i, c := range rep.EfficiencyCorrelations {
		effRows[i] = []any{c.Metric, cellPrec(c.Coefficient, 3)}
	}
	b.sheet(SheetEfficiency, aggregate.CorrelationHeader, effRows)

	insightRows := make([][]any, len(rep.Insights))
	for i, in := range rep.Insights {
		insightRows[i] = []any{in.Dimension.Title(), in.Label, in.MeanEfficiency, in.Records}
	}
	b.sheet(SheetInsights, []string{"dimension", "best_group", "mean_efficiency_score", "records"}, insightRows)

	if b.err != nil {
		return fmt.Errorf("%w: %v", ErrWorkbook, b.err)
	}
	if idx, err := f.GetSheetIndex(b.first); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: write: %v", ErrWorkbook, err)
	}
	return nil
}

// book accumulates sheets and keeps the first error.
type book struct {
	f      *excelize.File
	header int
	first  string
	err    error
}

func (b *book) sheet(name string, header []string, rows [][]any) {
	if b.err != nil {
		return
	}
	if b.first == "" {
		// The default sheet is renamed rather than left empty.
		if b.err = b.f.SetSheetName(defaultSheet, name); b.err != nil {
			return
		}
		b.first = name
	} else if _, b.err = b.f.NewSheet(name); b.err != nil {
		return
	}

	for i, h := range header {
		ref, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			b.err = err
			return
		}
		if b.err = b.f.SetCellValue(name, ref, h); b.err != nil {
			return
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if b.err = b.f.SetCellStyle(name, "A1", last, b.header); b.err != nil {
		return
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if b.err = b.f.SetColWidth(name, "A", lastCol, colWidth); b.err != nil {
		return
	}

	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				b.err = err
				return
			}
			if b.err = b.f.SetCellValue(name, ref, v); b.err != nil {
				return
			}
		}
	}
}

// cell returns a rounded value, or nil to leave the cell blank.
func cell(n types.NullFloat) any { return cellPrec(n, 2) }

func cellPrec(n types.NullFloat, prec int) any {
	if !n.Valid {
		return nil
	}
	return types.Round(n.Value, prec)
}
