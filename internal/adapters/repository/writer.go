package repository

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/transferiq/internal/domain/model"
)

// WriteEnriched writes records as CSV with the EnrichedColumns header.
// Missing values are blank cells.
func WriteEnriched(w io.Writer, records []model.EnrichedRecord) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.PlayerName,
			r.ClubName,
			r.Position,
			r.Age.Format(),
			r.Season,
			r.FeeMillions.Format(),
			r.Goals.Format(),
			r.Assists.Format(),
			r.Minutes.Format(),
			r.GoalContribution.Format(),
			r.PerformanceIndex.Format(),
			r.PerformanceIndexNormalized.Format(),
			r.VfMScore.Format(),
			r.CostPerGoal.Format(),
			r.CostPerAssist.Format(),
			r.CostPerContribution.Format(),
			r.EfficiencyScore.Format(),
			r.EfficiencyCategory,
			r.League,
		}
	}
	return WriteCSV(w, EnrichedColumns, rows)
}

// WriteCSV writes a header and rows.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
