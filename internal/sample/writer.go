package sample

import (
	"io"

	"github.com/okian/transferiq/internal/adapters/repository"
	"github.com/okian/transferiq/internal/domain/model"
)

// PositionLabels are the positions behind the is_* indicator columns, in
// column order.
var PositionLabels = func() []string {
	out := make([]string, len(repository.PositionIndicators))
	for i, ind := range repository.PositionIndicators {
		out[i] = ind.Label
	}
	return out
}()

// Header returns the raw table header: the required columns, one indicator
// per position and one per league.
func Header() []string {
	h := []string{
		repository.ColPlayerName, repository.ColClubName, repository.ColAge,
		repository.ColSeason, repository.ColFeeMillions, repository.ColGoals,
		repository.ColAssists, repository.ColMinutes,
	}
	for _, ind := range repository.PositionIndicators {
		h = append(h, ind.Column)
	}
	for _, l := range Leagues {
		h = append(h, "league_"+l)
	}
	return h
}

// WriteCSV writes records in the raw layout. Unknown positions and leagues
// leave every indicator at 0.
func WriteCSV(w io.Writer, records []model.TransferRecord) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		row := []string{
			r.PlayerName, r.ClubName, r.Age.Format(), r.Season,
			r.FeeMillions.Format(), r.Goals.Format(), r.Assists.Format(), r.Minutes.Format(),
		}
		for _, ind := range repository.PositionIndicators {
			row = append(row, indicator(r.Position == ind.Label))
		}
		for _, l := range Leagues {
			row = append(row, indicator(r.League == l))
		}
		rows[i] = row
	}
	return repository.WriteCSV(w, Header(), rows)
}

func indicator(set bool) string {
	if set {
		return "1"
	}
	return "0"
}
