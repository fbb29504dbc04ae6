package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/okian/transferiq/internal/domain/aggregate"
	"github.com/okian/transferiq/internal/domain/types"
)

// Console prints report tables as text tables.
type Console struct {
	out     io.Writer
	heading *color.Color
	warn    *color.Color
}

// NewConsole writes to out.
func NewConsole(out io.Writer) *Console {
	return &Console{
		out:     out,
		heading: color.New(color.FgYellow, color.Bold),
		warn:    color.New(color.FgRed),
	}
}

// Report prints every dimension table, the efficiency correlations and the
// insights.
func (c *Console) Report(rep aggregate.Report) {
	for _, t := range rep.Tables {
		c.heading.Fprintf(c.out, "\nEfficiency by %s\n", t.Dimension.Title())
		c.table(t.Header(), t.Records())
	}
	for _, d := range rep.Skipped {
		c.warn.Fprintf(c.out, "\nNo %s data available\n", d.Title())
	}

	if len(rep.EfficiencyCorrelations) > 0 {
		c.heading.Fprintln(c.out, "\nCorrelation with Efficiency Score")
		c.table(aggregate.CorrelationHeader, aggregate.CorrelationRecords(rep.EfficiencyCorrelations))
	}

	if len(rep.Insights) > 0 {
		c.heading.Fprintln(c.out, "\nKey Insights")
		rows := make([][]string, len(rep.Insights))
		for i, in := range rep.Insights {
			rows[i] = []string{
				strconv.Itoa(i + 1),
				"Most efficient " + in.Dimension.Title(),
				in.Label,
				strconv.FormatFloat(in.MeanEfficiency, 'f', 2, 64),
			}
		}
		c.table([]string{"#", "Insight", "Group", "Mean Efficiency"}, rows)
	}
}

// Ranking prints ranked transfers under title.
func (c *Console) Ranking(title string, entries []types.Entry) {
	c.heading.Fprintf(c.out, "\n%s\n", title)
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			strconv.Itoa(e.Rank),
			e.PlayerName,
			e.ClubName,
			fmt.Sprintf("€%.1fM", e.FeeMillions),
			e.Goals.FormatFixed(0),
			e.Assists.FormatFixed(0),
			strconv.FormatFloat(types.Round(e.Score, 2), 'f', 2, 64),
			e.Category,
		}
	}
	c.table([]string{"Rank", "Player", "Club", "Fee", "Goals", "Assists", "Efficiency", "Category"}, rows)
}

func (c *Console) table(header []string, rows [][]string) {
	tw := tablewriter.NewWriter(c.out)
	tw.SetHeader(header)
	tw.SetAutoFormatHeaders(false)
	tw.AppendBulk(rows)
	tw.Render()
}
