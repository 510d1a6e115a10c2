package sheet

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/okian/regatta/internal/domain/types"
)

// Text forms of the screen legend: italics become parentheses around the
// race header and discarded results are bracketed.
const (
	textUncompleted = "(Rn) races have no finishing positions"
	textDiscarded   = "[n] results are discarded"
)

// RenderTable writes sb as an aligned text table followed by its legend.
func RenderTable(w io.Writer, sb types.Scoreboard) error {
	uncompleted := make(map[int]bool, len(sb.UncompletedRaces))
	for _, i := range sb.UncompletedRaces {
		uncompleted[i] = true
	}

	if _, err := fmt.Fprintf(w, "%s, %s, %s\n\n", sb.Name, sb.Location, sb.Date.Format("2 January 2006")); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{"Rank", "Skipper", "Sail"}
	for i := 0; i < sb.RaceCount; i++ {
		h := fmt.Sprintf("R%d", i+1)
		if uncompleted[i] {
			h = "(" + h + ")"
		}
		header = append(header, h)
	}
	header = append(header, "Total")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	discards := false
	for _, row := range sb.Rows {
		line := []string{fmt.Sprintf("%d", row.Rank), row.Skipper, row.SailNumber}
		for _, c := range row.Races {
			label := c.Label
			if c.Discarded {
				label = "[" + label + "]"
				discards = true
			}
			line = append(line, label)
		}
		line = append(line, row.TotalLabel)
		fmt.Fprintln(tw, strings.Join(line, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	legend := make([]string, 0, len(sb.Legend)+1)
	for _, l := range sb.Legend {
		if l == types.LegendUncompleted {
			l = textUncompleted
		}
		legend = append(legend, l)
	}
	if discards {
		legend = append(legend, textDiscarded)
	}
	if len(legend) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n%s\n", strings.Join(legend, "\n")); err != nil {
		return err
	}
	return nil
}
