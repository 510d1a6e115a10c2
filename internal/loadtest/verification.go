package loadtest

import (
	"fmt"

	"github.com/okian/regatta/internal/domain/types"
)

// verify compares the served scoreboard with the expected one. Race order
// and the order of tied rows may differ between the two, so rows are
// matched by skipper and per-race cells are not compared.
func verify(expected, got types.Scoreboard) error {
	if got.RaceCount != expected.RaceCount {
		return fmt.Errorf("%w: race count %d, expected %d", ErrMismatch, got.RaceCount, expected.RaceCount)
	}
	if got.DiscardCount != expected.DiscardCount {
		return fmt.Errorf("%w: discard count %d, expected %d", ErrMismatch, got.DiscardCount, expected.DiscardCount)
	}
	if len(got.UncompletedRaces) != len(expected.UncompletedRaces) {
		return fmt.Errorf("%w: %d uncompleted races, expected %d", ErrMismatch, len(got.UncompletedRaces), len(expected.UncompletedRaces))
	}
	if len(got.Rows) != len(expected.Rows) {
		return fmt.Errorf("%w: %d rows, expected %d", ErrMismatch, len(got.Rows), len(expected.Rows))
	}

	served := make(map[string]types.Row, len(got.Rows))
	for i, row := range got.Rows {
		if i > 0 && row.Total < got.Rows[i-1].Total {
			return fmt.Errorf("%w: row %d total %d is below row %d total %d", ErrMismatch, i+1, row.Total, i, got.Rows[i-1].Total)
		}
		served[row.SkipperID] = row
	}
	for _, want := range expected.Rows {
		row, ok := served[want.SkipperID]
		if !ok {
			return fmt.Errorf("%w: %s is missing", ErrMismatch, want.Skipper)
		}
		if row.Rank != want.Rank || row.Total != want.Total || row.Penalized != want.Penalized {
			return fmt.Errorf("%w: %s has rank %d total %d, expected rank %d total %d",
				ErrMismatch, want.Skipper, row.Rank, row.Total, want.Rank, want.Total)
		}
	}
	return nil
}
