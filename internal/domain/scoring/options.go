package scoring

import (
	"fmt"
	"strings"
)

// TieBreak selects how skippers with equal totals are ordered.
type TieBreak string

// Supported tie-break keys.
const (
	// TieBreakSailNumber orders equal totals by sail number, then name, then ID.
	TieBreakSailNumber TieBreak = "sail_number"
	// TieBreakNone keeps equal totals in roster order.
	TieBreakNone TieBreak = "none"
)

// ParseTieBreak accepts the configuration form of a tie-break key.
func ParseTieBreak(s string) (TieBreak, error) {
	switch tb := TieBreak(strings.ToLower(strings.TrimSpace(s))); tb {
	case "", TieBreakSailNumber:
		return TieBreakSailNumber, nil
	case TieBreakNone:
		return TieBreakNone, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTieBreak, s)
	}
}

// Option applies a configuration option to the LowPointCalculator.
type Option func(*LowPointCalculator)

// WithTieBreak sets the secondary ordering key for equal totals.
func WithTieBreak(tb TieBreak) Option {
	return func(c *LowPointCalculator) {
		switch tb {
		case TieBreakSailNumber, TieBreakNone:
			c.tieBreak = tb
		}
	}
}
