package scoring

import "errors"

// ErrUnknownTieBreak is returned by ParseTieBreak for unsupported keys.
var ErrUnknownTieBreak = errors.New("unknown tie-break")
