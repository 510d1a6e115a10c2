package sheet

import "errors"

// Sentinel kinds for sheet errors.
var (
	ErrInvalidSheet   = errors.New("invalid regatta sheet")
	ErrUnknownSkipper = errors.New("unknown skipper")
)
