package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrUnknownStatus    = errors.New("unknown race status")
	ErrEmptyName        = errors.New("name must not be empty")
	ErrDuplicateSkipper = errors.New("skipper listed more than once")
	ErrNotAbsence       = errors.New("status is not DNS or DNF")
)
