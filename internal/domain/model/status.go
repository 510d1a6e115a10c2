package model

import (
	"fmt"
	"strings"
)

// Status is a skipper's outcome in one race.
type Status string

// Race outcomes.
const (
	StatusFinished Status = "finished"
	StatusDNS      Status = "dns" // did not start
	StatusDNF      Status = "dnf" // did not finish
)

// ParseStatus accepts the lower- or upper-case wire form.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusFinished, StatusDNS, StatusDNF:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// IsAbsence reports whether the status earns the absence penalty.
func (s Status) IsAbsence() bool {
	return s == StatusDNS || s == StatusDNF
}

// Label is the short display form, e.g. "DNS".
func (s Status) Label() string {
	return strings.ToUpper(string(s))
}
