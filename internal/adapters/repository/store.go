// Package repository stores the roster and regattas behind a small object
// store interface.
package repository

import (
	"context"

	"github.com/okian/regatta/internal/domain/model"
)

// Counts is the number of stored objects of each kind.
type Counts struct {
	Skippers int `json:"skippers"`
	Regattas int `json:"regattas"`
	Races    int `json:"races"`
}

// Store provides read/write access to skippers, regattas and races.
// Reads return copies; mutating them never affects stored state.
type Store interface {
	// CreateSkipper adds a skipper. Returns ErrConflict if the ID is taken.
	CreateSkipper(ctx context.Context, s model.Skipper) error
	// UpdateSkipper replaces name and sail number. Returns ErrNotFound.
	UpdateSkipper(ctx context.Context, s model.Skipper) error
	// DeleteSkipper removes a skipper from the roster. Races that reference
	// it are left untouched.
	DeleteSkipper(ctx context.Context, id string) error
	// Skipper returns one skipper or ErrNotFound.
	Skipper(ctx context.Context, id string) (model.Skipper, error)
	// Roster returns every skipper in creation order.
	Roster(ctx context.Context) (model.Roster, error)
	// FindSkippers returns the skippers matching pred, in creation order.
	FindSkippers(ctx context.Context, pred func(model.Skipper) bool) (model.Roster, error)

	// CreateRegatta stores a new regatta and any races it already holds.
	CreateRegatta(ctx context.Context, g *model.Regatta) error
	// Regatta returns a snapshot of one regatta or ErrNotFound.
	Regatta(ctx context.Context, id string) (*model.Regatta, error)
	// Regattas returns every regatta, most recent date first.
	Regattas(ctx context.Context) ([]*model.Regatta, error)
	// DeleteRegatta removes a regatta together with its races.
	DeleteRegatta(ctx context.Context, id string) error

	// AddRace attaches a race to an existing regatta.
	AddRace(ctx context.Context, regattaID string, r *model.Race) error
	// UpdateRace applies fn to the stored race under the store lock and
	// returns a snapshot of the result. An error from fn aborts the update.
	UpdateRace(ctx context.Context, regattaID, raceID string, fn func(*model.Race) error) (*model.Race, error)
	// DeleteRace detaches a race from its regatta.
	DeleteRace(ctx context.Context, regattaID, raceID string) error

	// Reset drops everything.
	Reset(ctx context.Context) error
	// Count returns object totals.
	Count(ctx context.Context) Counts
}
