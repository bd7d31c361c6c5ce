package locker

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the sole authority on locker occupancy. Assign and
// Release are single atomic conditional updates; no caller ever holds
// an in-memory lock over occupancy.
type Repository interface {
	// ListState returns the ledger ordered by locker ID ascending, with
	// occupants resolved against the user store.
	ListState(ctx context.Context) ([]State, error)

	Get(ctx context.Context, lockerID int) (*Locker, error)

	CountHeldBy(ctx context.Context, userID uuid.UUID) (int64, error)

	// Assign records occupant and item together, guarded by the locker
	// being currently unassigned. A lost race yields ErrAlreadyOccupied.
	Assign(ctx context.Context, lockerID int, userID uuid.UUID, item string) error

	// Release clears occupant and item together, guarded by the
	// requesting user being the current occupant, and returns the
	// cleared item.
	Release(ctx context.Context, lockerID int, userID uuid.UUID) (string, error)

	// Seed provisions the fixed locker set if missing.
	Seed(ctx context.Context, lockerIDs []int) error
}
