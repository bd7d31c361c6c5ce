package locker

import (
	"time"

	"github.com/google/uuid"
)

// Locker is the occupancy record of one physical locker. The set of
// lockers is fixed and pre-provisioned; the core never creates or
// destroys them. Occupant and item always change together.
type Locker struct {
	ID             int
	AssignedUserID *uuid.UUID
	StoredItem     *string
	UpdatedAt      time.Time
}

func (l *Locker) Occupied() bool {
	return l.AssignedUserID != nil
}

// State is one row of the occupancy ledger as presented to sessions,
// with the occupant resolved to a username.
type State struct {
	LockerID         int     `json:"locker_id"`
	OccupantUsername *string `json:"occupant_username,omitempty"`
	StoredItem       *string `json:"stored_item,omitempty"`
}

func (s *State) Occupied() bool {
	return s.OccupantUsername != nil
}

// Relative names a locker's state as seen by one authenticated user.
type Relative string

const (
	Free            Relative = "free"
	OccupiedBySelf  Relative = "occupied_by_self"
	OccupiedByOther Relative = "occupied_by_other"
)

// RelativeTo derives the per-user view from the ledger row.
func (s *State) RelativeTo(username string) Relative {
	switch {
	case s.OccupantUsername == nil:
		return Free
	case *s.OccupantUsername == username:
		return OccupiedBySelf
	default:
		return OccupiedByOther
	}
}
