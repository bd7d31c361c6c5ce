package locker

import (
	"context"
	"sync"
	"testing"

	domainLocker "smart-locker/internal/domain/locker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLockerRepo is an in-memory ledger with the store's conditional
// update semantics, safe for concurrent use.
type fakeLockerRepo struct {
	mu      sync.Mutex
	lockers map[int]*domainLocker.Locker
	names   map[uuid.UUID]string
}

func newFakeLockerRepo(ids ...int) *fakeLockerRepo {
	r := &fakeLockerRepo{
		lockers: make(map[int]*domainLocker.Locker),
		names:   make(map[uuid.UUID]string),
	}
	for _, id := range ids {
		r.lockers[id] = &domainLocker.Locker{ID: id}
	}
	return r
}

func (r *fakeLockerRepo) ListState(context.Context) ([]domainLocker.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	states := make([]domainLocker.State, 0, len(r.lockers))
	for id := 1; id <= len(r.lockers); id++ {
		l, ok := r.lockers[id]
		if !ok {
			continue
		}
		state := domainLocker.State{LockerID: id, StoredItem: l.StoredItem}
		if l.AssignedUserID != nil {
			name := r.names[*l.AssignedUserID]
			state.OccupantUsername = &name
		}
		states = append(states, state)
	}
	return states, nil
}

func (r *fakeLockerRepo) Get(_ context.Context, lockerID int) (*domainLocker.Locker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lockers[lockerID]
	if !ok {
		return nil, domainLocker.ErrLockerNotFound
	}
	clone := *l
	return &clone, nil
}

func (r *fakeLockerRepo) CountHeldBy(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.lockers {
		if l.AssignedUserID != nil && *l.AssignedUserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeLockerRepo) Assign(_ context.Context, lockerID int, userID uuid.UUID, item string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lockers[lockerID]
	if !ok {
		return domainLocker.ErrLockerNotFound
	}
	if l.AssignedUserID != nil {
		return domainLocker.ErrAlreadyOccupied
	}
	uid := userID
	l.AssignedUserID = &uid
	l.StoredItem = &item
	return nil
}

func (r *fakeLockerRepo) Release(_ context.Context, lockerID int, userID uuid.UUID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lockers[lockerID]
	if !ok {
		return "", domainLocker.ErrLockerNotFound
	}
	if l.AssignedUserID == nil {
		return "", domainLocker.ErrLockerEmpty
	}
	if *l.AssignedUserID != userID {
		return "", domainLocker.ErrNotOwner
	}
	item := ""
	if l.StoredItem != nil {
		item = *l.StoredItem
	}
	l.AssignedUserID = nil
	l.StoredItem = nil
	return item, nil
}

func (r *fakeLockerRepo) Seed(_ context.Context, lockerIDs []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range lockerIDs {
		if _, ok := r.lockers[id]; !ok {
			r.lockers[id] = &domainLocker.Locker{ID: id}
		}
	}
	return nil
}

func TestAssign(t *testing.T) {
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	t.Run("blank item rejected", func(t *testing.T) {
		s := NewService(newFakeLockerRepo(1, 2), 0)
		_, err := s.Assign(ctx, 1, alice, "   ")
		assert.ErrorIs(t, err, domainLocker.ErrEmptyItem)
	})

	t.Run("item is trimmed", func(t *testing.T) {
		s := NewService(newFakeLockerRepo(1, 2), 0)
		item, err := s.Assign(ctx, 1, alice, "  keys  ")
		require.NoError(t, err)
		assert.Equal(t, "keys", item)
	})

	t.Run("occupied locker rejected", func(t *testing.T) {
		s := NewService(newFakeLockerRepo(1, 2), 0)
		_, err := s.Assign(ctx, 1, alice, "keys")
		require.NoError(t, err)

		_, err = s.Assign(ctx, 1, bob, "wallet")
		assert.ErrorIs(t, err, domainLocker.ErrAlreadyOccupied)
	})

	t.Run("unknown locker", func(t *testing.T) {
		s := NewService(newFakeLockerRepo(1, 2), 0)
		_, err := s.Assign(ctx, 99, alice, "keys")
		assert.ErrorIs(t, err, domainLocker.ErrLockerNotFound)
	})

	t.Run("hold limit enforced", func(t *testing.T) {
		s := NewService(newFakeLockerRepo(1, 2), 1)
		_, err := s.Assign(ctx, 1, alice, "keys")
		require.NoError(t, err)

		_, err = s.Assign(ctx, 2, alice, "wallet")
		assert.ErrorIs(t, err, domainLocker.ErrHoldLimitReached)

		// Another user is unaffected.
		_, err = s.Assign(ctx, 2, bob, "wallet")
		assert.NoError(t, err)
	})

	t.Run("zero limit means unlimited", func(t *testing.T) {
		s := NewService(newFakeLockerRepo(1, 2), 0)
		_, err := s.Assign(ctx, 1, alice, "keys")
		require.NoError(t, err)
		_, err = s.Assign(ctx, 2, alice, "wallet")
		assert.NoError(t, err)
	})
}

func TestRelease(t *testing.T) {
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	setup := func(t *testing.T) *Service {
		s := NewService(newFakeLockerRepo(1, 2), 0)
		_, err := s.Assign(ctx, 1, alice, "keys")
		require.NoError(t, err)
		return s
	}

	t.Run("owner gets the item back", func(t *testing.T) {
		s := setup(t)
		item, err := s.Release(ctx, 1, alice)
		require.NoError(t, err)
		assert.Equal(t, "keys", item)

		// Locker is free again.
		_, err = s.Assign(ctx, 1, bob, "wallet")
		assert.NoError(t, err)
	})

	t.Run("non-owner denied", func(t *testing.T) {
		s := setup(t)
		_, err := s.Release(ctx, 1, bob)
		assert.ErrorIs(t, err, domainLocker.ErrNotOwner)
	})

	t.Run("empty locker", func(t *testing.T) {
		s := setup(t)
		_, err := s.Release(ctx, 2, alice)
		assert.ErrorIs(t, err, domainLocker.ErrLockerEmpty)
	})
}
