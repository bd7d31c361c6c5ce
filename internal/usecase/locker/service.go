package locker

import (
	"context"
	"strings"

	domainLocker "smart-locker/internal/domain/locker"
	"smart-locker/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the occupancy ledger. It owns no state of its own; every
// decision is delegated to the repository's atomic operations.
type Service struct {
	repo domainLocker.Repository
	// maxPerUser limits concurrent holds per user; zero = unlimited.
	maxPerUser int
}

func NewService(repo domainLocker.Repository, maxPerUser int) *Service {
	return &Service{repo: repo, maxPerUser: maxPerUser}
}

func (s *Service) ListState(ctx context.Context) ([]domainLocker.State, error) {
	return s.repo.ListState(ctx)
}

// Assign places item into the locker for the user. The item text must
// be non-blank; the occupancy write itself is the repository's
// conditional update, so a lost race surfaces as ErrAlreadyOccupied.
func (s *Service) Assign(ctx context.Context, lockerID int, userID uuid.UUID, item string) (string, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return "", domainLocker.ErrEmptyItem
	}

	if s.maxPerUser > 0 {
		held, err := s.repo.CountHeldBy(ctx, userID)
		if err != nil {
			return "", err
		}
		if held >= int64(s.maxPerUser) {
			return "", domainLocker.ErrHoldLimitReached
		}
	}

	if err := s.repo.Assign(ctx, lockerID, userID, item); err != nil {
		return "", err
	}

	logger.Info("Locker assigned",
		zap.Int("locker_id", lockerID),
		zap.String("user_id", userID.String()),
	)

	return item, nil
}

// Release clears the locker if the user is the current occupant and
// returns the stored item for confirmation display.
func (s *Service) Release(ctx context.Context, lockerID int, userID uuid.UUID) (string, error) {
	item, err := s.repo.Release(ctx, lockerID, userID)
	if err != nil {
		return "", err
	}

	logger.Info("Locker released",
		zap.Int("locker_id", lockerID),
		zap.String("user_id", userID.String()),
	)

	return item, nil
}
