package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainLocker "smart-locker/internal/domain/locker"
	"smart-locker/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LockerRepository implements domain locker.Repository on PostgreSQL.
// Both mutations are single conditional updates guarded by the expected
// current occupancy, which is what closes the check-then-write race
// between concurrent sessions.
type LockerRepository struct {
	db *DB
}

func NewLockerRepository(db *DB) domainLocker.Repository {
	return &LockerRepository{db: db}
}

func (r *LockerRepository) ListState(ctx context.Context) ([]domainLocker.State, error) {
	var states []domainLocker.State
	err := r.db.DB.WithContext(ctx).
		Table("lockers").
		Select("lockers.id AS locker_id, users.username AS occupant_username, lockers.stored_item").
		Joins("LEFT JOIN users ON users.id = lockers.assigned_user_id").
		Order("lockers.id ASC").
		Scan(&states).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list locker state: %w", err)
	}

	return states, nil
}

func (r *LockerRepository) Get(ctx context.Context, lockerID int) (*domainLocker.Locker, error) {
	var dbModel models.LockerModel
	err := r.db.DB.WithContext(ctx).First(&dbModel, "id = ?", lockerID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainLocker.ErrLockerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get locker: %w", err)
	}

	return toLockerEntity(&dbModel), nil
}

func (r *LockerRepository) CountHeldBy(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).Model(&models.LockerModel{}).
		Where("assigned_user_id = ?", userID).
		Count(&count).Error

	if err != nil {
		return 0, fmt.Errorf("failed to count held lockers: %w", err)
	}

	return count, nil
}

func (r *LockerRepository) Assign(ctx context.Context, lockerID int, userID uuid.UUID, item string) error {
	result := r.db.DB.WithContext(ctx).Model(&models.LockerModel{}).
		Where("id = ? AND assigned_user_id IS NULL", lockerID).
		Updates(map[string]interface{}{
			"assigned_user_id": userID,
			"stored_item":      item,
			"updated_at":       time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to assign locker: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// The guard rejected the write; read once to tell a missing
		// locker from a lost occupancy race.
		if _, err := r.Get(ctx, lockerID); err != nil {
			return err
		}
		return domainLocker.ErrAlreadyOccupied
	}

	return nil
}

func (r *LockerRepository) Release(ctx context.Context, lockerID int, userID uuid.UUID) (string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		current, err := r.Get(ctx, lockerID)
		if err != nil {
			return "", err
		}
		if current.AssignedUserID == nil {
			return "", domainLocker.ErrLockerEmpty
		}
		if *current.AssignedUserID != userID {
			return "", domainLocker.ErrNotOwner
		}

		var item string
		if current.StoredItem != nil {
			item = *current.StoredItem
		}

		// Guarding on the item as well makes the returned value exactly
		// what this statement cleared.
		result := r.db.DB.WithContext(ctx).Model(&models.LockerModel{}).
			Where("id = ? AND assigned_user_id = ? AND stored_item = ?", lockerID, userID, item).
			Updates(map[string]interface{}{
				"assigned_user_id": nil,
				"stored_item":      nil,
				"updated_at":       time.Now(),
			})

		if result.Error != nil {
			return "", fmt.Errorf("failed to release locker: %w", result.Error)
		}
		if result.RowsAffected == 1 {
			return item, nil
		}
		// The row changed between the read and the guard; re-check.
	}

	return "", domainLocker.ErrNotOwner
}

func (r *LockerRepository) Seed(ctx context.Context, lockerIDs []int) error {
	for _, id := range lockerIDs {
		row := models.LockerModel{ID: id, UpdatedAt: time.Now()}
		err := r.db.DB.WithContext(ctx).
			Where("id = ?", id).
			FirstOrCreate(&row).Error
		if err != nil {
			return fmt.Errorf("failed to seed locker %d: %w", id, err)
		}
	}
	return nil
}

func toLockerEntity(m *models.LockerModel) *domainLocker.Locker {
	return &domainLocker.Locker{
		ID:             m.ID,
		AssignedUserID: m.AssignedUserID,
		StoredItem:     m.StoredItem,
		UpdatedAt:      m.UpdatedAt,
	}
}
