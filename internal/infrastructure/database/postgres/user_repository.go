package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainUser "smart-locker/internal/domain/user"
	"smart-locker/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository implements domain user.Repository on PostgreSQL.
type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) domainUser.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Register(ctx context.Context, u *domainUser.User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	if u.Role == "" {
		u.Role = domainUser.RoleUser
	}

	// The uniqueness checks and the insert run in one transaction so all
	// three are evaluated against a single consistent snapshot; the
	// unique index on username backstops the race with a concurrent
	// registration.
	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.UserModel{}).
			Where("username = ?", u.Username).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if count > 0 {
			return domainUser.ErrUsernameTaken
		}

		if err := tx.Model(&models.UserModel{}).
			Where("full_name = ? AND birthday = ?", u.FullName, u.Birthday).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check identity: %w", err)
		}
		if count > 0 {
			return domainUser.ErrDuplicateIdentity
		}

		return tx.Create(toUserModel(u)).Error
	})

	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate key") {
			return domainUser.ErrUsernameTaken
		}
		return err
	}

	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domainUser.User, error) {
	var dbModel models.UserModel
	err := r.db.DB.WithContext(ctx).Where("username = ?", username).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainUser.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUserEntity(&dbModel), nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*domainUser.User, error) {
	var dbModel models.UserModel
	err := r.db.DB.WithContext(ctx).First(&dbModel, "id = ?", userID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainUser.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUserEntity(&dbModel), nil
}

func (r *UserRepository) SetOTP(ctx context.Context, userID uuid.UUID, code string) error {
	result := r.db.DB.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"otp":        code,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to store recovery code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainUser.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) RedeemOTP(ctx context.Context, userID uuid.UUID, code, passwordHash string) error {
	// Password replacement and code invalidation are one conditional
	// update; a code redeems at most once.
	result := r.db.DB.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ? AND otp = ?", userID, code).
		Updates(map[string]interface{}{
			"password_hashed": passwordHash,
			"otp":             nil,
			"updated_at":      time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to reset password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainUser.ErrCodeMismatch
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	// Lockers held by the user are released in the same transaction so
	// no locker is left pointing at a removed account.
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.LockerModel{}).
			Where("assigned_user_id = ?", userID).
			Updates(map[string]interface{}{
				"assigned_user_id": nil,
				"stored_item":      nil,
				"updated_at":       time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to release lockers: %w", err)
		}

		result := tx.Where("id = ?", userID).Delete(&models.UserModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domainUser.ErrUserNotFound
		}
		return nil
	})
}

func toUserModel(u *domainUser.User) *models.UserModel {
	return &models.UserModel{
		ID:             u.ID,
		Username:       u.Username,
		PasswordHashed: u.PasswordHashed,
		FullName:       u.FullName,
		Birthday:       u.Birthday,
		Role:           u.Role,
		OTP:            u.OTP,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func toUserEntity(m *models.UserModel) *domainUser.User {
	return &domainUser.User{
		ID:             m.ID,
		Username:       m.Username,
		PasswordHashed: m.PasswordHashed,
		FullName:       m.FullName,
		Birthday:       m.Birthday,
		Role:           m.Role,
		OTP:            m.OTP,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
