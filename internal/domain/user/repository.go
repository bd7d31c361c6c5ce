package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for user store operations.
type Repository interface {
	// Register checks username uniqueness and the name+birthday
	// duplicate-identity guard and inserts the user, all against one
	// consistent snapshot.
	Register(ctx context.Context, u *User) error

	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)

	// SetOTP stores code as the account's single pending recovery code,
	// overwriting any prior one.
	SetOTP(ctx context.Context, userID uuid.UUID, code string) error

	// RedeemOTP replaces the password and invalidates the pending code
	// in one conditional update; it fails with ErrCodeMismatch when the
	// submitted code does not equal the pending one.
	RedeemOTP(ctx context.Context, userID uuid.UUID, code, passwordHash string) error

	Delete(ctx context.Context, userID uuid.UUID) error
}
