package postgres

import (
	"context"
	"testing"
	"time"

	domainUser "smart-locker/internal/domain/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRegisterConflicts(t *testing.T) {
	ctx := context.Background()
	birthday := time.Date(1995, time.May, 20, 0, 0, 0, 0, time.UTC)
	newUser := func() *domainUser.User {
		return &domainUser.User{
			Username:       "alice",
			PasswordHashed: "hash",
			FullName:       "Alice Smith",
			Birthday:       birthday,
		}
	}

	t.Run("username taken", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE username = \$1`).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := repo.Register(ctx, newUser())
		assert.ErrorIs(t, err, domainUser.ErrUsernameTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate name and birthday", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE username = \$1`).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE full_name = \$1 AND birthday = \$2`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := repo.Register(ctx, newUser())
		assert.ErrorIs(t, err, domainUser.ErrDuplicateIdentity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserGetByUsername(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		id := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "username", "password_hashed", "full_name", "birthday", "role", "otp", "created_at", "updated_at"}).
			AddRow(id.String(), "alice", "hash", "Alice Smith", time.Date(1995, 5, 20, 0, 0, 0, 0, time.UTC), "user", nil, time.Now(), time.Now())
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
			WillReturnRows(rows)

		u, err := repo.GetByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, "alice", u.Username)
		assert.Nil(t, u.OTP)
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByUsername(context.Background(), "nobody")
		assert.ErrorIs(t, err, domainUser.ErrUserNotFound)
	})
}

func TestUserSetOTP(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("stores the code", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "users" SET .+ WHERE id = \$3`).
			WithArgs("123456", sqlmock.AnyArg(), userID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.SetOTP(ctx, userID, "123456"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "users" SET .+ WHERE id = \$3`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.SetOTP(ctx, userID, "123456")
		assert.ErrorIs(t, err, domainUser.ErrUserNotFound)
	})
}

func TestUserRedeemOTP(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("matching code swaps password and clears the code", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "users" SET .+ WHERE id = \$4 AND otp = \$5`).
			WithArgs(nil, "newhash", sqlmock.AnyArg(), userID, "123456").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.RedeemOTP(ctx, userID, "123456", "newhash"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("guard rejection is a code mismatch", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "users" SET .+ WHERE id = \$4 AND otp = \$5`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.RedeemOTP(ctx, userID, "654321", "newhash")
		assert.ErrorIs(t, err, domainUser.ErrCodeMismatch)
	})
}

func TestUserDelete(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("releases held lockers in the same transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "lockers" SET .+ WHERE assigned_user_id = \$4`).
			WithArgs(nil, nil, sqlmock.AnyArg(), userID).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM "users" WHERE id = \$1`).
			WithArgs(userID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Delete(ctx, userID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "lockers" SET .+ WHERE assigned_user_id = \$4`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM "users" WHERE id = \$1`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Delete(ctx, userID)
		assert.ErrorIs(t, err, domainUser.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
