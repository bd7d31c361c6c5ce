package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"smart-locker/internal/config"
	"smart-locker/internal/domain/user"
	"smart-locker/internal/logger"
	appErrors "smart-locker/pkg/errors"
	"smart-locker/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service gates locker access: credential validation, registration and
// the OTP-based identity-recovery flow.
type Service struct {
	repo user.Repository
	cfg  *config.Config
}

func NewService(repo user.Repository, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

type RegisterInput struct {
	Username string
	Password string
	FullName string
	Birthday time.Time
}

// Challenge is the issued recovery code, returned for out-of-band
// delivery to the verified account holder.
type Challenge struct {
	UserID uuid.UUID `json:"user_id"`
	Code   string    `json:"code"`
}

type LoginResult struct {
	User      *user.User
	Token     string
	ExpiresAt time.Time
}

// Login validates the credential pair. The error never says which half
// was wrong.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, user.ErrInvalidCredentials
	}

	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(u.PasswordHashed, password) {
		return nil, user.ErrInvalidCredentials
	}

	token, expiresAt, err := utils.GenerateToken(u.ID, u.Username, u.Role, s.cfg.JWT.Secret, s.cfg.JWT.ExpiryHours)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{User: u, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (uuid.UUID, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FullName = strings.TrimSpace(in.FullName)
	in.Password = strings.TrimSpace(in.Password)

	if in.Username == "" || in.Password == "" || in.FullName == "" {
		return uuid.Nil, appErrors.NewAppError("VALIDATION_ERROR", "username, password and name are required", appErrors.ErrInvalidInput)
	}
	if user.AgeAt(in.Birthday, time.Now()) < 0 {
		return uuid.Nil, user.ErrInvalidBirthday
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{
		Username:       in.Username,
		PasswordHashed: hashed,
		FullName:       in.FullName,
		Birthday:       in.Birthday,
		Role:           user.RoleUser,
	}

	if err := s.repo.Register(ctx, u); err != nil {
		return uuid.Nil, err
	}

	logger.Info("User registered", zap.String("username", u.Username))

	return u.ID, nil
}

// InitiatePasswordReset verifies full name, birthday and the age
// recomputed from the submitted birthday against the stored record,
// then issues a random 6-digit code as the account's single pending
// OTP, overwriting any prior one.
func (s *Service) InitiatePasswordReset(ctx context.Context, username, fullName string, birthday time.Time) (*Challenge, error) {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrIdentityMismatch
		}
		return nil, err
	}

	if strings.TrimSpace(fullName) != u.FullName ||
		!user.SameBirthday(birthday, u.Birthday) ||
		user.AgeAt(birthday, time.Now()) != u.Age() {
		return nil, user.ErrIdentityMismatch
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate recovery code: %w", err)
	}

	if err := s.repo.SetOTP(ctx, u.ID, code); err != nil {
		return nil, err
	}

	logger.Info("Password recovery code issued", zap.String("username", u.Username))

	return &Challenge{UserID: u.ID, Code: code}, nil
}

// CompletePasswordReset redeems the pending code. The password change
// and the code invalidation land in the same store update, so a code is
// good for exactly one redemption.
func (s *Service) CompletePasswordReset(ctx context.Context, userID uuid.UUID, code, newPassword string) error {
	newPassword = strings.TrimSpace(newPassword)
	if newPassword == "" {
		return user.ErrEmptyPassword
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.RedeemOTP(ctx, userID, code, hashed); err != nil {
		return err
	}

	logger.Info("Password reset completed", zap.String("user_id", userID.String()))

	return nil
}

// generateCode draws a uniformly random 6-digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
