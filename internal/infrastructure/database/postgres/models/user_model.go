package models

import (
	"time"

	"github.com/google/uuid"
)

// UserModel represents the database model for Users.
type UserModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username       string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHashed string    `gorm:"type:varchar(255);not null"`
	FullName       string    `gorm:"type:varchar(255);not null;index:idx_users_identity"`
	Birthday       time.Time `gorm:"type:date;not null;index:idx_users_identity"`
	Role           string    `gorm:"type:varchar(50);not null;default:'user'"`
	OTP            *string   `gorm:"type:varchar(6)"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}
