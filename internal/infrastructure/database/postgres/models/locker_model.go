package models

import (
	"time"

	"github.com/google/uuid"
)

// LockerModel represents the database model for Lockers. Rows are
// pre-provisioned at startup; occupant and item are always written in
// the same statement so a row is never observed half-updated.
type LockerModel struct {
	ID             int        `gorm:"primary_key;autoIncrement:false"`
	AssignedUserID *uuid.UUID `gorm:"type:uuid;index"`
	StoredItem     *string    `gorm:"type:text"`
	UpdatedAt      time.Time  `gorm:"not null"`

	AssignedUser *UserModel `gorm:"foreignKey:AssignedUserID"`
}

func (LockerModel) TableName() string {
	return "lockers"
}
