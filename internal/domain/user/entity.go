package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that can be granted locker access.
type User struct {
	ID             uuid.UUID
	Username       string
	PasswordHashed string
	FullName       string
	Birthday       time.Time
	Role           string
	// OTP is the single pending password-recovery code, if any.
	OTP       *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Age is derived from the birthday at read time; there is no stored
// age column, the birthday is authoritative.
func (u *User) Age() int {
	return AgeAt(u.Birthday, time.Now())
}

// AgeAt computes full years lived between birthday and the given date.
// A birthday in the future yields a negative result.
func AgeAt(birthday, at time.Time) int {
	age := at.Year() - birthday.Year()
	if at.Month() < birthday.Month() ||
		(at.Month() == birthday.Month() && at.Day() < birthday.Day()) {
		age--
	}
	return age
}

// SameBirthday compares calendar dates, ignoring time of day and zone
// offsets within the stored values.
func SameBirthday(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
