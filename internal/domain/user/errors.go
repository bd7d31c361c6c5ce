package user

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrUsernameTaken     = errors.New("username is already taken")
	ErrDuplicateIdentity = errors.New("a user with the same name and birthday already exists")
	ErrInvalidBirthday   = errors.New("birthday must not be in the future")

	ErrIdentityMismatch = errors.New("identity verification failed")
	ErrCodeMismatch     = errors.New("incorrect recovery code")
	ErrEmptyPassword    = errors.New("password must not be blank")
)
