package locker

import "errors"

var (
	ErrLockerNotFound   = errors.New("locker not found")
	ErrAlreadyOccupied  = errors.New("locker already occupied")
	ErrNotOwner         = errors.New("locker is held by another user")
	ErrLockerEmpty      = errors.New("locker is empty")
	ErrEmptyItem        = errors.New("item description must not be blank")
	ErrHoldLimitReached = errors.New("locker hold limit reached")
)
