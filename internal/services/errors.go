package services

import "errors"

// Domain errors. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidTarget      = errors.New("you can't send a friend request to yourself")
	ErrDuplicateRequest   = errors.New("a friend request already exists between you and this user")
	ErrAlreadyFriends     = errors.New("you are already friends with this user")
	ErrInvalidState       = errors.New("friend request is not pending")
	ErrEmailTaken         = errors.New("email already exists, please use a different one")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingFields      = errors.New("all fields are required")
	ErrInvalidInput       = errors.New("invalid input")
)
