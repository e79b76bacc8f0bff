package account

import "errors"

var (
	ErrAlreadyExists = errors.New("username already exists")
	ErrAuthFailure   = errors.New("invalid username or password")
	ErrNotFound      = errors.New("user not found")
	ErrInvalidInput  = errors.New("username and password are required")
	ErrInvalidPlan   = errors.New("unknown plan type or duration")

	// ErrInvariantViolation means a record about to be written holds something
	// other than a password hash. The write is aborted; this is a programming
	// error upstream, not something the user can fix.
	ErrInvariantViolation = errors.New("refusing to persist unhashed password")

	ErrEmptyGroup    = errors.New("group needs at least one member name")
	ErrGroupLimit    = errors.New("group limit reached for current plan")
	ErrGroupExists   = errors.New("a group with that name already exists")
	ErrGroupNotFound = errors.New("group not found")
)
