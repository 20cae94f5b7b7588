package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already in use")
	ErrUnknownUser        = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
