package user

import "greencare-be/internal/apperr"

var (
	ErrEmailTaken         = apperr.New(apperr.ErrConflict, "Email already registered!")
	ErrInvalidCredentials = apperr.New(apperr.ErrInvalid, "Invalid credentials")
	ErrUserNotFound       = apperr.New(apperr.ErrNotFound, "User not found.")
)
