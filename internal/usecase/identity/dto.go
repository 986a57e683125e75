package identity

import (
	library "lending-service/internal/domain/library"
)

// RegisterRequest carries a new account's fields.
type RegisterRequest struct {
	Name            string `validate:"required,min=2"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

// LoginRequest carries credentials for a sign-in attempt.
type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Account is a user as exposed to callers: everything except the stored
// password.
type Account struct {
	ID    int64        `json:"id"`
	Name  string       `json:"name"`
	Email string       `json:"email"`
	Role  library.Role `json:"role"`
}
