package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// User is a registered account. A user can act as coordinator for some
// clients and as carer for others at the same time; there is no global role.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`

	// IsConfirmed flips to true once the email verification token is redeemed.
	// Unconfirmed accounts cannot log in.
	IsConfirmed bool `json:"isConfirmed" db:"is_confirmed"`

	// IsNewUser marks accounts that have not completed onboarding yet.
	IsNewUser bool `json:"isNewUser" db:"is_new_user"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// FullName joins first and last name for email salutations and PDF headers.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// RegisterRequest DTO for account registration.
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string `json:"lastName" validate:"required,min=1,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

// Validate sanitizes and validates the request. Email is lowercased here so
// the unique check downstream is case-insensitive.
func (r *RegisterRequest) Validate() error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	validate := validator.New()
	return validate.Struct(r)
}

// LoginRequest DTO for credential login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	validate := validator.New()
	return validate.Struct(r)
}

// UpdateUserRequest DTO for partial profile updates (PATCH semantics).
// All fields are pointers: nil means do not modify.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`

	// IsNewUser can only transition true -> false (onboarding completed).
	IsNewUser *bool `json:"isNewUser,omitempty"`
}

func (r *UpdateUserRequest) Validate() error {
	if r.FirstName != nil {
		trimmed := strings.TrimSpace(*r.FirstName)
		r.FirstName = &trimmed
	}
	if r.LastName != nil {
		trimmed := strings.TrimSpace(*r.LastName)
		r.LastName = &trimmed
	}

	validate := validator.New()
	return validate.Struct(r)
}

// ConfirmRequest carries the token from the verification email link.
type ConfirmRequest struct {
	Token string `json:"token" validate:"required"`
}

func (r *ConfirmRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)

	validate := validator.New()
	return validate.Struct(r)
}

// LoginResponse pairs the session JWT with the account it belongs to.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
