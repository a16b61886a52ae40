package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Role represents the access level of a user account.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStandard Role = "standard"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStandard
}

// Field limits for users.
const (
	MaxNameLength  = 150
	MaxEmailLength = 254
	MaxPhoneLength = 50
)

var validate = validator.New()

// User represents an account that can be a rider, a driver, or an administrator.
type User struct {
	ID           int64
	Role         Role
	FirstName    string
	LastName     string
	Email        string
	PhoneNumber  string
	PasswordHash string
	IsActive     bool
	DateJoined   time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Normalize trims surrounding whitespace from the free-text fields.
func (u *User) Normalize() {
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.Email = strings.TrimSpace(u.Email)
	u.PhoneNumber = strings.TrimSpace(u.PhoneNumber)
}

// Validate checks the field-level constraints of a user.
func (u *User) Validate() error {
	verr := NewValidationError()

	switch {
	case u.Email == "":
		verr.Add("email", "This field is required.")
	case len(u.Email) > MaxEmailLength:
		verr.Add("email", "Ensure this field has no more than 254 characters.")
	case validate.Var(u.Email, "email") != nil:
		verr.Add("email", "Enter a valid email address.")
	}

	if !u.Role.Valid() {
		verr.Add("role", `"`+string(u.Role)+`" is not a valid choice.`)
	}
	if len(u.FirstName) > MaxNameLength {
		verr.Add("first_name", "Ensure this field has no more than 150 characters.")
	}
	if len(u.LastName) > MaxNameLength {
		verr.Add("last_name", "Ensure this field has no more than 150 characters.")
	}
	if len(u.PhoneNumber) > MaxPhoneLength {
		verr.Add("phone_number", "Ensure this field has no more than 50 characters.")
	}

	return verr.Err()
}
