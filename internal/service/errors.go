package service

import "errors"

var (
	// ErrUnauthorized is returned when a request carries no valid credentials.
	ErrUnauthorized = errors.New("authentication credentials were not provided or are invalid")

	// ErrForbidden is returned when an authenticated caller lacks the admin role.
	ErrForbidden = errors.New("you do not have permission to perform this action")

	// ErrInvalidCredentials is returned when login email or password is wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAdminRequired is returned when a non-admin or inactive account tries to log in.
	ErrAdminRequired = errors.New("admin access required")
)

const (
	msgRequired   = "This field is required."
	msgNotANumber = "Must be a number"
)
