package postgres

import (
	"errors"

	"github.com/lib/pq"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
)

// PostgreSQL error codes the repositories translate.
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
)

// constraintFields maps constraint names from the migrations to the API
// field they guard.
var constraintFields = map[string]string{
	"rides_rider_id_fkey":      "rider_id",
	"rides_driver_id_fkey":     "driver_id",
	"ride_events_ride_id_fkey": "ride_id",
	"users_email_key":          "email",
	"users_role_check":         "role",
}

// translateWriteError converts constraint violations raised by INSERT or
// UPDATE into field-addressable validation errors.
func translateWriteError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	field, known := constraintFields[pqErr.Constraint]
	if !known {
		field = "non_field_errors"
	}

	switch pqErr.Code {
	case codeForeignKeyViolation:
		return domain.FieldError(field, "Invalid pk - object does not exist.")
	case codeUniqueViolation:
		if field == "email" {
			return domain.FieldError(field, "user with this email already exists.")
		}
		return domain.FieldError(field, "This value already exists.")
	case codeCheckViolation:
		return domain.FieldError(field, "Invalid value.")
	}
	return err
}

// translateDeleteError converts a RESTRICT foreign key violation into
// repository.ErrConflict.
func translateDeleteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeForeignKeyViolation {
		return repository.ErrConflict
	}
	return err
}
