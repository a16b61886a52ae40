package repository

import (
	"context"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
)

// UserFilter narrows a user listing. Empty fields are ignored; matching is
// case-insensitive and exact.
type UserFilter struct {
	Role  string
	Email string
}

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	// Create persists a new user and assigns its ID and DateJoined.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email, ignoring case.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update overwrites the mutable fields of an existing user.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user. Returns ErrConflict while any ride references it.
	Delete(ctx context.Context, id int64) error

	// Count returns the number of users matching filter.
	Count(ctx context.Context, filter UserFilter) (int, error)

	// List returns users matching filter ordered by ID.
	List(ctx context.Context, filter UserFilter, page Page) ([]*domain.User, error)
}
