package repository

import (
	"context"
	"time"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
)

// RideEventFilter narrows a ride event listing.
type RideEventFilter struct {
	RideID int64
}

// RideEventRepository defines the persistence operations for ride events.
type RideEventRepository interface {
	// Create persists a new event and assigns its ID. An unknown ride ID fails
	// with a *domain.ValidationError.
	Create(ctx context.Context, event *domain.RideEvent) error

	// GetByID retrieves an event by ID.
	GetByID(ctx context.Context, id int64) (*domain.RideEvent, error)

	// Update overwrites an existing event.
	Update(ctx context.Context, event *domain.RideEvent) error

	// Delete removes an event.
	Delete(ctx context.Context, id int64) error

	// Count returns the number of events matching filter.
	Count(ctx context.Context, filter RideEventFilter) (int, error)

	// List returns events matching filter ordered by ID.
	List(ctx context.Context, filter RideEventFilter, page Page) ([]*domain.RideEvent, error)

	// ListSince returns, in one lookup, the events of every given ride created
	// at or after since, grouped by ride ID and ordered newest first.
	ListSince(ctx context.Context, rideIDs []int64, since time.Time) (map[int64][]domain.RideEvent, error)
}
