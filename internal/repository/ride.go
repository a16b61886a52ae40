package repository

import (
	"context"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/geo"
)

// RideOrdering selects the sort order of a ride listing.
type RideOrdering string

const (
	OrderByID             RideOrdering = ""
	OrderByPickupTimeAsc  RideOrdering = "pickup_time"
	OrderByPickupTimeDesc RideOrdering = "-pickup_time"
	OrderByDistanceAsc    RideOrdering = "distance"
	OrderByDistanceDesc   RideOrdering = "-distance"
)

// IsDistance reports whether the ordering sorts by distance to pickup.
func (o RideOrdering) IsDistance() bool {
	return o == OrderByDistanceAsc || o == OrderByDistanceDesc
}

// RideQuery describes a ride listing. Every ordering breaks ties on ride ID
// ascending.
type RideQuery struct {
	// ID restricts the listing to a single ride when non-zero.
	ID int64

	// Status and RiderEmail are case-insensitive exact filters.
	Status     string
	RiderEmail string

	// Origin, when set, annotates every ride with its distance to pickup.
	Origin *geo.Point

	Ordering RideOrdering
}

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride and assigns its ID. Unknown rider or driver
	// IDs fail with a *domain.ValidationError.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id int64) (*domain.Ride, error)

	// Update overwrites an existing ride, with the same reference checks as Create.
	Update(ctx context.Context, ride *domain.Ride) error

	// Delete removes a ride together with its events.
	Delete(ctx context.Context, id int64) error

	// CountListings returns the number of rides matching query.
	CountListings(ctx context.Context, query RideQuery) (int, error)

	// ListListings returns rides joined with rider and driver, annotated with
	// distance when query.Origin is set. TodaysRideEvents is left empty.
	ListListings(ctx context.Context, query RideQuery, page Page) ([]*domain.RideListing, error)
}
