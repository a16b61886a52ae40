package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/geo"
	"github.com/RonaldAllanRivera/ride-info/internal/querycount"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
)

// RideRepository is an in-memory implementation of repository.RideRepository.
type RideRepository struct {
	s *state
}

func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	querycount.Inc(ctx)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkRideReferences(ride); err != nil {
		return err
	}

	r.s.nextRideID++
	ride.ID = r.s.nextRideID
	stored := *ride
	r.s.rides[ride.ID] = &stored
	return nil
}

func (r *RideRepository) GetByID(ctx context.Context, id int64) (*domain.Ride, error) {
	querycount.Inc(ctx)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ride, ok := r.s.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	stored := *ride
	return &stored, nil
}

func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	querycount.Inc(ctx)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.rides[ride.ID]; !ok {
		return repository.ErrNotFound
	}
	if err := r.s.checkRideReferences(ride); err != nil {
		return err
	}
	stored := *ride
	r.s.rides[ride.ID] = &stored
	return nil
}

// Delete removes a ride and cascades to its events.
func (r *RideRepository) Delete(ctx context.Context, id int64) error {
	querycount.Inc(ctx)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.rides[id]; !ok {
		return repository.ErrNotFound
	}
	for eventID, e := range r.s.events {
		if e.RideID == id {
			delete(r.s.events, eventID)
		}
	}
	delete(r.s.rides, id)
	return nil
}

func (r *RideRepository) CountListings(ctx context.Context, query repository.RideQuery) (int, error) {
	querycount.Inc(ctx)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.match(query)), nil
}

func (r *RideRepository) ListListings(ctx context.Context, query repository.RideQuery, page repository.Page) ([]*domain.RideListing, error) {
	querycount.Inc(ctx)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	listings := r.match(query)
	sortListings(listings, query)

	start, end := window(len(listings), page)
	return listings[start:end], nil
}

// match joins rides with their users and applies the filters and distance
// annotation of query. Results are in ID order.
func (r *RideRepository) match(query repository.RideQuery) []*domain.RideListing {
	var listings []*domain.RideListing
	for _, id := range sortedIDs(r.s.rides) {
		ride := r.s.rides[id]
		if query.ID != 0 && ride.ID != query.ID {
			continue
		}
		if query.Status != "" && !strings.EqualFold(ride.Status, query.Status) {
			continue
		}
		rider, driver := r.s.users[ride.RiderID], r.s.users[ride.DriverID]
		if rider == nil || driver == nil {
			continue
		}
		if query.RiderEmail != "" && !strings.EqualFold(rider.Email, query.RiderEmail) {
			continue
		}

		l := &domain.RideListing{Ride: *ride, Rider: *rider, Driver: *driver}
		if query.Origin != nil {
			d := geo.Distance(*query.Origin, ride.Pickup())
			l.DistanceToPickupMeters = &d
		}
		listings = append(listings, l)
	}
	return listings
}

// sortListings orders listings in place; ties always fall back to ID ascending.
func sortListings(listings []*domain.RideListing, query repository.RideQuery) {
	var compare func(a, b *domain.RideListing) int
	switch {
	case query.Ordering == repository.OrderByPickupTimeAsc:
		compare = func(a, b *domain.RideListing) int { return a.PickupTime.Compare(b.PickupTime) }
	case query.Ordering == repository.OrderByPickupTimeDesc:
		compare = func(a, b *domain.RideListing) int { return b.PickupTime.Compare(a.PickupTime) }
	case query.Ordering == repository.OrderByDistanceAsc && query.Origin != nil:
		compare = func(a, b *domain.RideListing) int { return compareFloat(*a.DistanceToPickupMeters, *b.DistanceToPickupMeters) }
	case query.Ordering == repository.OrderByDistanceDesc && query.Origin != nil:
		compare = func(a, b *domain.RideListing) int { return compareFloat(*b.DistanceToPickupMeters, *a.DistanceToPickupMeters) }
	default:
		return
	}

	sort.SliceStable(listings, func(i, j int) bool {
		if c := compare(listings[i], listings[j]); c != 0 {
			return c < 0
		}
		return listings[i].ID < listings[j].ID
	})
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
