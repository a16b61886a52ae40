package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/geo"
	"github.com/RonaldAllanRivera/ride-info/internal/pagination"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
)

// RideService handles ride operations.
type RideService struct {
	rideRepo  repository.RideRepository
	eventRepo repository.RideEventRepository
	now       func() time.Time
}

// NewRideService creates a new RideService. A nil clock means time.Now.
func NewRideService(rideRepo repository.RideRepository, eventRepo repository.RideEventRepository, clock func() time.Time) *RideService {
	if clock == nil {
		clock = time.Now
	}
	return &RideService{
		rideRepo:  rideRepo,
		eventRepo: eventRepo,
		now:       clock,
	}
}

// RideListParams are the raw listing parameters of a ride request. Lat and
// Lon are nil when the caller omitted them.
type RideListParams struct {
	Status     string
	RiderEmail string
	Lat        *string
	Lon        *string
	Ordering   string
}

// Query validates the parameters and converts them into a repository query.
func (p RideListParams) Query() (repository.RideQuery, error) {
	query := repository.RideQuery{
		Status:     strings.TrimSpace(p.Status),
		RiderEmail: strings.TrimSpace(p.RiderEmail),
	}

	if p.Lat != nil && p.Lon != nil {
		lat, latErr := parseCoordinate(*p.Lat)
		lon, lonErr := parseCoordinate(*p.Lon)
		if latErr != nil || lonErr != nil {
			verr := domain.NewValidationError()
			verr.Add("lat", msgNotANumber)
			verr.Add("lon", msgNotANumber)
			return repository.RideQuery{}, verr
		}
		query.Origin = &geo.Point{Lat: lat, Lon: lon}
	}

	switch ordering := repository.RideOrdering(strings.TrimSpace(p.Ordering)); ordering {
	case repository.OrderByPickupTimeAsc, repository.OrderByPickupTimeDesc:
		query.Ordering = ordering
	case repository.OrderByDistanceAsc, repository.OrderByDistanceDesc:
		if query.Origin == nil {
			return repository.RideQuery{}, domain.FieldError("ordering", "Distance ordering requires lat and lon query params")
		}
		query.Ordering = ordering
	}

	return query, nil
}

func parseCoordinate(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

// List returns one page of ride listings and the total number of matches.
// Events for the page are fetched with a single batched lookup.
func (s *RideService) List(ctx context.Context, params RideListParams, page pagination.Params) ([]*domain.RideListing, int, error) {
	query, err := params.Query()
	if err != nil {
		return nil, 0, err
	}

	total, err := s.rideRepo.CountListings(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	if err := page.Check(total); err != nil {
		return nil, 0, err
	}

	listings, err := s.rideRepo.ListListings(ctx, query, page.Window())
	if err != nil {
		return nil, 0, err
	}
	if err := s.attachEvents(ctx, listings); err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// Get returns a single ride through the listing read path, so lat and lon
// annotate it the same way and ordering is validated on retrieve too.
func (s *RideService) Get(ctx context.Context, id int64, params RideListParams) (*domain.RideListing, error) {
	query, err := params.Query()
	if err != nil {
		return nil, err
	}
	query.ID = id

	listings, err := s.rideRepo.ListListings(ctx, query, repository.All)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, repository.ErrNotFound
	}
	if err := s.attachEvents(ctx, listings); err != nil {
		return nil, err
	}

	return listings[0], nil
}

func (s *RideService) attachEvents(ctx context.Context, listings []*domain.RideListing) error {
	ids := make([]int64, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}

	since := s.now().Add(-domain.RecentEventsWindow)
	events, err := s.eventRepo.ListSince(ctx, ids, since)
	if err != nil {
		return err
	}

	for _, l := range listings {
		l.TodaysRideEvents = events[l.ID]
		if l.TodaysRideEvents == nil {
			l.TodaysRideEvents = []domain.RideEvent{}
		}
	}
	return nil
}

// RideInput carries the writable ride fields of a create or update request.
// Nil fields were not supplied.
type RideInput struct {
	Status           *string
	RiderID          *int64
	DriverID         *int64
	PickupLatitude   *float64
	PickupLongitude  *float64
	DropoffLatitude  *float64
	DropoffLongitude *float64
	PickupTime       *time.Time
}

func (in RideInput) requireAll() *domain.ValidationError {
	verr := domain.NewValidationError()
	required := []struct {
		field   string
		present bool
	}{
		{"status", in.Status != nil},
		{"rider_id", in.RiderID != nil},
		{"driver_id", in.DriverID != nil},
		{"pickup_latitude", in.PickupLatitude != nil},
		{"pickup_longitude", in.PickupLongitude != nil},
		{"dropoff_latitude", in.DropoffLatitude != nil},
		{"dropoff_longitude", in.DropoffLongitude != nil},
		{"pickup_time", in.PickupTime != nil},
	}
	for _, r := range required {
		if !r.present {
			verr.Add(r.field, msgRequired)
		}
	}
	return verr
}

func (in RideInput) apply(ride *domain.Ride) {
	if in.Status != nil {
		ride.Status = strings.TrimSpace(*in.Status)
	}
	if in.RiderID != nil {
		ride.RiderID = *in.RiderID
	}
	if in.DriverID != nil {
		ride.DriverID = *in.DriverID
	}
	if in.PickupLatitude != nil {
		ride.PickupLatitude = *in.PickupLatitude
	}
	if in.PickupLongitude != nil {
		ride.PickupLongitude = *in.PickupLongitude
	}
	if in.DropoffLatitude != nil {
		ride.DropoffLatitude = *in.DropoffLatitude
	}
	if in.DropoffLongitude != nil {
		ride.DropoffLongitude = *in.DropoffLongitude
	}
	if in.PickupTime != nil {
		ride.PickupTime = *in.PickupTime
	}
}

// validateRide merges missing-field errors with the ride's own constraints.
func validateRide(ride *domain.Ride, missing *domain.ValidationError) error {
	missing.Merge(ride.Validate())
	return missing.Err()
}

// Create validates and persists a new ride. Every field is required.
func (s *RideService) Create(ctx context.Context, in RideInput) (*domain.Ride, error) {
	ride := &domain.Ride{}
	in.apply(ride)
	if err := validateRide(ride, in.requireAll()); err != nil {
		return nil, err
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}
	return ride, nil
}

// Update modifies an existing ride. A full update requires every field; a
// partial update changes only the supplied ones.
func (s *RideService) Update(ctx context.Context, id int64, in RideInput, partial bool) (*domain.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	missing := domain.NewValidationError()
	if !partial {
		missing = in.requireAll()
	}
	in.apply(ride)
	if err := validateRide(ride, missing); err != nil {
		return nil, err
	}

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}
	return ride, nil
}

// Delete removes a ride and its events.
func (s *RideService) Delete(ctx context.Context, id int64) error {
	return s.rideRepo.Delete(ctx, id)
}
