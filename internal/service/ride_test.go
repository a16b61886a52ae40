package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/pagination"
	"github.com/RonaldAllanRivera/ride-info/internal/querycount"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
	"github.com/RonaldAllanRivera/ride-info/internal/repository/memory"
)

var fixedNow = time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }
func floatPtr(v float64) *float64 { return &v }
func timePtr(t time.Time) *time.Time { return &t }

type rideFixture struct {
	store  *memory.Store
	svc    *RideService
	rider  *domain.User
	driver *domain.User
}

func newRideFixture(t *testing.T) *rideFixture {
	t.Helper()
	store := memory.NewStore()
	rider := &domain.User{Role: domain.RoleStandard, Email: "rider1@example.com", IsActive: true}
	driver := &domain.User{Role: domain.RoleStandard, Email: "driver1@example.com", IsActive: true}
	for _, u := range []*domain.User{rider, driver} {
		if err := store.Users.Create(context.Background(), u); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
	}
	return &rideFixture{
		store:  store,
		svc:    NewRideService(store.Rides, store.Events, func() time.Time { return fixedNow }),
		rider:  rider,
		driver: driver,
	}
}

func (f *rideFixture) input(status string, lat, lon float64, pickup time.Time) RideInput {
	return RideInput{
		Status:           strPtr(status),
		RiderID:          int64Ptr(f.rider.ID),
		DriverID:         int64Ptr(f.driver.ID),
		PickupLatitude:   floatPtr(lat),
		PickupLongitude:  floatPtr(lon),
		DropoffLatitude:  floatPtr(lat + 0.01),
		DropoffLongitude: floatPtr(lon + 0.01),
		PickupTime:       timePtr(pickup),
	}
}

func (f *rideFixture) create(t *testing.T, status string, lat, lon float64, pickup time.Time) *domain.Ride {
	t.Helper()
	ride, err := f.svc.Create(context.Background(), f.input(status, lat, lon, pickup))
	if err != nil {
		t.Fatalf("failed to create ride: %v", err)
	}
	return ride
}

func firstPage() pagination.Params {
	return pagination.Params{Number: 1, Size: 10}
}

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return verr.Fields
}

func TestRideListParams_Query(t *testing.T) {
	testCases := []struct {
		name       string
		params     RideListParams
		wantFields []string
		wantOrigin bool
		wantOrder  repository.RideOrdering
	}{
		{"empty", RideListParams{}, nil, false, repository.OrderByID},
		{"unknown ordering", RideListParams{Ordering: "fare"}, nil, false, repository.OrderByID},
		{"pickup ordering", RideListParams{Ordering: "-pickup_time"}, nil, false, repository.OrderByPickupTimeDesc},
		{"origin", RideListParams{Lat: strPtr("14.6"), Lon: strPtr("120.98")}, nil, true, repository.OrderByID},
		{"lat only", RideListParams{Lat: strPtr("14.6")}, nil, false, repository.OrderByID},
		{"distance with origin", RideListParams{Lat: strPtr("14.6"), Lon: strPtr("120.98"), Ordering: "-distance"}, nil, true, repository.OrderByDistanceDesc},
		{"bad lat", RideListParams{Lat: strPtr("north"), Lon: strPtr("120.98")}, []string{"lat", "lon"}, false, ""},
		{"empty lon", RideListParams{Lat: strPtr("14.6"), Lon: strPtr("")}, []string{"lat", "lon"}, false, ""},
		{"nan", RideListParams{Lat: strPtr("NaN"), Lon: strPtr("1")}, []string{"lat", "lon"}, false, ""},
		{"distance without origin", RideListParams{Ordering: "distance"}, []string{"ordering"}, false, ""},
		{"distance with lat only", RideListParams{Lat: strPtr("14.6"), Ordering: "distance"}, []string{"ordering"}, false, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			query, err := tc.params.Query()
			if len(tc.wantFields) > 0 {
				fields := validationFields(t, err)
				for _, f := range tc.wantFields {
					if _, ok := fields[f]; !ok {
						t.Errorf("expected error on %q, got %v", f, fields)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (query.Origin != nil) != tc.wantOrigin {
				t.Errorf("expected origin=%v, got %v", tc.wantOrigin, query.Origin)
			}
			if query.Ordering != tc.wantOrder {
				t.Errorf("expected ordering %q, got %q", tc.wantOrder, query.Ordering)
			}
		})
	}
}

func TestRideListParams_MessagesMatchAPI(t *testing.T) {
	_, err := RideListParams{Lat: strPtr("x"), Lon: strPtr("y")}.Query()
	fields := validationFields(t, err)
	if fields["lat"] != "Must be a number" || fields["lon"] != "Must be a number" {
		t.Errorf("unexpected messages: %v", fields)
	}

	_, err = RideListParams{Ordering: "distance"}.Query()
	fields = validationFields(t, err)
	if fields["ordering"] != "Distance ordering requires lat and lon query params" {
		t.Errorf("unexpected message: %v", fields)
	}
}

func TestRideList_DistanceZeroAtPickup(t *testing.T) {
	f := newRideFixture(t)
	f.create(t, "pickup", 14.60, 120.98, fixedNow)

	listings, total, err := f.svc.List(context.Background(), RideListParams{Lat: strPtr("14.60"), Lon: strPtr("120.98")}, firstPage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(listings) != 1 {
		t.Fatalf("expected 1 ride, got total=%d len=%d", total, len(listings))
	}
	d := listings[0].DistanceToPickupMeters
	if d == nil || *d > 1e-6 {
		t.Errorf("expected distance ~0, got %v", d)
	}
}

func TestRideList_DistanceNullWithoutOrigin(t *testing.T) {
	f := newRideFixture(t)
	f.create(t, "pickup", 14.60, 120.98, fixedNow)

	listings, _, err := f.svc.List(context.Background(), RideListParams{Lat: strPtr("14.60")}, firstPage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listings[0].DistanceToPickupMeters != nil {
		t.Errorf("expected null distance, got %v", *listings[0].DistanceToPickupMeters)
	}
}

func TestRideList_PickupTimeOrdering(t *testing.T) {
	f := newRideFixture(t)
	r1 := f.create(t, "pickup", 14.6, 120.98, fixedNow.Add(2*time.Hour))
	r2 := f.create(t, "pickup", 14.6, 120.98, fixedNow)
	r3 := f.create(t, "pickup", 14.6, 120.98, fixedNow.Add(time.Hour))

	asc, _, err := f.svc.List(context.Background(), RideListParams{Ordering: "pickup_time"}, firstPage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{r2.ID, r3.ID, r1.ID}
	for i, l := range asc {
		if l.ID != want[i] {
			t.Errorf("asc position %d: expected ride %d, got %d", i, want[i], l.ID)
		}
	}

	desc, _, err := f.svc.List(context.Background(), RideListParams{Ordering: "-pickup_time"}, firstPage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = []int64{r1.ID, r3.ID, r2.ID}
	for i, l := range desc {
		if l.ID != want[i] {
			t.Errorf("desc position %d: expected ride %d, got %d", i, want[i], l.ID)
		}
	}
}

func TestRideList_StatusCaseInsensitive(t *testing.T) {
	f := newRideFixture(t)
	pickup := f.create(t, "pickup", 14.6, 120.98, fixedNow)
	f.create(t, "dropoff", 14.6, 120.98, fixedNow)

	listings, total, err := f.svc.List(context.Background(), RideListParams{Status: "PICKUP"}, firstPage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || listings[0].ID != pickup.ID {
		t.Errorf("expected only ride %d, got total=%d", pickup.ID, total)
	}
}

func TestRideList_SecondPage(t *testing.T) {
	f := newRideFixture(t)
	for i := 0; i < 15; i++ {
		f.create(t, "en-route", 14.6, 120.98, fixedNow)
	}

	listings, total, err := f.svc.List(context.Background(), RideListParams{}, pagination.Params{Number: 2, Size: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 15 || len(listings) != 5 {
		t.Errorf("expected 5 of 15, got %d of %d", len(listings), total)
	}

	_, _, err = f.svc.List(context.Background(), RideListParams{}, pagination.Params{Number: 3, Size: 10})
	if !errors.Is(err, pagination.ErrInvalidPage) {
		t.Errorf("expected ErrInvalidPage, got %v", err)
	}
}

func TestRideList_TodaysEventsBatched(t *testing.T) {
	f := newRideFixture(t)
	ride := f.create(t, "pickup", 14.6, 120.98, fixedNow)
	other := f.create(t, "pickup", 14.6, 120.98, fixedNow)

	events := []*domain.RideEvent{
		{RideID: ride.ID, Description: "Status changed to en-route", CreatedAt: fixedNow.Add(-30 * time.Hour)},
		{RideID: ride.ID, Description: "Status changed to pickup", CreatedAt: fixedNow.Add(-3 * time.Hour)},
		{RideID: ride.ID, Description: "Status changed to dropoff", CreatedAt: fixedNow.Add(-time.Hour)},
		{RideID: ride.ID, Description: "Boundary", CreatedAt: fixedNow.Add(-domain.RecentEventsWindow)},
	}
	for _, e := range events {
		if err := f.store.Events.Create(context.Background(), e); err != nil {
			t.Fatalf("failed to create event: %v", err)
		}
	}

	ctx, counter := querycount.NewContext(context.Background())
	listings, _, err := f.svc.List(ctx, RideListParams{}, firstPage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := listings[0].TodaysRideEvents
	if len(got) != 3 {
		t.Fatalf("expected 3 recent events, got %d", len(got))
	}
	if got[0].Description != "Status changed to dropoff" || got[2].Description != "Boundary" {
		t.Errorf("events not newest first: %+v", got)
	}
	if listings[1].ID != other.ID || listings[1].TodaysRideEvents == nil || len(listings[1].TodaysRideEvents) != 0 {
		t.Errorf("expected empty event list for ride %d", other.ID)
	}

	// count + page + one batched events lookup
	if counter.Value() != 3 {
		t.Errorf("expected 3 store round trips, got %d", counter.Value())
	}
}

func TestRideGet_UsesListingPath(t *testing.T) {
	f := newRideFixture(t)
	ride := f.create(t, "pickup", 14.6, 120.98, fixedNow)

	listing, err := f.svc.Get(context.Background(), ride.ID, RideListParams{Lat: strPtr("14.6"), Lon: strPtr("120.98")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listing.DistanceToPickupMeters == nil || listing.Rider.Email != "rider1@example.com" {
		t.Errorf("expected annotated listing, got %+v", listing)
	}

	_, err = f.svc.Get(context.Background(), 999, RideListParams{})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRideGet_ValidatesOrdering(t *testing.T) {
	f := newRideFixture(t)
	ride := f.create(t, "pickup", 14.6, 120.98, fixedNow)

	_, err := f.svc.Get(context.Background(), ride.ID, RideListParams{Ordering: "distance"})
	fields := validationFields(t, err)
	if _, ok := fields["ordering"]; !ok {
		t.Errorf("expected ordering error, got %v", fields)
	}
}

func TestRideCreate_Validation(t *testing.T) {
	f := newRideFixture(t)

	_, err := f.svc.Create(context.Background(), RideInput{Status: strPtr("pickup")})
	fields := validationFields(t, err)
	for _, field := range []string{"rider_id", "driver_id", "pickup_latitude", "pickup_time"} {
		if fields[field] != msgRequired {
			t.Errorf("expected %q required, got %q", field, fields[field])
		}
	}

	in := f.input("pickup", 91, 120.98, fixedNow)
	_, err = f.svc.Create(context.Background(), in)
	fields = validationFields(t, err)
	if _, ok := fields["pickup_latitude"]; !ok {
		t.Errorf("expected pickup_latitude error, got %v", fields)
	}

	in = f.input("pickup", 14.6, 120.98, fixedNow)
	in.DriverID = int64Ptr(999)
	_, err = f.svc.Create(context.Background(), in)
	fields = validationFields(t, err)
	if _, ok := fields["driver_id"]; !ok {
		t.Errorf("expected driver_id error, got %v", fields)
	}
}

func TestRideUpdate_PartialAndFull(t *testing.T) {
	f := newRideFixture(t)
	ride := f.create(t, "pickup", 14.6, 120.98, fixedNow)

	updated, err := f.svc.Update(context.Background(), ride.ID, RideInput{Status: strPtr("dropoff")}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != "dropoff" || updated.PickupLatitude != 14.6 {
		t.Errorf("partial update changed unexpected fields: %+v", updated)
	}

	_, err = f.svc.Update(context.Background(), ride.ID, RideInput{Status: strPtr("dropoff")}, false)
	fields := validationFields(t, err)
	if fields["rider_id"] != msgRequired {
		t.Errorf("expected full update to require rider_id, got %v", fields)
	}

	_, err = f.svc.Update(context.Background(), 999, RideInput{}, true)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRideDelete_CascadesEvents(t *testing.T) {
	f := newRideFixture(t)
	ride := f.create(t, "pickup", 14.6, 120.98, fixedNow)
	events := NewRideEventService(f.store.Events, func() time.Time { return fixedNow })

	event, err := events.Create(context.Background(), RideEventInput{RideID: int64Ptr(ride.ID), Description: strPtr("Status changed to pickup")})
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}

	if err := f.svc.Delete(context.Background(), ride.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := events.Get(context.Background(), event.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected event to be deleted, got %v", err)
	}
}
