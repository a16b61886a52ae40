package domain

import (
	"strings"
	"time"

	"github.com/RonaldAllanRivera/ride-info/internal/geo"
)

// Common ride statuses. Status is free-form; these are the values the
// dispatch tooling writes.
const (
	RideStatusEnRoute = "en-route"
	RideStatusPickup  = "pickup"
	RideStatusDropoff = "dropoff"
)

// MaxStatusLength is the longest status a ride may carry.
const MaxStatusLength = 50

// Ride represents a single dispatch record between a rider and a driver.
type Ride struct {
	ID               int64
	Status           string
	RiderID          int64
	DriverID         int64
	PickupLatitude   float64
	PickupLongitude  float64
	DropoffLatitude  float64
	DropoffLongitude float64
	PickupTime       time.Time
}

// Pickup returns the pickup coordinate.
func (r *Ride) Pickup() geo.Point {
	return geo.Point{Lat: r.PickupLatitude, Lon: r.PickupLongitude}
}

// Validate checks the field-level constraints of a ride. Whether rider and
// driver exist is enforced by the store at write time.
func (r *Ride) Validate() error {
	verr := NewValidationError()

	status := strings.TrimSpace(r.Status)
	switch {
	case status == "":
		verr.Add("status", "This field may not be blank.")
	case len(status) > MaxStatusLength:
		verr.Add("status", "Ensure this field has no more than 50 characters.")
	}

	if r.RiderID <= 0 {
		verr.Add("rider_id", "This field is required.")
	}
	if r.DriverID <= 0 {
		verr.Add("driver_id", "This field is required.")
	}

	if !geo.ValidLatitude(r.PickupLatitude) {
		verr.Add("pickup_latitude", "Ensure this value is between -90 and 90.")
	}
	if !geo.ValidLongitude(r.PickupLongitude) {
		verr.Add("pickup_longitude", "Ensure this value is between -180 and 180.")
	}
	if !geo.ValidLatitude(r.DropoffLatitude) {
		verr.Add("dropoff_latitude", "Ensure this value is between -90 and 90.")
	}
	if !geo.ValidLongitude(r.DropoffLongitude) {
		verr.Add("dropoff_longitude", "Ensure this value is between -180 and 180.")
	}

	if r.PickupTime.IsZero() {
		verr.Add("pickup_time", "This field is required.")
	}

	return verr.Err()
}

// RideListing is the read model returned by ride listings: the ride joined
// with its rider and driver, the optional distance annotation, and the
// ride's events from the trailing 24 hours.
type RideListing struct {
	Ride
	Rider                  User
	Driver                 User
	DistanceToPickupMeters *float64
	TodaysRideEvents       []RideEvent
}
