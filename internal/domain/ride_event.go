package domain

import (
	"strings"
	"time"
)

// MaxDescriptionLength is the longest description a ride event may carry.
const MaxDescriptionLength = 255

// RecentEventsWindow is how far back a ride listing looks for events.
const RecentEventsWindow = 24 * time.Hour

// RideEvent is a timestamped status or audit entry owned by a ride.
type RideEvent struct {
	ID          int64
	RideID      int64
	Description string
	CreatedAt   time.Time
}

// Validate checks the field-level constraints of a ride event.
func (e *RideEvent) Validate() error {
	verr := NewValidationError()

	if e.RideID <= 0 {
		verr.Add("ride_id", "This field is required.")
	}

	description := strings.TrimSpace(e.Description)
	switch {
	case description == "":
		verr.Add("description", "This field may not be blank.")
	case len(description) > MaxDescriptionLength:
		verr.Add("description", "Ensure this field has no more than 255 characters.")
	}

	if e.CreatedAt.IsZero() {
		verr.Add("created_at", "This field is required.")
	}

	return verr.Err()
}
