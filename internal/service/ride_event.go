package service

import (
	"context"
	"strings"
	"time"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/pagination"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
)

// RideEventService handles ride event operations.
type RideEventService struct {
	eventRepo repository.RideEventRepository
	now       func() time.Time
}

// NewRideEventService creates a new RideEventService. A nil clock means time.Now.
func NewRideEventService(eventRepo repository.RideEventRepository, clock func() time.Time) *RideEventService {
	if clock == nil {
		clock = time.Now
	}
	return &RideEventService{eventRepo: eventRepo, now: clock}
}

// RideEventInput carries the writable event fields. Nil fields were not supplied.
type RideEventInput struct {
	RideID      *int64
	Description *string
	CreatedAt   *time.Time
}

func (in RideEventInput) requireAll() *domain.ValidationError {
	verr := domain.NewValidationError()
	if in.RideID == nil {
		verr.Add("ride_id", msgRequired)
	}
	if in.Description == nil {
		verr.Add("description", msgRequired)
	}
	return verr
}

func (in RideEventInput) apply(event *domain.RideEvent) {
	if in.RideID != nil {
		event.RideID = *in.RideID
	}
	if in.Description != nil {
		event.Description = strings.TrimSpace(*in.Description)
	}
	if in.CreatedAt != nil {
		event.CreatedAt = *in.CreatedAt
	}
}

// List returns one page of events and the total number of matches.
func (s *RideEventService) List(ctx context.Context, filter repository.RideEventFilter, page pagination.Params) ([]*domain.RideEvent, int, error) {
	total, err := s.eventRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if err := page.Check(total); err != nil {
		return nil, 0, err
	}

	events, err := s.eventRepo.List(ctx, filter, page.Window())
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// Get retrieves an event by ID.
func (s *RideEventService) Get(ctx context.Context, id int64) (*domain.RideEvent, error) {
	return s.eventRepo.GetByID(ctx, id)
}

// Create validates and persists a new event. CreatedAt defaults to now.
func (s *RideEventService) Create(ctx context.Context, in RideEventInput) (*domain.RideEvent, error) {
	event := &domain.RideEvent{CreatedAt: s.now()}
	in.apply(event)

	verr := in.requireAll()
	verr.Merge(event.Validate())
	if err := verr.Err(); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Update modifies an existing event.
func (s *RideEventService) Update(ctx context.Context, id int64, in RideEventInput, partial bool) (*domain.RideEvent, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := domain.NewValidationError()
	if !partial {
		verr = in.requireAll()
	}
	in.apply(event)
	verr.Merge(event.Validate())
	if err := verr.Err(); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Delete removes an event.
func (s *RideEventService) Delete(ctx context.Context, id int64) error {
	return s.eventRepo.Delete(ctx, id)
}
