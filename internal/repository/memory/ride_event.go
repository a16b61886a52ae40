package memory

import (
	"context"
	"sort"
	"time"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/querycount"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
)

// RideEventRepository is an in-memory implementation of repository.RideEventRepository.
type RideEventRepository struct {
	s *state
}

func (r *RideEventRepository) Create(ctx context.Context, event *domain.RideEvent) error {
	querycount.Inc(ctx)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.rides[event.RideID]; !ok {
		return domain.FieldError("ride_id", "Invalid pk - object does not exist.")
	}

	r.s.nextEventID++
	event.ID = r.s.nextEventID
	stored := *event
	r.s.events[event.ID] = &stored
	return nil
}

func (r *RideEventRepository) GetByID(ctx context.Context, id int64) (*domain.RideEvent, error) {
	querycount.Inc(ctx)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	event, ok := r.s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	stored := *event
	return &stored, nil
}

func (r *RideEventRepository) Update(ctx context.Context, event *domain.RideEvent) error {
	querycount.Inc(ctx)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[event.ID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.rides[event.RideID]; !ok {
		return domain.FieldError("ride_id", "Invalid pk - object does not exist.")
	}
	stored := *event
	r.s.events[event.ID] = &stored
	return nil
}

func (r *RideEventRepository) Delete(ctx context.Context, id int64) error {
	querycount.Inc(ctx)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.events, id)
	return nil
}

func (r *RideEventRepository) Count(ctx context.Context, filter repository.RideEventFilter) (int, error) {
	querycount.Inc(ctx)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.match(filter)), nil
}

func (r *RideEventRepository) List(ctx context.Context, filter repository.RideEventFilter, page repository.Page) ([]*domain.RideEvent, error) {
	querycount.Inc(ctx)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.match(filter)
	start, end := window(len(matched), page)

	result := make([]*domain.RideEvent, 0, end-start)
	for _, e := range matched[start:end] {
		stored := *e
		result = append(result, &stored)
	}
	return result, nil
}

func (r *RideEventRepository) ListSince(ctx context.Context, rideIDs []int64, since time.Time) (map[int64][]domain.RideEvent, error) {
	grouped := make(map[int64][]domain.RideEvent, len(rideIDs))
	if len(rideIDs) == 0 {
		return grouped, nil
	}

	querycount.Inc(ctx)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[int64]bool, len(rideIDs))
	for _, id := range rideIDs {
		wanted[id] = true
	}
	for _, e := range r.s.events {
		if wanted[e.RideID] && !e.CreatedAt.Before(since) {
			grouped[e.RideID] = append(grouped[e.RideID], *e)
		}
	}
	for _, events := range grouped {
		sort.Slice(events, func(i, j int) bool {
			if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
				return events[i].CreatedAt.After(events[j].CreatedAt)
			}
			return events[i].ID > events[j].ID
		})
	}
	return grouped, nil
}

func (r *RideEventRepository) match(filter repository.RideEventFilter) []*domain.RideEvent {
	var matched []*domain.RideEvent
	for _, id := range sortedIDs(r.s.events) {
		e := r.s.events[id]
		if filter.RideID != 0 && e.RideID != filter.RideID {
			continue
		}
		matched = append(matched, e)
	}
	return matched
}
