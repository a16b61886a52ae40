package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
)

const rideEventColumns = `id, ride_id, description, created_at`

// RideEventRepository is a PostgreSQL implementation of repository.RideEventRepository.
type RideEventRepository struct {
	q Querier
}

// NewRideEventRepository creates a new PostgreSQL ride event repository.
func NewRideEventRepository(q Querier) *RideEventRepository {
	return &RideEventRepository{q: countingQuerier{q: q}}
}

// Create persists a new ride event.
func (r *RideEventRepository) Create(ctx context.Context, event *domain.RideEvent) error {
	query := `
		INSERT INTO ride_events (ride_id, description, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.q.QueryRowContext(ctx, query, event.RideID, event.Description, event.CreatedAt).Scan(&event.ID)
	return translateWriteError(err)
}

// GetByID retrieves a ride event by ID.
func (r *RideEventRepository) GetByID(ctx context.Context, id int64) (*domain.RideEvent, error) {
	query := `SELECT ` + rideEventColumns + ` FROM ride_events WHERE id = $1`

	event, err := scanRideEvent(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Update overwrites an existing ride event.
func (r *RideEventRepository) Update(ctx context.Context, event *domain.RideEvent) error {
	query := `
		UPDATE ride_events
		SET ride_id = $1, description = $2, created_at = $3
		WHERE id = $4
	`
	result, err := r.q.ExecContext(ctx, query, event.RideID, event.Description, event.CreatedAt, event.ID)
	if err != nil {
		return translateWriteError(err)
	}
	return requireRowAffected(result)
}

// Delete removes a ride event.
func (r *RideEventRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM ride_events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(result)
}

// Count returns the number of events matching filter.
func (r *RideEventRepository) Count(ctx context.Context, filter repository.RideEventFilter) (int, error) {
	where, args := rideEventWhere(filter)

	var count int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM ride_events`+where, args...).Scan(&count)
	return count, err
}

// List returns events matching filter ordered by ID.
func (r *RideEventRepository) List(ctx context.Context, filter repository.RideEventFilter, page repository.Page) ([]*domain.RideEvent, error) {
	where, args := rideEventWhere(filter)
	query := `SELECT ` + rideEventColumns + ` FROM ride_events` + where + ` ORDER BY id` + limitClause(page, &args)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*domain.RideEvent{}
	for rows.Next() {
		event, err := scanRideEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// ListSince fetches the recent events of every ride in rideIDs with a single
// query served by the (ride_id, created_at DESC) index.
func (r *RideEventRepository) ListSince(ctx context.Context, rideIDs []int64, since time.Time) (map[int64][]domain.RideEvent, error) {
	grouped := make(map[int64][]domain.RideEvent, len(rideIDs))
	if len(rideIDs) == 0 {
		return grouped, nil
	}

	query := `
		SELECT ` + rideEventColumns + `
		FROM ride_events
		WHERE ride_id = ANY($1) AND created_at >= $2
		ORDER BY ride_id, created_at DESC, id DESC
	`
	rows, err := r.q.QueryContext(ctx, query, pq.Array(rideIDs), since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		event, err := scanRideEvent(rows)
		if err != nil {
			return nil, err
		}
		grouped[event.RideID] = append(grouped[event.RideID], *event)
	}
	return grouped, rows.Err()
}

func rideEventWhere(filter repository.RideEventFilter) (string, []any) {
	if filter.RideID == 0 {
		return "", nil
	}
	return " WHERE ride_id = $1", []any{filter.RideID}
}

func scanRideEvent(row rowScanner) (*domain.RideEvent, error) {
	var event domain.RideEvent
	if err := row.Scan(&event.ID, &event.RideID, &event.Description, &event.CreatedAt); err != nil {
		return nil, err
	}
	return &event, nil
}
