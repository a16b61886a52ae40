package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
)

const rideColumns = `id, status, rider_id, driver_id, pickup_latitude, pickup_longitude, dropoff_latitude, dropoff_longitude, pickup_time`

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(q Querier) *RideRepository {
	return &RideRepository{q: countingQuerier{q: q}}
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (status, rider_id, driver_id, pickup_latitude, pickup_longitude, dropoff_latitude, dropoff_longitude, pickup_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.q.QueryRowContext(ctx, query,
		ride.Status,
		ride.RiderID,
		ride.DriverID,
		ride.PickupLatitude,
		ride.PickupLongitude,
		ride.DropoffLatitude,
		ride.DropoffLongitude,
		ride.PickupTime,
	).Scan(&ride.ID)
	return translateWriteError(err)
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id int64) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	var ride domain.Ride
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&ride.ID,
		&ride.Status,
		&ride.RiderID,
		&ride.DriverID,
		&ride.PickupLatitude,
		&ride.PickupLongitude,
		&ride.DropoffLatitude,
		&ride.DropoffLongitude,
		&ride.PickupTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

// Update overwrites an existing ride.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	query := `
		UPDATE rides
		SET status = $1, rider_id = $2, driver_id = $3,
		    pickup_latitude = $4, pickup_longitude = $5,
		    dropoff_latitude = $6, dropoff_longitude = $7,
		    pickup_time = $8
		WHERE id = $9
	`
	result, err := r.q.ExecContext(ctx, query,
		ride.Status,
		ride.RiderID,
		ride.DriverID,
		ride.PickupLatitude,
		ride.PickupLongitude,
		ride.DropoffLatitude,
		ride.DropoffLongitude,
		ride.PickupTime,
		ride.ID,
	)
	if err != nil {
		return translateWriteError(err)
	}
	return requireRowAffected(result)
}

// Delete removes a ride. Its events go with it through ON DELETE CASCADE.
func (r *RideRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM rides WHERE id = $1`, id)
	if err != nil {
		return translateDeleteError(err)
	}
	return requireRowAffected(result)
}

// CountListings returns the number of rides matching query.
func (r *RideRepository) CountListings(ctx context.Context, query repository.RideQuery) (int, error) {
	b := newRideQueryBuilder(query)
	sqlText := `SELECT COUNT(*) FROM rides r JOIN users rider ON rider.id = r.rider_id` + b.where()

	var count int
	err := r.q.QueryRowContext(ctx, sqlText, b.args...).Scan(&count)
	return count, err
}

// ListListings returns one page of rides joined with their rider and driver.
func (r *RideRepository) ListListings(ctx context.Context, query repository.RideQuery, page repository.Page) ([]*domain.RideListing, error) {
	b := newRideQueryBuilder(query)
	distance := b.distance()
	where := b.where()
	sqlText := `
		SELECT r.id, r.status, r.rider_id, r.driver_id,
		       r.pickup_latitude, r.pickup_longitude, r.dropoff_latitude, r.dropoff_longitude, r.pickup_time,
		       rider.id, rider.role, rider.first_name, rider.last_name, rider.email, rider.phone_number,
		       driver.id, driver.role, driver.first_name, driver.last_name, driver.email, driver.phone_number,
		       ` + distance + ` AS distance_to_pickup_meters
		FROM rides r
		JOIN users rider ON rider.id = r.rider_id
		JOIN users driver ON driver.id = r.driver_id` +
		where +
		` ORDER BY ` + b.orderBy() +
		limitClause(page, &b.args)

	rows, err := r.q.QueryContext(ctx, sqlText, b.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []*domain.RideListing{}
	for rows.Next() {
		var l domain.RideListing
		var dist sql.NullFloat64
		err := rows.Scan(
			&l.ID, &l.Status, &l.RiderID, &l.DriverID,
			&l.PickupLatitude, &l.PickupLongitude, &l.DropoffLatitude, &l.DropoffLongitude, &l.PickupTime,
			&l.Rider.ID, &l.Rider.Role, &l.Rider.FirstName, &l.Rider.LastName, &l.Rider.Email, &l.Rider.PhoneNumber,
			&l.Driver.ID, &l.Driver.Role, &l.Driver.FirstName, &l.Driver.LastName, &l.Driver.Email, &l.Driver.PhoneNumber,
			&dist,
		)
		if err != nil {
			return nil, err
		}
		if dist.Valid {
			d := dist.Float64
			l.DistanceToPickupMeters = &d
		}
		listings = append(listings, &l)
	}
	return listings, rows.Err()
}

// rideQueryBuilder renders a RideQuery into SQL fragments with positional
// parameters collected in args.
type rideQueryBuilder struct {
	query repository.RideQuery
	args  []any
}

func newRideQueryBuilder(query repository.RideQuery) *rideQueryBuilder {
	return &rideQueryBuilder{query: query}
}

func (b *rideQueryBuilder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// distance returns the select expression for distance_to_pickup_meters.
func (b *rideQueryBuilder) distance() string {
	if b.query.Origin == nil {
		return `NULL::double precision`
	}
	lat := b.bind(b.query.Origin.Lat)
	lon := b.bind(b.query.Origin.Lon)
	return `earth_distance(ll_to_earth(` + lat + `, ` + lon + `), ll_to_earth(r.pickup_latitude, r.pickup_longitude))`
}

func (b *rideQueryBuilder) where() string {
	var conds []string
	if b.query.ID != 0 {
		conds = append(conds, "r.id = "+b.bind(b.query.ID))
	}
	if b.query.Status != "" {
		conds = append(conds, "lower(r.status) = lower("+b.bind(b.query.Status)+")")
	}
	if b.query.RiderEmail != "" {
		conds = append(conds, "lower(rider.email) = lower("+b.bind(b.query.RiderEmail)+")")
	}
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func (b *rideQueryBuilder) orderBy() string {
	switch b.query.Ordering {
	case repository.OrderByPickupTimeAsc:
		return "r.pickup_time ASC, r.id ASC"
	case repository.OrderByPickupTimeDesc:
		return "r.pickup_time DESC, r.id ASC"
	case repository.OrderByDistanceAsc:
		if b.query.Origin != nil {
			return "distance_to_pickup_meters ASC, r.id ASC"
		}
	case repository.OrderByDistanceDesc:
		if b.query.Origin != nil {
			return "distance_to_pickup_meters DESC, r.id ASC"
		}
	}
	return "r.id ASC"
}
