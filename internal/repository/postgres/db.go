package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/RonaldAllanRivera/ride-info/internal/querycount"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
	_ Querier = countingQuerier{}

	_ repository.UserRepository      = (*UserRepository)(nil)
	_ repository.RideRepository      = (*RideRepository)(nil)
	_ repository.RideEventRepository = (*RideEventRepository)(nil)
)

// countingQuerier records every round trip against the request's query counter.
type countingQuerier struct {
	q Querier
}

func (c countingQuerier) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	querycount.Inc(ctx)
	return c.q.ExecContext(ctx, query, args...)
}

func (c countingQuerier) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	querycount.Inc(ctx)
	return c.q.QueryRowContext(ctx, query, args...)
}

func (c countingQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	querycount.Inc(ctx)
	return c.q.QueryContext(ctx, query, args...)
}

// Store groups the repositories that share one connection pool or transaction.
type Store struct {
	db     *sql.DB
	Users  *UserRepository
	Rides  *RideRepository
	Events *RideEventRepository
}

// NewStore creates a Store backed by the connection pool.
func NewStore(db *sql.DB) *Store {
	return newStore(db, db)
}

func newStore(db *sql.DB, q Querier) *Store {
	return &Store{
		db:     db,
		Users:  NewUserRepository(q),
		Rides:  NewRideRepository(q),
		Events: NewRideEventRepository(q),
	}
}

// WithTx runs fn with repositories bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(newStore(s.db, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
