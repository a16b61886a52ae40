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

const userColumns = `id, role, first_name, last_name, email, phone_number, password_hash, is_active, date_joined`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(q Querier) *UserRepository {
	return &UserRepository{q: countingQuerier{q: q}}
}

// Create adds a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (role, first_name, last_name, email, phone_number, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, date_joined
	`
	err := r.q.QueryRowContext(ctx, query,
		user.Role,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PhoneNumber,
		user.PasswordHash,
		user.IsActive,
	).Scan(&user.ID, &user.DateJoined)
	return translateWriteError(err)
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByEmail retrieves a user by email, ignoring case.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return r.getOne(ctx, query, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Update overwrites the mutable fields of an existing user.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET role = $1, first_name = $2, last_name = $3, email = $4, phone_number = $5, password_hash = $6, is_active = $7
		WHERE id = $8
	`
	result, err := r.q.ExecContext(ctx, query,
		user.Role,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PhoneNumber,
		user.PasswordHash,
		user.IsActive,
		user.ID,
	)
	if err != nil {
		return translateWriteError(err)
	}
	return requireRowAffected(result)
}

// Delete removes a user. The rides foreign keys are ON DELETE RESTRICT, so
// the database rejects the delete atomically while any ride references it.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translateDeleteError(err)
	}
	return requireRowAffected(result)
}

// Count returns the number of users matching filter.
func (r *UserRepository) Count(ctx context.Context, filter repository.UserFilter) (int, error) {
	where, args := userWhere(filter)

	var count int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&count)
	return count, err
}

// List returns users matching filter ordered by ID.
func (r *UserRepository) List(ctx context.Context, filter repository.UserFilter, page repository.Page) ([]*domain.User, error) {
	where, args := userWhere(filter)
	query := `SELECT ` + userColumns + ` FROM users` + where + ` ORDER BY id` + limitClause(page, &args)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func userWhere(filter repository.UserFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.Role != "" {
		args = append(args, filter.Role)
		conds = append(conds, "lower(role) = lower($"+strconv.Itoa(len(args))+")")
	}
	if filter.Email != "" {
		args = append(args, filter.Email)
		conds = append(conds, "lower(email) = lower($"+strconv.Itoa(len(args))+")")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Role,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PhoneNumber,
		&user.PasswordHash,
		&user.IsActive,
		&user.DateJoined,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// limitClause appends LIMIT/OFFSET placeholders for page to args.
func limitClause(page repository.Page, args *[]any) string {
	if page.Unbounded() {
		return ""
	}
	*args = append(*args, page.Limit, page.Offset)
	n := len(*args)
	return " LIMIT $" + strconv.Itoa(n-1) + " OFFSET $" + strconv.Itoa(n)
}

func requireRowAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
