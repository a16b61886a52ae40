package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
)

var userRowColumns = []string{"id", "role", "first_name", "last_name", "email", "phone_number", "password_hash", "is_active", "date_joined"}

func TestUserCreate(t *testing.T) {
	store, mock := newMockStore(t)
	joined := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(domain.RoleAdmin, "Ada", "Admin", "admin@example.com", "", "hash", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date_joined"}).AddRow(1, joined))

	user := &domain.User{Role: domain.RoleAdmin, FirstName: "Ada", LastName: "Admin", Email: "admin@example.com", PasswordHash: "hash", IsActive: true}
	require.NoError(t, store.Users.Create(context.Background(), user))
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, joined, user.DateJoined)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: codeUniqueViolation, Constraint: "users_email_key"})

	err := store.Users.Create(context.Background(), &domain.User{Role: domain.RoleStandard, Email: "dup@example.com"})

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "user with this email already exists.", verr.Fields["email"])
}

func TestUserGetByEmailNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE lower(email) = lower($1)`)).
		WithArgs("Nobody@Example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := store.Users.GetByEmail(context.Background(), "Nobody@Example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserDeleteReferenced(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnError(&pq.Error{Code: codeForeignKeyViolation, Constraint: "rides_rider_id_fkey"})

	err := store.Users.Delete(context.Background(), 1)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestUserListFiltersAndPages(t *testing.T) {
	store, mock := newMockStore(t)
	joined := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE lower(role) = lower($1) ORDER BY id LIMIT $2 OFFSET $3`)).
		WithArgs("ADMIN", 10, 10).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(11, "admin", "Ada", "Admin", "admin@example.com", "", "hash", true, joined))

	users, err := store.Users.List(context.Background(), repository.UserFilter{Role: "ADMIN"}, repository.Page{Limit: 10, Offset: 10})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsAdmin())
	assert.NoError(t, mock.ExpectationsWereMet())
}
