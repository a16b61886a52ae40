package memory

import (
	"context"
	"strings"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/querycount"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
)

// UserRepository is an in-memory implementation of repository.UserRepository.
type UserRepository struct {
	s *state
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	querycount.Inc(ctx)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.userByEmail(user.Email) != nil {
		return domain.FieldError("email", "user with this email already exists.")
	}

	r.s.nextUserID++
	user.ID = r.s.nextUserID
	user.DateJoined = r.s.now()
	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	querycount.Inc(ctx)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	stored := *user
	return &stored, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	querycount.Inc(ctx)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user := r.s.userByEmail(email)
	if user == nil {
		return nil, repository.ErrNotFound
	}
	stored := *user
	return &stored, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	querycount.Inc(ctx)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if other := r.s.userByEmail(user.Email); other != nil && other.ID != user.ID {
		return domain.FieldError("email", "user with this email already exists.")
	}

	stored := *user
	stored.DateJoined = existing.DateJoined
	r.s.users[user.ID] = &stored
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	querycount.Inc(ctx)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	if r.s.userReferenced(id) {
		return repository.ErrConflict
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepository) Count(ctx context.Context, filter repository.UserFilter) (int, error) {
	querycount.Inc(ctx)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.match(filter)), nil
}

func (r *UserRepository) List(ctx context.Context, filter repository.UserFilter, page repository.Page) ([]*domain.User, error) {
	querycount.Inc(ctx)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.match(filter)
	start, end := window(len(matched), page)

	result := make([]*domain.User, 0, end-start)
	for _, u := range matched[start:end] {
		stored := *u
		result = append(result, &stored)
	}
	return result, nil
}

func (r *UserRepository) match(filter repository.UserFilter) []*domain.User {
	var matched []*domain.User
	for _, id := range sortedIDs(r.s.users) {
		u := r.s.users[id]
		if filter.Role != "" && !strings.EqualFold(string(u.Role), filter.Role) {
			continue
		}
		if filter.Email != "" && !strings.EqualFold(u.Email, filter.Email) {
			continue
		}
		matched = append(matched, u)
	}
	return matched
}
