// Package memory is an in-process implementation of the repository
// interfaces. All three repositories share one lock so reference checks and
// cascades are atomic with the write that triggers them.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
)

// Store holds every entity in memory.
type Store struct {
	Users  *UserRepository
	Rides  *RideRepository
	Events *RideEventRepository
}

type state struct {
	mu sync.RWMutex

	users  map[int64]*domain.User
	rides  map[int64]*domain.Ride
	events map[int64]*domain.RideEvent

	nextUserID  int64
	nextRideID  int64
	nextEventID int64

	now func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	s := &state{
		users:  make(map[int64]*domain.User),
		rides:  make(map[int64]*domain.Ride),
		events: make(map[int64]*domain.RideEvent),
		now:    time.Now,
	}
	return &Store{
		Users:  &UserRepository{s: s},
		Rides:  &RideRepository{s: s},
		Events: &RideEventRepository{s: s},
	}
}

func (s *state) userByEmail(email string) *domain.User {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (s *state) checkRideReferences(ride *domain.Ride) error {
	verr := domain.NewValidationError()
	if _, ok := s.users[ride.RiderID]; !ok {
		verr.Add("rider_id", "Invalid pk - object does not exist.")
	}
	if _, ok := s.users[ride.DriverID]; !ok {
		verr.Add("driver_id", "Invalid pk - object does not exist.")
	}
	return verr.Err()
}

func (s *state) userReferenced(id int64) bool {
	for _, r := range s.rides {
		if r.RiderID == id || r.DriverID == id {
			return true
		}
	}
	return false
}

// window applies a LIMIT/OFFSET page to n ordered items and returns the
// bounds of the slice to keep.
func window(n int, page repository.Page) (int, int) {
	if page.Unbounded() {
		return 0, n
	}
	start := page.Offset
	if start > n {
		start = n
	}
	end := start + page.Limit
	if end > n {
		end = n
	}
	return start, end
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Ensure interfaces are satisfied.
var (
	_ repository.UserRepository      = (*UserRepository)(nil)
	_ repository.RideRepository      = (*RideRepository)(nil)
	_ repository.RideEventRepository = (*RideEventRepository)(nil)
)
