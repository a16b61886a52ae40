// Package seed fills a store with a reproducible set of users, rides and
// ride events for local development and demos.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/RonaldAllanRivera/ride-info/internal/auth"
	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/logger"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
)

// ErrAlreadySeeded is returned when rides exist and Force is not set.
var ErrAlreadySeeded = errors.New("store already contains rides; use -force to seed anyway")

// Repositories are the stores the seeder writes to.
type Repositories struct {
	Users  repository.UserRepository
	Rides  repository.RideRepository
	Events repository.RideEventRepository
}

// Options control the size and shape of the generated data.
type Options struct {
	Rides         int
	EventsPerRide int
	Drivers       int
	Riders        int
	Seed          uint64
	CenterLat     float64
	CenterLon     float64
	Force         bool
	AdminEmail    string
	AdminPassword string
}

// DefaultOptions returns a small dataset centred on Manila.
func DefaultOptions() Options {
	return Options{
		Rides:         25,
		EventsPerRide: 4,
		Drivers:       5,
		Riders:        10,
		Seed:          1337,
		CenterLat:     14.5995,
		CenterLon:     120.9842,
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin",
	}
}

// Summary counts what Run created.
type Summary struct {
	Users  int
	Rides  int
	Events int
}

const jitter = 0.03

var (
	statuses  = []string{domain.RideStatusEnRoute, domain.RideStatusPickup, domain.RideStatusDropoff}
	firstName = []string{"Ana", "Ben", "Carla", "Dino", "Ella", "Gabe", "Iris", "Jomar", "Kaye", "Luis"}
	lastName  = []string{"Reyes", "Santos", "Cruz", "Bautista", "Garcia", "Mendoza", "Torres", "Flores"}
	notes     = []string{
		"Ride requested",
		"Driver assigned",
		"Driver arrived at pickup",
		"Status changed to pickup",
		"Status changed to dropoff",
		"Rider picked up",
		"Ride completed",
	}
)

// Run seeds repos. now anchors ride and event timestamps; at least one event
// per ride falls within the 24 hours before now.
func Run(ctx context.Context, repos Repositories, opts Options, now time.Time) (Summary, error) {
	var summary Summary

	existing, err := repos.Rides.CountListings(ctx, repository.RideQuery{})
	if err != nil {
		return summary, fmt.Errorf("failed to count rides: %w", err)
	}
	if existing > 0 && !opts.Force {
		return summary, ErrAlreadySeeded
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))

	admin := &domain.User{
		Role:      domain.RoleAdmin,
		FirstName: "Admin",
		Email:     opts.AdminEmail,
		IsActive:  true,
	}
	if _, err := getOrCreateUser(ctx, repos.Users, admin, opts.AdminPassword, &summary); err != nil {
		return summary, err
	}

	drivers, err := people(ctx, repos.Users, rng, "driver", opts.Drivers, &summary)
	if err != nil {
		return summary, err
	}
	riders, err := people(ctx, repos.Users, rng, "rider", opts.Riders, &summary)
	if err != nil {
		return summary, err
	}
	if opts.Rides > 0 && (len(drivers) == 0 || len(riders) == 0) {
		return summary, errors.New("rides need at least one driver and one rider")
	}

	for i := 0; i < opts.Rides; i++ {
		ride := &domain.Ride{
			Status:           statuses[rng.IntN(len(statuses))],
			RiderID:          riders[rng.IntN(len(riders))],
			DriverID:         drivers[rng.IntN(len(drivers))],
			PickupLatitude:   opts.CenterLat + offset(rng),
			PickupLongitude:  opts.CenterLon + offset(rng),
			DropoffLatitude:  opts.CenterLat + offset(rng),
			DropoffLongitude: opts.CenterLon + offset(rng),
			PickupTime:       now.Add(-time.Duration(rng.IntN(72*60)) * time.Minute),
		}
		if err := repos.Rides.Create(ctx, ride); err != nil {
			return summary, fmt.Errorf("failed to create ride: %w", err)
		}
		summary.Rides++

		for j := 0; j < opts.EventsPerRide; j++ {
			age := time.Duration(rng.IntN(72*60)) * time.Minute
			if j == 0 {
				age = time.Duration(rng.IntN(23*60)) * time.Minute
			}
			event := &domain.RideEvent{
				RideID:      ride.ID,
				Description: notes[rng.IntN(len(notes))],
				CreatedAt:   now.Add(-age),
			}
			if err := repos.Events.Create(ctx, event); err != nil {
				return summary, fmt.Errorf("failed to create ride event: %w", err)
			}
			summary.Events++
		}
	}

	logger.Info("Seed complete",
		zap.Int("users", summary.Users),
		zap.Int("rides", summary.Rides),
		zap.Int("events", summary.Events),
	)
	return summary, nil
}

func offset(rng *rand.Rand) float64 {
	return (rng.Float64()*2 - 1) * jitter
}

func people(ctx context.Context, users repository.UserRepository, rng *rand.Rand, kind string, n int, summary *Summary) ([]int64, error) {
	ids := make([]int64, 0, n)
	for i := 1; i <= n; i++ {
		u := &domain.User{
			Role:        domain.RoleStandard,
			FirstName:   firstName[rng.IntN(len(firstName))],
			LastName:    lastName[rng.IntN(len(lastName))],
			Email:       fmt.Sprintf("%s%02d@ride.example", kind, i),
			PhoneNumber: fmt.Sprintf("+63917%07d", rng.IntN(10_000_000)),
			IsActive:    true,
		}
		id, err := getOrCreateUser(ctx, users, u, "", summary)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// getOrCreateUser returns the ID of the user with u's email, creating u when
// no such user exists.
func getOrCreateUser(ctx context.Context, users repository.UserRepository, u *domain.User, password string, summary *Summary) (int64, error) {
	existing, err := users.GetByEmail(ctx, u.Email)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, fmt.Errorf("failed to look up %s: %w", u.Email, err)
	}

	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return 0, err
		}
		u.PasswordHash = hash
	}
	if err := u.Validate(); err != nil {
		return 0, err
	}
	if err := users.Create(ctx, u); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", u.Email, err)
	}
	summary.Users++
	return u.ID, nil
}
