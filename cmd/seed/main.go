package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/RonaldAllanRivera/ride-info/internal/app"
	"github.com/RonaldAllanRivera/ride-info/internal/config"
	"github.com/RonaldAllanRivera/ride-info/internal/logger"
	"github.com/RonaldAllanRivera/ride-info/internal/repository/postgres"
	"github.com/RonaldAllanRivera/ride-info/internal/seed"
)

func main() {
	cfg := config.Load()
	opts := seed.DefaultOptions()

	flag.IntVar(&opts.Rides, "rides", opts.Rides, "number of rides to create")
	flag.IntVar(&opts.EventsPerRide, "events-per-ride", opts.EventsPerRide, "ride events per ride")
	flag.IntVar(&opts.Drivers, "drivers", opts.Drivers, "number of driver accounts")
	flag.IntVar(&opts.Riders, "riders", opts.Riders, "number of rider accounts")
	flag.Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	flag.Float64Var(&opts.CenterLat, "center-lat", opts.CenterLat, "latitude rides are scattered around")
	flag.Float64Var(&opts.CenterLon, "center-lon", opts.CenterLon, "longitude rides are scattered around")
	flag.BoolVar(&opts.Force, "force", false, "seed even when rides already exist")
	flag.StringVar(&opts.AdminEmail, "admin-email", cfg.Seed.AdminEmail, "admin account email")
	flag.StringVar(&opts.AdminPassword, "admin-password", cfg.Seed.AdminPassword, "admin account password")
	flag.Parse()

	if err := logger.Init("ride-info-seed", cfg.Server.IsDevelopment()); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := app.NewDatabase(ctx, cfg.Database, nil)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := app.Migrate(ctx, db); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	store := postgres.NewStore(db)
	err = store.WithTx(ctx, func(tx *postgres.Store) error {
		repos := seed.Repositories{Users: tx.Users, Rides: tx.Rides, Events: tx.Events}
		_, err := seed.Run(ctx, repos, opts, time.Now())
		return err
	})
	if errors.Is(err, seed.ErrAlreadySeeded) {
		logger.Fatal("Refusing to seed", zap.Error(err))
	}
	if err != nil {
		logger.Fatal("Seeding failed", zap.Error(err))
	}
}
