// Command seeddev creates the first DEV account from RESTAU_SEED_DEV_EMAIL and
// RESTAU_SEED_DEV_PASSWORD when the users table is empty.
// Usage: go run ./cmd/seeddev
package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"restau/internal/config"
	"restau/internal/logging"
	"restau/internal/repository/postgres"
	"restau/internal/service"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("seed failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logging.New(cfg.Log)

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	created, err := service.SeedDevUser(context.Background(), postgres.NewUserRepo(db), cfg.Seed)
	if err != nil {
		return err
	}
	if !created {
		log.Info("users already exist, nothing to seed")
		return nil
	}
	log.WithField("email", cfg.Seed.DevEmail).Info("seeded development user")
	return nil
}
