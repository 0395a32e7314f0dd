package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"restau/internal/config"
	"restau/internal/domain"
	"restau/internal/port"
)

// SeedDevUser creates the first DEV account when no user exists yet. It
// reports whether a user was created.
func SeedDevUser(ctx context.Context, users port.UserRepository, cfg config.SeedConfig) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(cfg.DevEmail))
	if email == "" || cfg.DevPassword == "" {
		return false, fmt.Errorf("%w: dev seed credentials are empty", domain.ErrValidation)
	}

	count, err := users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("seed.Count: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.DevPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hashing dev password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "Dev",
		LastName:     "User",
		Role:         domain.RoleDev,
		IsActive:     true,
	}
	if err := users.Create(ctx, user); err != nil {
		return false, fmt.Errorf("seed.Create: %w", err)
	}
	return true, nil
}
