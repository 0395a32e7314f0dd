package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"restau/internal/domain"
	"restau/internal/port"
)

type restaurantRepo struct {
	db *sqlx.DB
}

// NewRestaurantRepo creates a new PostgreSQL-backed RestaurantRepository.
func NewRestaurantRepo(db *sqlx.DB) port.RestaurantRepository {
	return &restaurantRepo{db: db}
}

func (r *restaurantRepo) List(ctx context.Context) ([]domain.Restaurant, error) {
	restaurants := []domain.Restaurant{}
	if err := r.db.SelectContext(ctx, &restaurants,
		"SELECT id, code, name FROM restaurants ORDER BY code"); err != nil {
		return nil, fmt.Errorf("restaurantRepo.List: %w", err)
	}
	return restaurants, nil
}

func (r *restaurantRepo) ListByCodes(ctx context.Context, codes []string) ([]domain.Restaurant, error) {
	restaurants := []domain.Restaurant{}
	if len(codes) == 0 {
		return restaurants, nil
	}
	if err := r.db.SelectContext(ctx, &restaurants,
		"SELECT id, code, name FROM restaurants WHERE code = ANY($1) ORDER BY code", codes); err != nil {
		return nil, fmt.Errorf("restaurantRepo.ListByCodes: %w", err)
	}
	return restaurants, nil
}
