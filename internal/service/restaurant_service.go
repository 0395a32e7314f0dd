package service

import (
	"context"

	"restau/internal/access"
	"restau/internal/domain"
	"restau/internal/port"
)

// RestaurantService lists restaurants for the current principal.
type RestaurantService interface {
	// Mine returns the restaurants visible to p: every restaurant for
	// blanket roles, the assigned ones otherwise.
	Mine(ctx context.Context, p *domain.Principal) ([]domain.Restaurant, error)
	List(ctx context.Context) ([]domain.Restaurant, error)
}

type restaurantService struct {
	repo port.RestaurantRepository
}

// NewRestaurantService creates a new RestaurantService implementation.
func NewRestaurantService(repo port.RestaurantRepository) RestaurantService {
	return &restaurantService{repo: repo}
}

func (s *restaurantService) Mine(ctx context.Context, p *domain.Principal) ([]domain.Restaurant, error) {
	scope := access.Visible(p)
	if scope.All {
		return s.List(ctx)
	}
	if scope.Empty() {
		return []domain.Restaurant{}, nil
	}
	restaurants, err := s.repo.ListByCodes(ctx, scope.Codes)
	if err != nil {
		return nil, err
	}
	if restaurants == nil {
		restaurants = []domain.Restaurant{}
	}
	return restaurants, nil
}

func (s *restaurantService) List(ctx context.Context) ([]domain.Restaurant, error) {
	restaurants, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if restaurants == nil {
		restaurants = []domain.Restaurant{}
	}
	return restaurants, nil
}
