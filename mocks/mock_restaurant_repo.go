package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"restau/internal/domain"
)

// MockRestaurantRepo is a mock implementation of port.RestaurantRepository.
type MockRestaurantRepo struct {
	mock.Mock
}

func (m *MockRestaurantRepo) List(ctx context.Context) ([]domain.Restaurant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepo) ListByCodes(ctx context.Context, codes []string) ([]domain.Restaurant, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Restaurant), args.Error(1)
}
