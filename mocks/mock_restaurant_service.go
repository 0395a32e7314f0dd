package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"restau/internal/domain"
)

// MockRestaurantService is a mock implementation of service.RestaurantService.
type MockRestaurantService struct {
	mock.Mock
}

func (m *MockRestaurantService) Mine(ctx context.Context, p *domain.Principal) ([]domain.Restaurant, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Restaurant), args.Error(1)
}

func (m *MockRestaurantService) List(ctx context.Context) ([]domain.Restaurant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Restaurant), args.Error(1)
}
