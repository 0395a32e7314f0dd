package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"restau/internal/domain"
)

// MockMonthlyCache is a mock implementation of port.MonthlyCache.
type MockMonthlyCache struct {
	mock.Mock
}

func (m *MockMonthlyCache) Get(ctx context.Context, key string) ([]domain.MonthlyItem, int64, bool) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Bool(2)
	}
	return args.Get(0).([]domain.MonthlyItem), args.Get(1).(int64), args.Bool(2)
}

func (m *MockMonthlyCache) Set(ctx context.Context, key string, version int64, items []domain.MonthlyItem) {
	m.Called(ctx, key, version, items)
}

func (m *MockMonthlyCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
