package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"restau/internal/domain"
)

// MockAuditService is a mock implementation of service.AuditService.
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Record(ctx context.Context, action domain.AuditAction, actorEmail, target string) {
	m.Called(ctx, action, actorEmail, target)
}

func (m *MockAuditService) Latest(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLog, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditLog), args.Error(1)
}
