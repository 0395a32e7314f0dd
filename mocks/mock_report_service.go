package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"restau/internal/domain"
	"restau/internal/service"
)

// MockReportService is a mock implementation of service.ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Upload(ctx context.Context, p *domain.Principal, input service.UploadInput) (*domain.DailyReport, error) {
	args := m.Called(ctx, p, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyReport), args.Error(1)
}

func (m *MockReportService) List(ctx context.Context, p *domain.Principal, input service.ListInput) ([]domain.DailyReport, error) {
	args := m.Called(ctx, p, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyReport), args.Error(1)
}

func (m *MockReportService) Get(ctx context.Context, p *domain.Principal, id uuid.UUID) (*domain.ReportBundle, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportBundle), args.Error(1)
}

func (m *MockReportService) Monthly(ctx context.Context, p *domain.Principal, q domain.MonthlyQuery) ([]domain.MonthlyItem, error) {
	args := m.Called(ctx, p, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MonthlyItem), args.Error(1)
}

func (m *MockReportService) ExportMonthly(ctx context.Context, p *domain.Principal, q domain.MonthlyQuery, format domain.ExportFormat) (*service.ExportFile, error) {
	args := m.Called(ctx, p, q, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportFile), args.Error(1)
}

func (m *MockReportService) UpdateKPI(ctx context.Context, p *domain.Principal, id uuid.UUID, update domain.KpiUpdate) (*domain.KpiSummary, error) {
	args := m.Called(ctx, p, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KpiSummary), args.Error(1)
}

func (m *MockReportService) Delete(ctx context.Context, p *domain.Principal, id uuid.UUID) error {
	args := m.Called(ctx, p, id)
	return args.Error(0)
}
