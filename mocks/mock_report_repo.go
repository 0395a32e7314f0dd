package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"restau/internal/domain"
	"restau/internal/port"
)

// MockReportRepo is a mock implementation of port.ReportRepository.
// ReadSnapshot hands Snapshot to the callback.
type MockReportRepo struct {
	mock.Mock
	Snapshot port.ReportSnapshotReader
}

func (m *MockReportRepo) CreateBundle(ctx context.Context, bundle *domain.ReportBundle) error {
	args := m.Called(ctx, bundle)
	return args.Error(0)
}

func (m *MockReportRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DailyReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyReport), args.Error(1)
}

func (m *MockReportRepo) GetBundle(ctx context.Context, id uuid.UUID) (*domain.ReportBundle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportBundle), args.Error(1)
}

func (m *MockReportRepo) List(ctx context.Context, filter domain.ReportFilter) ([]domain.DailyReport, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyReport), args.Error(1)
}

func (m *MockReportRepo) ReadSnapshot(ctx context.Context, fn func(r port.ReportSnapshotReader) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.Snapshot)
}

func (m *MockReportRepo) UpsertKpi(ctx context.Context, reportID uuid.UUID, update domain.KpiUpdate) (*domain.KpiSummary, error) {
	args := m.Called(ctx, reportID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KpiSummary), args.Error(1)
}

func (m *MockReportRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReportRepo) ListMissingRollups(ctx context.Context, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockReportRepo) ReplaceRollups(ctx context.Context, bundle *domain.ReportBundle) error {
	args := m.Called(ctx, bundle)
	return args.Error(0)
}

// MockSnapshotReader is a mock implementation of port.ReportSnapshotReader.
type MockSnapshotReader struct {
	mock.Mock
}

func (m *MockSnapshotReader) LoadPeriod(ctx context.Context, first, last domain.Date, restaurantCode string, scope domain.Scope) ([]domain.MonthlyReportData, error) {
	args := m.Called(ctx, first, last, restaurantCode, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MonthlyReportData), args.Error(1)
}

func (m *MockSnapshotReader) LoadByKeys(ctx context.Context, keys []domain.PriorKey) (map[domain.PriorKey]domain.MonthlyReportData, error) {
	args := m.Called(ctx, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.PriorKey]domain.MonthlyReportData), args.Error(1)
}
