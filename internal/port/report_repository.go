package port

import (
	"context"

	"github.com/google/uuid"

	"restau/internal/domain"
)

// ReportRepository persists daily reports and their child rows.
type ReportRepository interface {
	// CreateBundle writes the report, every child row and the KPI summary in
	// one transaction. A report for the same (restaurant, date) yields
	// domain.ErrReportExists, including when a concurrent upload wins the race.
	CreateBundle(ctx context.Context, bundle *domain.ReportBundle) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DailyReport, error)
	GetBundle(ctx context.Context, id uuid.UUID) (*domain.ReportBundle, error)
	List(ctx context.Context, filter domain.ReportFilter) ([]domain.DailyReport, error)
	// ReadSnapshot runs fn against a read-only, repeatable-read view so that
	// every load inside fn observes the same committed state.
	ReadSnapshot(ctx context.Context, fn func(r ReportSnapshotReader) error) error
	UpsertKpi(ctx context.Context, reportID uuid.UUID, update domain.KpiUpdate) (*domain.KpiSummary, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ListMissingRollups returns the IDs of reports without rollup rows or KPI summary.
	ListMissingRollups(ctx context.Context, limit int) ([]uuid.UUID, error)
	// ReplaceRollups swaps the rollup rows of a report and inserts the KPI
	// summary if the report has none.
	ReplaceRollups(ctx context.Context, bundle *domain.ReportBundle) error
}

// ReportSnapshotReader loads reports for the monthly comparison.
type ReportSnapshotReader interface {
	// LoadPeriod returns reports dated within [first, last] with their channel
	// rows and KPI summary, filtered by scope and optional restaurant code.
	LoadPeriod(ctx context.Context, first, last domain.Date, restaurantCode string, scope domain.Scope) ([]domain.MonthlyReportData, error)
	// LoadByKeys returns the reports matching the given (restaurant, date) keys.
	LoadByKeys(ctx context.Context, keys []domain.PriorKey) (map[domain.PriorKey]domain.MonthlyReportData, error)
}
