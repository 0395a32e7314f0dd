// Package ingest assembles the eight uploaded exports of one day into a
// report bundle ready to persist.
package ingest

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"restau/internal/csvimport"
	"restau/internal/domain"
	"restau/internal/rollup"
)

// Input is one upload request.
type Input struct {
	RestaurantCode string
	ReportDate     domain.Date
	Sources        map[Category]io.Reader
}

// NormalizeRestaurantCode trims and upper-cases a restaurant code.
func NormalizeRestaurantCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks the request before any export is read.
func (in *Input) Validate() error {
	if NormalizeRestaurantCode(in.RestaurantCode) == "" {
		return fmt.Errorf("%w: restaurant_code is required", domain.ErrValidation)
	}
	if in.ReportDate.IsZero() {
		return fmt.Errorf("%w: report_date is required", domain.ErrValidation)
	}
	var missing []string
	for _, c := range Categories {
		if in.Sources[c] == nil {
			missing = append(missing, string(c))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing files: %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// Assemble parses every export and builds the report with its children,
// rollup rows and computed KPI fields. The report ID is allocated here so
// children can reference it before anything is written.
func Assemble(in Input) (*domain.ReportBundle, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	b := &domain.ReportBundle{
		Report: domain.DailyReport{
			ID:             uuid.New(),
			ClientCode:     domain.ClientCodeBK,
			RestaurantCode: NormalizeRestaurantCode(in.RestaurantCode),
			ReportDate:     in.ReportDate,
			CreatedAt:      time.Now().UTC(),
		},
	}

	for _, c := range Categories {
		rows, err := csvimport.ReadRows(in.Sources[c])
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", c, err)
		}
		specs[c].apply(b, rows)
	}

	ApplyRollups(b)
	return b, nil
}

// ApplyRollups appends rollup rows for the bundle's raw channel sales and
// sets the computed KPI fields.
func ApplyRollups(b *domain.ReportBundle) {
	raw := b.ChannelSales[:0:0]
	for _, r := range b.ChannelSales {
		if !r.IsTotal {
			raw = append(raw, r)
		}
	}
	totals := rollup.Compute(raw)
	for i := range totals {
		totals[i].ReportID = b.Report.ID
	}
	b.ChannelSales = append(raw, totals...)

	kpi := rollup.KpiFromTotals(rollup.Derive(raw))
	kpi.ReportID = b.Report.ID
	b.Kpi = kpi
}
