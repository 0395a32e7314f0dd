// Package kpi merges stored KPI summaries with figures recomputed from raw
// channel rows for the current and prior-year periods.
package kpi

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"restau/internal/domain"
	"restau/internal/rollup"
)

var hundred = decimal.NewFromInt(100)

// PriorDate returns the same calendar day one year earlier. Feb 29 has no
// counterpart and yields ok=false.
func PriorDate(d domain.Date) (domain.Date, bool) {
	if d.Month() == time.February && d.Day() == 29 {
		return domain.Date{}, false
	}
	return domain.NewDate(d.Year()-1, d.Month(), d.Day()), true
}

// MonthRange returns the first and last day of a month.
func MonthRange(year, month int) (domain.Date, domain.Date) {
	first := domain.NewDate(year, time.Month(month), 1)
	last := domain.Date{Time: first.AddDate(0, 1, -1)}
	return first, last
}

// Period is one report's stored summary and its recomputed totals.
type Period struct {
	Stored *domain.KpiSummary
	Totals domain.DerivedTotals
}

// NewPeriod derives totals from the report's raw channel rows.
func NewPeriod(data domain.MonthlyReportData) Period {
	return Period{Stored: data.Kpi, Totals: rollup.Derive(data.ChannelSales)}
}

// Merge resolves every KPI field: a stored non-null value wins, otherwise the
// current period falls back to its own totals and comparison fields fall back
// to the prior period (its stored current-period value, then its totals).
// With no prior period, comparison fields stay null unless stored.
func Merge(current Period, prior *Period) *domain.KpiSummary {
	s := current.Stored
	if s == nil {
		s = &domain.KpiSummary{}
	}
	out := *s

	t := current.Totals
	out.CAReal = pickDec(s.CAReal, t.NetTotal)
	out.Clients = pickInt(s.Clients, t.TACTotal)
	out.CADelivery = pickDec(s.CADelivery, t.DeliveryNet)
	out.ClientDelivery = pickInt(s.ClientDelivery, t.DeliveryClients)
	out.CAClickCollect = pickDec(s.CAClickCollect, t.ClickCollectNet)
	out.ClientClickCollect = pickInt(s.ClientClickCollect, t.ClickCollectClients)

	if prior != nil {
		p := prior.Stored
		if p == nil {
			p = &domain.KpiSummary{}
		}
		pt := prior.Totals
		out.N1HT = firstDec(s.N1HT, pickDec(p.CAReal, pt.NetTotal))
		out.ClientsN1 = firstInt(s.ClientsN1, pickInt(p.Clients, pt.TACTotal))
		out.CADeliveryN1 = firstDec(s.CADeliveryN1, pickDec(p.CADelivery, pt.DeliveryNet))
		out.ClientDeliveryN1 = firstInt(s.ClientDeliveryN1, pickInt(p.ClientDelivery, pt.DeliveryClients))
		out.CncN1 = firstDec(s.CncN1, pickDec(p.CAClickCollect, pt.ClickCollectNet))
		out.ClientN1 = firstInt(s.ClientN1, pickInt(p.ClientClickCollect, pt.ClickCollectClients))
	}

	if !out.VarN1.Valid && out.CAReal.Valid && out.N1HT.Valid && !out.N1HT.Decimal.IsZero() {
		v := out.CAReal.Decimal.Sub(out.N1HT.Decimal).Div(out.N1HT.Decimal).Mul(hundred).Round(2)
		out.VarN1 = decimal.NewNullDecimal(v)
	}
	return &out
}

func pickDec(stored decimal.NullDecimal, fallback decimal.Decimal) decimal.NullDecimal {
	if stored.Valid {
		return stored
	}
	return decimal.NewNullDecimal(fallback)
}

func pickInt(stored *int, fallback int) *int {
	if stored != nil {
		return stored
	}
	return &fallback
}

func firstDec(a, b decimal.NullDecimal) decimal.NullDecimal {
	if a.Valid {
		return a
	}
	return b
}

func firstInt(a, b *int) *int {
	if a != nil {
		return a
	}
	return b
}

// BuildItems turns a monthly snapshot into comparison lines ordered by date,
// then restaurant code.
func BuildItems(snap domain.MonthlySnapshot) []domain.MonthlyItem {
	items := make([]domain.MonthlyItem, 0, len(snap.Current))
	for _, data := range snap.Current {
		current := NewPeriod(data)

		var prior *Period
		if d, ok := PriorDate(data.Report.ReportDate); ok {
			key := domain.PriorKey{RestaurantCode: data.Report.RestaurantCode, ReportDate: d}
			if pd, found := snap.Prior[key]; found {
				p := NewPeriod(pd)
				prior = &p
			}
		}

		items = append(items, domain.MonthlyItem{
			ID:             data.Report.ID,
			RestaurantCode: data.Report.RestaurantCode,
			ReportDate:     data.Report.ReportDate,
			CreatedAt:      data.Report.CreatedAt,
			CANetTotal:     current.Totals.NetTotal,
			CATTCTotal:     current.Totals.TTCTotal,
			TACTotal:       current.Totals.TACTotal,
			Kpi:            Merge(current, prior),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.ReportDate.Equal(b.ReportDate.Time) {
			return a.ReportDate.Before(b.ReportDate.Time)
		}
		return a.RestaurantCode < b.RestaurantCode
	})
	return items
}

// PriorKeys lists the prior-period lookups needed for a set of reports.
func PriorKeys(current []domain.MonthlyReportData) []domain.PriorKey {
	keys := make([]domain.PriorKey, 0, len(current))
	for _, data := range current {
		if d, ok := PriorDate(data.Report.ReportDate); ok {
			keys = append(keys, domain.PriorKey{RestaurantCode: data.Report.RestaurantCode, ReportDate: d})
		}
	}
	return keys
}
