package kpi_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restau/internal/domain"
	"restau/internal/kpi"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ndec(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

func intPtr(n int) *int { return &n }

func channel(label string, tac int, net string) domain.ChannelSalesRow {
	return domain.ChannelSalesRow{ChannelLabel: label, TAC: &tac, CANet: ndec(net), CATTC: ndec(net)}
}

func report(code string, d domain.Date, rows ...domain.ChannelSalesRow) domain.MonthlyReportData {
	return domain.MonthlyReportData{
		Report:       domain.DailyReport{ID: uuid.New(), RestaurantCode: code, ReportDate: d},
		ChannelSales: rows,
	}
}

func TestPriorDate(t *testing.T) {
	d, ok := kpi.PriorDate(domain.NewDate(2026, 2, 1))
	require.True(t, ok)
	assert.Equal(t, "2025-02-01", d.String())

	_, ok = kpi.PriorDate(domain.NewDate(2024, 2, 29))
	assert.False(t, ok)

	d, ok = kpi.PriorDate(domain.NewDate(2025, 3, 1))
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", d.String())
}

func TestMonthRange(t *testing.T) {
	first, last := kpi.MonthRange(2024, 2)
	assert.Equal(t, "2024-02-01", first.String())
	assert.Equal(t, "2024-02-29", last.String())

	_, last = kpi.MonthRange(2025, 12)
	assert.Equal(t, "2025-12-31", last.String())
}

func TestMerge_ClientsN1FallbackChain(t *testing.T) {
	current := kpi.Period{Totals: domain.DerivedTotals{NetTotal: dec("550"), TACTotal: 35}}

	t.Run("prior stored KPI wins", func(t *testing.T) {
		prior := &kpi.Period{
			Stored: &domain.KpiSummary{Clients: intPtr(40)},
			Totals: domain.DerivedTotals{TACTotal: 30},
		}
		got := kpi.Merge(current, prior)
		assert.Equal(t, 40, *got.ClientsN1)
	})

	t.Run("prior rollup totals otherwise", func(t *testing.T) {
		prior := &kpi.Period{Totals: domain.DerivedTotals{TACTotal: 30, NetTotal: dec("500")}}
		got := kpi.Merge(current, prior)
		assert.Equal(t, 30, *got.ClientsN1)
		assert.True(t, dec("500").Equal(got.N1HT.Decimal))
	})

	t.Run("null without prior report", func(t *testing.T) {
		got := kpi.Merge(current, nil)
		assert.Nil(t, got.ClientsN1)
		assert.False(t, got.N1HT.Valid)
		assert.False(t, got.VarN1.Valid)
	})
}

func TestMerge_StoredValuesWin(t *testing.T) {
	current := kpi.Period{
		Stored: &domain.KpiSummary{
			CAReal:    ndec("600"),
			ClientsN1: intPtr(12),
			N1HT:      ndec("480"),
			CashDiff:  ndec("-2.5"),
		},
		Totals: domain.DerivedTotals{NetTotal: dec("550"), TACTotal: 35},
	}
	prior := &kpi.Period{Totals: domain.DerivedTotals{NetTotal: dec("500"), TACTotal: 30}}

	got := kpi.Merge(current, prior)
	assert.True(t, dec("600").Equal(got.CAReal.Decimal))
	assert.Equal(t, 35, *got.Clients)
	assert.Equal(t, 12, *got.ClientsN1)
	assert.True(t, dec("480").Equal(got.N1HT.Decimal))
	assert.True(t, dec("-2.5").Equal(got.CashDiff.Decimal))
	assert.True(t, dec("25").Equal(got.VarN1.Decimal))
	assert.False(t, got.PrevHT.Valid)
}

func TestMerge_DoesNotMutateStored(t *testing.T) {
	stored := &domain.KpiSummary{}
	kpi.Merge(kpi.Period{Stored: stored, Totals: domain.DerivedTotals{TACTotal: 3}}, nil)
	assert.Nil(t, stored.Clients)
}

func TestMerge_VarN1SkipsZeroBase(t *testing.T) {
	current := kpi.Period{Totals: domain.DerivedTotals{NetTotal: dec("10")}}
	prior := &kpi.Period{Totals: domain.DerivedTotals{}}
	got := kpi.Merge(current, prior)
	assert.True(t, got.N1HT.Valid)
	assert.False(t, got.VarN1.Valid)
}

func TestBuildItems(t *testing.T) {
	feb1 := domain.NewDate(2026, 2, 1)
	feb2 := domain.NewDate(2026, 2, 2)

	cur1 := report("AB12", feb2, channel("DRIVE", 5, "50"))
	cur2 := report("AB12", feb1, channel("DRIVE", 10, "100"), channel("COMPTOIR", 20, "400"))
	cur3 := report("AA01", feb2)
	prior := report("AB12", domain.NewDate(2025, 2, 1), channel("DRIVE", 8, "80"))
	prior.Kpi = &domain.KpiSummary{Clients: intPtr(9)}

	items := kpi.BuildItems(domain.MonthlySnapshot{
		Current: []domain.MonthlyReportData{cur1, cur2, cur3},
		Prior: map[domain.PriorKey]domain.MonthlyReportData{
			{RestaurantCode: "AB12", ReportDate: domain.NewDate(2025, 2, 1)}: prior,
		},
	})

	require.Len(t, items, 3)
	assert.Equal(t, cur2.Report.ID, items[0].ID)
	assert.Equal(t, "AA01", items[1].RestaurantCode)
	assert.Equal(t, cur1.Report.ID, items[2].ID)

	first := items[0]
	assert.True(t, dec("500").Equal(first.CANetTotal))
	assert.Equal(t, 30, first.TACTotal)
	require.NotNil(t, first.Kpi)
	assert.Equal(t, 9, *first.Kpi.ClientsN1)
	assert.True(t, dec("80").Equal(first.Kpi.N1HT.Decimal))

	assert.Nil(t, items[2].Kpi.ClientsN1)
}

func TestPriorKeys(t *testing.T) {
	keys := kpi.PriorKeys([]domain.MonthlyReportData{
		report("AB12", domain.NewDate(2024, 2, 28)),
		report("AB12", domain.NewDate(2024, 2, 29)),
	})
	require.Len(t, keys, 1)
	assert.Equal(t, "2023-02-28", keys[0].ReportDate.String())
}
