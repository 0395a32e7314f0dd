package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restau/internal/domain"
)

func intPtr(v int) *int { return &v }

func sampleItem() domain.MonthlyItem {
	return domain.MonthlyItem{
		ID:             uuid.New(),
		RestaurantCode: "AB12",
		ReportDate:     domain.NewDate(2026, time.February, 1),
		CANetTotal:     decimal.RequireFromString("1234.5"),
		CATTCTotal:     decimal.RequireFromString("1358.95"),
		TACTotal:       120,
		Kpi: &domain.KpiSummary{
			CAReal:    decimal.NewNullDecimal(decimal.RequireFromString("1234.5")),
			N1HT:      decimal.NewNullDecimal(decimal.RequireFromString("1000")),
			VarN1:     decimal.NewNullDecimal(decimal.RequireFromString("23.45")),
			Clients:   intPtr(120),
			ClientsN1: nil,
		},
	}
}

func readBack(t *testing.T, data []byte) [][]string {
	t.Helper()
	require.True(t, bytes.HasPrefix(data, BOM))
	r := csv.NewReader(bytes.NewReader(data[len(BOM):]))
	r.Comma = ';'
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWrite_HeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []domain.MonthlyItem{sampleItem()}))

	rows := readBack(t, buf.Bytes())
	require.Len(t, rows, 2)
	assert.Equal(t, Columns, rows[0])

	row := rows[1]
	assert.Len(t, row, len(Columns))
	assert.Equal(t, "2026-02-01", row[0])
	assert.Equal(t, "AB12", row[1])
	assert.Equal(t, "1234,50", row[2])
	assert.Equal(t, "1358,95", row[3])
	assert.Equal(t, "120", row[4])
	assert.Equal(t, "1234,50", row[5])
	assert.Equal(t, "1000,00", row[6])
	assert.Equal(t, "23,45", row[7])
	assert.Equal(t, "", row[8], "prev_ht is null")
	assert.Equal(t, "120", row[9])
	assert.Equal(t, "", row[10], "clients_n1 is null")
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))

	rows := readBack(t, buf.Bytes())
	require.Len(t, rows, 1)
	assert.Equal(t, Columns, rows[0])
}

func TestWrite_NilKpi(t *testing.T) {
	item := sampleItem()
	item.Kpi = nil

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []domain.MonthlyItem{item}))

	rows := readBack(t, buf.Bytes())
	for _, v := range rows[1][5:] {
		assert.Empty(t, v)
	}
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "0,00", FormatDecimal(decimal.Zero))
	assert.Equal(t, "-12,35", FormatDecimal(decimal.RequireFromString("-12.345")))
	assert.Equal(t, "1000000,10", FormatDecimal(decimal.RequireFromString("1000000.1")))
}

func TestBuildFilename(t *testing.T) {
	assert.Equal(t, "recap_AB12_2026-02.csv", BuildFilename("AB12", 2026, 2, "csv"))
	assert.Equal(t, "recap_all_2026-11.xlsx", BuildFilename("", 2026, 11, "xlsx"))
	assert.Equal(t, "recap_A_B_2026-01.csv", BuildFilename("A/B", 2026, 1, "csv"))
}
