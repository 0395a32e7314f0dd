package xlsxexport

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"restau/internal/csvexport"
	"restau/internal/domain"
)

func TestWrite_RoundTrip(t *testing.T) {
	clients := 42
	items := []domain.MonthlyItem{
		{
			ID:             uuid.New(),
			RestaurantCode: "AB12",
			ReportDate:     domain.NewDate(2026, time.February, 3),
			CANetTotal:     decimal.RequireFromString("1234.5"),
			CATTCTotal:     decimal.RequireFromString("1358.95"),
			TACTotal:       42,
			Kpi: &domain.KpiSummary{
				CAReal:  decimal.NewNullDecimal(decimal.RequireFromString("1234.5")),
				Clients: &clients,
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, items))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, SheetName, f.GetSheetName(0))

	raw := excelize.Options{RawCellValue: true}
	get := func(cell string) string {
		v, err := f.GetCellValue(SheetName, cell, raw)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, csvexport.Columns[0], get("A1"))
	assert.Equal(t, csvexport.Columns[4], get("E1"))
	assert.Equal(t, "2026-02-03", get("A2"))
	assert.Equal(t, "AB12", get("B2"))
	assert.Equal(t, "1234.5", get("C2"))
	assert.Equal(t, "42", get("E2"))
	assert.Equal(t, "", get("G2"), "null n1_ht stays blank")
	assert.Equal(t, "42", get("J2"))
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, csvexport.Columns, rows[0])
}
