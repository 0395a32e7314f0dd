package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// childTables lists every table the report FK cascades into.
var childTables = []string{
	"bk_channel_sales",
	"bk_consumption_modes",
	"bk_corrections",
	"bk_divers",
	"bk_payments",
	"bk_remises",
	"bk_tva_summary",
	"bk_annex_sales",
	"bk_daily_kpis",
}

// CountChildren returns the number of rows each child table holds for a
// report.
func CountChildren(ctx context.Context, db *sqlx.DB, reportID uuid.UUID) (map[string]int, error) {
	counts := make(map[string]int, len(childTables))
	for _, table := range childTables {
		var n int
		if err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table+" WHERE report_id = $1", reportID); err != nil {
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
