package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"restau/internal/domain"
	"restau/internal/port"
)

const reportUniqueConstraint = "uq_bk_daily_reports_restaurant_date"

const reportColumns = "id, client_code, restaurant_code, report_date, created_at"

const (
	insertChannelSales = `INSERT INTO bk_channel_sales
		(report_id, channel_label, is_total, tac, ca_net, ca_ttc, pm_net, pm_ttc, net_total_profit)
		VALUES (:report_id, :channel_label, :is_total, :tac, :ca_net, :ca_ttc, :pm_net, :pm_ttc, :net_total_profit)`
	insertConsumptionModes = `INSERT INTO bk_consumption_modes
		(report_id, mode, tac, ca_ht, ca_ttc, pct)
		VALUES (:report_id, :mode, :tac, :ca_ht, :ca_ttc, :pct)`
	insertCorrections = `INSERT INTO bk_corrections
		(report_id, taux, montant, nombre)
		VALUES (:report_id, :taux, :montant, :nombre)`
	insertMisc = `INSERT INTO bk_divers
		(report_id, nombre_repas_employes, nombre_commandes_ouvertes, montant_valorise_repas_employes,
		 nombre_annulations, montant_annulations, taux_commandes_ouvertes, taux_repas_employes,
		 montant_commandes_ouvertes, taux_annulations)
		VALUES (:report_id, :nombre_repas_employes, :nombre_commandes_ouvertes, :montant_valorise_repas_employes,
		 :nombre_annulations, :montant_annulations, :taux_commandes_ouvertes, :taux_repas_employes,
		 :montant_commandes_ouvertes, :taux_annulations)`
	insertPayments = `INSERT INTO bk_payments
		(report_id, payment_type, theorique, preleve, compte, ecart)
		VALUES (:report_id, :payment_type, :theorique, :preleve, :compte, :ecart)`
	insertDiscounts = `INSERT INTO bk_remises
		(report_id, taux_remises, montant_remises, nombre_remises, taux_sauces_offertes,
		 montant_sauces_offertes, nbr_sauces_offertes)
		VALUES (:report_id, :taux_remises, :montant_remises, :nombre_remises, :taux_sauces_offertes,
		 :montant_sauces_offertes, :nbr_sauces_offertes)`
	insertTaxSummary = `INSERT INTO bk_tva_summary
		(report_id, tva_label, ht, tva, ttc)
		VALUES (:report_id, :tva_label, :ht, :tva, :ttc)`
	insertAnnexSales = `INSERT INTO bk_annex_sales
		(report_id, libelle, nbr, montant_ht, montant_ttc)
		VALUES (:report_id, :libelle, :nbr, :montant_ht, :montant_ttc)`
	insertKpi = `INSERT INTO bk_daily_kpis
		(report_id, n1_ht, var_n1, prev_ht, ca_real, clients, clients_n1, ca_delivery, ca_delivery_n1,
		 client_delivery, client_delivery_n1, ca_click_collect, cnc_n1, client_click_collect, client_n1, cash_diff)
		VALUES (:report_id, :n1_ht, :var_n1, :prev_ht, :ca_real, :clients, :clients_n1, :ca_delivery, :ca_delivery_n1,
		 :client_delivery, :client_delivery_n1, :ca_click_collect, :cnc_n1, :client_click_collect, :client_n1, :cash_diff)
		ON CONFLICT (report_id) DO NOTHING`
)

var readSnapshotOpts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

type reportRepo struct {
	db *sqlx.DB
}

// NewReportRepo creates a new PostgreSQL-backed ReportRepository.
func NewReportRepo(db *sqlx.DB) port.ReportRepository {
	return &reportRepo{db: db}
}

// insertMany batch-inserts rows with a named query. Empty input is a no-op.
func insertMany[T any](ctx context.Context, tx *sqlx.Tx, query string, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, query, rows)
	return err
}

func insertOne[T any](ctx context.Context, tx *sqlx.Tx, query string, row *T) error {
	if row == nil {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, query, row)
	return err
}

func (r *reportRepo) CreateBundle(ctx context.Context, b *domain.ReportBundle) error {
	err := withTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		var exists bool
		err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM bk_daily_reports WHERE restaurant_code = $1 AND report_date = $2)`,
			b.Report.RestaurantCode, b.Report.ReportDate)
		if err != nil {
			return fmt.Errorf("checking existing report: %w", err)
		}
		if exists {
			return domain.ErrReportExists
		}

		err = tx.QueryRowxContext(ctx,
			`INSERT INTO bk_daily_reports (id, client_code, restaurant_code, report_date)
			 VALUES ($1, $2, $3, $4) RETURNING created_at`,
			b.Report.ID, b.Report.ClientCode, b.Report.RestaurantCode, b.Report.ReportDate,
		).Scan(&b.Report.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting report: %w", err)
		}

		steps := []struct {
			name string
			run  func() error
		}{
			{"channel sales", func() error { return insertMany(ctx, tx, insertChannelSales, b.ChannelSales) }},
			{"consumption modes", func() error { return insertMany(ctx, tx, insertConsumptionModes, b.ConsumptionModes) }},
			{"corrections", func() error { return insertOne(ctx, tx, insertCorrections, b.Corrections) }},
			{"misc", func() error { return insertOne(ctx, tx, insertMisc, b.Misc) }},
			{"payments", func() error { return insertMany(ctx, tx, insertPayments, b.Payments) }},
			{"discounts", func() error { return insertOne(ctx, tx, insertDiscounts, b.Discounts) }},
			{"tax summary", func() error { return insertMany(ctx, tx, insertTaxSummary, b.TaxSummary) }},
			{"annex sales", func() error { return insertMany(ctx, tx, insertAnnexSales, b.AnnexSales) }},
			{"kpi", func() error { return insertOne(ctx, tx, insertKpi, b.Kpi) }},
		}
		for _, step := range steps {
			if err := step.run(); err != nil {
				return fmt.Errorf("inserting %s: %w", step.name, err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrReportExists) || isUniqueViolation(err, reportUniqueConstraint) {
			return domain.ErrReportExists
		}
		return fmt.Errorf("reportRepo.CreateBundle: %w", err)
	}
	return nil
}

func (r *reportRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DailyReport, error) {
	var report domain.DailyReport
	err := r.db.GetContext(ctx, &report,
		"SELECT "+reportColumns+" FROM bk_daily_reports WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reportRepo.GetByID: %w", err)
	}
	return &report, nil
}

// getOptional loads at most one child row; no row yields nil.
func getOptional[T any](ctx context.Context, q sqlx.QueryerContext, table string, reportID uuid.UUID) (*T, error) {
	var row T
	err := sqlx.GetContext(ctx, q, &row,
		"SELECT * FROM "+table+" WHERE report_id = $1 ORDER BY id LIMIT 1", reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading %s: %w", table, err)
	}
	return &row, nil
}

func selectChildren[T any](ctx context.Context, q sqlx.QueryerContext, table string, reportID uuid.UUID) ([]T, error) {
	rows := []T{}
	err := sqlx.SelectContext(ctx, q, &rows,
		"SELECT * FROM "+table+" WHERE report_id = $1 ORDER BY id", reportID)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", table, err)
	}
	return rows, nil
}

func (r *reportRepo) GetBundle(ctx context.Context, id uuid.UUID) (*domain.ReportBundle, error) {
	b := &domain.ReportBundle{}
	err := withTx(ctx, r.db, readSnapshotOpts, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &b.Report,
			"SELECT "+reportColumns+" FROM bk_daily_reports WHERE id = $1", id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}

		if b.ChannelSales, err = selectChildren[domain.ChannelSalesRow](ctx, tx, "bk_channel_sales", id); err != nil {
			return err
		}
		if b.ConsumptionModes, err = selectChildren[domain.ConsumptionModeRow](ctx, tx, "bk_consumption_modes", id); err != nil {
			return err
		}
		if b.Corrections, err = getOptional[domain.CorrectionsRow](ctx, tx, "bk_corrections", id); err != nil {
			return err
		}
		if b.Misc, err = getOptional[domain.MiscRow](ctx, tx, "bk_divers", id); err != nil {
			return err
		}
		if b.Payments, err = selectChildren[domain.PaymentRow](ctx, tx, "bk_payments", id); err != nil {
			return err
		}
		if b.Discounts, err = getOptional[domain.DiscountsRow](ctx, tx, "bk_remises", id); err != nil {
			return err
		}
		if b.TaxSummary, err = selectChildren[domain.TaxSummaryRow](ctx, tx, "bk_tva_summary", id); err != nil {
			return err
		}
		if b.AnnexSales, err = selectChildren[domain.AnnexSaleRow](ctx, tx, "bk_annex_sales", id); err != nil {
			return err
		}
		b.Kpi, err = getOptional[domain.KpiSummary](ctx, tx, "bk_daily_kpis", id)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reportRepo.GetBundle: %w", err)
	}
	return b, nil
}

// buildReportWhere constructs the WHERE clause shared by report listings.
func buildReportWhere(filter domain.ReportFilter) (clause string, args []interface{}) {
	conds := []string{"1=1"}
	argN := 1

	if filter.StartDate != nil {
		conds = append(conds, fmt.Sprintf("report_date >= $%d", argN))
		args = append(args, *filter.StartDate)
		argN++
	}
	if filter.EndDate != nil {
		conds = append(conds, fmt.Sprintf("report_date <= $%d", argN))
		args = append(args, *filter.EndDate)
		argN++
	}
	if filter.RestaurantCode != "" {
		conds = append(conds, fmt.Sprintf("restaurant_code = $%d", argN))
		args = append(args, filter.RestaurantCode)
		argN++
	}
	if !filter.Scope.All {
		conds = append(conds, fmt.Sprintf("restaurant_code = ANY($%d)", argN))
		args = append(args, filter.Scope.Codes)
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *reportRepo) List(ctx context.Context, filter domain.ReportFilter) ([]domain.DailyReport, error) {
	if filter.Scope.Empty() {
		return []domain.DailyReport{}, nil
	}
	clause, args := buildReportWhere(filter)

	reports := []domain.DailyReport{}
	err := r.db.SelectContext(ctx, &reports,
		"SELECT "+reportColumns+" FROM bk_daily_reports "+clause+
			" ORDER BY report_date DESC, restaurant_code ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("reportRepo.List: %w", err)
	}
	return reports, nil
}

func (r *reportRepo) ReadSnapshot(ctx context.Context, fn func(port.ReportSnapshotReader) error) error {
	return withTx(ctx, r.db, readSnapshotOpts, func(tx *sqlx.Tx) error {
		return fn(&snapshotReader{tx: tx})
	})
}

type snapshotReader struct {
	tx *sqlx.Tx
}

func (s *snapshotReader) LoadPeriod(ctx context.Context, first, last domain.Date, restaurantCode string, scope domain.Scope) ([]domain.MonthlyReportData, error) {
	if scope.Empty() {
		return []domain.MonthlyReportData{}, nil
	}
	clause, args := buildReportWhere(domain.ReportFilter{
		StartDate:      &first,
		EndDate:        &last,
		RestaurantCode: restaurantCode,
		Scope:          scope,
	})

	reports := []domain.DailyReport{}
	err := s.tx.SelectContext(ctx, &reports,
		"SELECT "+reportColumns+" FROM bk_daily_reports "+clause+
			" ORDER BY report_date ASC, restaurant_code ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("reportRepo.LoadPeriod: %w", err)
	}
	return s.attach(ctx, reports)
}

func (s *snapshotReader) LoadByKeys(ctx context.Context, keys []domain.PriorKey) (map[domain.PriorKey]domain.MonthlyReportData, error) {
	out := make(map[domain.PriorKey]domain.MonthlyReportData, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	codes := make([]string, len(keys))
	dates := make([]string, len(keys))
	for i, k := range keys {
		codes[i] = k.RestaurantCode
		dates[i] = k.ReportDate.String()
	}

	reports := []domain.DailyReport{}
	err := s.tx.SelectContext(ctx, &reports,
		`SELECT r.id, r.client_code, r.restaurant_code, r.report_date, r.created_at
		 FROM bk_daily_reports r
		 JOIN unnest($1::text[], $2::text[]) AS k(code, day)
		   ON r.restaurant_code = k.code AND r.report_date = k.day::date`,
		codes, dates)
	if err != nil {
		return nil, fmt.Errorf("reportRepo.LoadByKeys: %w", err)
	}

	data, err := s.attach(ctx, reports)
	if err != nil {
		return nil, err
	}
	for _, d := range data {
		out[domain.PriorKey{RestaurantCode: d.Report.RestaurantCode, ReportDate: d.Report.ReportDate}] = d
	}
	return out, nil
}

// attach loads channel rows and KPI summaries for the given reports.
func (s *snapshotReader) attach(ctx context.Context, reports []domain.DailyReport) ([]domain.MonthlyReportData, error) {
	out := make([]domain.MonthlyReportData, len(reports))
	if len(reports) == 0 {
		return out, nil
	}
	ids := make([]string, len(reports))
	index := make(map[uuid.UUID]int, len(reports))
	for i, rep := range reports {
		ids[i] = rep.ID.String()
		index[rep.ID] = i
		out[i] = domain.MonthlyReportData{Report: rep, ChannelSales: []domain.ChannelSalesRow{}}
	}

	var rows []domain.ChannelSalesRow
	err := s.tx.SelectContext(ctx, &rows,
		"SELECT * FROM bk_channel_sales WHERE report_id = ANY($1::text[]::uuid[]) ORDER BY id", ids)
	if err != nil {
		return nil, fmt.Errorf("reportRepo.attach channel sales: %w", err)
	}
	for _, row := range rows {
		i := index[row.ReportID]
		out[i].ChannelSales = append(out[i].ChannelSales, row)
	}

	var kpis []domain.KpiSummary
	err = s.tx.SelectContext(ctx, &kpis,
		"SELECT * FROM bk_daily_kpis WHERE report_id = ANY($1::text[]::uuid[])", ids)
	if err != nil {
		return nil, fmt.Errorf("reportRepo.attach kpis: %w", err)
	}
	for j := range kpis {
		out[index[kpis[j].ReportID]].Kpi = &kpis[j]
	}
	return out, nil
}

// kpiAssignments returns the columns an update sets, in a stable order.
func kpiAssignments(u domain.KpiUpdate) (cols []string, vals []interface{}) {
	add := func(col string, present bool, v interface{}) {
		if present {
			cols = append(cols, col)
			vals = append(vals, v)
		}
	}
	add("n1_ht", u.N1HT != nil, u.N1HT)
	add("var_n1", u.VarN1 != nil, u.VarN1)
	add("prev_ht", u.PrevHT != nil, u.PrevHT)
	add("clients_n1", u.ClientsN1 != nil, u.ClientsN1)
	add("ca_delivery_n1", u.CADeliveryN1 != nil, u.CADeliveryN1)
	add("client_delivery_n1", u.ClientDeliveryN1 != nil, u.ClientDeliveryN1)
	add("cnc_n1", u.CncN1 != nil, u.CncN1)
	add("client_n1", u.ClientN1 != nil, u.ClientN1)
	add("cash_diff", u.CashDiff != nil, u.CashDiff)
	add("ca_real", u.CAReal != nil, u.CAReal)
	add("clients", u.Clients != nil, u.Clients)
	add("ca_delivery", u.CADelivery != nil, u.CADelivery)
	add("client_delivery", u.ClientDelivery != nil, u.ClientDelivery)
	add("ca_click_collect", u.CAClickCollect != nil, u.CAClickCollect)
	add("client_click_collect", u.ClientClickCollect != nil, u.ClientClickCollect)
	return cols, vals
}

func (r *reportRepo) UpsertKpi(ctx context.Context, reportID uuid.UUID, u domain.KpiUpdate) (*domain.KpiSummary, error) {
	var out domain.KpiSummary
	err := withTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			"SELECT EXISTS(SELECT 1 FROM bk_daily_reports WHERE id = $1)", reportID); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO bk_daily_kpis (report_id) VALUES ($1) ON CONFLICT (report_id) DO NOTHING",
			reportID); err != nil {
			return err
		}

		cols, vals := kpiAssignments(u)
		if len(cols) > 0 {
			sets := make([]string, len(cols))
			for i, c := range cols {
				sets[i] = fmt.Sprintf("%s = $%d", c, i+2)
			}
			args := append([]interface{}{reportID}, vals...)
			if _, err := tx.ExecContext(ctx,
				"UPDATE bk_daily_kpis SET "+strings.Join(sets, ", ")+" WHERE report_id = $1",
				args...); err != nil {
				return err
			}
		}
		return tx.GetContext(ctx, &out, "SELECT * FROM bk_daily_kpis WHERE report_id = $1", reportID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reportRepo.UpsertKpi: %w", err)
	}
	return &out, nil
}

func (r *reportRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM bk_daily_reports WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("reportRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reportRepo) ListMissingRollups(ctx context.Context, limit int) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.db.SelectContext(ctx, &ids,
		`SELECT r.id FROM bk_daily_reports r
		 WHERE NOT EXISTS (SELECT 1 FROM bk_channel_sales c WHERE c.report_id = r.id AND c.is_total)
		    OR NOT EXISTS (SELECT 1 FROM bk_daily_kpis k WHERE k.report_id = r.id)
		 ORDER BY r.report_date, r.restaurant_code
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("reportRepo.ListMissingRollups: %w", err)
	}
	return ids, nil
}

func (r *reportRepo) ReplaceRollups(ctx context.Context, b *domain.ReportBundle) error {
	rollups := make([]domain.ChannelSalesRow, 0, len(b.ChannelSales))
	for _, row := range b.ChannelSales {
		if row.IsTotal {
			rollups = append(rollups, row)
		}
	}
	err := withTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM bk_channel_sales WHERE report_id = $1 AND is_total", b.Report.ID); err != nil {
			return err
		}
		if err := insertMany(ctx, tx, insertChannelSales, rollups); err != nil {
			return err
		}
		return insertOne(ctx, tx, insertKpi, b.Kpi)
	})
	if err != nil {
		return fmt.Errorf("reportRepo.ReplaceRollups: %w", err)
	}
	return nil
}
