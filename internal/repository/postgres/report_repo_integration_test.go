package postgres_test

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restau/internal/domain"
	"restau/internal/ingest"
	"restau/internal/port"
	"restau/internal/repository/postgres"
)

const migrationsPath = "file://../../../db/migrations"

// openTestDB connects to RESTAU_TEST_DB_DSN, applies migrations and empties
// the report tables. The test is skipped when the variable is unset.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("RESTAU_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("RESTAU_TEST_DB_DSN not set")
	}
	require.NoError(t, postgres.MigrateUp(migrationsPath, dsn))

	db, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("TRUNCATE bk_daily_reports CASCADE")
	require.NoError(t, err)
	return db
}

func bundle(t *testing.T, code string, d domain.Date) *domain.ReportBundle {
	t.Helper()
	files := map[ingest.Category]string{
		ingest.CategoryChannelSales:     "profit;tac;net;ttc\nDRIVE - A;10;100;110\nDRIVE - B;5;50;55\nCOMPTOIR;20;400;440\n",
		ingest.CategoryConsumptionModes: "SP_tac;AE_tac\n25;10\n",
		ingest.CategoryCorrections:      "tauxCorrection;montantCorrection;nombreCorrection\n1;2;3\n",
		ingest.CategoryMisc:             "nombreRepasEmployes\n4\n",
		ingest.CategoryPayments:         "type;theorique\nCB;100\n",
		ingest.CategoryDiscounts:        "tauxRemises;nombreRemises\n1,5;2\n",
		ingest.CategoryTaxSummary:       "libelle;HT;TVA;TTC\n10%;100;10;110\n",
		ingest.CategoryAnnexSales:       "libelle;nbr\nJouet;1\n",
	}
	sources := make(map[ingest.Category]io.Reader, len(files))
	for k, v := range files {
		sources[k] = strings.NewReader(v)
	}
	b, err := ingest.Assemble(ingest.Input{RestaurantCode: code, ReportDate: d, Sources: sources})
	require.NoError(t, err)
	return b
}

func TestReportRepo_DuplicateUploadConflicts(t *testing.T) {
	db := openTestDB(t)
	repo := postgres.NewReportRepo(db)
	ctx := context.Background()
	day := domain.NewDate(2026, 2, 1)

	require.NoError(t, repo.CreateBundle(ctx, bundle(t, "AB12", day)))
	err := repo.CreateBundle(ctx, bundle(t, "ab12", day))
	assert.ErrorIs(t, err, domain.ErrReportExists)

	reports, err := repo.List(ctx, domain.ReportFilter{Scope: domain.Scope{All: true}})
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestReportRepo_ConcurrentUploadsOneWins(t *testing.T) {
	db := openTestDB(t)
	repo := postgres.NewReportRepo(db)
	ctx := context.Background()
	day := domain.NewDate(2026, 3, 1)

	const n = 4
	bundles := make([]*domain.ReportBundle, n)
	for i := range bundles {
		bundles[i] = bundle(t, "CC01", day)
	}
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.CreateBundle(ctx, bundles[i])
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrReportExists):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
}

func TestReportRepo_DeleteCascades(t *testing.T) {
	db := openTestDB(t)
	repo := postgres.NewReportRepo(db)
	ctx := context.Background()

	b := bundle(t, "AB12", domain.NewDate(2026, 2, 2))
	require.NoError(t, repo.CreateBundle(ctx, b))

	counts, err := postgres.CountChildren(ctx, db, b.Report.ID)
	require.NoError(t, err)
	for table, n := range counts {
		assert.Positive(t, n, table)
	}

	require.NoError(t, repo.Delete(ctx, b.Report.ID))
	counts, err = postgres.CountChildren(ctx, db, b.Report.ID)
	require.NoError(t, err)
	for table, n := range counts {
		assert.Zero(t, n, table)
	}

	assert.ErrorIs(t, repo.Delete(ctx, b.Report.ID), domain.ErrNotFound)
}

func TestReportRepo_GetBundleRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := postgres.NewReportRepo(db)
	ctx := context.Background()

	b := bundle(t, "AB12", domain.NewDate(2026, 2, 3))
	require.NoError(t, repo.CreateBundle(ctx, b))

	got, err := repo.GetBundle(ctx, b.Report.ID)
	require.NoError(t, err)
	assert.Equal(t, "AB12", got.Report.RestaurantCode)
	assert.Equal(t, "2026-02-03", got.Report.ReportDate.String())
	assert.Len(t, got.ChannelSales, len(b.ChannelSales))
	assert.Equal(t, "DRIVE - A", got.ChannelSales[0].ChannelLabel)
	require.NotNil(t, got.Kpi)
	assert.Equal(t, 35, *got.Kpi.Clients)
	assert.Nil(t, got.Kpi.ClientsN1)

	_, err = repo.GetBundle(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReportRepo_ListAppliesScope(t *testing.T) {
	db := openTestDB(t)
	repo := postgres.NewReportRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateBundle(ctx, bundle(t, "AB12", domain.NewDate(2026, 2, 1))))
	require.NoError(t, repo.CreateBundle(ctx, bundle(t, "CD34", domain.NewDate(2026, 2, 1))))

	reports, err := repo.List(ctx, domain.ReportFilter{Scope: domain.Scope{Codes: []string{"AB12"}}})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "AB12", reports[0].RestaurantCode)

	reports, err = repo.List(ctx, domain.ReportFilter{Scope: domain.Scope{}})
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestReportRepo_SnapshotLoadsPriorYear(t *testing.T) {
	db := openTestDB(t)
	repo := postgres.NewReportRepo(db)
	ctx := context.Background()

	current := bundle(t, "AB12", domain.NewDate(2026, 2, 1))
	prior := bundle(t, "AB12", domain.NewDate(2025, 2, 1))
	require.NoError(t, repo.CreateBundle(ctx, current))
	require.NoError(t, repo.CreateBundle(ctx, prior))

	err := repo.ReadSnapshot(ctx, func(r port.ReportSnapshotReader) error {
		first, last := domain.NewDate(2026, 2, 1), domain.NewDate(2026, 2, 28)
		data, err := r.LoadPeriod(ctx, first, last, "", domain.Scope{All: true})
		require.NoError(t, err)
		require.Len(t, data, 1)
		assert.NotEmpty(t, data[0].ChannelSales)
		assert.NotNil(t, data[0].Kpi)

		key := domain.PriorKey{RestaurantCode: "AB12", ReportDate: domain.NewDate(2025, 2, 1)}
		priors, err := r.LoadByKeys(ctx, []domain.PriorKey{key})
		require.NoError(t, err)
		assert.Equal(t, prior.Report.ID, priors[key].Report.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestReportRepo_UpsertKpi(t *testing.T) {
	db := openTestDB(t)
	repo := postgres.NewReportRepo(db)
	ctx := context.Background()

	b := bundle(t, "AB12", domain.NewDate(2026, 2, 4))
	require.NoError(t, repo.CreateBundle(ctx, b))

	clientsN1 := 30
	got, err := repo.UpsertKpi(ctx, b.Report.ID, domain.KpiUpdate{ClientsN1: &clientsN1})
	require.NoError(t, err)
	assert.Equal(t, 30, *got.ClientsN1)
	assert.Equal(t, 35, *got.Clients, "computed fields untouched")

	_, err = repo.UpsertKpi(ctx, uuid.New(), domain.KpiUpdate{ClientsN1: &clientsN1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
