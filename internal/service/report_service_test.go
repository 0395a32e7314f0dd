package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"restau/internal/config"
	"restau/internal/csvexport"
	"restau/internal/domain"
	"restau/internal/ingest"
	"restau/internal/logging"
	"restau/internal/port"
	"restau/internal/service"
	"restau/mocks"
)

type reportFixture struct {
	repo    *mocks.MockReportRepo
	reader  *mocks.MockSnapshotReader
	storage *mocks.MockObjectStorage
	cache   *mocks.MockMonthlyCache
	audit   *mocks.MockAuditService
	svc     service.ReportService
}

func newReportFixture(s3Enabled bool) *reportFixture {
	f := &reportFixture{
		repo:    new(mocks.MockReportRepo),
		reader:  new(mocks.MockSnapshotReader),
		storage: new(mocks.MockObjectStorage),
		cache:   new(mocks.MockMonthlyCache),
		audit:   new(mocks.MockAuditService),
	}
	f.repo.Snapshot = f.reader
	f.svc = service.NewReportService(f.repo, f.storage, f.cache, f.audit, config.S3Config{
		Enabled: s3Enabled,
		Bucket:  "restau-uploads",
		Prefix:  "bk",
	}, logging.Discard())
	return f
}

var (
	admin   = &domain.Principal{UserID: uuid.New(), Email: "admin@restau.com", Role: domain.RoleAdmin}
	manager = &domain.Principal{UserID: uuid.New(), Email: "manager@restau.com", Role: domain.RoleManager, RestaurantCodes: []string{"AB12"}}
	lonely  = &domain.Principal{UserID: uuid.New(), Email: "nobody@restau.com", Role: domain.RoleReadonly}
)

func uploadFiles() map[ingest.Category]service.UploadFile {
	content := map[ingest.Category]string{
		ingest.CategoryChannelSales:     "profit;tac;net;ttc;panierMoyenNet;panierMoyenTTC;netTotalProfit\nDRIVE - A;10;100;110;10;11;5\n",
		ingest.CategoryConsumptionModes: "SP_tac;SP_caht;SP_cattc;SP_pourcent;AE_tac;AE_caht;AE_cattc;AE_pourcent\n",
		ingest.CategoryCorrections:      "tauxCorrection;montantCorrection;nombreCorrection\n",
		ingest.CategoryMisc:             "nombreRepasEmployes\n",
		ingest.CategoryPayments:         "type;theorique;preleve;compte;ecart\n",
		ingest.CategoryDiscounts:        "",
		ingest.CategoryTaxSummary:       "libelle;HT;TVA;TTC\n",
		ingest.CategoryAnnexSales:       "libelle;nbr;montantHT;montantttc\n",
	}
	files := make(map[ingest.Category]service.UploadFile, len(content))
	for c, v := range content {
		files[c] = service.UploadFile{Filename: string(c) + ".csv", Data: []byte(v)}
	}
	return files
}

func uploadInput(code string) service.UploadInput {
	return service.UploadInput{
		RestaurantCode: code,
		ReportDate:     domain.NewDate(2026, time.February, 1),
		Files:          uploadFiles(),
	}
}

func TestReportService_Upload_Success(t *testing.T) {
	f := newReportFixture(false)

	f.repo.On("CreateBundle", mock.Anything, mock.MatchedBy(func(b *domain.ReportBundle) bool {
		return b.Report.RestaurantCode == "AB12" && len(b.ChannelSales) > 1 && b.Kpi != nil
	})).Return(nil)
	f.cache.On("Invalidate", mock.Anything).Return(nil)
	f.audit.On("Record", mock.Anything, domain.AuditReportUpload, "manager@restau.com", mock.Anything).Return()

	report, err := f.svc.Upload(context.Background(), manager, uploadInput(" ab12 "))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, report.ID)
	assert.Equal(t, "AB12", report.RestaurantCode)
	assert.Equal(t, "2026-02-01", report.ReportDate.String())

	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.audit.AssertExpectations(t)
	f.storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestReportService_Upload_ArchivesRawFiles(t *testing.T) {
	f := newReportFixture(true)

	f.repo.On("CreateBundle", mock.Anything, mock.Anything).Return(nil)
	f.cache.On("Invalidate", mock.Anything).Return(nil)
	f.audit.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()
	f.storage.On("Put", mock.Anything, mock.MatchedBy(func(in port.ArchiveObject) bool {
		return in.Bucket == "restau-uploads" && strings.HasPrefix(in.Key, "bk/AB12/2026-02-01/")
	})).Return(&port.ArchivedObject{}, nil)

	_, err := f.svc.Upload(context.Background(), admin, uploadInput("AB12"))
	require.NoError(t, err)
	f.storage.AssertNumberOfCalls(t, "Put", len(ingest.Categories))
	f.storage.AssertCalled(t, "Put", mock.Anything, mock.MatchedBy(func(in port.ArchiveObject) bool {
		return in.Key == "bk/AB12/2026-02-01/caparprofit.csv" && in.Metadata["restaurant-code"] == "AB12"
	}))
}

func TestReportService_Upload_ArchiveFailureDoesNotFail(t *testing.T) {
	f := newReportFixture(true)

	f.repo.On("CreateBundle", mock.Anything, mock.Anything).Return(nil)
	f.cache.On("Invalidate", mock.Anything).Return(errors.New("redis down"))
	f.audit.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()
	f.storage.On("Put", mock.Anything, mock.Anything).Return(nil, errors.New("s3 unavailable"))

	report, err := f.svc.Upload(context.Background(), admin, uploadInput("AB12"))
	require.NoError(t, err)
	assert.NotNil(t, report)
}

func TestReportService_Upload_Conflict(t *testing.T) {
	f := newReportFixture(false)
	f.repo.On("CreateBundle", mock.Anything, mock.Anything).Return(domain.ErrReportExists)

	report, err := f.svc.Upload(context.Background(), admin, uploadInput("AB12"))
	assert.Nil(t, report)
	assert.ErrorIs(t, err, domain.ErrReportExists)
	f.cache.AssertNotCalled(t, "Invalidate", mock.Anything)
	f.audit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReportService_Upload_MissingFile(t *testing.T) {
	f := newReportFixture(false)
	in := uploadInput("AB12")
	delete(in.Files, ingest.CategoryTaxSummary)

	_, err := f.svc.Upload(context.Background(), admin, in)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "tva")
	f.repo.AssertNotCalled(t, "CreateBundle", mock.Anything, mock.Anything)
}

func TestReportService_Upload_MissingRestaurant(t *testing.T) {
	f := newReportFixture(false)

	_, err := f.svc.Upload(context.Background(), admin, uploadInput("   "))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReportService_Upload_OutsideScope(t *testing.T) {
	f := newReportFixture(false)
	f.audit.On("Record", mock.Anything, domain.AuditForbidden, "manager@restau.com", "upload ZZ99").Return()

	_, err := f.svc.Upload(context.Background(), manager, uploadInput("zz99"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	f.repo.AssertNotCalled(t, "CreateBundle", mock.Anything, mock.Anything)
	f.audit.AssertExpectations(t)
}

func TestReportService_List_ScopeAndFilter(t *testing.T) {
	f := newReportFixture(false)
	start := domain.NewDate(2026, time.February, 1)
	end := domain.NewDate(2026, time.February, 28)
	reports := []domain.DailyReport{{ID: uuid.New(), RestaurantCode: "AB12", ReportDate: start}}

	f.repo.On("List", mock.Anything, domain.ReportFilter{
		StartDate:      &start,
		EndDate:        &end,
		RestaurantCode: "AB12",
		Scope:          domain.Scope{Codes: []string{"AB12"}},
	}).Return(reports, nil)

	got, err := f.svc.List(context.Background(), manager, service.ListInput{
		StartDate:      &start,
		EndDate:        &end,
		RestaurantCode: "ab12",
	})
	require.NoError(t, err)
	assert.Equal(t, reports, got)
}

func TestReportService_List_EmptyScope(t *testing.T) {
	f := newReportFixture(false)

	got, err := f.svc.List(context.Background(), lonely, service.ListInput{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	f.repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestReportService_List_InvertedRange(t *testing.T) {
	f := newReportFixture(false)
	start := domain.NewDate(2026, time.March, 1)
	end := domain.NewDate(2026, time.February, 1)

	_, err := f.svc.List(context.Background(), admin, service.ListInput{StartDate: &start, EndDate: &end})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReportService_Get_OutsideScope(t *testing.T) {
	f := newReportFixture(false)
	id := uuid.New()
	f.repo.On("GetBundle", mock.Anything, id).Return(&domain.ReportBundle{
		Report: domain.DailyReport{ID: id, RestaurantCode: "ZZ99"},
	}, nil)
	f.audit.On("Record", mock.Anything, domain.AuditForbidden, "manager@restau.com", mock.Anything).Return()

	got, err := f.svc.Get(context.Background(), manager, id)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestReportService_Get_NotFound(t *testing.T) {
	f := newReportFixture(false)
	id := uuid.New()
	f.repo.On("GetBundle", mock.Anything, id).Return(nil, domain.ErrNotFound)

	_, err := f.svc.Get(context.Background(), admin, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReportService_Get_InScope(t *testing.T) {
	f := newReportFixture(false)
	id := uuid.New()
	bundle := &domain.ReportBundle{Report: domain.DailyReport{ID: id, RestaurantCode: "AB12"}}
	f.repo.On("GetBundle", mock.Anything, id).Return(bundle, nil)

	got, err := f.svc.Get(context.Background(), manager, id)
	require.NoError(t, err)
	assert.Equal(t, bundle, got)
}

func channelRows(net string, tac int) []domain.ChannelSalesRow {
	return []domain.ChannelSalesRow{{
		ChannelLabel: "COMPTOIR",
		TAC:          &tac,
		CANet:        decimal.NewNullDecimal(decimal.RequireFromString(net)),
		CATTC:        decimal.NewNullDecimal(decimal.RequireFromString(net)),
	}}
}

func TestReportService_Monthly_InvalidInput(t *testing.T) {
	f := newReportFixture(false)

	for _, q := range []domain.MonthlyQuery{
		{Year: 1999, Month: 1},
		{Year: 2101, Month: 1},
		{Year: 2026, Month: 0},
		{Year: 2026, Month: 13},
	} {
		_, err := f.svc.Monthly(context.Background(), admin, q)
		assert.ErrorIs(t, err, domain.ErrInvalidMonth, "%+v", q)
	}
	f.repo.AssertNotCalled(t, "ReadSnapshot", mock.Anything)
}

func TestReportService_Monthly_EmptyScope(t *testing.T) {
	f := newReportFixture(false)

	items, err := f.svc.Monthly(context.Background(), lonely, domain.MonthlyQuery{Year: 2026, Month: 2})
	require.NoError(t, err)
	assert.Empty(t, items)
	f.cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "ReadSnapshot", mock.Anything)
}

func TestReportService_Monthly_CacheHit(t *testing.T) {
	f := newReportFixture(false)
	cached := []domain.MonthlyItem{{ID: uuid.New(), RestaurantCode: "AB12"}}
	f.cache.On("Get", mock.Anything, "2026-02:*:all").Return(cached, int64(1), true)

	items, err := f.svc.Monthly(context.Background(), admin, domain.MonthlyQuery{Year: 2026, Month: 2})
	require.NoError(t, err)
	assert.Equal(t, cached, items)
	f.repo.AssertNotCalled(t, "ReadSnapshot", mock.Anything)
}

func TestReportService_Monthly_PriorYearResolution(t *testing.T) {
	f := newReportFixture(false)
	day := domain.NewDate(2026, time.February, 1)
	priorDay := domain.NewDate(2025, time.February, 1)
	first := domain.NewDate(2026, time.February, 1)
	last := domain.NewDate(2026, time.February, 28)

	current := []domain.MonthlyReportData{{
		Report:       domain.DailyReport{ID: uuid.New(), RestaurantCode: "AB12", ReportDate: day},
		ChannelSales: channelRows("1000", 10),
	}}
	priorKey := domain.PriorKey{RestaurantCode: "AB12", ReportDate: priorDay}
	prior := map[domain.PriorKey]domain.MonthlyReportData{
		priorKey: {
			Report:       domain.DailyReport{ID: uuid.New(), RestaurantCode: "AB12", ReportDate: priorDay},
			ChannelSales: channelRows("800", 8),
		},
	}

	key := "2026-02:AB12:AB12"
	f.cache.On("Get", mock.Anything, key).Return(nil, int64(4), false)
	f.repo.On("ReadSnapshot", mock.Anything).Return(nil)
	f.reader.On("LoadPeriod", mock.Anything, first, last, "AB12", domain.Scope{Codes: []string{"AB12"}}).Return(current, nil)
	f.reader.On("LoadByKeys", mock.Anything, []domain.PriorKey{priorKey}).Return(prior, nil)
	f.cache.On("Set", mock.Anything, key, int64(4), mock.Anything).Return()

	items, err := f.svc.Monthly(context.Background(), manager, domain.MonthlyQuery{Year: 2026, Month: 2, RestaurantCode: "ab12"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.True(t, decimal.RequireFromString("1000").Equal(item.CANetTotal))
	assert.Equal(t, 10, item.TACTotal)
	require.NotNil(t, item.Kpi)
	assert.True(t, item.Kpi.CAReal.Valid)
	assert.True(t, decimal.RequireFromString("1000").Equal(item.Kpi.CAReal.Decimal))
	assert.True(t, item.Kpi.N1HT.Valid)
	assert.True(t, decimal.RequireFromString("800").Equal(item.Kpi.N1HT.Decimal))
	require.NotNil(t, item.Kpi.ClientsN1)
	assert.Equal(t, 8, *item.Kpi.ClientsN1)
	assert.True(t, decimal.RequireFromString("25").Equal(item.Kpi.VarN1.Decimal))

	f.cache.AssertExpectations(t)
	f.reader.AssertExpectations(t)
}

func TestReportService_Monthly_LeapDayHasNoPrior(t *testing.T) {
	f := newReportFixture(false)
	day := domain.NewDate(2028, time.February, 29)
	current := []domain.MonthlyReportData{{
		Report:       domain.DailyReport{ID: uuid.New(), RestaurantCode: "AB12", ReportDate: day},
		ChannelSales: channelRows("500", 5),
	}}

	f.cache.On("Get", mock.Anything, mock.Anything).Return(nil, int64(4), false)
	f.repo.On("ReadSnapshot", mock.Anything).Return(nil)
	f.reader.On("LoadPeriod", mock.Anything, mock.Anything, mock.Anything, "", domain.Scope{All: true}).Return(current, nil)
	f.reader.On("LoadByKeys", mock.Anything, []domain.PriorKey{}).Return(map[domain.PriorKey]domain.MonthlyReportData{}, nil)
	f.cache.On("Set", mock.Anything, mock.Anything, int64(4), mock.Anything).Return()

	items, err := f.svc.Monthly(context.Background(), admin, domain.MonthlyQuery{Year: 2028, Month: 2})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].Kpi.N1HT.Valid)
	assert.Nil(t, items[0].Kpi.ClientsN1)
	assert.False(t, items[0].Kpi.VarN1.Valid)
}

func TestReportService_Monthly_SnapshotError(t *testing.T) {
	f := newReportFixture(false)
	f.cache.On("Get", mock.Anything, mock.Anything).Return(nil, int64(4), false)
	f.repo.On("ReadSnapshot", mock.Anything).Return(errors.New("serialization failure"))

	_, err := f.svc.Monthly(context.Background(), admin, domain.MonthlyQuery{Year: 2026, Month: 2})
	assert.Error(t, err)
	f.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReportService_ExportMonthly_CSV(t *testing.T) {
	f := newReportFixture(false)
	items := []domain.MonthlyItem{{
		ID:             uuid.New(),
		RestaurantCode: "AB12",
		ReportDate:     domain.NewDate(2026, time.February, 1),
		CANetTotal:     decimal.RequireFromString("10.5"),
		Kpi:            &domain.KpiSummary{},
	}}
	f.cache.On("Get", mock.Anything, mock.Anything).Return(items, int64(1), true)

	out, err := f.svc.ExportMonthly(context.Background(), admin, domain.MonthlyQuery{Year: 2026, Month: 2, RestaurantCode: "AB12"}, domain.ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "recap_AB12_2026-02.csv", out.Filename)
	assert.Contains(t, out.ContentType, "text/csv")
	assert.True(t, bytes.HasPrefix(out.Data, csvexport.BOM))
	assert.Contains(t, string(out.Data), "AB12;10,50")
}

func TestReportService_ExportMonthly_XLSX(t *testing.T) {
	f := newReportFixture(false)
	f.cache.On("Get", mock.Anything, mock.Anything).Return([]domain.MonthlyItem{}, int64(1), true)

	out, err := f.svc.ExportMonthly(context.Background(), admin, domain.MonthlyQuery{Year: 2026, Month: 2}, domain.ExportXLSX)
	require.NoError(t, err)
	assert.Equal(t, "recap_all_2026-02.xlsx", out.Filename)
	assert.True(t, bytes.HasPrefix(out.Data, []byte("PK")), "xlsx is a zip archive")
}

func TestReportService_ExportMonthly_UnknownFormat(t *testing.T) {
	f := newReportFixture(false)

	_, err := f.svc.ExportMonthly(context.Background(), admin, domain.MonthlyQuery{Year: 2026, Month: 2}, "pdf")
	assert.ErrorIs(t, err, domain.ErrUnsupportedExport)
}

func TestReportService_UpdateKPI(t *testing.T) {
	f := newReportFixture(false)
	id := uuid.New()
	n1 := decimal.RequireFromString("900")
	update := domain.KpiUpdate{N1HT: &n1}
	summary := &domain.KpiSummary{ReportID: id, N1HT: decimal.NewNullDecimal(n1)}

	f.repo.On("GetByID", mock.Anything, id).Return(&domain.DailyReport{ID: id, RestaurantCode: "AB12"}, nil)
	f.repo.On("UpsertKpi", mock.Anything, id, update).Return(summary, nil)
	f.cache.On("Invalidate", mock.Anything).Return(nil)
	f.audit.On("Record", mock.Anything, domain.AuditReportKPI, "manager@restau.com", mock.Anything).Return()

	got, err := f.svc.UpdateKPI(context.Background(), manager, id, update)
	require.NoError(t, err)
	assert.Equal(t, summary, got)
	f.cache.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestReportService_UpdateKPI_EmptyPayload(t *testing.T) {
	f := newReportFixture(false)

	_, err := f.svc.UpdateKPI(context.Background(), admin, uuid.New(), domain.KpiUpdate{})
	assert.ErrorIs(t, err, domain.ErrValidation)
	f.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestReportService_UpdateKPI_OutsideScope(t *testing.T) {
	f := newReportFixture(false)
	id := uuid.New()
	cash := decimal.RequireFromString("-2.5")

	f.repo.On("GetByID", mock.Anything, id).Return(&domain.DailyReport{ID: id, RestaurantCode: "ZZ99"}, nil)
	f.audit.On("Record", mock.Anything, domain.AuditForbidden, mock.Anything, mock.Anything).Return()

	_, err := f.svc.UpdateKPI(context.Background(), manager, id, domain.KpiUpdate{CashDiff: &cash})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	f.repo.AssertNotCalled(t, "UpsertKpi", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportService_Delete(t *testing.T) {
	f := newReportFixture(true)
	id := uuid.New()
	report := &domain.DailyReport{ID: id, RestaurantCode: "AB12", ReportDate: domain.NewDate(2026, time.February, 1)}

	f.repo.On("GetByID", mock.Anything, id).Return(report, nil)
	f.repo.On("Delete", mock.Anything, id).Return(nil)
	f.storage.On("DeletePrefix", mock.Anything, "restau-uploads", "bk/AB12/2026-02-01/").Return(nil)
	f.cache.On("Invalidate", mock.Anything).Return(nil)
	f.audit.On("Record", mock.Anything, domain.AuditReportDelete, "admin@restau.com", mock.Anything).Return()

	require.NoError(t, f.svc.Delete(context.Background(), admin, id))
	f.repo.AssertExpectations(t)
	f.storage.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestReportService_Delete_NotFound(t *testing.T) {
	f := newReportFixture(false)
	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	err := f.svc.Delete(context.Background(), admin, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
