package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"restau/internal/access"
	"restau/internal/config"
	"restau/internal/csvexport"
	"restau/internal/domain"
	"restau/internal/ingest"
	"restau/internal/kpi"
	"restau/internal/logging"
	"restau/internal/port"
	"restau/internal/xlsxexport"
)

const (
	minReportYear = 2000
	maxReportYear = 2100

	sideEffectTimeout = 10 * time.Second
)

// UploadFile is one uploaded export.
type UploadFile struct {
	Filename string
	Data     []byte
}

// UploadInput is one ingestion request: a restaurant, a day and the eight exports.
type UploadInput struct {
	RestaurantCode string
	ReportDate     domain.Date
	Files          map[ingest.Category]UploadFile
}

// ListInput narrows the report listing.
type ListInput struct {
	StartDate      *domain.Date
	EndDate        *domain.Date
	RestaurantCode string
}

// ExportFile is a rendered monthly recap.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService ingests daily reports and serves them back to principals
// according to their restaurant scope.
type ReportService interface {
	Upload(ctx context.Context, p *domain.Principal, input UploadInput) (*domain.DailyReport, error)
	List(ctx context.Context, p *domain.Principal, input ListInput) ([]domain.DailyReport, error)
	Get(ctx context.Context, p *domain.Principal, id uuid.UUID) (*domain.ReportBundle, error)
	Monthly(ctx context.Context, p *domain.Principal, q domain.MonthlyQuery) ([]domain.MonthlyItem, error)
	ExportMonthly(ctx context.Context, p *domain.Principal, q domain.MonthlyQuery, format domain.ExportFormat) (*ExportFile, error)
	UpdateKPI(ctx context.Context, p *domain.Principal, id uuid.UUID, update domain.KpiUpdate) (*domain.KpiSummary, error)
	Delete(ctx context.Context, p *domain.Principal, id uuid.UUID) error
}

type reportService struct {
	repo    port.ReportRepository
	storage port.ObjectStorage
	cache   port.MonthlyCache
	audit   AuditService
	s3Cfg   config.S3Config
	log     logrus.FieldLogger
}

// NewReportService creates a new ReportService implementation.
func NewReportService(
	repo port.ReportRepository,
	storage port.ObjectStorage,
	cache port.MonthlyCache,
	audit AuditService,
	s3Cfg config.S3Config,
	log logrus.FieldLogger,
) ReportService {
	return &reportService{
		repo:    repo,
		storage: storage,
		cache:   cache,
		audit:   audit,
		s3Cfg:   s3Cfg,
		log:     log,
	}
}

func (s *reportService) Upload(ctx context.Context, p *domain.Principal, input UploadInput) (*domain.DailyReport, error) {
	code := ingest.NormalizeRestaurantCode(input.RestaurantCode)
	if code != "" && !access.CanAccessReport(p, code) {
		s.audit.Record(ctx, domain.AuditForbidden, principalEmail(p), "upload "+code)
		return nil, domain.ErrForbidden
	}

	sources := make(map[ingest.Category]io.Reader, len(input.Files))
	for c, f := range input.Files {
		sources[c] = bytes.NewReader(f.Data)
	}

	bundle, err := ingest.Assemble(ingest.Input{
		RestaurantCode: code,
		ReportDate:     input.ReportDate,
		Sources:        sources,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateBundle(ctx, bundle); err != nil {
		return nil, err
	}

	report := bundle.Report
	s.archive(ctx, &report, input.Files)
	s.invalidate(ctx)
	s.audit.Record(ctx, domain.AuditReportUpload, principalEmail(p), reportTarget(&report))

	s.log.WithFields(logrus.Fields{
		"report_id":       report.ID.String(),
		"restaurant_code": report.RestaurantCode,
		"report_date":     report.ReportDate.String(),
		"channel_rows":    len(bundle.ChannelSales),
	}).Info("report ingested")

	return &report, nil
}

func (s *reportService) List(ctx context.Context, p *domain.Principal, input ListInput) ([]domain.DailyReport, error) {
	if input.StartDate != nil && input.EndDate != nil && input.StartDate.After(input.EndDate.Time) {
		return nil, fmt.Errorf("%w: start_date is after end_date", domain.ErrValidation)
	}

	scope := access.Visible(p)
	if scope.Empty() {
		return []domain.DailyReport{}, nil
	}

	reports, err := s.repo.List(ctx, domain.ReportFilter{
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		RestaurantCode: ingest.NormalizeRestaurantCode(input.RestaurantCode),
		Scope:          scope,
	})
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []domain.DailyReport{}
	}
	return reports, nil
}

func (s *reportService) Get(ctx context.Context, p *domain.Principal, id uuid.UUID) (*domain.ReportBundle, error) {
	bundle, err := s.repo.GetBundle(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, p, &bundle.Report); err != nil {
		return nil, err
	}
	return bundle, nil
}

func (s *reportService) Monthly(ctx context.Context, p *domain.Principal, q domain.MonthlyQuery) ([]domain.MonthlyItem, error) {
	if err := validateMonth(q); err != nil {
		return nil, err
	}

	scope := access.Visible(p)
	if scope.Empty() {
		return []domain.MonthlyItem{}, nil
	}
	q.RestaurantCode = ingest.NormalizeRestaurantCode(q.RestaurantCode)

	key := monthlyCacheKey(q, scope)
	cached, ver, ok := s.cache.Get(ctx, key)
	if ok {
		return cached, nil
	}

	first, last := kpi.MonthRange(q.Year, q.Month)
	var snap domain.MonthlySnapshot
	err := s.repo.ReadSnapshot(ctx, func(r port.ReportSnapshotReader) error {
		current, err := r.LoadPeriod(ctx, first, last, q.RestaurantCode, scope)
		if err != nil {
			return err
		}
		prior, err := r.LoadByKeys(ctx, kpi.PriorKeys(current))
		if err != nil {
			return err
		}
		snap = domain.MonthlySnapshot{Current: current, Prior: prior}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("report.Monthly: %w", err)
	}

	items := kpi.BuildItems(snap)
	s.cache.Set(ctx, key, ver, items)
	return items, nil
}

func (s *reportService) ExportMonthly(ctx context.Context, p *domain.Principal, q domain.MonthlyQuery, format domain.ExportFormat) (*ExportFile, error) {
	if format == "" {
		format = domain.ExportCSV
	}
	if format != domain.ExportCSV && format != domain.ExportXLSX {
		return nil, domain.ErrUnsupportedExport
	}

	items, err := s.Monthly(ctx, p, q)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	out := &ExportFile{
		Filename: csvexport.BuildFilename(ingest.NormalizeRestaurantCode(q.RestaurantCode), q.Year, q.Month, string(format)),
	}
	switch format {
	case domain.ExportXLSX:
		out.ContentType = xlsxexport.ContentType
		err = xlsxexport.Write(&buf, items)
	default:
		out.ContentType = "text/csv; charset=utf-8"
		err = csvexport.Write(&buf, items)
	}
	if err != nil {
		return nil, fmt.Errorf("report.ExportMonthly: %w", err)
	}
	out.Data = buf.Bytes()
	return out, nil
}

func (s *reportService) UpdateKPI(ctx context.Context, p *domain.Principal, id uuid.UUID, update domain.KpiUpdate) (*domain.KpiSummary, error) {
	if update.Empty() {
		return nil, fmt.Errorf("%w: no KPI field supplied", domain.ErrValidation)
	}

	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, p, report); err != nil {
		return nil, err
	}

	summary, err := s.repo.UpsertKpi(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.audit.Record(ctx, domain.AuditReportKPI, principalEmail(p), reportTarget(report))
	return summary, nil
}

func (s *reportService) Delete(ctx context.Context, p *domain.Principal, id uuid.UUID) error {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, p, report); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.purgeArchive(ctx, report)
	s.invalidate(ctx)
	s.audit.Record(ctx, domain.AuditReportDelete, principalEmail(p), reportTarget(report))
	return nil
}

func (s *reportService) authorize(ctx context.Context, p *domain.Principal, report *domain.DailyReport) error {
	if access.CanAccessReport(p, report.RestaurantCode) {
		return nil
	}
	s.audit.Record(ctx, domain.AuditForbidden, principalEmail(p), reportTarget(report))
	return domain.ErrForbidden
}

// archive stores the raw exports after commit. Failures are logged only.
func (s *reportService) archive(ctx context.Context, report *domain.DailyReport, files map[ingest.Category]UploadFile) {
	if !s.s3Cfg.Enabled {
		return
	}
	archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	prefix := s.archivePrefix(report)
	metadata := map[string]string{
		"report-id":       report.ID.String(),
		"restaurant-code": report.RestaurantCode,
		"report-date":     report.ReportDate.String(),
	}
	for _, c := range ingest.Categories {
		f, ok := files[c]
		if !ok {
			continue
		}
		_, err := s.storage.Put(archiveCtx, port.ArchiveObject{
			Bucket:      s.s3Cfg.Bucket,
			Key:         prefix + string(c) + ".csv",
			Body:        bytes.NewReader(f.Data),
			ContentType: "text/csv",
			Size:        int64(len(f.Data)),
			Metadata:    metadata,
		})
		if err != nil {
			logging.LogError(s.log, "report", "archive", err, logrus.Fields{
				"report_id": report.ID.String(),
				"category":  string(c),
			})
		}
	}
}

func (s *reportService) purgeArchive(ctx context.Context, report *domain.DailyReport) {
	if !s.s3Cfg.Enabled {
		return
	}
	purgeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := s.storage.DeletePrefix(purgeCtx, s.s3Cfg.Bucket, s.archivePrefix(report)); err != nil {
		logging.LogError(s.log, "report", "purgeArchive", err, logrus.Fields{
			"report_id": report.ID.String(),
		})
	}
}

// archivePrefix is <prefix>/<restaurant>/<date>/ for a report.
func (s *reportService) archivePrefix(report *domain.DailyReport) string {
	return path.Join(s.s3Cfg.Prefix, report.RestaurantCode, report.ReportDate.String()) + "/"
}

func (s *reportService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		logging.LogError(s.log, "report", "invalidate", err, nil)
	}
}

func validateMonth(q domain.MonthlyQuery) error {
	if q.Year < minReportYear || q.Year > maxReportYear {
		return fmt.Errorf("%w: year must be between %d and %d", domain.ErrInvalidMonth, minReportYear, maxReportYear)
	}
	if q.Month < 1 || q.Month > 12 {
		return fmt.Errorf("%w: month must be between 1 and 12", domain.ErrInvalidMonth)
	}
	return nil
}

// monthlyCacheKey identifies a monthly computation by month, restaurant
// filter and visible scope.
func monthlyCacheKey(q domain.MonthlyQuery, scope domain.Scope) string {
	restaurant := q.RestaurantCode
	if restaurant == "" {
		restaurant = "*"
	}
	scopeKey := "all"
	if !scope.All {
		codes := slices.Clone(scope.Codes)
		slices.Sort(codes)
		scopeKey = strings.Join(codes, ",")
	}
	return fmt.Sprintf("%04d-%02d:%s:%s", q.Year, q.Month, restaurant, scopeKey)
}

func reportTarget(r *domain.DailyReport) string {
	return fmt.Sprintf("%s %s %s", r.ID, r.RestaurantCode, r.ReportDate)
}

func principalEmail(p *domain.Principal) string {
	if p == nil {
		return ""
	}
	return p.Email
}
