package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"restau/internal/domain"
	"restau/internal/ingest"
	"restau/internal/service"
)

const multipartMemory = 32 << 20

// ReportHandler handles daily report endpoints.
type ReportHandler struct {
	reportService service.ReportService
	maxFileBytes  int64
}

// NewReportHandler creates a new ReportHandler. maxFileSizeMB bounds each
// uploaded export.
func NewReportHandler(reportService service.ReportService, maxFileSizeMB int64) *ReportHandler {
	return &ReportHandler{reportService: reportService, maxFileBytes: maxFileSizeMB << 20}
}

// Upload handles POST /api/v1/reports/bk/upload
// @Summary Ingest a daily report
// @Description Upload the eight semicolon CSV exports of one restaurant day. Unparseable numbers are stored as null.
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Param restaurant_code formData string true "Restaurant code"
// @Param report_date formData string true "Report date (YYYY-MM-DD)"
// @Param caparprofit formData file true "Sales by channel"
// @Param consommationparprofit formData file true "Consumption modes"
// @Param corrections formData file true "Corrections"
// @Param divers formData file true "Miscellaneous"
// @Param reglement formData file true "Payments"
// @Param remises formData file true "Discounts"
// @Param tva formData file true "Tax summary"
// @Param vente_annexes formData file true "Annex sales"
// @Success 201 {object} Response{data=UploadResponse}
// @Failure 400 {object} ErrorResponseBody "Missing field or file"
// @Failure 403 {object} ErrorResponseBody "Restaurant outside scope"
// @Failure 409 {object} ErrorResponseBody "Report already exists"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Security BearerAuth
// @Router /reports/bk/upload [post]
func (h *ReportHandler) Upload(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	maxTotal := h.maxFileBytes*int64(len(ingest.Categories)) + multipartMemory
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxTotal)
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, domain.ErrFileTooLarge)
			return
		}
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "request must be multipart/form-data")
		return
	}

	input := service.UploadInput{
		RestaurantCode: c.PostForm("restaurant_code"),
		Files:          make(map[ingest.Category]service.UploadFile, len(ingest.Categories)),
	}
	if raw := c.PostForm("report_date"); raw != "" {
		date, err := domain.ParseDate(raw)
		if err != nil {
			HandleError(c, err)
			return
		}
		input.ReportDate = date
	}

	for _, category := range ingest.Categories {
		header, err := c.FormFile(string(category))
		if err != nil {
			continue
		}
		data, err := h.readUpload(header)
		if err != nil {
			HandleError(c, err)
			return
		}
		input.Files[category] = service.UploadFile{Filename: header.Filename, Data: data}
	}

	report, err := h.reportService.Upload(c.Request.Context(), p, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, UploadResponse{
		ReportID:       report.ID,
		RestaurantCode: report.RestaurantCode,
		ReportDate:     report.ReportDate,
	})
}

func (h *ReportHandler) readUpload(header *multipart.FileHeader) ([]byte, error) {
	if header.Size > h.maxFileBytes {
		return nil, fmt.Errorf("%s: %w", header.Filename, domain.ErrFileTooLarge)
	}
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", header.Filename, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, h.maxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", header.Filename, err)
	}
	if int64(len(data)) > h.maxFileBytes {
		return nil, fmt.Errorf("%s: %w", header.Filename, domain.ErrFileTooLarge)
	}
	return data, nil
}

// List handles GET /api/v1/reports/bk
// @Summary List daily reports
// @Description Reports visible to the caller, newest first.
// @Tags reports
// @Produce json
// @Param start_date query string false "First day (YYYY-MM-DD)"
// @Param end_date query string false "Last day (YYYY-MM-DD)"
// @Param restaurant_code query string false "Restaurant code"
// @Success 200 {object} Response{data=[]domain.DailyReport}
// @Failure 400 {object} ErrorResponseBody "Invalid date"
// @Security BearerAuth
// @Router /reports/bk [get]
func (h *ReportHandler) List(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	input := service.ListInput{RestaurantCode: c.Query("restaurant_code")}
	var err error
	if input.StartDate, err = optionalDate(c, "start_date"); err != nil {
		HandleError(c, err)
		return
	}
	if input.EndDate, err = optionalDate(c, "end_date"); err != nil {
		HandleError(c, err)
		return
	}

	reports, err := h.reportService.List(c.Request.Context(), p, input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, reports)
}

// Monthly handles GET /api/v1/reports/bk/monthly
// @Summary Monthly KPI comparison
// @Description One line per report of the month with current totals and KPI merged with the prior-year day.
// @Tags reports
// @Produce json
// @Param year query int true "Year (2000-2100)"
// @Param month query int true "Month (1-12)"
// @Param restaurant_code query string false "Restaurant code"
// @Success 200 {object} Response{data=[]domain.MonthlyItem}
// @Failure 400 {object} ErrorResponseBody "Invalid year or month"
// @Security BearerAuth
// @Router /reports/bk/monthly [get]
func (h *ReportHandler) Monthly(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	q, err := monthlyQuery(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	items, err := h.reportService.Monthly(c.Request.Context(), p, q)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, items)
}

// ExportMonthly handles GET /api/v1/reports/bk/monthly/export
// @Summary Export the monthly recap
// @Tags reports
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param year query int true "Year (2000-2100)"
// @Param month query int true "Month (1-12)"
// @Param restaurant_code query string false "Restaurant code"
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponseBody "Invalid query"
// @Security BearerAuth
// @Router /reports/bk/monthly/export [get]
func (h *ReportHandler) ExportMonthly(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	q, err := monthlyQuery(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	out, err := h.reportService.ExportMonthly(c.Request.Context(), p, q, domain.ExportFormat(c.DefaultQuery("format", "csv")))
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Data)
}

// Get handles GET /api/v1/reports/bk/:id
// @Summary Get a daily report
// @Description The report with every child collection and its KPI summary.
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} Response{data=domain.ReportBundle}
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 403 {object} ErrorResponseBody "Restaurant outside scope"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Security BearerAuth
// @Router /reports/bk/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := reportID(c)
	if !ok {
		return
	}

	bundle, err := h.reportService.Get(c.Request.Context(), p, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, bundle)
}

// UpdateKPI handles PUT /api/v1/reports/bk/:id/kpi
// @Summary Update KPI fields
// @Description Writes only the supplied fields and creates the summary if absent.
// @Tags reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param request body domain.KpiUpdate true "KPI fields"
// @Success 200 {object} Response{data=domain.KpiSummary}
// @Failure 400 {object} ErrorResponseBody "Invalid body"
// @Failure 403 {object} ErrorResponseBody "Restaurant outside scope"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Security BearerAuth
// @Router /reports/bk/{id}/kpi [put]
func (h *ReportHandler) UpdateKPI(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := reportID(c)
	if !ok {
		return
	}

	var update domain.KpiUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	summary, err := h.reportService.UpdateKPI(c.Request.Context(), p, id, update)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, summary)
}

// Delete handles DELETE /api/v1/reports/bk/:id
// @Summary Delete a daily report
// @Description Removes the report and every child row.
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 403 {object} ErrorResponseBody "Insufficient role"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Security BearerAuth
// @Router /reports/bk/{id} [delete]
func (h *ReportHandler) Delete(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := reportID(c)
	if !ok {
		return
	}

	if err := h.reportService.Delete(c.Request.Context(), p, id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "report deleted"})
}

func reportID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid report ID")
		return uuid.Nil, false
	}
	return id, true
}

func optionalDate(c *gin.Context, key string) (*domain.Date, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func monthlyQuery(c *gin.Context) (domain.MonthlyQuery, error) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		return domain.MonthlyQuery{}, fmt.Errorf("%w: year must be an integer", domain.ErrInvalidMonth)
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		return domain.MonthlyQuery{}, fmt.Errorf("%w: month must be an integer", domain.ErrInvalidMonth)
	}
	return domain.MonthlyQuery{
		Year:           year,
		Month:          month,
		RestaurantCode: c.Query("restaurant_code"),
	}, nil
}
