package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"restau/internal/domain"
	"restau/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{fmt.Errorf("%w: restaurant_code is required", domain.ErrValidation), http.StatusBadRequest, "VALIDATION_ERROR"},
		{domain.ErrInvalidMonth, http.StatusBadRequest, "INVALID_MONTH"},
		{domain.ErrUnsupportedExport, http.StatusBadRequest, "UNSUPPORTED_FORMAT"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{fmt.Errorf("reportRepo.CreateBundle: %w", domain.ErrReportExists), http.StatusConflict, "REPORT_EXISTS"},
		{domain.ErrDuplicateEmail, http.StatusConflict, "DUPLICATE_EMAIL"},
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{domain.ErrUserInactive, http.StatusForbidden, "USER_INACTIVE"},
		{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			status, code, _ := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestMapDomainError_ValidationKeepsDetail(t *testing.T) {
	_, _, msg := handler.MapDomainError(fmt.Errorf("%w: missing file tva", domain.ErrValidation))
	assert.Contains(t, msg, "missing file tva")
}

func TestMapDomainError_InternalHidesDetail(t *testing.T) {
	_, _, msg := handler.MapDomainError(errors.New("pq: password authentication failed"))
	assert.NotContains(t, msg, "password")
}
