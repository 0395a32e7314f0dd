package handler_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"restau/internal/domain"
	"restau/internal/handler"
	"restau/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setPrincipal(c *gin.Context, role domain.Role, codes ...string) *domain.Principal {
	p := &domain.Principal{
		UserID:          uuid.New(),
		Email:           "user@restau.com",
		Role:            role,
		RestaurantCodes: codes,
	}
	c.Set(middleware.ContextKeyPrincipal, p)
	return p
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
