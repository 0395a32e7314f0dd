package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"restau/internal/domain"
	"restau/internal/service"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/v1/auth"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService  service.AuthService
	audit        service.AuditService
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. secureCookie marks the refresh
// cookie Secure; it is off in development only.
func NewAuthHandler(authService service.AuthService, audit service.AuditService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, audit: audit, secureCookie: secureCookie}
}

// Login handles POST /api/v1/auth/login
// @Summary Log in
// @Description Exchange email and password for an access token. The refresh token is also set as an http-only cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} Response{data=TokenResponse}
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Invalid credentials"
// @Failure 403 {object} ErrorResponseBody "User inactive"
// @Failure 429 {object} ErrorResponseBody "Too many attempts"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input service.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tokenPair, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, tokenPair)
	RespondOK(c, tokenPair)
}

// RefreshToken handles POST /api/v1/auth/refresh
// @Summary Refresh the access token
// @Description The refresh token is read from the body, or from the refresh_token cookie when the body has none.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token"
// @Success 200 {object} Response{data=TokenResponse}
// @Failure 401 {object} ErrorResponseBody "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input service.RefreshInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}
	if input.RefreshToken == "" {
		if cookie, err := c.Cookie(refreshCookieName); err == nil {
			input.RefreshToken = cookie
		}
	}

	tokenPair, err := h.authService.RefreshToken(c.Request.Context(), input.RefreshToken)
	if err != nil {
		HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, tokenPair)
	RespondOK(c, tokenPair)
}

// Logout handles POST /api/v1/auth/logout
// @Summary Log out
// @Description Clears the refresh cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", h.secureCookie, true)
	h.audit.Record(c.Request.Context(), domain.AuditLogout, p.Email, "")
	RespondOK(c, gin.H{"message": "logged out"})
}

// Me handles GET /api/v1/auth/me
// @Summary Current principal
// @Tags auth
// @Produce json
// @Success 200 {object} Response{data=domain.Principal}
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	h.audit.Record(c.Request.Context(), domain.AuditMe, p.Email, "")
	RespondOK(c, p)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, pair *service.TokenPair) {
	maxAge := int(time.Until(pair.RefreshExpiresAt).Seconds())
	if maxAge <= 0 {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, pair.RefreshToken, maxAge, refreshCookiePath, "", h.secureCookie, true)
}
