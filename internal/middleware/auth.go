package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"restau/internal/access"
	"restau/internal/domain"
	"restau/internal/service"
)

const (
	ContextKeyPrincipal = "principal"
	ContextKeyClaims    = "claims"
)

func abortJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}

// AuthMiddleware returns Gin middleware that validates the bearer token and
// injects the caller's principal with its current restaurant assignments.
func AuthMiddleware(authService service.AuthService, audit service.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization header")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := authService.ValidateToken(token)
		if err != nil {
			audit.Record(c.Request.Context(), domain.AuditTokenInvalid, "", c.Request.URL.Path)
			abortJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}

		principal, err := authService.ResolvePrincipal(c.Request.Context(), claims)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrUserInactive) {
				audit.Record(c.Request.Context(), domain.AuditTokenInvalid, claims.Email, c.Request.URL.Path)
				abortJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "user is unknown or inactive")
				return
			}
			abortJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyPrincipal, principal)
		c.Next()
	}
}

// RequireRole returns middleware that checks the principal's role against
// allowed roles. DEV passes every check.
func RequireRole(audit service.AuditService, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := GetPrincipal(c)
		if err != nil {
			abortJSON(c, http.StatusForbidden, "FORBIDDEN", "role not found in context")
			return
		}

		if access.RoleSatisfies(principal.Role, roles...) {
			c.Next()
			return
		}

		audit.Record(c.Request.Context(), domain.AuditForbidden, principal.Email, c.Request.Method+" "+c.FullPath())
		abortJSON(c, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
	}
}

// GetPrincipal extracts the authenticated principal from the Gin context.
func GetPrincipal(c *gin.Context) (*domain.Principal, error) {
	val, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		return nil, domain.ErrUnauthorized
	}
	p, ok := val.(*domain.Principal)
	if !ok || p == nil {
		return nil, domain.ErrUnauthorized
	}
	return p, nil
}
