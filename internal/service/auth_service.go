package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"restau/internal/config"
	"restau/internal/domain"
	"restau/internal/port"
)

const (
	audienceAccess  = "access"
	audienceRefresh = "refresh"
)

// Claims represents the JWT claims of an operator session.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID   `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
}

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"-"`
}

// LoginInput is the DTO for login requests.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshInput is the DTO for token refresh requests. The token may also
// arrive as a cookie.
type RefreshInput struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthService defines the authentication contract.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	ValidateToken(tokenString string) (*Claims, error)
	// ResolvePrincipal reloads the user behind claims with its current role
	// and restaurant assignments.
	ResolvePrincipal(ctx context.Context, claims *Claims) (*domain.Principal, error)
}

type authService struct {
	userRepo port.UserRepository
	audit    AuditService
	cfg      config.JWTConfig
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(userRepo port.UserRepository, audit AuditService, cfg config.JWTConfig) AuthService {
	return &authService{
		userRepo: userRepo,
		audit:    audit,
		cfg:      cfg,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.audit.Record(ctx, domain.AuditLoginFailed, email, "")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth.Login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.audit.Record(ctx, domain.AuditLoginFailed, email, "")
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.audit.Record(ctx, domain.AuditLoginFailed, email, "inactive")
		return nil, domain.ErrUserInactive
	}

	pair, err := s.generateTokenPair(user)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, domain.AuditLoginSuccess, user.Email, "")
	return pair, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		s.audit.Record(ctx, domain.AuditRefreshFailed, "", "missing token")
		return nil, domain.ErrUnauthorized
	}

	claims, err := s.validateTokenString(refreshToken, audienceRefresh)
	if err != nil {
		s.audit.Record(ctx, domain.AuditRefreshFailed, "", "invalid token")
		return nil, domain.ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		s.audit.Record(ctx, domain.AuditRefreshFailed, claims.Email, "unknown user")
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		s.audit.Record(ctx, domain.AuditRefreshFailed, user.Email, "inactive")
		return nil, domain.ErrUserInactive
	}

	pair, err := s.generateTokenPair(user)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, domain.AuditRefreshSuccess, user.Email, "")
	return pair, nil
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	return s.validateTokenString(tokenString, audienceAccess)
}

func (s *authService) ResolvePrincipal(ctx context.Context, claims *Claims) (*domain.Principal, error) {
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("auth.ResolvePrincipal: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	codes, err := s.userRepo.RestaurantCodes(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth.ResolvePrincipal: %w", err)
	}
	if codes == nil {
		codes = []string{}
	}

	return &domain.Principal{
		UserID:          user.ID,
		Email:           user.Email,
		Role:            user.Role,
		RestaurantCodes: codes,
	}, nil
}

func (s *authService) generateTokenPair(user *domain.User) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.cfg.AccessTokenExpiry)
	refreshExpiry := now.Add(s.cfg.RefreshTokenExpiry)

	accessToken, err := s.sign(user, audienceAccess, now, accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	refreshToken, err := s.sign(user, audienceRefresh, now, refreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		TokenType:        "bearer",
		ExpiresAt:        accessExpiry,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

func (s *authService) sign(user *domain.User, audience string, issuedAt, expiresAt time.Time) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{audience},
		},
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
}

func (s *authService) validateTokenString(tokenString, audience string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	aud, _ := claims.GetAudience()
	if !slices.Contains(aud, audience) {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
