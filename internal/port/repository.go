package port

import (
	"context"

	"github.com/google/uuid"

	"restau/internal/domain"
)

// UserRepository defines the contract for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Count(ctx context.Context) (int, error)
	RestaurantCodes(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// RestaurantRepository defines the contract for restaurant lookups.
type RestaurantRepository interface {
	List(ctx context.Context) ([]domain.Restaurant, error)
	ListByCodes(ctx context.Context, codes []string) ([]domain.Restaurant, error)
}

// AuditRepository persists audit trail entries. Create runs in its own
// transaction so a failing primary operation cannot roll it back.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	ListLatest(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLog, error)
}
