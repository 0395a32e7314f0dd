package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an operator account.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Role         Role      `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Restaurant is a site whose reports can be ingested.
type Restaurant struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Code string    `db:"code" json:"code"`
	Name string    `db:"name" json:"name"`
}

// AuditLog is one entry of the audit trail.
type AuditLog struct {
	ID         uuid.UUID   `db:"id" json:"id"`
	Action     AuditAction `db:"action" json:"action"`
	ActorEmail *string     `db:"actor_email" json:"actor_email"`
	Target     *string     `db:"target" json:"target"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}

// AuditFilter narrows the latest-entries listing.
type AuditFilter struct {
	Action     string
	ActorEmail string
	Limit      int
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID          uuid.UUID `json:"user_id"`
	Email           string    `json:"email"`
	Role            Role      `json:"role"`
	RestaurantCodes []string  `json:"restaurant_codes"`
}
