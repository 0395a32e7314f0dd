package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"restau/internal/domain"
	"restau/internal/port"
)

type auditRepo struct {
	db *sqlx.DB
}

// NewAuditRepo creates a new PostgreSQL-backed AuditRepository.
func NewAuditRepo(db *sqlx.DB) port.AuditRepository {
	return &auditRepo{db: db}
}

// Create inserts the entry through the pool, outside any caller transaction.
func (r *auditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, action, actor_email, target, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.Action, entry.ActorEmail, entry.Target, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("auditRepo.Create: %w", err)
	}
	return nil
}

func (r *auditRepo) ListLatest(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLog, error) {
	conds := []string{"1=1"}
	var args []interface{}
	argN := 1
	if filter.Action != "" {
		conds = append(conds, fmt.Sprintf("action = $%d", argN))
		args = append(args, filter.Action)
		argN++
	}
	if filter.ActorEmail != "" {
		conds = append(conds, fmt.Sprintf("actor_email = $%d", argN))
		args = append(args, filter.ActorEmail)
		argN++
	}
	args = append(args, filter.Limit)

	entries := []domain.AuditLog{}
	err := r.db.SelectContext(ctx, &entries,
		"SELECT id, action, actor_email, target, created_at FROM audit_logs WHERE "+
			strings.Join(conds, " AND ")+
			fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argN), args...)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.ListLatest: %w", err)
	}
	return entries, nil
}
