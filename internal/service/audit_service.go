package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"restau/internal/domain"
	"restau/internal/logging"
	"restau/internal/port"
)

const (
	auditWriteTimeout = 3 * time.Second
	auditDefaultLimit = 50
	auditMaxLimit     = 200
)

// AuditService records and lists audit trail entries.
type AuditService interface {
	// Record writes an entry on its own context. Failures are logged and
	// never returned.
	Record(ctx context.Context, action domain.AuditAction, actorEmail, target string)
	Latest(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLog, error)
}

type auditService struct {
	repo port.AuditRepository
	log  logrus.FieldLogger
}

// NewAuditService creates a new AuditService implementation.
func NewAuditService(repo port.AuditRepository, log logrus.FieldLogger) AuditService {
	return &auditService{repo: repo, log: log}
}

func (s *auditService) Record(ctx context.Context, action domain.AuditAction, actorEmail, target string) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	entry := &domain.AuditLog{Action: action}
	if actorEmail != "" {
		entry.ActorEmail = &actorEmail
	}
	if target != "" {
		entry.Target = &target
	}

	if err := s.repo.Create(writeCtx, entry); err != nil {
		logging.LogError(s.log, "audit", "Record", err, logrus.Fields{
			"action": string(action),
			"actor":  actorEmail,
		})
	}
}

func (s *auditService) Latest(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLog, error) {
	filter.Limit = ClampAuditLimit(filter.Limit)
	entries, err := s.repo.ListLatest(ctx, filter)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.AuditLog{}
	}
	return entries, nil
}

// ClampAuditLimit bounds a requested listing size to [1, 200]; zero selects the default.
func ClampAuditLimit(limit int) int {
	switch {
	case limit == 0:
		return auditDefaultLimit
	case limit < 1:
		return 1
	case limit > auditMaxLimit:
		return auditMaxLimit
	default:
		return limit
	}
}
