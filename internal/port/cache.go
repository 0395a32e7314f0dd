package port

import (
	"context"

	"restau/internal/domain"
)

// MonthlyCache stores computed monthly comparisons. Implementations must
// treat every error as a miss.
//
// Get also returns the cache version it read; Set stores under that version
// so items computed before an Invalidate never become visible after it.
// Version 0 means no version could be read and Set does nothing.
type MonthlyCache interface {
	Get(ctx context.Context, key string) (items []domain.MonthlyItem, version int64, ok bool)
	Set(ctx context.Context, key string, version int64, items []domain.MonthlyItem)
	// Invalidate drops every cached month at once.
	Invalidate(ctx context.Context) error
}
