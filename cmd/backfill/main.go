// Command backfill recomputes channel rollup rows and the computed KPI fields
// for reports ingested before rollups were stored. Manually entered KPI
// fields are left untouched.
// Usage: go run ./cmd/backfill
package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"restau/internal/config"
	"restau/internal/ingest"
	"restau/internal/logging"
	"restau/internal/port"
	"restau/internal/repository/postgres"
)

const batchSize = 100

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("backfill failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logging.New(cfg.Log)

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	total, err := backfill(context.Background(), postgres.NewReportRepo(db), log)
	if err != nil {
		return err
	}
	log.WithField("reports", total).Info("backfill complete")
	return nil
}

// backfill processes reports in batches until none is missing its rollups.
// Each report is visited at most once per run; failures are logged and skipped.
func backfill(ctx context.Context, repo port.ReportRepository, log logrus.FieldLogger) (int, error) {
	seen := make(map[uuid.UUID]bool)
	total := 0

	for {
		ids, err := repo.ListMissingRollups(ctx, batchSize+len(seen))
		if err != nil {
			return total, fmt.Errorf("listing reports: %w", err)
		}

		progressed := false
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			progressed = true

			bundle, err := repo.GetBundle(ctx, id)
			if err != nil {
				logging.LogError(log, "backfill", "GetBundle", err, logrus.Fields{"report_id": id})
				continue
			}

			ingest.ApplyRollups(bundle)
			if err := repo.ReplaceRollups(ctx, bundle); err != nil {
				logging.LogError(log, "backfill", "ReplaceRollups", err, logrus.Fields{"report_id": id})
				continue
			}
			total++
		}

		if !progressed {
			return total, nil
		}
	}
}
