package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chromatex/dyehouse/internal/costing"
	jobmetrics "github.com/chromatex/dyehouse/internal/jobs"
)

// NewCostViewRefreshHandler returns the handler that rebuilds the
// materialized cost view. The refresh blocks readers of the view, so it
// stays in the worker rather than the request path.
func NewCostViewRefreshHandler(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	engine := costing.NewEngine(pool)
	return func(ctx context.Context, t *asynq.Task) error {
		var payload CostViewRefreshPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tracker := metrics.Track("cost_view_refresh")
		started := time.Now()
		if err := engine.RefreshView(ctx); err != nil {
			logger.Error("cost view refresh failed",
				slog.String("batch_id", payload.BatchID),
				slog.Any("error", err))
			return tracker.End(err)
		}
		logger.Info("cost view refreshed",
			slog.String("batch_id", payload.BatchID),
			slog.Duration("took", time.Since(started)))
		return tracker.End(nil)
	}
}
