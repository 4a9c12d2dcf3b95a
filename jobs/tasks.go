// Package jobs runs background work over Asynq: the materialized cost
// view refresh enqueued after bulk imports, plus its nightly safety-net
// schedule.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue all tasks are submitted to.
	QueueDefault = "default"
	// TaskCostViewRefresh rebuilds the product_avg_cost materialized view.
	TaskCostViewRefresh = "costing:view_refresh"
)

// CostViewRefreshPayload records what requested the refresh.
type CostViewRefreshPayload struct {
	RequestedAt time.Time `json:"requested_at"`
	BatchID     string    `json:"batch_id,omitempty"`
}

// NewCostViewRefreshTask constructs the refresh task. BatchID is empty for
// scheduled runs.
func NewCostViewRefreshTask(batchID string) (*asynq.Task, error) {
	body, err := json.Marshal(CostViewRefreshPayload{
		RequestedAt: time.Now().UTC(),
		BatchID:     batchID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCostViewRefresh, body, asynq.Queue(QueueDefault)), nil
}
