package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bloodlink/bloodlink/internal/funding"
)

// FundingSweepJob expires checkout sessions that were opened but never paid.
type FundingSweepJob struct {
	service *funding.Service
	logger  *slog.Logger
}

// NewFundingSweepJob constructs the sweep job.
func NewFundingSweepJob(service *funding.Service, logger *slog.Logger) *FundingSweepJob {
	return &FundingSweepJob{service: service, logger: logger}
}

// Handle processes TaskTypeFundingSweep tasks.
func (j *FundingSweepJob) Handle(ctx context.Context, _ *asynq.Task) error {
	swept, err := j.service.ExpireStale(ctx, time.Now())
	if err != nil {
		j.logger.Error("funding sweep", slog.Any("error", err))
		return err
	}
	if swept > 0 {
		j.logger.Info("funding sweep", slog.Int64("expired", swept))
	}
	return nil
}
