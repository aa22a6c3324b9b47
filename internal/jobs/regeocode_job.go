package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/petsafe/petsafe-api/internal/service"
	"go.uber.org/zap"
)

// RegeocodeJobName is the registered name of the regeocode job
const RegeocodeJobName = "regeocode"

// DefaultRegeocodeTimeout bounds one run
const DefaultRegeocodeTimeout = 10 * time.Minute

// Regeocoder resolves coordinates for rows saved without them.
type Regeocoder interface {
	RegeocodePending(ctx context.Context, batchSize int) (service.RegeocodeResult, error)
}

// RegeocodeJob retries geocoding for businesses, shelters and reports whose
// address could not be resolved when they were saved.
type RegeocodeJob struct {
	geocoder  Regeocoder
	batchSize int
	timeout   time.Duration
	logger    *zap.Logger
}

func NewRegeocodeJob(geocoder Regeocoder, batchSize int, timeout time.Duration, logger *zap.Logger) *RegeocodeJob {
	if timeout <= 0 {
		timeout = DefaultRegeocodeTimeout
	}
	return &RegeocodeJob{
		geocoder:  geocoder,
		batchSize: batchSize,
		timeout:   timeout,
		logger:    logger.With(zap.String("job_name", RegeocodeJobName)),
	}
}

// Run processes one batch of pending rows
func (j *RegeocodeJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	result, err := j.geocoder.RegeocodePending(ctx, j.batchSize)
	fields := []zap.Field{
		zap.Int("processed", result.Processed),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		if errors.Is(err, service.ErrGeocodingUnavailable) {
			j.logger.Warn("regeocode stopped, geocoder unavailable", append(fields, zap.Error(err))...)
			return
		}
		j.logger.Error("regeocode failed", append(fields, zap.Error(err))...)
		return
	}
	if result.Processed == 0 {
		j.logger.Debug("regeocode found nothing pending")
		return
	}
	j.logger.Info("regeocode completed", fields...)
}

// RegisterRegeocodeJob adds the regeocode job to the scheduler
func RegisterRegeocodeJob(scheduler *Scheduler, geocoder Regeocoder, cronExpr string, batchSize int, logger *zap.Logger) error {
	job := NewRegeocodeJob(geocoder, batchSize, DefaultRegeocodeTimeout, logger)
	return scheduler.AddJob(RegeocodeJobName, cronExpr, job.Run)
}
