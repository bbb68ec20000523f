package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/MySundayS/employee-lita/internal/device"
	"github.com/MySundayS/employee-lita/internal/shared/apperror"

	"go.uber.org/zap"
)

// Runner drives continuous mode: sync, sleep, repeat. The only state
// carried between cycles is the last successful sync timestamp, used as
// the next cycle's since filter.
type Runner struct {
	service    Service
	interval   time.Duration
	errorDelay time.Duration // shorter sleep after a failed cycle
	logger     *zap.Logger
}

func NewRunner(service Service, interval time.Duration, logger ...*zap.Logger) *Runner {
	l := zap.L().Named("syncer.runner")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("syncer.runner")
	}
	errorDelay := time.Minute
	if interval < errorDelay {
		errorDelay = interval
	}
	return &Runner{
		service:    service,
		interval:   interval,
		errorDelay: errorDelay,
		logger:     l,
	}
}

// Run loops until ctx is cancelled or the store becomes unusable. Device
// connectivity failures are logged and the loop proceeds to its next
// cycle; store errors are treated as unrecoverable and returned.
func (r *Runner) Run(ctx context.Context) error {
	var since *time.Time

	for {
		result, err := r.service.Sync(ctx, since)
		switch {
		case err == nil:
			r.logger.Info("sync cycle done",
				zap.Int("written", result.Written),
				zap.Int("fetched", result.Fetched))
			if !result.LastTimestamp.IsZero() {
				ts := result.LastTimestamp
				since = &ts
			}

		case errors.Is(err, context.Canceled):
			return nil

		case isDeviceError(err):
			r.logger.Error("sync cycle failed, will retry next cycle", zap.Error(err))

		default:
			// Store write/auth failures don't heal by waiting; surface
			// them so the operator notices.
			r.logger.Error("unrecoverable sync error", zap.Error(err))
			return err
		}

		delay := r.interval
		if err != nil {
			delay = r.errorDelay
		}
		select {
		case <-ctx.Done():
			r.logger.Info("continuous sync stopped")
			return nil
		case <-time.After(delay):
		}
	}
}

func isDeviceError(err error) bool {
	if errors.Is(err, device.ErrConnection) {
		return true
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Code == apperror.CodeDeviceUnreachable
	}
	return false
}
