package app

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/MySundayS/employee-lita/internal/config"
	"github.com/MySundayS/employee-lita/internal/shared/connection"
	"github.com/MySundayS/employee-lita/internal/syncer"

	"go.uber.org/zap"
)

// RunSync is the sync binary's entry point: one pass by default, an
// interval loop with continuous=true. Stops on SIGINT/SIGTERM.
func RunSync(cfg config.Config, continuous bool) error {
	logger := zap.L().Named("app.sync")

	st, err := buildStore(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := st.EnsureSchema(ctx); err != nil {
		return err
	}

	publisher := syncer.NewNoopEventPublisher()
	if cfg.KafkaBroker != "" {
		writer, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, 5)
		if err != nil {
			return err
		}
		defer writer.Close()
		publisher = syncer.NewKafkaEventPublisher(writer)
	}

	service := syncer.NewService(
		buildDeviceClient(cfg),
		st,
		publisher,
		syncer.Options{
			DeviceIP:    cfg.DeviceIP,
			Retries:     cfg.SyncRetries,
			RetryDelay:  cfg.SyncRetryDelay,
			CallTimeout: cfg.DeviceTimeout,
		},
	)

	if !continuous {
		result, err := service.Sync(ctx, nil)
		if err != nil {
			return err
		}
		logger.Info("sync completed",
			zap.Int("written", result.Written),
			zap.Int("fetched", result.Fetched))
		return nil
	}

	logger.Info("starting continuous sync", zap.Duration("interval", cfg.SyncInterval))
	return syncer.NewRunner(service, cfg.SyncInterval).Run(ctx)
}
