package app

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/MySundayS/employee-lita/internal/config"
	"github.com/MySundayS/employee-lita/internal/device"
	"github.com/MySundayS/employee-lita/internal/device/zk"
	"github.com/MySundayS/employee-lita/internal/shared/connection"
	"github.com/MySundayS/employee-lita/internal/store"
	"github.com/MySundayS/employee-lita/internal/store/postgres"
	"github.com/MySundayS/employee-lita/internal/store/sheets"
	"github.com/MySundayS/employee-lita/internal/syncer"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func BuildApp(router *gin.Engine, cfg config.Config) error {
	// 1. Setup Infrastructure
	st, err := buildStore(cfg)
	if err != nil {
		return err
	}
	if err := st.EnsureSchema(context.Background()); err != nil {
		return err
	}
	log.Println("✅ Store connection established")

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
		if err != nil {
			return err
		}
		log.Println("✅ Redis connection established")
	}

	publisher := syncer.NewNoopEventPublisher()
	if cfg.KafkaBroker != "" {
		writer, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, 5)
		if err != nil {
			return err
		}
		publisher = syncer.NewKafkaEventPublisher(writer)
	}

	// Register Modules & Routes
	registerModules(router, cfg, st, rdb, publisher)
	return nil
}

func buildStore(cfg config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "postgres":
		gormDB, err := connection.ConnectGORMWithRetry(
			os.Getenv("DB_HOST"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_SSLMODE"),
			5,
		)
		if err != nil {
			return nil, err
		}
		return postgres.New(gormDB), nil
	case "sheets":
		if cfg.SpreadsheetID == "" {
			return nil, fmt.Errorf("SPREADSHEET_ID is required for the sheets store")
		}
		if cfg.CredentialsJSON != "" {
			return sheets.NewWithCredentialsJSON(context.Background(), []byte(cfg.CredentialsJSON), cfg.SpreadsheetID, cfg.WorksheetName)
		}
		return sheets.New(context.Background(), cfg.CredentialsFile, cfg.SpreadsheetID, cfg.WorksheetName)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func buildDeviceClient(cfg config.Config) device.Client {
	if cfg.DemoMode {
		log.Println("🌐 Demo mode: serving generated punches")
		return device.NewDemoClient()
	}
	return zk.NewClient(cfg.DeviceIP, cfg.DevicePort, cfg.DeviceTimeout)
}
