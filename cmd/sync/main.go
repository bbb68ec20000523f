package main

import (
	"flag"
	"os"
	"time"

	"github.com/MySundayS/employee-lita/internal/app"
	"github.com/MySundayS/employee-lita/internal/config"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	continuous := flag.Bool("continuous", false, "keep syncing on an interval instead of a single pass")
	interval := flag.Duration("interval", 0, "override the sync interval, e.g. 5m (continuous mode)")
	flag.Parse()

	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		os.Exit(1)
	}
	if *interval > time.Duration(0) {
		cfg.SyncInterval = *interval
	}

	if err := app.RunSync(cfg, *continuous); err != nil {
		logger.Error("sync failed", zap.Error(err))
		os.Exit(1)
	}
}
