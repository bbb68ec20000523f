package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config carries every knob the sync and dashboard binaries read. Values
// come from the environment (godotenv loads .env in main); the caller owns
// the struct's lifecycle and passes it down explicitly.
type Config struct {
	DeviceIP      string        `validate:"required"`
	DevicePort    int           `validate:"min=1,max=65535"`
	DeviceTimeout time.Duration `validate:"min=1s"`
	DemoMode      bool

	StoreDriver     string `validate:"oneof=sheets postgres"`
	SpreadsheetID   string
	WorksheetName   string
	CredentialsFile string
	CredentialsJSON string // inline service-account key, wins over the file

	SyncInterval   time.Duration `validate:"min=1s"`
	SyncRetries    int           `validate:"min=1"`
	SyncRetryDelay time.Duration

	RedisAddr   string
	KafkaBroker string
	Port        string
}

func Load() (Config, error) {
	cfg := Config{
		DeviceIP:        getenv("ZKTECO_IP", "192.168.1.2"),
		DevicePort:      getenvInt("ZKTECO_PORT", 4370),
		DeviceTimeout:   getenvDuration("DEVICE_TIMEOUT_SECONDS", 30*time.Second),
		DemoMode:        os.Getenv("DEMO_MODE") == "1",
		StoreDriver:     getenv("STORE_DRIVER", "sheets"),
		SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),
		WorksheetName:   getenv("WORKSHEET_NAME", "Attendance"),
		CredentialsFile: getenv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		CredentialsJSON: os.Getenv("GOOGLE_CREDENTIALS_JSON"),
		SyncInterval:    getenvDuration("SYNC_INTERVAL_SECONDS", 5*time.Minute),
		SyncRetries:     getenvInt("SYNC_RETRIES", 3),
		SyncRetryDelay:  getenvDuration("SYNC_RETRY_DELAY_SECONDS", 5*time.Second),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		KafkaBroker:     os.Getenv("KAFKA_BROKER"),
		Port:            getenv("PORT", "3000"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getenvDuration reads whole seconds, matching the original deployment's
// SYNC_INTERVAL_SECONDS convention.
func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
