package config

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// NATS Configuration
	NatsURL        string
	Stream         string
	Subject        string
	Durable        string
	QueueGroup     string
	ResponsePrefix string
	AppendSubject  string
	MaxMsgs        int
	MaxAge         time.Duration
	AckWait        time.Duration
	MaxDeliver     int
	MaxAckPending  int
	Concurrency    int

	// Monitoring Configuration
	ServiceName           string
	MonitoringTopic       string
	BackpressureThreshold int

	// HTTP Configuration
	HTTPAddr string

	// Provider Configuration
	ProviderKind      string
	ProviderURL       string
	ProviderAPIKey    string
	ProviderTimeout   time.Duration
	FixtureConfidence float64

	// Signing Configuration (hex ed25519 seed; empty disables signing)
	SigningSeed string

	// Data Directory Configuration
	DataDir string

	// Ledger / Database Configuration
	LedgerPath string
	DBPath     string
}

func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := loadDotEnv(envFile); err != nil {
			slog.Warn("Could not load env file", "file", envFile, "error", err)
		} else {
			slog.Info("Environment loaded", "file", envFile)
		}
	}

	// Ledger and database paths default to locations under the data
	// directory; explicit LEDGER_PATH / DB_PATH still win.
	dataDir := getEnv("DATA_DIR", "data")

	return &Config{
		NatsURL:        getEnv("NATS_URL", "nats://127.0.0.1:4222"),
		Stream:         getEnv("STREAM_NAME", "LEDGER"),
		Subject:        getEnv("SUBJECT", "translation.request.default"),
		Durable:        getEnv("QUEUE_DURABLE", "ledger-wq"),
		QueueGroup:     getEnv("QUEUE_GROUP", "workers"),
		ResponsePrefix: getEnv("RESPONSE_PREFIX", "translation.reply"),
		AppendSubject:  getEnv("APPEND_SUBJECT", "ledger.appended"),
		MaxMsgs:        getEnvInt("QUEUE_MAX_MSGS", 2000),
		MaxAge:         getEnvDuration("QUEUE_MAX_AGE", "30s"),
		AckWait:        getEnvDuration("ACK_WAIT", "30s"),
		MaxDeliver:     getEnvInt("MAX_DELIVER", 5),
		MaxAckPending:  getEnvInt("MAX_ACK_PENDING", 64),
		Concurrency:    getEnvInt("WORKER_CONCURRENCY", 2),

		ServiceName:           getEnv("SERVICE_NAME", "translation-ledger"),
		MonitoringTopic:       getEnv("MONITORING_TOPIC", "monitoring.services.backpressure"),
		BackpressureThreshold: getEnvInt("BACKPRESSURE_THRESHOLD", 100),

		HTTPAddr: getEnv("HTTP_ADDR", ":8082"),

		ProviderKind:      getEnv("PROVIDER_KIND", "fixture"),
		ProviderURL:       getEnv("PROVIDER_URL", ""),
		ProviderAPIKey:    getEnv("PROVIDER_API_KEY", ""),
		ProviderTimeout:   getEnvDuration("PROVIDER_TIMEOUT", "20s"),
		FixtureConfidence: getEnvFloat("FIXTURE_CONFIDENCE", 0.99),

		SigningSeed: getEnv("SIGNING_SEED", ""),

		DataDir:    dataDir,
		LedgerPath: getEnv("LEDGER_PATH", filepath.Join(dataDir, "ledger", "translations.ndjson")),
		DBPath:     getEnv("DB_PATH", filepath.Join(dataDir, "ledger.sqlite")),
	}, nil
}

func loadDotEnv(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key, defaultVal string) time.Duration {
	val := getEnv(key, defaultVal)
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	d, _ := time.ParseDuration(defaultVal)
	return d
}
