package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	VerificationHost string

	GCSBucket          string
	GCSCredentialsFile string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	LocalQueueSize     int
	WorkerPollInterval time.Duration

	EnableBatchJobRunner   bool
	EnableOutboxRelay      bool
	EnableDeliveryConsumer bool
	EnableSMTPDelivery     bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "ugnayan"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	host := strings.TrimSpace(os.Getenv("VERIFICATION_HOST"))
	if host == "" {
		host = "ugnayan.local"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		VerificationHost: host,

		GCSBucket:          strings.TrimSpace(os.Getenv("GCS_BUCKET")),
		GCSCredentialsFile: strings.TrimSpace(os.Getenv("GCS_CREDENTIALS_FILE")),

		SMTPHost:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:     envInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     strings.TrimSpace(os.Getenv("SMTP_FROM")),

		LocalQueueSize:     envInt("LOCAL_BATCH_QUEUE_SIZE", 8),
		WorkerPollInterval: envDuration("WORKER_POLL_INTERVAL", 5*time.Second),

		EnableBatchJobRunner:   envBool("ENABLE_BATCH_JOB_RUNNER", true),
		EnableOutboxRelay:      envBool("ENABLE_OUTBOX_RELAY", true),
		EnableDeliveryConsumer: envBool("ENABLE_DELIVERY_CONSUMER", true),
		EnableSMTPDelivery:     envBool("ENABLE_SMTP_DELIVERY", false),
	}, nil
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
