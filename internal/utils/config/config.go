package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pixelslots/crypto-backend/internal/types/environments"
)

type AppConfig struct {
	Environment environments.Environment
	ApiServer   ApiServerConfig
	Postgres    DBConnection
	Cryptopay   CryptopayConfig
	Webhook     WebhookConfig
	Monitor     MonitorConfig
}

type ApiServerConfig struct {
	Port           string
	AllowedOrigins string
	MetricsToken   string
}

type DBConnection struct {
	Host string
	Port string
	User string
	Name string
	Pass string

	SSLMode string
}

// CryptopayConfig holds credentials and limits for the external payment
// provider. All secrets come from the environment, never from source.
type CryptopayConfig struct {
	APIURL     string
	MerchantID string
	APIKey     string
	WebhookKey string
	AllowedIPs []string

	RequestTimeout     time.Duration
	MaxPendingDeposits int
	DepositLifetime    time.Duration
}

type WebhookConfig struct {
	RetryAttempts     int
	RetryDelay        time.Duration
	MaxProcessingTime time.Duration
}

type MonitorConfig struct {
	CheckInterval        string
	PendingSLA           time.Duration
	MaxRetries           int
	RetryDelay           time.Duration
	FailureRateThreshold float64
}

func New() *AppConfig {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// this will not override env variables if they already exist
	godotenv.Load(".env." + env)

	return &AppConfig{
		Environment: environments.Environment(env),
		ApiServer: ApiServerConfig{
			Port:           envVarOrDefault("API_PORT", "8080"),
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
			MetricsToken:   os.Getenv("METRICS_AUTH_TOKEN"),
		},
		Postgres: DBConnection{
			Host:    os.Getenv("DB_HOST"),
			Port:    os.Getenv("DB_PORT"),
			User:    os.Getenv("DB_USER"),
			Name:    os.Getenv("DB_NAME"),
			Pass:    os.Getenv("DB_PASS"),
			SSLMode: os.Getenv("DB_SSL_MODE"),
		},
		Cryptopay: CryptopayConfig{
			APIURL:             envVarOrDefault("CRYPTOPAY_API_URL", "https://api.cryptomus.com/v1"),
			MerchantID:         os.Getenv("CRYPTOPAY_MERCHANT_ID"),
			APIKey:             os.Getenv("CRYPTOPAY_API_KEY"),
			WebhookKey:         os.Getenv("CRYPTOPAY_WEBHOOK_KEY"),
			AllowedIPs:         envVarAsList("CRYPTOPAY_ALLOWED_IPS"),
			RequestTimeout:     envVarAsDuration("CRYPTOPAY_REQUEST_TIMEOUT", 10*time.Second),
			MaxPendingDeposits: envVarAtoi("MAX_PENDING_DEPOSITS", 3),
			DepositLifetime:    envVarAsDuration("DEPOSIT_LIFETIME", 24*time.Hour),
		},
		Webhook: WebhookConfig{
			RetryAttempts:     envVarAtoi("WEBHOOK_RETRY_ATTEMPTS", 3),
			RetryDelay:        envVarAsDuration("WEBHOOK_RETRY_DELAY", 5*time.Second),
			MaxProcessingTime: envVarAsDuration("WEBHOOK_MAX_PROCESSING_TIME", 30*time.Second),
		},
		Monitor: MonitorConfig{
			CheckInterval:        envVarOrDefault("MONITOR_CHECK_INTERVAL", "@every 5m"),
			PendingSLA:           envVarAsDuration("MONITOR_PENDING_SLA", 2*time.Hour),
			MaxRetries:           envVarAtoi("MONITOR_MAX_RETRIES", 3),
			RetryDelay:           envVarAsDuration("MONITOR_RETRY_DELAY", 30*time.Second),
			FailureRateThreshold: envVarAsFloat("MONITOR_FAILURE_RATE_THRESHOLD", 0.1),
		},
	}
}

func envVarOrDefault(envName, fallback string) string {
	value := os.Getenv(envName)
	if value == "" {
		return fallback
	}
	return value
}

func envVarAtoi(envName string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(envName))
	if err != nil {
		return fallback
	}
	return value
}

func envVarAsFloat(envName string, fallback float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(envName), 64)
	if err != nil {
		return fallback
	}
	return value
}

func envVarAsDuration(envName string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(envName))
	if err != nil {
		return fallback
	}
	return value
}

func envVarAsList(envName string) []string {
	raw := os.Getenv(envName)
	if raw == "" {
		return nil
	}

	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
