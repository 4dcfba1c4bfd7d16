package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. Everything comes from the
// environment so main stays lean and deployments stay twelve-factor.
type Config struct {
	Addr          string
	PostgresDSN   string
	JWTSigningKey string

	Redis RedisConfig
	Kafka KafkaConfig
	KYC   KYCConfig
	Face  FaceConfig
	SMS   SMSConfig

	// AnchorURL points at the chain-anchor service; empty disables anchoring.
	AnchorURL string
}

// RedisConfig holds connection settings for the OTP code store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the scan-event fan-out settings. Empty brokers disable
// the publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KYCConfig holds domain constants for case lifecycle.
type KYCConfig struct {
	// ValidityPeriod is the single source of truth for case expiry. The
	// expiry date is always derived server-side as submittedAt + this.
	ValidityPeriod time.Duration
	// OTPTTL bounds how long an issued verification code stays valid.
	OTPTTL time.Duration
}

// FaceConfig holds the face-match engine settings.
type FaceConfig struct {
	MatcherURL string
	// Threshold is the minimum match score (0-100) for a pass decision.
	Threshold float64
}

// SMSConfig holds the outbound messaging provider settings.
type SMSConfig struct {
	ProviderURL string
	From        string
}

// DefaultValidityPeriod is five years; the canonical period for a completed
// KYC before re-verification is required.
const DefaultValidityPeriod = 5 * 365 * 24 * time.Hour

// FromEnv builds a Config from environment variables with development
// defaults for everything except credentials.
func FromEnv() Config {
	cfg := Config{
		Addr:          envOr("KYCGATE_ADDR", ":8080"),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Topic: envOr("KAFKA_SCAN_TOPIC", "kyc.scan-events"),
		},
		KYC: KYCConfig{
			ValidityPeriod: envDurationOr("KYC_VALIDITY_PERIOD", DefaultValidityPeriod),
			OTPTTL:         envDurationOr("KYC_OTP_TTL", 5*time.Minute),
		},
		Face: FaceConfig{
			MatcherURL: os.Getenv("FACE_MATCHER_URL"),
			Threshold:  envFloatOr("FACE_MATCH_THRESHOLD", 75),
		},
		SMS: SMSConfig{
			ProviderURL: os.Getenv("SMS_PROVIDER_URL"),
			From:        os.Getenv("SMS_FROM_NUMBER"),
		},
		AnchorURL: os.Getenv("ANCHOR_URL"),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
