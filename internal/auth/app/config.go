package app

import (
	"os"
	"strconv"
	"time"

	"github.com/phase1912/contacts-auth/pkg/jwtx"
)

type Config struct {
	Issuer      string // Required: issuer claim for tokens
	TokenSecret string // Required: HMAC secret for token signing (min 32 bytes)

	AccessTokenTTL  time.Duration // Optional: access token lifetime (default: 30m)
	RefreshTokenTTL time.Duration // Optional: refresh token lifetime (default: 7d)
	VerifyTokenTTL  time.Duration // Optional: email verification token lifetime (default: 24h)
	ResetTokenTTL   time.Duration // Optional: password reset token lifetime (default: 1h)

	RequireVerified bool   // Optional: block login until email is verified (default: false)
	LedgerBackend   string // Optional: revocation ledger backend (memory, sqlite) (default: sqlite)

	DatabaseFile string // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile   string // Optional: path to pepper file for password hashing (default: ./pepper)

	SMTPHost     string // Optional: SMTP relay host; empty means emails go to the log
	SMTPPort     int    // Optional: SMTP relay port (default: 587)
	SMTPUsername string // Optional: SMTP AUTH username
	SMTPPassword string // Optional: SMTP AUTH password
	MailFrom     string // Optional: From address for account emails
	FrontendURL  string // Optional: base URL used in emailed links (default: http://localhost:3000)

	S3Bucket       string // Optional: avatar bucket; empty disables real uploads
	S3Region       string // Optional: bucket region
	S3BaseEndpoint string // Optional: S3-compatible endpoint (e.g. MinIO)
	S3AccessKey    string // Optional: static credentials for the bucket
	S3SecretKey    string
	MediaPublicURL string // Optional: public base URL for uploaded avatars (e.g. CDN)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:      getEnvOrDefault("AUTH_ISSUER", "contacts-auth"),
		TokenSecret: os.Getenv("AUTH_TOKEN_SECRET"),

		AccessTokenTTL:  getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL: getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		VerifyTokenTTL:  getEnvDurationOrDefault("AUTH_VERIFY_TTL", jwtx.DefaultVerifyTokenTTL),
		ResetTokenTTL:   getEnvDurationOrDefault("AUTH_RESET_TTL", jwtx.DefaultResetTokenTTL),

		RequireVerified: getEnvBoolOrDefault("AUTH_REQUIRE_VERIFIED", false),
		LedgerBackend:   getEnvOrDefault("AUTH_LEDGER_BACKEND", "sqlite"),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnvOrDefault("MAIL_FROM", "no-reply@localhost"),
		FrontendURL:  getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),

		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3Region:       getEnvOrDefault("S3_REGION", "us-east-1"),
		S3BaseEndpoint: os.Getenv("S3_BASE_ENDPOINT"),
		S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
		MediaPublicURL: os.Getenv("MEDIA_PUBLIC_URL"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
