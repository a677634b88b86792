package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and
// flags. Every secret the business logic needs is injected here at process
// start; nothing reads the environment after Load returns.
type Config struct {
	RunAddress         string
	DatabaseURI        string
	JWTSecret          string
	PaystackSecretKey  string
	PaystackBaseURL    string
	SendGridAPIKey     string
	EmailFrom          string
	EmailFromName      string
	UploadDir          string
	VerifyPollInterval time.Duration
	VerifyGracePeriod  time.Duration
	WorkerPoolSize     int
	MaxOrdersBatch     int
	ShutdownTimeout    time.Duration
}

const (
	defaultRunAddress         = ":8080"
	defaultJWTSecret          = "change-me-in-production"
	defaultPaystackBaseURL    = "https://api.paystack.co"
	defaultEmailFromName      = "NGM Store"
	defaultUploadDir          = "uploads/proofs"
	defaultVerifyPollInterval = 30 * time.Second
	defaultVerifyGracePeriod  = 2 * time.Minute
	defaultWorkerPoolSize     = 4
	defaultMaxOrdersBatch     = 32
	defaultShutdownTimeout    = 10 * time.Second
)

// Load parses configuration from an optional .env file, environment
// variables and flags.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:         getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:        getString(lookup, "DATABASE_URI", ""),
		JWTSecret:          getString(lookup, "JWT_SECRET", defaultJWTSecret),
		PaystackSecretKey:  getString(lookup, "PAYSTACK_SECRET_KEY", ""),
		PaystackBaseURL:    getString(lookup, "PAYSTACK_BASE_URL", defaultPaystackBaseURL),
		SendGridAPIKey:     getString(lookup, "SENDGRID_API_KEY", ""),
		EmailFrom:          getString(lookup, "EMAIL_FROM", ""),
		EmailFromName:      getString(lookup, "EMAIL_FROM_NAME", defaultEmailFromName),
		UploadDir:          getString(lookup, "UPLOAD_DIR", defaultUploadDir),
		VerifyPollInterval: getDuration(lookup, "VERIFY_POLL_INTERVAL", defaultVerifyPollInterval),
		VerifyGracePeriod:  getDuration(lookup, "VERIFY_GRACE_PERIOD", defaultVerifyGracePeriod),
		WorkerPoolSize:     getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		MaxOrdersBatch:     getInt(lookup, "VERIFY_BATCH_SIZE", defaultMaxOrdersBatch),
		ShutdownTimeout:    getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.VerifyPollInterval.String()
		gracePeriodStr     = cfg.VerifyGracePeriod.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.PaystackBaseURL, "paystack-url", cfg.PaystackBaseURL, "Paystack API base URL")
	fs.StringVar(&cfg.UploadDir, "upload-dir", cfg.UploadDir, "Directory for uploaded proof images")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent verify workers")
	fs.StringVar(&pollIntervalStr, "verify-interval", pollIntervalStr, "Interval between gateway verify sweeps")
	fs.StringVar(&gracePeriodStr, "verify-grace", gracePeriodStr, "Minimum order age before a verify sweep picks it up")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.MaxOrdersBatch, "verify-batch", cfg.MaxOrdersBatch, "Maximum orders per verify sweep")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.VerifyPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid verify interval: %w", err)
	}

	if cfg.VerifyGracePeriod, err = time.ParseDuration(gracePeriodStr); err != nil {
		return nil, fmt.Errorf("invalid verify grace period: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = string(content)
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.MaxOrdersBatch <= 0 {
		cfg.MaxOrdersBatch = defaultMaxOrdersBatch
	}

	if cfg.VerifyPollInterval <= 0 {
		cfg.VerifyPollInterval = defaultVerifyPollInterval
	}

	if cfg.VerifyGracePeriod < 0 {
		cfg.VerifyGracePeriod = defaultVerifyGracePeriod
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.PaystackSecretKey == "" {
		return nil, fmt.Errorf("paystack secret key must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
