package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Sandbox defaults keep the service runnable without real gateway credentials.
// They are demo-shaped values, never valid for live traffic.
const (
	SandboxVNPayTmnCode    = "DEMOV210"
	SandboxVNPayHashSecret = "DEMOSECRETKEY"
	SandboxVNPayPayURL     = "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"
	SandboxVNPayQueryURL   = "https://sandbox.vnpayment.vn/merchant_webapi/api/transaction"
)

type Config struct {
	App      AppConfig
	HTTP     ServerConfig
	Redis    RedisConfig
	Log      LogConfig
	VNPay    VNPayConfig
	Stripe   StripeConfig
	Backend  BackendConfig
	Payments PaymentsConfig
	Jobs     JobsConfig
}

type AppConfig struct {
	ServiceName string
	APIKey      string
	Sandbox     bool
}

type ServerConfig struct {
	Host string
	Port string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LogConfig struct {
	Level string
}

type VNPayConfig struct {
	TmnCode     string
	HashSecret  string
	PayURL      string
	QueryURL    string
	ReturnURL   string
	Locale      string
	HTTPTimeout time.Duration
}

type StripeConfig struct {
	SecretKey                 string
	WebhookSecret             string
	SuccessURL                string
	CancelURL                 string
	SignatureToleranceSeconds int64
	HTTPTimeout               time.Duration
}

type BackendConfig struct {
	BaseURL     string
	APIKey      string
	HTTPTimeout time.Duration
}

type PaymentsConfig struct {
	// Amount bounds per gateway, in each gateway's minor-unit convention.
	VNDMinAmount int64
	VNDMaxAmount int64
	USDMinCents  int64
	USDMaxCents  int64

	// Placeholder fixed rate; a real deployment needs a live FX feed.
	VNDPerUSD int64

	PendingTTL time.Duration
}

type JobsConfig struct {
	ReconcileInterval   time.Duration
	ReconcileStaleAfter time.Duration
	JobBatchSize        int32
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	sandbox := getBoolEnv("PAYMENTS_SANDBOX", os.Getenv("VNPAY_HASH_SECRET") == "")

	cfg := &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "realty-payments"),
			APIKey:      getEnv("APP_API_KEY", ""),
			Sandbox:     sandbox,
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		VNPay: VNPayConfig{
			TmnCode:     getEnv("VNPAY_TMN_CODE", ""),
			HashSecret:  getEnv("VNPAY_HASH_SECRET", ""),
			PayURL:      getEnv("VNPAY_PAY_URL", SandboxVNPayPayURL),
			QueryURL:    getEnv("VNPAY_QUERY_URL", SandboxVNPayQueryURL),
			ReturnURL:   getEnv("VNPAY_RETURN_URL", "http://localhost:3000/payment/vnpay-return"),
			Locale:      getEnv("VNPAY_LOCALE", "vn"),
			HTTPTimeout: getSecondsEnv("VNPAY_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
		Stripe: StripeConfig{
			SecretKey:                 getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:             getEnv("STRIPE_WEBHOOK_SECRET", ""),
			SuccessURL:                getEnv("STRIPE_SUCCESS_URL", "http://localhost:3000/payment/success"),
			CancelURL:                 getEnv("STRIPE_CANCEL_URL", "http://localhost:3000/payment/cancel"),
			SignatureToleranceSeconds: int64(getIntEnv("STRIPE_SIGNATURE_TOLERANCE_SECONDS", 300)),
			HTTPTimeout:               getSecondsEnv("STRIPE_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
		Backend: BackendConfig{
			BaseURL:     getEnv("BACKEND_BASE_URL", "http://localhost:8000"),
			APIKey:      getEnv("BACKEND_API_KEY", ""),
			HTTPTimeout: getSecondsEnv("BACKEND_HTTP_TIMEOUT_SECONDS", 15*time.Second),
		},
		Payments: PaymentsConfig{
			VNDMinAmount: getInt64Env("PAYMENTS_VND_MIN_AMOUNT", 10_000),
			VNDMaxAmount: getInt64Env("PAYMENTS_VND_MAX_AMOUNT", 500_000_000),
			USDMinCents:  getInt64Env("PAYMENTS_USD_MIN_CENTS", 50),
			USDMaxCents:  getInt64Env("PAYMENTS_USD_MAX_CENTS", 999_999),
			VNDPerUSD:    getInt64Env("FX_VND_PER_USD", 25_000),
			PendingTTL:   getMinutesEnv("PAYMENTS_PENDING_TTL_MINUTES", 60*time.Minute),
		},
		Jobs: JobsConfig{
			ReconcileInterval:   getMinutesEnv("PAYMENTS_RECONCILE_INTERVAL_MINUTES", 2*time.Minute),
			ReconcileStaleAfter: getMinutesEnv("PAYMENTS_RECONCILE_STALE_AFTER_MINUTES", 15*time.Minute),
			JobBatchSize:        int32(getIntEnv("PAYMENTS_JOB_BATCH_SIZE", 100)),
		},
	}

	if cfg.App.Sandbox {
		if cfg.VNPay.TmnCode == "" {
			cfg.VNPay.TmnCode = SandboxVNPayTmnCode
		}
		if cfg.VNPay.HashSecret == "" {
			cfg.VNPay.HashSecret = SandboxVNPayHashSecret
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
