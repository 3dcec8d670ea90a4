package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s failed: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func TestLoadSandboxFallbacks(t *testing.T) {
	unsetEnv(t, "PAYMENTS_SANDBOX")
	unsetEnv(t, "VNPAY_TMN_CODE")
	unsetEnv(t, "VNPAY_HASH_SECRET")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.App.Sandbox {
		t.Fatal("expected sandbox mode without VNPAY_HASH_SECRET")
	}
	if cfg.VNPay.TmnCode != SandboxVNPayTmnCode {
		t.Fatalf("expected sandbox tmn code, got %q", cfg.VNPay.TmnCode)
	}
	if cfg.VNPay.HashSecret != SandboxVNPayHashSecret {
		t.Fatalf("expected sandbox hash secret, got %q", cfg.VNPay.HashSecret)
	}
}

func TestLoadLiveCredentialsDisableSandbox(t *testing.T) {
	unsetEnv(t, "PAYMENTS_SANDBOX")
	setEnv(t, "VNPAY_TMN_CODE", "LIVE0001")
	setEnv(t, "VNPAY_HASH_SECRET", "livesecret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.App.Sandbox {
		t.Fatal("expected sandbox mode off with live credentials")
	}
	if cfg.VNPay.TmnCode != "LIVE0001" || cfg.VNPay.HashSecret != "livesecret" {
		t.Fatalf("unexpected vnpay config: %+v", cfg.VNPay)
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	setEnv(t, "APP_SERVICE_NAME", "payments-test")
	setEnv(t, "HTTP_PORT", "8181")
	setEnv(t, "PAYMENTS_VND_MIN_AMOUNT", "20000")
	setEnv(t, "PAYMENTS_USD_MAX_CENTS", "500000")
	setEnv(t, "FX_VND_PER_USD", "24000")
	setEnv(t, "PAYMENTS_PENDING_TTL_MINUTES", "30")
	setEnv(t, "STRIPE_SIGNATURE_TOLERANCE_SECONDS", "120")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.App.ServiceName != "payments-test" {
		t.Fatalf("unexpected service name: %q", cfg.App.ServiceName)
	}
	if cfg.HTTP.Port != "8181" {
		t.Fatalf("unexpected http port: %q", cfg.HTTP.Port)
	}
	if cfg.Payments.VNDMinAmount != 20000 {
		t.Fatalf("unexpected vnd min: %d", cfg.Payments.VNDMinAmount)
	}
	if cfg.Payments.USDMaxCents != 500000 {
		t.Fatalf("unexpected usd max: %d", cfg.Payments.USDMaxCents)
	}
	if cfg.Payments.VNDPerUSD != 24000 {
		t.Fatalf("unexpected fx rate: %d", cfg.Payments.VNDPerUSD)
	}
	if cfg.Payments.PendingTTL != 30*time.Minute {
		t.Fatalf("unexpected pending ttl: %v", cfg.Payments.PendingTTL)
	}
	if cfg.Stripe.SignatureToleranceSeconds != 120 {
		t.Fatalf("unexpected tolerance: %d", cfg.Stripe.SignatureToleranceSeconds)
	}
	if cfg.Payments.VNDMaxAmount != 500_000_000 {
		t.Fatalf("unexpected vnd max default: %d", cfg.Payments.VNDMaxAmount)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected redis addr default: %q", cfg.Redis.Addr)
	}
}
