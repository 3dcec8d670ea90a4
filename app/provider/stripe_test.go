package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeVerifier struct {
	err error
}

func (v *fakeVerifier) Verify(_ []byte, _ string) error {
	return v.err
}

func signedHeader(payload []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestHMACWebhookVerifier(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	secret := "whsec_test"
	ts := time.Now().Unix()
	header := signedHeader(payload, secret, ts)

	verifier := NewHMACWebhookVerifier(secret, 300)
	if err := verifier.Verify(payload, header); err != nil {
		t.Fatalf("expected signature to validate, got %v", err)
	}
	if err := NewHMACWebhookVerifier("wrong-secret", 300).Verify(payload, header); err == nil {
		t.Fatal("expected wrong secret to fail")
	}
	if err := verifier.Verify([]byte(`{"id":"evt_2"}`), header); err == nil {
		t.Fatal("expected mutated payload to fail")
	}
	if err := verifier.Verify(payload, ""); err == nil {
		t.Fatal("expected missing header to fail")
	}
	if err := verifier.Verify(payload, "garbage"); err == nil {
		t.Fatal("expected malformed header to fail")
	}

	stale := signedHeader(payload, secret, time.Now().Add(-time.Hour).Unix())
	if err := verifier.Verify(payload, stale); err == nil {
		t.Fatal("expected stale timestamp to fail")
	}
}

func TestVerifyAndParseEventFailsClosed(t *testing.T) {
	p := NewStripeProvider(StripeConfig{SecretKey: "sk_test"}, &fakeVerifier{err: errors.New("bad signature")})

	if _, err := p.VerifyAndParseEvent([]byte(`{"id":"evt_1","type":"invoice.paid"}`), "header"); err == nil {
		t.Fatal("expected verification failure to reject event")
	}
}

func TestVerifyAndParseEvent(t *testing.T) {
	p := NewStripeProvider(StripeConfig{SecretKey: "sk_test"}, &fakeVerifier{})

	event, err := p.VerifyAndParseEvent([]byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_test_1"}}}`), "header")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if event.ID != "evt_1" || event.Type != EventCheckoutCompleted {
		t.Fatalf("unexpected event: %+v", event)
	}
	if len(event.Object) == 0 {
		t.Fatal("expected event object payload")
	}

	if _, err := p.VerifyAndParseEvent([]byte("not json"), "header"); err == nil {
		t.Fatal("expected unparseable payload to error")
	}
}

func TestConvertVNDToUSDCents(t *testing.T) {
	p := NewStripeProvider(StripeConfig{SecretKey: "sk_test", VNDPerUSD: 25_000}, &fakeVerifier{})

	if got := p.ConvertVNDToUSDCents(25_000); got != 100 {
		t.Fatalf("expected 100 cents, got %d", got)
	}
	if got := p.ConvertVNDToUSDCents(1_000_000); got != 4000 {
		t.Fatalf("expected 4000 cents, got %d", got)
	}
	// 12,600 / 25,000 = 0.504 USD, rounds to 50 cents.
	if got := p.ConvertVNDToUSDCents(12_600); got != 50 {
		t.Fatalf("expected 50 cents, got %d", got)
	}
}
