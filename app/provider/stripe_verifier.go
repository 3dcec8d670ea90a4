package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// WebhookVerifier is the boundary for international-gateway signature checks,
// so adapter logic stays testable against a fake without real credentials.
type WebhookVerifier interface {
	Verify(payload []byte, signatureHeader string) error
}

// HMACWebhookVerifier implements the provider's signed-event scheme: the
// header carries "t=<unix>,v1=<hex>" and the signature is HMAC-SHA256 over
// "<t>.<payload>".
type HMACWebhookVerifier struct {
	secret    string
	tolerance time.Duration
	now       func() time.Time
}

func NewHMACWebhookVerifier(secret string, toleranceSeconds int64) *HMACWebhookVerifier {
	if toleranceSeconds <= 0 {
		toleranceSeconds = 300
	}
	return &HMACWebhookVerifier{
		secret:    secret,
		tolerance: time.Duration(toleranceSeconds) * time.Second,
		now:       time.Now,
	}
}

func (v *HMACWebhookVerifier) Verify(payload []byte, signatureHeader string) error {
	signatureHeader = strings.TrimSpace(signatureHeader)
	if signatureHeader == "" {
		return errors.New("missing signature header")
	}
	if strings.TrimSpace(v.secret) == "" {
		return errors.New("webhook secret is not configured")
	}

	var ts string
	candidates := make([]string, 0, 1)
	for _, part := range strings.Split(signatureHeader, ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "t=") {
			ts = strings.TrimPrefix(part, "t=")
		}
		if strings.HasPrefix(part, "v1=") {
			candidates = append(candidates, strings.TrimPrefix(part, "v1="))
		}
	}
	if ts == "" || len(candidates) == 0 {
		return errors.New("malformed signature header")
	}

	tsUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return errors.New("malformed signature timestamp")
	}
	now := v.now().Unix()
	if now-tsUnix > int64(v.tolerance.Seconds()) || tsUnix-now > int64(v.tolerance.Seconds()) {
		return errors.New("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write([]byte(ts + "." + string(payload)))
	expected := mac.Sum(nil)

	for _, candidate := range candidates {
		decoded, err := hex.DecodeString(candidate)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}

	return errors.New("signature mismatch")
}
