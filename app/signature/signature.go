// Package signature implements the domestic gateway's parameter canonicalization
// and HMAC-SHA512 signing scheme.
package signature

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Field names the gateway excludes from the signed data.
const (
	SecureHashField     = "vnp_SecureHash"
	SecureHashTypeField = "vnp_SecureHashType"
)

// SortAndEncode drops signature fields, form-encodes every value (space becomes
// "+", per the gateway's convention) and returns the remaining keys sorted by
// their encoded form alongside the encoded value map.
func SortAndEncode(params map[string]string) ([]string, map[string]string) {
	encoded := make(map[string]string, len(params))
	keys := make([]string, 0, len(params))
	for key, value := range params {
		if key == SecureHashField || key == SecureHashTypeField {
			continue
		}
		encodedKey := url.QueryEscape(key)
		encoded[encodedKey] = url.QueryEscape(value)
		keys = append(keys, encodedKey)
	}
	sort.Strings(keys)
	return keys, encoded
}

// Sign computes the hex HMAC-SHA512 of the canonical query string built from
// params, keyed by secret. An empty secret still produces a deterministic
// digest; sandbox configuration is a startup concern, not a signing error.
func Sign(params map[string]string, secret string) string {
	keys, encoded := SortAndEncode(params)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(encoded[key])
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(b.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify extracts the signature field from received params, recomputes the
// digest over the remainder and compares in constant time. Anything malformed
// is simply not verified; this never panics or errors.
func Verify(received map[string]string, secret string) bool {
	if len(received) == 0 {
		return false
	}
	got, ok := received[SecureHashField]
	if !ok || got == "" {
		return false
	}
	want := Sign(received, secret)
	return hmac.Equal([]byte(strings.ToLower(got)), []byte(want))
}
