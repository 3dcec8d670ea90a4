package signature

import "testing"

func sampleParams() map[string]string {
	return map[string]string{
		"vnp_Version":   "2.1.0",
		"vnp_Command":   "pay",
		"vnp_TmnCode":   "DEMOV210",
		"vnp_Amount":    "1000000",
		"vnp_OrderInfo": "Thanh toan goi thanh vien",
		"vnp_TxnRef":    "20250101120000123456",
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	params := sampleParams()
	secret := "testsecret"

	params[SecureHashField] = Sign(params, secret)
	if !Verify(params, secret) {
		t.Fatal("expected signed params to verify")
	}
}

func TestVerifyFailsOnMutatedValue(t *testing.T) {
	params := sampleParams()
	secret := "testsecret"
	params[SecureHashField] = Sign(params, secret)

	params["vnp_Amount"] = "1000001"
	if Verify(params, secret) {
		t.Fatal("expected verification to fail after value mutation")
	}
}

func TestVerifyFailsOnWrongSecret(t *testing.T) {
	params := sampleParams()
	params[SecureHashField] = Sign(params, "secret-a")
	if Verify(params, "secret-b") {
		t.Fatal("expected verification to fail with wrong secret")
	}
}

func TestVerifyFailsOnTamperedHash(t *testing.T) {
	params := sampleParams()
	secret := "testsecret"
	hash := Sign(params, secret)

	flipped := []byte(hash)
	if flipped[0] == 'a' {
		flipped[0] = 'b'
	} else {
		flipped[0] = 'a'
	}
	params[SecureHashField] = string(flipped)
	if Verify(params, secret) {
		t.Fatal("expected verification to fail with tampered hash")
	}
}

func TestVerifyToleratesMalformedInput(t *testing.T) {
	if Verify(nil, "secret") {
		t.Fatal("expected nil params to not verify")
	}
	if Verify(map[string]string{}, "secret") {
		t.Fatal("expected empty params to not verify")
	}
	if Verify(map[string]string{"vnp_Amount": "100"}, "secret") {
		t.Fatal("expected params without hash to not verify")
	}
}

func TestSignExcludesSignatureFields(t *testing.T) {
	params := sampleParams()
	secret := "testsecret"
	base := Sign(params, secret)

	params[SecureHashField] = "garbage"
	params[SecureHashTypeField] = "HmacSHA512"
	if Sign(params, secret) != base {
		t.Fatal("expected signature fields to be excluded from signing")
	}
}

func TestSignWithEmptySecretIsDeterministic(t *testing.T) {
	params := sampleParams()
	if Sign(params, "") != Sign(params, "") {
		t.Fatal("expected deterministic digest with empty secret")
	}
}

func TestSortAndEncodeUsesFormEncoding(t *testing.T) {
	keys, encoded := SortAndEncode(map[string]string{
		"vnp_OrderInfo": "goi pro 1 thang",
	})
	if len(keys) != 1 {
		t.Fatalf("unexpected keys: %v", keys)
	}
	if encoded[keys[0]] != "goi+pro+1+thang" {
		t.Fatalf("expected + encoded spaces, got %q", encoded[keys[0]])
	}
}
