package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestConfirmMembershipPayment(t *testing.T) {
	var received MembershipConfirmation
	var gotAPIKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/memberships/payment-confirmations" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAPIKey = r.Header.Get("X-Internal-API-Key")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(server.URL, "internal-key", 5*time.Second)
	err := client.ConfirmMembershipPayment(context.Background(), &MembershipConfirmation{
		PlanID:        "pro-monthly",
		CustomerID:    "user-1",
		Method:        "vnpay",
		Reference:     "20250101120000123456",
		TransactionID: "14435693",
		Amount:        1_000_000,
		Currency:      "VND",
		Success:       true,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotAPIKey != "internal-key" {
		t.Fatalf("expected internal api key header, got %q", gotAPIKey)
	}
	if received.Reference != "20250101120000123456" || !received.Success {
		t.Fatalf("unexpected payload: %+v", received)
	}
}

func TestConfirmMembershipPaymentBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)
	err := client.ConfirmMembershipPayment(context.Background(), &MembershipConfirmation{Reference: "ref"})
	if err == nil {
		t.Fatal("expected error on backend failure")
	}
}
