package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func signFor(orderID, paymentID string, secret []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		price float64
		want  int64
	}{
		{499.00, 49900},
		{0, 0},
		{99.99, 9999},
		{10.50, 1050},
		{0.01, 1},
	}
	for _, c := range cases {
		if got := MinorUnits(c.price); got != c.want {
			t.Errorf("MinorUnits(%v) = %d, want %d", c.price, got, c.want)
		}
	}
}

func TestReceiptIDLength(t *testing.T) {
	long := strings.Repeat("x", 120)
	cases := [][2]string{
		{"evt123", "usr456"},
		{long, long},
		{"", ""},
		{long, "u"},
	}
	for _, c := range cases {
		r := ReceiptID(c[0], c[1])
		if len(r) > 40 {
			t.Errorf("ReceiptID(%q, %q) length %d exceeds 40", c[0], c[1], len(r))
		}
		if !strings.HasPrefix(r, "receipt_") {
			t.Errorf("ReceiptID missing prefix: %q", r)
		}
	}
}

func TestReceiptIDTruncation(t *testing.T) {
	got := ReceiptID("event-id-that-is-long", "buyer-id-that-is-long")
	want := "receipt_event-id-t_buyer-id-t"
	if got != want {
		t.Errorf("ReceiptID = %q, want %q", got, want)
	}
}

func TestVerifySignature(t *testing.T) {
	secret := []byte("test_secret")
	orderID := "order_ABC123"
	paymentID := "pay_XYZ789"
	sig := signFor(orderID, paymentID, secret)

	if !VerifySignature(orderID, paymentID, sig, secret) {
		t.Fatal("expected valid signature to verify")
	}

	// any single-character mutation must fail
	for i := 0; i < len(sig); i++ {
		mutated := []byte(sig)
		if mutated[i] == '0' {
			mutated[i] = '1'
		} else {
			mutated[i] = '0'
		}
		if VerifySignature(orderID, paymentID, string(mutated), secret) {
			t.Fatalf("mutated signature at %d verified", i)
		}
	}

	if VerifySignature(orderID, paymentID, sig, []byte("other_secret")) {
		t.Fatal("signature verified under wrong secret")
	}
	if VerifySignature("order_other", paymentID, sig, secret) {
		t.Fatal("signature verified for wrong order id")
	}
	if VerifySignature(orderID, paymentID, strings.ToUpper(sig), secret) {
		t.Fatal("uppercased hex signature verified; comparison must be case-sensitive")
	}
}

func TestCreateOrder(t *testing.T) {
	var gotReq orderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key_id" || pass != "key_secret" {
			t.Errorf("missing or wrong basic auth: %s/%s", user, pass)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "order_test1", "status": "created"})
	}))
	defer srv.Close()

	c := NewWithBaseURL("key_id", "key_secret", srv.URL)
	id, err := c.CreateOrder(context.Background(), 49900, "INR", "receipt_abc_def", map[string]string{"eventId": "e1"})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if id != "order_test1" {
		t.Errorf("order id = %q, want order_test1", id)
	}
	if gotReq.Amount != 49900 || gotReq.Currency != "INR" || gotReq.Receipt != "receipt_abc_def" {
		t.Errorf("unexpected request payload: %+v", gotReq)
	}
}

func TestCreateOrderGatewayError(t *testing.T) {
	payload := `{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := NewWithBaseURL("k", "s", srv.URL)
	_, err := c.CreateOrder(context.Background(), 1, "INR", "r", nil)
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *GatewayError, got %v", err)
	}
	if gwErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", gwErr.StatusCode)
	}
	if string(gwErr.Body) != payload {
		t.Errorf("gateway payload not preserved: %s", gwErr.Body)
	}
}

func TestCreateOrderUnreachable(t *testing.T) {
	// server closed before use: connection refused
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewWithBaseURL("k", "s", srv.URL)
	_, err := c.CreateOrder(context.Background(), 100, "INR", "r", nil)
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
}
