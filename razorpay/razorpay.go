package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const (
	defaultBaseURL  = "https://api.razorpay.com"
	gatewayTimeout  = 10 * time.Second
	receiptPrefix   = "receipt_"
	receiptMaxIDLen = 10
)

// ErrGatewayUnavailable marks transport-level failures talking to the
// gateway (timeout, DNS, connection refused). Gateway-side rejections are
// reported as *GatewayError instead, with the payload intact.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// GatewayError carries the gateway's own error payload unchanged so the
// caller can surface it.
type GatewayError struct {
	StatusCode int
	Body       []byte
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("razorpay: gateway returned %d: %s", e.StatusCode, e.Body)
}

// Client is a thin wrapper over the Razorpay orders API.
type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	http      *http.Client
}

func New(keyID, keySecret string) *Client {
	return &Client{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: gatewayTimeout},
	}
}

// NewWithBaseURL is used by tests to point the client at a stub server.
func NewWithBaseURL(keyID, keySecret, baseURL string) *Client {
	c := New(keyID, keySecret)
	c.baseURL = baseURL
	return c
}

// MinorUnits converts a decimal price into the gateway's integer minor
// units (1 INR = 100 paise), rounding to the nearest unit.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// ReceiptID derives the bounded receipt identifier for an event/buyer
// pair. Ids are truncated so the result never exceeds Razorpay's 40-char
// receipt limit.
func ReceiptID(eventID, buyerID string) string {
	return receiptPrefix + truncate(eventID, receiptMaxIDLen) + "_" + truncate(buyerID, receiptMaxIDLen)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

type orderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateOrder registers a payment intent with the gateway and returns its
// external order id. No retries: a duplicate create would leave a second
// pending intent on the gateway side.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error) {
	body, err := json.Marshal(orderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &GatewayError{StatusCode: resp.StatusCode, Body: respBody}
	}

	var order orderResponse
	if err := json.Unmarshal(respBody, &order); err != nil {
		return "", fmt.Errorf("razorpay: bad order response: %w", err)
	}
	if order.ID == "" {
		return "", fmt.Errorf("razorpay: order response missing id")
	}
	return order.ID, nil
}

// VerifySignature recomputes the callback HMAC and compares it to the
// claimed one in constant time. This is the only authenticity check on a
// payment callback and must pass before an order is written.
func VerifySignature(orderID, paymentID, signature string, secret []byte) bool {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifySignature checks a callback against this client's secret.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(orderID, paymentID, signature, []byte(c.keySecret))
}
