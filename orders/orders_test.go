package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"evently/globals"
	"evently/models"
	"evently/mq"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestChargeAmount(t *testing.T) {
	if got := chargeAmount(499.00, false); got != 499.00 {
		t.Errorf("paid event: got %v", got)
	}
	if got := chargeAmount(499.00, true); got != 0 {
		t.Errorf("free event must charge zero, got %v", got)
	}
	if got := chargeAmount(0, false); got != 0 {
		t.Errorf("zero-price event: got %v", got)
	}
}

func TestNewOrder(t *testing.T) {
	o := newOrder("evt1", "usr1", 499.00, "order_rzp1", "pay_rzp1")
	if o.OrderID == "" {
		t.Error("order id not generated")
	}
	if o.EventID != "evt1" || o.BuyerID != "usr1" {
		t.Errorf("references not set: %+v", o)
	}
	if o.TotalAmount != 499.00 || o.Currency != Currency {
		t.Errorf("amount/currency wrong: %+v", o)
	}
	if o.RazorpayOrderID != "order_rzp1" || o.RazorpayPaymentID != "pay_rzp1" {
		t.Errorf("gateway references not set: %+v", o)
	}
	if o.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
	if o.OrderID == newOrder("evt1", "usr1", 499.00, "order_rzp2", "pay_rzp2").OrderID {
		t.Error("order ids must be unique")
	}
}

func TestTicketPayload(t *testing.T) {
	secret := []byte("ticket-secret")
	p1 := ticketPayload("evt1", "ord1", secret)
	p2 := ticketPayload("evt1", "ord1", secret)
	if p1 != p2 {
		t.Error("payload must be deterministic")
	}
	if !strings.HasPrefix(p1, "evt1|ord1|") {
		t.Errorf("unexpected payload shape: %q", p1)
	}
	if p1 == ticketPayload("evt1", "ord2", secret) {
		t.Error("different orders must sign differently")
	}
	if p1 == ticketPayload("evt1", "ord1", []byte("other")) {
		t.Error("different secrets must sign differently")
	}
}

func duplicateKeyErr() error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
}

func TestIsDuplicateKeyError(t *testing.T) {
	if !isDuplicateKeyError(duplicateKeyErr()) {
		t.Error("code 11000 not detected as duplicate key")
	}
	other := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 121}}}
	if isDuplicateKeyError(other) {
		t.Error("non-11000 write error flagged as duplicate")
	}
	if isDuplicateKeyError(nil) {
		t.Error("nil flagged as duplicate")
	}
	if isDuplicateKeyError(errors.New("boom")) {
		t.Error("plain error flagged as duplicate")
	}
}

// --- stubs ---

type stubGateway struct {
	verifyOK bool
}

func (g *stubGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error) {
	return "order_stub", nil
}

func (g *stubGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return g.verifyOK
}

type stubOrderStore struct {
	insertErr error
	inserted  []models.Order
	existing  models.Order
}

func (s *stubOrderStore) Insert(ctx context.Context, order models.Order) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, order)
	return nil
}

func (s *stubOrderStore) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (models.Order, error) {
	return s.existing, nil
}

type stubEventStore struct {
	event models.Event
	err   error
}

func (s *stubEventStore) FindByID(ctx context.Context, eventID string) (models.Event, error) {
	return s.event, s.err
}

type recordingEmitter struct {
	ch chan mq.Index
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{ch: make(chan mq.Index, 4)}
}

func (e *recordingEmitter) Emit(ctx context.Context, eventName string, content mq.Index) {
	e.ch <- content
}

func confirmRequest(t *testing.T, body map[string]string) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	r := httptest.NewRequest(http.MethodPost, "/api/orders/confirm", bytes.NewReader(data))
	return r.WithContext(context.WithValue(r.Context(), globals.UserIDKey, "usr1"))
}

func validConfirmBody() map[string]string {
	return map[string]string{
		"razorpay_order_id":   "order_rzp1",
		"razorpay_payment_id": "pay_rzp1",
		"razorpay_signature":  "sig",
		"eventId":             "evt1",
	}
}

func TestConfirmPersistsVerifiedOrder(t *testing.T) {
	store := &stubOrderStore{}
	emitter := newRecordingEmitter()
	s := &Service{
		orders:  store,
		events:  &stubEventStore{event: models.Event{EventID: "evt1", Price: 499.00}},
		gateway: &stubGateway{verifyOK: true},
		emitter: emitter,
	}

	w := httptest.NewRecorder()
	s.Confirm(w, confirmRequest(t, validConfirmBody()), nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("inserted %d orders, want 1", len(store.inserted))
	}
	var order models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if order.TotalAmount != 499.00 || order.RazorpayOrderID != "order_rzp1" {
		t.Errorf("unexpected order: %+v", order)
	}

	select {
	case idx := <-emitter.ch:
		if idx.EntityType != "order" || idx.EntityId != order.OrderID {
			t.Errorf("unexpected emit: %+v", idx)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for order-created emit")
	}
}

func TestConfirmReplayReturnsExistingOrder(t *testing.T) {
	existing := models.Order{
		OrderID:         "ord_existing",
		EventID:         "evt1",
		BuyerID:         "usr1",
		TotalAmount:     499.00,
		Currency:        Currency,
		RazorpayOrderID: "order_rzp1",
	}
	store := &stubOrderStore{insertErr: duplicateKeyErr(), existing: existing}
	emitter := newRecordingEmitter()
	s := &Service{
		orders:  store,
		events:  &stubEventStore{event: models.Event{EventID: "evt1", Price: 499.00}},
		gateway: &stubGateway{verifyOK: true},
		emitter: emitter,
	}

	w := httptest.NewRecorder()
	s.Confirm(w, confirmRequest(t, validConfirmBody()), nil)

	if w.Code != http.StatusOK {
		t.Fatalf("replayed confirm status = %d, want 200", w.Code)
	}
	if len(store.inserted) != 0 {
		t.Fatalf("replay inserted %d orders, want 0", len(store.inserted))
	}
	var order models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if order.OrderID != "ord_existing" {
		t.Errorf("order id = %q, want the already-persisted ord_existing", order.OrderID)
	}

	select {
	case idx := <-emitter.ch:
		t.Fatalf("replayed confirm must not emit, got %+v", idx)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestConfirmFreeEventZeroTotal(t *testing.T) {
	store := &stubOrderStore{}
	s := &Service{
		orders:  store,
		events:  &stubEventStore{event: models.Event{EventID: "evt1", Price: 0, IsFree: true}},
		gateway: &stubGateway{verifyOK: true},
		emitter: newRecordingEmitter(),
	}

	w := httptest.NewRecorder()
	s.Confirm(w, confirmRequest(t, validConfirmBody()), nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("inserted %d orders, want 1", len(store.inserted))
	}
	if store.inserted[0].TotalAmount != 0 {
		t.Errorf("free event order total = %v, want 0", store.inserted[0].TotalAmount)
	}
}

func TestConfirmRejectsBadSignature(t *testing.T) {
	store := &stubOrderStore{}
	s := &Service{
		orders:  store,
		events:  &stubEventStore{event: models.Event{EventID: "evt1", Price: 499.00}},
		gateway: &stubGateway{verifyOK: false},
		emitter: newRecordingEmitter(),
	}

	body := validConfirmBody()
	body["razorpay_signature"] = "forged"
	w := httptest.NewRecorder()
	s.Confirm(w, confirmRequest(t, body), nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if len(store.inserted) != 0 {
		t.Fatalf("rejected signature still persisted %d orders", len(store.inserted))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestConfirmRejectsMissingFields(t *testing.T) {
	s := &Service{gateway: &stubGateway{}}

	w := httptest.NewRecorder()
	s.Confirm(w, confirmRequest(t, map[string]string{"razorpay_order_id": "order_1"}), nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
