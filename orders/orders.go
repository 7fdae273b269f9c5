package orders

import (
	"context"
	"errors"
	"time"

	"evently/db"
	"evently/models"
	"evently/mq"
	"evently/rdx"
	"evently/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Currency is fixed; the gateway account is an INR account.
const Currency = "INR"

// Gateway abstracts the payment gateway so the checkout flow can be
// exercised against a stub in tests.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// orderStore is the minimal persistence surface for order writes, kept
// narrow so the duplicate-confirm replay path can be driven in tests.
type orderStore interface {
	Insert(ctx context.Context, order models.Order) error
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (models.Order, error)
}

type eventStore interface {
	FindByID(ctx context.Context, eventID string) (models.Event, error)
}

type indexEmitter interface {
	Emit(ctx context.Context, eventName string, content mq.Index)
}

// Service handles checkout, confirmation and order reporting.
type Service struct {
	db           *db.Database
	orders       orderStore
	events       eventStore
	gateway      Gateway
	cache        *rdx.Cache
	emitter      indexEmitter
	ticketSecret []byte
}

func NewService(database *db.Database, gateway Gateway, cache *rdx.Cache, emitter *mq.Emitter, ticketSecret string) *Service {
	return &Service{
		db:           database,
		orders:       &mongoOrderStore{coll: database.OrdersCollection},
		events:       &mongoEventStore{coll: database.EventsCollection},
		gateway:      gateway,
		cache:        cache,
		emitter:      emitter,
		ticketSecret: []byte(ticketSecret),
	}
}

// chargeAmount is the order total at purchase time: zero for free events,
// the event price otherwise.
func chargeAmount(price float64, isFree bool) float64 {
	if isFree {
		return 0
	}
	return price
}

// createOrder inserts the order; a duplicate razorpay_order_id means a
// replayed confirmation, in which case the already-persisted order is
// returned instead of a second insert.
func (s *Service) createOrder(ctx context.Context, order models.Order) (models.Order, error) {
	err := s.orders.Insert(ctx, order)
	if err == nil {
		return order, nil
	}
	if !isDuplicateKeyError(err) {
		return models.Order{}, err
	}
	return s.orders.FindByGatewayOrderID(ctx, order.RazorpayOrderID)
}

func (s *Service) findEvent(ctx context.Context, eventID string) (models.Event, error) {
	return s.events.FindByID(ctx, eventID)
}

// helper to detect duplicate key errors from Mongo insert
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}

func newOrder(eventID, buyerID string, total float64, razorpayOrderID, razorpayPaymentID string) models.Order {
	return models.Order{
		OrderID:           utils.GetUUID(),
		EventID:           eventID,
		BuyerID:           buyerID,
		TotalAmount:       total,
		Currency:          Currency,
		RazorpayOrderID:   razorpayOrderID,
		RazorpayPaymentID: razorpayPaymentID,
		CreatedAt:         time.Now().UTC(),
	}
}

// --- Mongo-backed stores ---

type mongoOrderStore struct {
	coll *mongo.Collection
}

func (m *mongoOrderStore) Insert(ctx context.Context, order models.Order) error {
	_, err := m.coll.InsertOne(ctx, order)
	return err
}

func (m *mongoOrderStore) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (models.Order, error) {
	var order models.Order
	err := m.coll.FindOne(ctx, bson.M{"razorpay_order_id": gatewayOrderID}).Decode(&order)
	return order, err
}

type mongoEventStore struct {
	coll *mongo.Collection
}

func (m *mongoEventStore) FindByID(ctx context.Context, eventID string) (models.Event, error) {
	var event models.Event
	err := m.coll.FindOne(ctx, bson.M{"eventid": eventID}).Decode(&event)
	return event, err
}
