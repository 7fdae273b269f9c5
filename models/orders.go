package models

import "time"

// Order is written exactly once per verified payment; the unique index on
// razorpay_order_id keeps replayed confirmations from inserting twice.
type Order struct {
	OrderID           string    `json:"orderid" bson:"orderid"`
	EventID           string    `json:"eventid" bson:"eventid"`
	BuyerID           string    `json:"buyerid" bson:"buyerid"`
	TotalAmount       float64   `json:"total_amount" bson:"total_amount"`
	Currency          string    `json:"currency" bson:"currency"`
	RazorpayOrderID   string    `json:"razorpay_order_id" bson:"razorpay_order_id"`
	RazorpayPaymentID string    `json:"razorpay_payment_id" bson:"razorpay_payment_id"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
}

// OrderByEvent is one row of the orders-by-event report.
type OrderByEvent struct {
	OrderID     string    `json:"orderid" bson:"orderid"`
	TotalAmount float64   `json:"total_amount" bson:"total_amount"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	EventTitle  string    `json:"event_title" bson:"event_title"`
	EventID     string    `json:"eventid" bson:"eventid"`
	Buyer       string    `json:"buyer" bson:"buyer"`
}

// OrderWithEvent is one row of the orders-by-user listing: the order plus
// its event and the event's organizer.
type OrderWithEvent struct {
	Order     `bson:",inline"`
	Event     Event            `json:"event" bson:"event"`
	Organizer OrganizerSummary `json:"organizer" bson:"organizer"`
}

type OrganizerSummary struct {
	UserID    string `json:"userid" bson:"userid"`
	FirstName string `json:"first_name" bson:"first_name"`
	LastName  string `json:"last_name" bson:"last_name"`
}
