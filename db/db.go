package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Database bundles the typed collections used across the application.
// It is constructed once in main and handed to each service, so the
// connection lifecycle stays owned by the process entry point.
type Database struct {
	Client *mongo.Client

	EventsCollection     *mongo.Collection
	OrdersCollection     *mongo.Collection
	UserCollection       *mongo.Collection
	CategoriesCollection *mongo.Collection
}

// Connect establishes the MongoDB connection and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

// New wires the collections of the named database.
func New(client *mongo.Client, dbName string) *Database {
	d := client.Database(dbName)
	return &Database{
		Client:               client,
		EventsCollection:     d.Collection("events"),
		OrdersCollection:     d.Collection("orders"),
		UserCollection:       d.Collection("users"),
		CategoriesCollection: d.Collection("categories"),
	}
}

// EnsureIndexes creates the indexes the application relies on. The unique
// index on razorpay_order_id is what makes order confirmation idempotent:
// a replayed confirm hits a duplicate-key error instead of writing a
// second order.
func (d *Database) EnsureIndexes(ctx context.Context) error {
	orderIdxs := []mongo.IndexModel{
		{
			Keys:    bson.M{"razorpay_order_id": 1},
			Options: options.Index().SetUnique(true).SetName("unique_razorpay_order_id"),
		},
		{Keys: bson.M{"eventid": 1}},
		{Keys: bson.D{{Key: "buyerid", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := d.OrdersCollection.Indexes().CreateMany(ctx, orderIdxs); err != nil {
		return err
	}

	userIdx := mongo.IndexModel{
		Keys:    bson.M{"username": 1},
		Options: options.Index().SetUnique(true).SetName("unique_username"),
	}
	if _, err := d.UserCollection.Indexes().CreateOne(ctx, userIdx); err != nil {
		return err
	}

	eventIdx := mongo.IndexModel{
		Keys:    bson.M{"eventid": 1},
		Options: options.Index().SetUnique(true).SetName("unique_eventid"),
	}
	_, err := d.EventsCollection.Indexes().CreateOne(ctx, eventIdx)
	return err
}

// Close disconnects the client; called from main on shutdown.
func (d *Database) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}
