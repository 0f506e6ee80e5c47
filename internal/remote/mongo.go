package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/existflow/tasksync/internal/model"
)

// MongoStore is a Store backed by a MongoDB collection.
// Documents are keyed by task id in _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects lazily; the driver only dials on first use,
// so this succeeds while offline.
func NewMongoStore(ctx context.Context, uri, database, collection string, timeout time.Duration) (*MongoStore, error) {
	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetTimeout(timeout)
		opts.SetServerSelectionTimeout(timeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to configure mongo client: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Upsert implements Store
func (m *MongoStore) Upsert(ctx context.Context, doc model.Document) error {
	_, err := m.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: doc.ID}},
		doc,
		options.Replace().SetUpsert(true),
	)
	return classifyMongo(err)
}

// Get implements Store
func (m *MongoStore) Get(ctx context.Context, id string) (model.Document, error) {
	var doc model.Document
	err := m.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Document{}, ErrNotFound
	}
	if err != nil {
		return model.Document{}, classifyMongo(err)
	}
	return doc, nil
}

// List implements Store
func (m *MongoStore) List(ctx context.Context) ([]model.Document, error) {
	cursor, err := m.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, classifyMongo(err)
	}

	var docs []model.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, classifyMongo(err)
	}
	return docs, nil
}

// Delete implements Store
func (m *MongoStore) Delete(ctx context.Context, id string) error {
	_, err := m.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	return classifyMongo(err)
}

// Clear removes every document in the collection
func (m *MongoStore) Clear(ctx context.Context) error {
	_, err := m.coll.DeleteMany(ctx, bson.D{})
	return classifyMongo(err)
}

// Ping implements Store
func (m *MongoStore) Ping(ctx context.Context) error {
	return classifyMongo(m.client.Ping(ctx, nil))
}

// Close implements Store
func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// classifyMongo marks connectivity failures as ErrUnavailable
func classifyMongo(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, mongo.ErrClientDisconnected) {
		return unavailable(err)
	}
	return err
}
