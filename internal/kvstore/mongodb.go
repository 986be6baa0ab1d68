package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBackend implements Backend using one MongoDB collection.
type MongoBackend struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// kvDocument is the stored shape of one key. ExpiresAt zero means never.
type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	ExpiresAt time.Time `bson:"expires_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoBackend connects to MongoDB and prepares the collection.
func NewMongoBackend(uri, database, collection string) (*MongoBackend, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(20).
		SetMinPoolSize(2).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	coll := client.Database(database).Collection(collection)

	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "expires_at", Value: 1}},
	}
	if _, err := coll.Indexes().CreateOne(ctx, indexModel); err != nil {
		log.Printf("[MongoBackend] Warning: failed to create index: %v", err)
	}

	log.Printf("[MongoBackend] Connected to %s/%s", database, collection)
	return &MongoBackend{client: client, collection: coll}, nil
}

// Get retrieves a value by key.
func (b *MongoBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var doc kvDocument
	err := b.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	if !doc.ExpiresAt.IsZero() && time.Now().After(doc.ExpiresAt) {
		return nil, ErrNotFound
	}
	return []byte(doc.Value), nil
}

// Set upserts a value with the given TTL.
func (b *MongoBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"value":      string(value),
			"expires_at": expiry(now, ttl),
			"updated_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := b.collection.UpdateByID(ctx, key, update, opts); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes a value by key.
func (b *MongoBackend) Delete(ctx context.Context, key string) error {
	_, err := b.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Exists checks if a key exists and is not expired.
func (b *MongoBackend) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// GetOrSet retrieves a value or computes and stores it if missing.
func (b *MongoBackend) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	return getOrSet(ctx, b, key, ttl, fn)
}

// Clear removes all documents from the collection.
func (b *MongoBackend) Clear(ctx context.Context) error {
	_, err := b.collection.DeleteMany(ctx, bson.M{})
	return err
}

// DeleteExpired removes documents whose ttl has passed.
func (b *MongoBackend) DeleteExpired(ctx context.Context) (int64, error) {
	filter := bson.M{
		"expires_at": bson.M{
			"$gt": time.Time{},
			"$lt": time.Now(),
		},
	}

	result, err := b.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired entries: %w", err)
	}

	if result.DeletedCount > 0 {
		log.Printf("[MongoBackend] Cleaned up %d expired entries", result.DeletedCount)
	}
	return result.DeletedCount, nil
}

// Close closes the MongoDB connection.
func (b *MongoBackend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.client.Disconnect(ctx)
}

var (
	_ Backend = (*MongoBackend)(nil)
	_ Sweeper = (*MongoBackend)(nil)
)
