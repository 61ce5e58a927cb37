package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Sentinel errors mapped by the service layer onto the user-facing taxonomy.
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Store wraps the MongoDB database backing the catalog, user and order
// collections.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to MongoDB and prepares the collections. A unique index
// on users.email closes the signup check-then-insert race at the store.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	s := &Store{
		client: client,
		db:     client.Database(database),
	}

	_, err = s.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create email index: %w", err)
	}

	return s, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) products() *mongo.Collection {
	return s.db.Collection("products")
}

func (s *Store) users() *mongo.Collection {
	return s.db.Collection("users")
}

func (s *Store) orders() *mongo.Collection {
	return s.db.Collection("orders")
}

// errTransactionsUnsupported marks deployments where a session transaction
// cannot run at all (no replica set), as opposed to fn itself failing.
var errTransactionsUnsupported = errors.New("transactions unsupported")

// withTransaction runs fn inside a session transaction.
func (s *Store) withTransaction(ctx context.Context, fn func(ctx mongo.SessionContext) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("%w: %v", errTransactionsUnsupported, err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 20 {
		// IllegalOperation: transaction numbers need a replica set member.
		return fmt.Errorf("%w: %v", errTransactionsUnsupported, err)
	}
	return err
}
