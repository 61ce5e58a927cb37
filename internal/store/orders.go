package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop-service/internal/models"
)

// ErrCartNotCleared reports that an order was committed but the follow-up
// cart clear failed, leaving stale items that would re-checkout.
var ErrCartNotCleared = errors.New("order placed but cart not cleared")

// InsertOrder appends an immutable order record.
func (s *Store) InsertOrder(ctx context.Context, order *models.Order) error {
	result, err := s.orders().InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

// ListOrdersByUser retrieves a user's orders, newest first.
func (s *Store) ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	cursor, err := s.orders().Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// PlaceOrder writes the order and clears the user's cart in one session
// transaction where the deployment supports it. On standalone deployments
// the two writes run sequentially; a failure between them surfaces as
// ErrCartNotCleared so the partial state is visible to the caller, and the
// cart clear itself is idempotent and safe to retry.
func (s *Store) PlaceOrder(ctx context.Context, order *models.Order) error {
	txErr := s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := s.InsertOrder(sc, order); err != nil {
			return err
		}
		return s.ClearCart(sc, order.UserID)
	})
	if txErr == nil {
		return nil
	}

	if !errors.Is(txErr, errTransactionsUnsupported) {
		return txErr
	}

	if err := s.InsertOrder(ctx, order); err != nil {
		return err
	}
	if err := s.ClearCart(ctx, order.UserID); err != nil {
		return fmt.Errorf("%w: %v", ErrCartNotCleared, err)
	}
	return nil
}
