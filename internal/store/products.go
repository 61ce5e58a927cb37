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

// ListProducts retrieves the full catalog ordered by ascending id.
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	cursor, err := s.products().Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// ListByCategory retrieves products whose category matches case-insensitively,
// newest first, capped at limit.
func (s *Store) ListByCategory(ctx context.Context, category string, limit int64) ([]models.Product, error) {
	filter := bson.M{"category": primitive.Regex{Pattern: category, Options: "i"}}
	cursor, err := s.products().Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list products by category: %w", err)
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// ListNewest retrieves the most recently added products, capped at limit.
func (s *Store) ListNewest(ctx context.Context, limit int64) ([]models.Product, error) {
	cursor, err := s.products().Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list newest products: %w", err)
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// NextProductID returns max(id)+1, or 1 for an empty catalog. The read-max
// then-insert sequence is a known race under concurrent adds; an $inc counter
// document would close it.
func (s *Store) NextProductID(ctx context.Context) (int64, error) {
	var highest models.Product
	err := s.products().FindOne(ctx, bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "id", Value: -1}})).Decode(&highest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find highest product id: %w", err)
	}
	return highest.ID + 1, nil
}

// InsertProduct persists a product record.
func (s *Store) InsertProduct(ctx context.Context, product *models.Product) error {
	if _, err := s.products().InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// DeleteProduct removes a product by its sequential id.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	result, err := s.products().DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetProductsByIDs retrieves products matching the given sequential ids.
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	cursor, err := s.products().Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to get products by ids: %w", err)
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}
