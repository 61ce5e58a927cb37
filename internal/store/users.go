package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shop-service/internal/models"
)

// GetUserByEmail retrieves a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.users().FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by document id.
func (s *Store) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.users().FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// InsertUser persists a new user. The unique email index turns a duplicate
// signup into ErrDuplicateKey instead of leaving a check-then-insert race.
func (s *Store) InsertUser(ctx context.Context, user *models.User) error {
	result, err := s.users().InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("email %s: %w", user.Email, ErrDuplicateKey)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

// AdjustCartItem applies delta to cart[itemID] with the store's atomic $inc,
// treating an absent key as 0. No floor is enforced: quantities can go
// negative and readers treat <= 0 as "not in cart".
func (s *Store) AdjustCartItem(ctx context.Context, userID primitive.ObjectID, itemID string, delta int) error {
	result, err := s.users().UpdateByID(ctx, userID,
		bson.M{"$inc": bson.M{"cart." + itemID: delta}})
	if err != nil {
		return fmt.Errorf("failed to adjust cart item: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", userID.Hex(), ErrNotFound)
	}
	return nil
}

// GetCart returns the user's current cart mapping.
func (s *Store) GetCart(ctx context.Context, userID primitive.ObjectID) (models.Cart, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Cart == nil {
		return models.Cart{}, nil
	}
	return user.Cart, nil
}

// ClearCart resets the user's cart to an empty mapping. Safe to retry.
func (s *Store) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	result, err := s.users().UpdateByID(ctx, userID,
		bson.M{"$set": bson.M{"cart": models.Cart{}}})
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", userID.Hex(), ErrNotFound)
	}
	return nil
}
