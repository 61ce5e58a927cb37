package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"shop-service/internal/auth"
	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"
)

// UserStore is the persistence surface for users and their carts.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	InsertUser(ctx context.Context, user *models.User) error
	AdjustCartItem(ctx context.Context, userID primitive.ObjectID, itemID string, delta int) error
	GetCart(ctx context.Context, userID primitive.ObjectID) (models.Cart, error)
	ClearCart(ctx context.Context, userID primitive.ObjectID) error
}

// UserService handles signup, login and cart mutation.
type UserService struct {
	store  UserStore
	tokens *auth.TokenService
	logger *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(store UserStore, tokens *auth.TokenService) *UserService {
	return &UserService{
		store:  store,
		tokens: tokens,
		logger: util.GetLogger(),
	}
}

// SignUp registers a user with an empty cart and returns an identity token.
// The password is stored as a bcrypt hash, never verbatim.
func (s *UserService) SignUp(ctx context.Context, name, email, password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:      name,
		Email:     email,
		Password:  hash,
		Cart:      models.Cart{},
		CreatedAt: time.Now(),
	}

	if err := s.store.InsertUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return "", ErrConflict
		}
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	util.UsersRegisteredTotal.Inc()
	s.logger.Info("User registered", zap.String("email", email))
	return s.tokens.Sign(user.ID.Hex())
}

// Login authenticates a user by email and password and returns an identity
// token. An unknown email and a wrong password both come back as
// ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if !auth.CheckPassword(password, user.Password) {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Sign(user.ID.Hex())
}

// AddToCart increments cart[itemID] by one, treating an absent key as 0.
func (s *UserService) AddToCart(ctx context.Context, userID, itemID string) error {
	return s.adjustCart(ctx, userID, itemID, 1)
}

// RemoveFromCart decrements cart[itemID] by one. No floor at zero is
// enforced; readers treat quantities <= 0 as "not in cart".
func (s *UserService) RemoveFromCart(ctx context.Context, userID, itemID string) error {
	return s.adjustCart(ctx, userID, itemID, -1)
}

func (s *UserService) adjustCart(ctx context.Context, userID, itemID string, delta int) error {
	oid, err := resolveUserID(userID)
	if err != nil {
		return err
	}

	if err := s.store.AdjustCartItem(ctx, oid, itemID, delta); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnauthenticated
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}

// GetCart returns the user's current cart mapping.
func (s *UserService) GetCart(ctx context.Context, userID string) (models.Cart, error) {
	oid, err := resolveUserID(userID)
	if err != nil {
		return nil, err
	}

	cart, err := s.store.GetCart(ctx, oid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return cart, nil
}

// resolveUserID parses the token subject into a document id. A subject that
// does not resolve fails authentication before any business logic runs.
func resolveUserID(userID string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, ErrUnauthenticated
	}
	return oid, nil
}
