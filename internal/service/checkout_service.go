package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"
)

// OrderStore commits orders and reads them back. PlaceOrder clears the
// owning user's cart in one transaction where the store supports it.
type OrderStore interface {
	PlaceOrder(ctx context.Context, order *models.Order) error
	ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
}

// ProductReader loads catalog products for server-side price verification.
type ProductReader interface {
	GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
}

// CheckoutService converts a validated cart into a persisted order.
type CheckoutService struct {
	users    UserStore
	orders   OrderStore
	products ProductReader
	logger   *zap.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(users UserStore, orders OrderStore, products ProductReader) *CheckoutService {
	return &CheckoutService{
		users:    users,
		orders:   orders,
		products: products,
		logger:   util.GetLogger(),
	}
}

// Checkout validates the submitted items against the user's stored cart,
// persists an order with the valid ones and clears the cart.
//
// The stored cart is authoritative on membership: an item survives only if
// its stored quantity is strictly positive, no matter what the client
// submitted. The client payload is trusted only for the name/price snapshot
// echoed into the order lines.
func (s *CheckoutService) Checkout(ctx context.Context, userID string, items []models.OrderItem, totalAmount float64) (string, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	oid, err := resolveUserID(userID)
	if err != nil {
		util.CheckoutFailedTotal.WithLabelValues("unauthenticated").Inc()
		return "", err
	}

	cart, err := s.users.GetCart(ctx, oid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.CheckoutFailedTotal.WithLabelValues("unauthenticated").Inc()
			return "", ErrUnauthenticated
		}
		util.CheckoutFailedTotal.WithLabelValues("db_error").Inc()
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	valid := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if cart.Quantity(strconv.FormatInt(item.ID, 10)) > 0 {
			valid = append(valid, item)
		}
	}

	if len(valid) == 0 {
		util.CheckoutFailedTotal.WithLabelValues("empty_cart").Inc()
		return "", ErrEmptyCart
	}

	s.verifyTotals(ctx, oid, valid, totalAmount)

	order := &models.Order{
		UserID:      oid,
		Items:       valid,
		TotalAmount: totalAmount,
		CreatedAt:   time.Now(),
	}

	if err := s.orders.PlaceOrder(ctx, order); err != nil {
		if errors.Is(err, store.ErrCartNotCleared) {
			// The order is committed; failing the request now would invite a
			// duplicate-order retry. Surface the partial state loudly instead.
			util.CheckoutPartialFailureTotal.Inc()
			s.logger.Error("Order placed but cart not cleared; stale items will re-checkout",
				zap.String("user_id", userID),
				zap.Error(err))
		} else {
			util.CheckoutFailedTotal.WithLabelValues("db_error").Inc()
			return "", fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.String("user_id", userID),
		zap.Int("items", len(valid)),
		zap.Float64("total", totalAmount))

	return "Order placed successfully!", nil
}

// Orders returns the caller's order history, newest first.
func (s *CheckoutService) Orders(ctx context.Context, userID string) ([]models.Order, error) {
	oid, err := resolveUserID(userID)
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.ListOrdersByUser(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return orders, nil
}

// verifyTotals recomputes the total from the order lines and checks the
// line prices against the catalog. Mismatches are logged and counted; the
// submitted figure still gets persisted, keeping the response contract
// intact while making forged totals observable.
func (s *CheckoutService) verifyTotals(ctx context.Context, userID primitive.ObjectID, items []models.OrderItem, submittedTotal float64) {
	var serverTotal float64
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		serverTotal += item.Price * float64(item.Quantity)
		ids = append(ids, item.ID)
	}

	if math.Abs(serverTotal-submittedTotal) > 0.005 {
		util.CheckoutTotalMismatchTotal.Inc()
		s.logger.Warn("Submitted total disagrees with recomputed total",
			zap.String("user_id", userID.Hex()),
			zap.Float64("submitted", submittedTotal),
			zap.Float64("recomputed", serverTotal))
	}

	products, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Could not load catalog prices for verification", zap.Error(err))
		return
	}

	prices := make(map[int64]float64, len(products))
	for _, p := range products {
		prices[p.ID] = p.NewPrice
	}
	for _, item := range items {
		if catalogPrice, ok := prices[item.ID]; ok && math.Abs(catalogPrice-item.Price) > 0.005 {
			s.logger.Warn("Submitted line price disagrees with catalog",
				zap.Int64("product_id", item.ID),
				zap.Float64("submitted", item.Price),
				zap.Float64("catalog", catalogPrice))
		}
	}
}
