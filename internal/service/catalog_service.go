package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"shop-service/internal/bus"
	"shop-service/internal/models"
	"shop-service/internal/redisclient"
	"shop-service/internal/store"
	"shop-service/internal/util"
)

// hotListLimit caps the popular and newest lists.
const hotListLimit = 8

// CatalogStore is the persistence surface the catalog service needs.
type CatalogStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, category string, limit int64) ([]models.Product, error)
	ListNewest(ctx context.Context, limit int64) ([]models.Product, error)
	NextProductID(ctx context.Context) (int64, error)
	InsertProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

// ListCache caches hot catalog lists. GetProductList returns (nil, nil) on a
// miss. Keys must stay under the "catalog:" namespace so invalidation
// reaches them.
type ListCache interface {
	GetProductList(ctx context.Context, key string) ([]models.Product, error)
	SetProductList(ctx context.Context, key string, products []models.Product) error
	InvalidateLists(ctx context.Context) error
}

// Broadcaster fans catalog mutations out to connected sessions.
type Broadcaster interface {
	Broadcast(event bus.Event)
}

// AddProductInput carries the client-supplied product fields; the id is
// assigned by the store.
type AddProductInput struct {
	Name        string
	Description string
	Image       string
	Category    string
	NewPrice    float64
	OldPrice    float64
}

// CatalogService handles product catalog business logic.
type CatalogService struct {
	store  CatalogStore
	cache  ListCache
	bus    Broadcaster
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service. cache may be nil, in
// which case every list read goes to the store.
func NewCatalogService(store CatalogStore, cache ListCache, broadcaster Broadcaster) *CatalogService {
	return &CatalogService{
		store:  store,
		cache:  cache,
		bus:    broadcaster,
		logger: util.GetLogger(),
	}
}

// ListProducts returns the full catalog ordered by ascending id.
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return products, nil
}

// ListPopular returns up to 8 products in the given category, newest first,
// matched case-insensitively.
func (s *CatalogService) ListPopular(ctx context.Context, category string) ([]models.Product, error) {
	key := redisclient.PopularKey(category)
	if cached := s.fromCache(ctx, key, "popular"); cached != nil {
		return cached, nil
	}

	products, err := s.store.ListByCategory(ctx, category, hotListLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.toCache(ctx, key, products)
	return products, nil
}

// ListNewest returns up to 8 of the most recently added products.
func (s *CatalogService) ListNewest(ctx context.Context) ([]models.Product, error) {
	if cached := s.fromCache(ctx, redisclient.KeyNewest, "newest"); cached != nil {
		return cached, nil
	}

	products, err := s.store.ListNewest(ctx, hotListLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.toCache(ctx, redisclient.KeyNewest, products)
	return products, nil
}

// AddProduct assigns the next sequential id, persists the product and fans
// a product_added event out to every connected session. The max-id probe
// races under concurrent adds; ids stay unique and monotonic only per
// commit order.
func (s *CatalogService) AddProduct(ctx context.Context, input AddProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.AddProduct")
	defer span.End()

	id, err := s.store.NextProductID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	product := &models.Product{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Image:       input.Image,
		Category:    input.Category,
		NewPrice:    input.NewPrice,
		OldPrice:    input.OldPrice,
		CreatedAt:   time.Now(),
		Available:   true,
	}

	if err := s.store.InsertProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	util.ProductsAddedTotal.Inc()
	s.logger.Info("Product added",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name))

	s.invalidateCache(ctx)
	s.bus.Broadcast(bus.Event{
		Type:    models.EventTypeProductAdded,
		Payload: models.ProductAddedEvent{Product: *product},
	})

	return product, nil
}

// RemoveProduct deletes a product by id. Deleted ids are never reassigned.
func (s *CatalogService) RemoveProduct(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.RemoveProduct")
	defer span.End()

	if err := s.store.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	util.ProductsRemovedTotal.Inc()
	s.logger.Info("Product removed", zap.Int64("product_id", id))
	s.invalidateCache(ctx)
	return nil
}

// WarmHotLists primes the cached newest and popular lists. Run off the
// request path at boot by the worker runner.
func (s *CatalogService) WarmHotLists(ctx context.Context) (string, error) {
	var newest, popular []models.Product

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		newest, err = s.ListNewest(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		popular, err = s.ListPopular(ctx, "women")
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	return fmt.Sprintf("warmed hot lists: %d newest, %d popular", len(newest), len(popular)), nil
}

func (s *CatalogService) fromCache(ctx context.Context, key, list string) []models.Product {
	if s.cache == nil {
		return nil
	}
	products, err := s.cache.GetProductList(ctx, key)
	if err != nil {
		util.CatalogCacheHits.WithLabelValues(list, "error").Inc()
		s.logger.Warn("Catalog cache read failed, falling back to store",
			zap.String("key", key), zap.Error(err))
		return nil
	}
	if products == nil {
		util.CatalogCacheHits.WithLabelValues(list, "miss").Inc()
		return nil
	}
	util.CatalogCacheHits.WithLabelValues(list, "hit").Inc()
	return products
}

func (s *CatalogService) toCache(ctx context.Context, key string, products []models.Product) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetProductList(ctx, key, products); err != nil {
		s.logger.Warn("Catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *CatalogService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateLists(ctx); err != nil {
		s.logger.Warn("Catalog cache invalidation failed", zap.Error(err))
	}
}
