package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-service/internal/bus"
	"shop-service/internal/models"
	"shop-service/internal/store"
)

// In-memory stand-ins for the Mongo-backed store, mirroring its error
// contract so the services under test see the same sentinels.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUserStore) add(user *models.User) primitive.ObjectID {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = primitive.NewObjectID()
	if user.Cart == nil {
		user.Cart = models.Cart{}
	}
	f.users[user.ID] = user
	return user.ID
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, store.ErrNotFound)
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), store.ErrNotFound)
	}
	return user, nil
}

func (f *fakeUserStore) InsertUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return fmt.Errorf("email %s: %w", user.Email, store.ErrDuplicateKey)
		}
	}
	user.ID = primitive.NewObjectID()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) AdjustCartItem(_ context.Context, userID primitive.ObjectID, itemID string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID.Hex(), store.ErrNotFound)
	}
	if user.Cart == nil {
		user.Cart = models.Cart{}
	}
	user.Cart[itemID] += delta
	return nil
}

func (f *fakeUserStore) GetCart(_ context.Context, userID primitive.ObjectID) (models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID.Hex(), store.ErrNotFound)
	}
	return user.Cart, nil
}

func (f *fakeUserStore) ClearCart(_ context.Context, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID.Hex(), store.ErrNotFound)
	}
	user.Cart = models.Cart{}
	return nil
}

type fakeOrderStore struct {
	users    *fakeUserStore
	orders   []models.Order
	clearErr error
}

func (f *fakeOrderStore) PlaceOrder(ctx context.Context, order *models.Order) error {
	f.orders = append(f.orders, *order)
	if f.clearErr != nil {
		return fmt.Errorf("%w: %v", store.ErrCartNotCleared, f.clearErr)
	}
	return f.users.ClearCart(ctx, order.UserID)
}

func (f *fakeOrderStore) ListOrdersByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	matched := []models.Order{}
	for _, order := range f.orders {
		if order.UserID == userID {
			matched = append(matched, order)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

type fakeProductReader struct {
	products []models.Product
}

func (f *fakeProductReader) GetProductsByIDs(_ context.Context, ids []int64) ([]models.Product, error) {
	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	matched := []models.Product{}
	for _, p := range f.products {
		if want[p.ID] {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

type fakeCatalogStore struct {
	mu       sync.Mutex
	products []models.Product
}

func (f *fakeCatalogStore) ListProducts(_ context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]models.Product{}, f.products...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCatalogStore) ListByCategory(_ context.Context, category string, limit int64) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Product{}
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Category), strings.ToLower(category)) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCatalogStore) ListNewest(_ context.Context, limit int64) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]models.Product{}, f.products...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCatalogStore) NextProductID(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var max int64
	for _, p := range f.products {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1, nil
}

func (f *fakeCatalogStore) InsertProduct(_ context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = append(f.products, *product)
	return nil
}

func (f *fakeCatalogStore) DeleteProduct(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.products {
		if p.ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("product %d: %w", id, store.ErrNotFound)
}

type fakeBroadcaster struct {
	events []bus.Event
}

func (f *fakeBroadcaster) Broadcast(event bus.Event) {
	f.events = append(f.events, event)
}

type fakeListCache struct {
	lists map[string][]models.Product
}

func newFakeListCache() *fakeListCache {
	return &fakeListCache{lists: map[string][]models.Product{}}
}

func (f *fakeListCache) GetProductList(_ context.Context, key string) ([]models.Product, error) {
	return f.lists[key], nil
}

func (f *fakeListCache) SetProductList(_ context.Context, key string, products []models.Product) error {
	f.lists[key] = products
	return nil
}

func (f *fakeListCache) InvalidateLists(_ context.Context) error {
	f.lists = map[string][]models.Product{}
	return nil
}
