package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a catalog product. IDs are sequential integers assigned
// at insert time as max(id)+1; deletion never reclaims an id.
type Product struct {
	ID          int64     `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Image       string    `bson:"image" json:"image"`
	Category    string    `bson:"category" json:"category"`
	NewPrice    float64   `bson:"new_price" json:"new_price"`
	OldPrice    float64   `bson:"old_price" json:"old_price"`
	CreatedAt   time.Time `bson:"date" json:"date"`
	Available   bool      `bson:"available" json:"available"`
}

// Cart maps a product id (as a string key) to the desired quantity.
// An absent key means quantity 0. Quantities can go negative because
// decrement has no floor; readers must treat <= 0 as "not in cart".
type Cart map[string]int

// Quantity returns the quantity for an item id, 0 when absent.
func (c Cart) Quantity(itemID string) int {
	return c[itemID]
}

// User represents a registered shopper. Password holds a bcrypt hash,
// never the plaintext credential.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Cart      Cart               `bson:"cart" json:"cart"`
	CreatedAt time.Time          `bson:"date" json:"date"`
}

// OrderItem is a point-in-time snapshot of a product line at checkout.
// Name and price are copied from the submitted payload, so later catalog
// edits never alter historical orders.
type OrderItem struct {
	ID       int64   `bson:"id" json:"id"`
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	Quantity int     `bson:"quantity" json:"quantity"`
	Total    float64 `bson:"total" json:"total"`
}

// Order is an immutable record of a completed checkout.
type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Items       []OrderItem        `bson:"items" json:"items"`
	TotalAmount float64            `bson:"totalAmount" json:"totalAmount"`
	CreatedAt   time.Time          `bson:"date" json:"date"`
}
