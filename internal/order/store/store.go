package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/bitebank/internal/order/domain"
)

var (
	ErrNotFound = errors.New("store: not found")

	// ErrReferenced is returned when a write would break a foreign key: a
	// meal that a cart or order still uses, or a line naming a missing meal.
	ErrReferenced = errors.New("store: foreign key violation")
)

// Store is the root data access interface for the order service.
type Store interface {
	Meals() Meals
	Cart() Cart
	Orders() Orders

	// WithTx executes fn within a transaction. fn's error rolls the
	// transaction back; nil commits it.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	ApplyMigrations() error

	// Close releases the underlying pool.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx exposes the same repositories bound to one transaction.
type Tx interface {
	Meals() Meals
	Cart() Cart
	Orders() Orders
}

type Meals interface {
	ListMeals(ctx context.Context) ([]domain.Meal, error)
	GetMeal(ctx context.Context, id int64) (domain.Meal, error)
	CreateMeal(ctx context.Context, m domain.Meal) (domain.Meal, error)

	// UpdateMeal replaces name, price, blood type and availability. The
	// image path is left alone.
	UpdateMeal(ctx context.Context, m domain.Meal) (domain.Meal, error)

	// DeleteMeal returns ErrReferenced while a cart item or order line
	// still names the meal.
	DeleteMeal(ctx context.Context, id int64) error
}

type Cart interface {
	// ListCartItems returns a user's cart with each item's meal attached.
	ListCartItems(ctx context.Context, userID int64) ([]domain.CartItem, error)
	CreateCartItem(ctx context.Context, c domain.CartItem) (domain.CartItem, error)
	UpdateCartItem(ctx context.Context, c domain.CartItem) (domain.CartItem, error)
	DeleteCartItem(ctx context.Context, id int64) error
}

// Orders stores order rows and their lines separately; callers combine the
// two under WithTx.
type Orders interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	GetOrder(ctx context.Context, id int64) (domain.Order, error)

	// CreateOrder inserts the order row only. Items are ignored.
	CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error)

	// UpdateOrder replaces the order row's fields. Items are ignored.
	UpdateOrder(ctx context.Context, o domain.Order) error

	// DeleteOrder removes the order and, by cascade, its lines.
	DeleteOrder(ctx context.Context, id int64) error

	InsertOrderItems(ctx context.Context, orderID int64, items []domain.OrderItem) error
	DeleteOrderItems(ctx context.Context, orderID int64) error
}
