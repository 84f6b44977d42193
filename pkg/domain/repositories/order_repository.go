package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/domain/entities"
)

// OrderRepository reads and updates durable orders outside the checkout
// transaction.
type OrderRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*entities.Order, error)
	GetForUser(ctx context.Context, userID string, id uuid.UUID) (*entities.Order, error)
	ListForUser(ctx context.Context, userID string) ([]*entities.Order, error)
	ListItems(ctx context.Context, orderID uuid.UUID) ([]*entities.OrderItem, error)
	Update(ctx context.Context, order *entities.Order) error
}

// CheckoutStore runs the checkout protocol inside one database
// transaction. The callback either completes and the transaction
// commits, or returns an error and everything rolls back.
type CheckoutStore interface {
	WithinTx(ctx context.Context, fn func(tx CheckoutTx) error) error
}

// CheckoutTx is the unit of work available inside a checkout
// transaction. LockComponents must take row locks (SELECT ... FOR
// UPDATE against Postgres) before any stock decrement to prevent lost
// updates under concurrent checkout.
type CheckoutTx interface {
	CartItems(ctx context.Context, userID string) ([]*entities.CartItem, error)
	SavedBuild(ctx context.Context, userID string, buildID uuid.UUID) (*entities.SavedBuild, error)
	ComponentsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.Component, error)
	// LockComponents returns the locked components keyed by id. Missing
	// ids are simply absent from the map.
	LockComponents(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.Component, error)
	InsertOrder(ctx context.Context, order *entities.Order) error
	InsertOrderItems(ctx context.Context, items []*entities.OrderItem) error
	DecrementStock(ctx context.Context, componentID uuid.UUID, quantity int) error
	DeleteCartItems(ctx context.Context, userID string, itemIDs []uuid.UUID) error
	SoftDeleteBuild(ctx context.Context, userID string, buildID uuid.UUID) error
}
