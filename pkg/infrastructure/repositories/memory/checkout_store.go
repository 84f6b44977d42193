package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/repositories"
)

// CheckoutStore runs the checkout protocol against the in-memory
// repositories with transactional semantics: on callback error every
// repository is restored to its pre-transaction snapshot. A single
// store-wide mutex serializes transactions, which doubles as the
// row-lock guarantee the Postgres implementation gets from
// SELECT ... FOR UPDATE.
type CheckoutStore struct {
	mu      sync.Mutex
	catalog *CatalogRepository
	carts   *CartRepository
	builds  *SavedBuildRepository
	orders  *OrderRepository
}

// NewCheckoutStore creates a checkout store over the given repositories
func NewCheckoutStore(catalog *CatalogRepository, carts *CartRepository, builds *SavedBuildRepository, orders *OrderRepository) *CheckoutStore {
	return &CheckoutStore{
		catalog: catalog,
		carts:   carts,
		builds:  builds,
		orders:  orders,
	}
}

// Verify interface compliance
var _ repositories.CheckoutStore = (*CheckoutStore)(nil)

// WithinTx runs fn transactionally over the in-memory state
func (s *CheckoutStore) WithinTx(ctx context.Context, fn func(tx repositories.CheckoutTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	componentSnap := s.catalog.snapshotComponents()
	cartSnap := s.carts.snapshot()
	buildSnap := s.builds.snapshot()
	orderSnap, itemSnap := s.orders.snapshot()

	if err := fn(&checkoutTx{store: s}); err != nil {
		s.catalog.restoreComponents(componentSnap)
		s.carts.restore(cartSnap)
		s.builds.restore(buildSnap)
		s.orders.restore(orderSnap, itemSnap)
		return err
	}
	if err := ctx.Err(); err != nil {
		s.catalog.restoreComponents(componentSnap)
		s.carts.restore(cartSnap)
		s.builds.restore(buildSnap)
		s.orders.restore(orderSnap, itemSnap)
		return err
	}
	return nil
}

type checkoutTx struct {
	store *CheckoutStore
}

var _ repositories.CheckoutTx = (*checkoutTx)(nil)

func (t *checkoutTx) CartItems(ctx context.Context, userID string) ([]*entities.CartItem, error) {
	return t.store.carts.ListForUser(ctx, userID)
}

func (t *checkoutTx) SavedBuild(ctx context.Context, userID string, buildID uuid.UUID) (*entities.SavedBuild, error) {
	return t.store.builds.GetForUser(ctx, userID, buildID)
}

func (t *checkoutTx) ComponentsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.Component, error) {
	found := make(map[uuid.UUID]*entities.Component, len(ids))
	for _, id := range ids {
		component, err := t.store.catalog.GetComponent(ctx, id)
		if err != nil {
			continue
		}
		found[id] = component
	}
	return found, nil
}

// LockComponents has nothing extra to lock in memory: the store mutex
// already serializes the whole transaction.
func (t *checkoutTx) LockComponents(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.Component, error) {
	return t.ComponentsByID(ctx, ids)
}

func (t *checkoutTx) InsertOrder(_ context.Context, order *entities.Order) error {
	t.store.orders.insertOrder(order)
	return nil
}

func (t *checkoutTx) InsertOrderItems(_ context.Context, items []*entities.OrderItem) error {
	t.store.orders.insertItems(items)
	return nil
}

func (t *checkoutTx) DecrementStock(_ context.Context, componentID uuid.UUID, quantity int) error {
	return t.store.catalog.AdjustStock(componentID, -quantity)
}

func (t *checkoutTx) DeleteCartItems(ctx context.Context, userID string, itemIDs []uuid.UUID) error {
	for _, id := range itemIDs {
		if err := t.store.carts.Delete(ctx, userID, id); err != nil {
			return err
		}
	}
	return nil
}

func (t *checkoutTx) SoftDeleteBuild(ctx context.Context, userID string, buildID uuid.UUID) error {
	return t.store.builds.SoftDelete(ctx, userID, buildID)
}
