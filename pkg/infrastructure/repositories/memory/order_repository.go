package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/repositories"
)

// OrderRepository provides in-memory order storage
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*entities.Order
	items  map[uuid.UUID][]*entities.OrderItem
}

// NewOrderRepository creates a new in-memory order repository
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[uuid.UUID]*entities.Order),
		items:  make(map[uuid.UUID][]*entities.OrderItem),
	}
}

// Verify interface compliance
var _ repositories.OrderRepository = (*OrderRepository)(nil)

// Get returns an order by id
func (r *OrderRepository) Get(_ context.Context, id uuid.UUID) (*entities.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, exists := r.orders[id]
	if !exists {
		return nil, fmt.Errorf("order %s: %w", id, entities.ErrNotFound)
	}
	copied := *order
	return &copied, nil
}

// GetForUser returns the user's order by id
func (r *OrderRepository) GetForUser(_ context.Context, userID string, id uuid.UUID) (*entities.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, exists := r.orders[id]
	if !exists || order.UserID != userID {
		return nil, fmt.Errorf("order %s: %w", id, entities.ErrNotFound)
	}
	copied := *order
	return &copied, nil
}

// ListForUser returns the user's orders, newest first
func (r *OrderRepository) ListForUser(_ context.Context, userID string) ([]*entities.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var listed []*entities.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			copied := *order
			listed = append(listed, &copied)
		}
	}
	sort.Slice(listed, func(i, j int) bool {
		return listed[i].CreatedAt.After(listed[j].CreatedAt)
	})
	return listed, nil
}

// ListItems returns an order's lines
func (r *OrderRepository) ListItems(_ context.Context, orderID uuid.UUID) ([]*entities.OrderItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var listed []*entities.OrderItem
	for _, item := range r.items[orderID] {
		copied := *item
		listed = append(listed, &copied)
	}
	return listed, nil
}

// Update replaces a stored order
func (r *OrderRepository) Update(_ context.Context, order *entities.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; !exists {
		return fmt.Errorf("order %s: %w", order.ID, entities.ErrNotFound)
	}
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *OrderRepository) insertOrder(order *entities.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *order
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
		copied.UpdatedAt = copied.CreatedAt
	}
	r.orders[order.ID] = &copied
}

func (r *OrderRepository) insertItems(items []*entities.OrderItem) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		copied := *item
		if copied.CreatedAt.IsZero() {
			copied.CreatedAt = time.Now()
		}
		r.items[item.OrderID] = append(r.items[item.OrderID], &copied)
	}
}

func (r *OrderRepository) snapshot() (map[uuid.UUID]entities.Order, map[uuid.UUID][]entities.OrderItem) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make(map[uuid.UUID]entities.Order, len(r.orders))
	for id, order := range r.orders {
		orders[id] = *order
	}
	items := make(map[uuid.UUID][]entities.OrderItem, len(r.items))
	for id, lines := range r.items {
		copied := make([]entities.OrderItem, len(lines))
		for i, line := range lines {
			copied[i] = *line
		}
		items[id] = copied
	}
	return orders, items
}

func (r *OrderRepository) restore(orders map[uuid.UUID]entities.Order, items map[uuid.UUID][]entities.OrderItem) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders = make(map[uuid.UUID]*entities.Order, len(orders))
	for id, order := range orders {
		copied := order
		r.orders[id] = &copied
	}
	r.items = make(map[uuid.UUID][]*entities.OrderItem, len(items))
	for id, lines := range items {
		restored := make([]*entities.OrderItem, len(lines))
		for i := range lines {
			line := lines[i]
			restored[i] = &line
		}
		r.items[id] = restored
	}
}
