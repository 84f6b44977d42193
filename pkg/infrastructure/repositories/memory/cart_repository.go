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

// CartRepository provides in-memory cart storage
type CartRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*entities.CartItem
}

// NewCartRepository creates a new in-memory cart repository
func NewCartRepository() *CartRepository {
	return &CartRepository{
		items: make(map[uuid.UUID]*entities.CartItem),
	}
}

// Verify interface compliance
var _ repositories.CartRepository = (*CartRepository)(nil)

// ListForUser returns the user's cart lines, oldest first
func (r *CartRepository) ListForUser(_ context.Context, userID string) ([]*entities.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var listed []*entities.CartItem
	for _, item := range r.items {
		if item.UserID == userID {
			copied := *item
			listed = append(listed, &copied)
		}
	}
	sort.Slice(listed, func(i, j int) bool {
		return listed[i].CreatedAt.Before(listed[j].CreatedAt)
	})
	return listed, nil
}

// GetItem returns one of the user's cart lines by id
func (r *CartRepository) GetItem(_ context.Context, userID string, itemID uuid.UUID) (*entities.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[itemID]
	if !exists || item.UserID != userID {
		return nil, fmt.Errorf("cart item %s: %w", itemID, entities.ErrNotFound)
	}
	copied := *item
	return &copied, nil
}

// FindComponentLine returns the user's existing line for a component
func (r *CartRepository) FindComponentLine(_ context.Context, userID string, componentID uuid.UUID) (*entities.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.UserID == userID && !item.IsBundle() && item.ComponentID == componentID {
			copied := *item
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("component line %s: %w", componentID, entities.ErrNotFound)
}

// Create stores a new cart line
func (r *CartRepository) Create(_ context.Context, item *entities.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *item
	now := time.Now()
	copied.CreatedAt = now
	copied.UpdatedAt = now
	r.items[item.ID] = &copied
	return nil
}

// Update replaces a stored cart line
func (r *CartRepository) Update(_ context.Context, item *entities.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.items[item.ID]
	if !exists || stored.UserID != item.UserID {
		return fmt.Errorf("cart item %s: %w", item.ID, entities.ErrNotFound)
	}
	copied := *item
	copied.CreatedAt = stored.CreatedAt
	copied.UpdatedAt = time.Now()
	r.items[item.ID] = &copied
	return nil
}

// Delete removes a cart line
func (r *CartRepository) Delete(_ context.Context, userID string, itemID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[itemID]
	if !exists || item.UserID != userID {
		return fmt.Errorf("cart item %s: %w", itemID, entities.ErrNotFound)
	}
	delete(r.items, itemID)
	return nil
}

func (r *CartRepository) snapshot() map[uuid.UUID]entities.CartItem {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make(map[uuid.UUID]entities.CartItem, len(r.items))
	for id, item := range r.items {
		snap[id] = *item
	}
	return snap
}

func (r *CartRepository) restore(snap map[uuid.UUID]entities.CartItem) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[uuid.UUID]*entities.CartItem, len(snap))
	for id, item := range snap {
		copied := item
		r.items[id] = &copied
	}
}
