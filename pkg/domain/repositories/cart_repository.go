package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/domain/entities"
)

// CartRepository stores cart lines. Component lines are unique per
// (user, component); bundle lines are unique per (user, build).
type CartRepository interface {
	ListForUser(ctx context.Context, userID string) ([]*entities.CartItem, error)
	GetItem(ctx context.Context, userID string, itemID uuid.UUID) (*entities.CartItem, error)
	// FindComponentLine returns the user's line for a component, or
	// entities.ErrNotFound.
	FindComponentLine(ctx context.Context, userID string, componentID uuid.UUID) (*entities.CartItem, error)
	Create(ctx context.Context, item *entities.CartItem) error
	Update(ctx context.Context, item *entities.CartItem) error
	Delete(ctx context.Context, userID string, itemID uuid.UUID) error
}
