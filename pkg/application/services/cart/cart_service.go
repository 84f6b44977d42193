// Package cart implements the shopping cart: component lines keyed by
// (user, component) and bundle lines standing for whole saved builds.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/application/services/catalog"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/repositories"
	"github.com/shopspring/decimal"
)

// Service maintains per-user carts
type Service struct {
	carts      repositories.CartRepository
	workspaces repositories.WorkspaceRepository
	builds     repositories.SavedBuildRepository
	catalog    *catalog.Service
}

// NewService creates a cart service
func NewService(
	carts repositories.CartRepository,
	workspaces repositories.WorkspaceRepository,
	builds repositories.SavedBuildRepository,
	catalogService *catalog.Service,
) *Service {
	return &Service{
		carts:      carts,
		workspaces: workspaces,
		builds:     builds,
		catalog:    catalogService,
	}
}

// CartView is the read surface of a cart: its lines plus totals
type CartView struct {
	Items     []*entities.CartItem
	Total     decimal.Decimal
	ItemCount int
}

// List returns the user's cart with totals
func (s *Service) List(ctx context.Context, userID string) (*CartView, error) {
	items, err := s.carts.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}

	view := &CartView{Items: items, Total: decimal.Zero}
	for _, item := range items {
		view.Total = view.Total.Add(item.LineTotal())
		view.ItemCount += item.Quantity
	}
	return view, nil
}

// AddComponent adds a component line. Re-adding a component the user
// already carries increments its quantity instead of inserting a second
// row.
func (s *Service) AddComponent(ctx context.Context, userID string, componentID uuid.UUID, quantity int) (*entities.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	detail, err := s.catalog.GetComponentByID(ctx, componentID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, fmt.Errorf("component %s: %w", componentID, entities.ErrNotFound)
	}

	existing, err := s.carts.FindComponentLine(ctx, userID, componentID)
	switch {
	case err == nil:
		existing.Quantity += quantity
		if err := s.carts.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
		return existing, nil
	case errors.Is(err, entities.ErrNotFound):
		item, err := entities.NewComponentCartItem(userID, &detail.Component, quantity)
		if err != nil {
			return nil, err
		}
		if err := s.carts.Create(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to create cart item: %w", err)
		}
		return item, nil
	default:
		return nil, fmt.Errorf("failed to look up cart line: %w", err)
	}
}

// AddBuild adds a saved build to the cart as one bundle line. Adding the
// same build twice returns the existing line unchanged.
func (s *Service) AddBuild(ctx context.Context, userID string, buildID uuid.UUID) (*entities.CartItem, error) {
	build, err := s.builds.GetForUser(ctx, userID, buildID)
	if err != nil {
		return nil, err
	}
	if len(build.Components) == 0 {
		return nil, fmt.Errorf("%w: build %s has no components", entities.ErrValidation, buildID)
	}

	items, err := s.carts.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	for _, item := range items {
		if item.IsBundle() && item.BuildID == buildID {
			return item, nil
		}
	}

	item, err := entities.NewBundleCartItem(userID, build, len(build.Components))
	if err != nil {
		return nil, err
	}
	if err := s.carts.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create bundle line: %w", err)
	}
	return item, nil
}

// AddWorkspace moves the user's current workspace into the cart as
// individual component lines, one per resolvable slot, then clears the
// workspace. Unresolvable slots are skipped.
func (s *Service) AddWorkspace(ctx context.Context, userID string) ([]*entities.CartItem, error) {
	workspace, err := s.workspaces.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(workspace.Components) == 0 {
		return nil, fmt.Errorf("%w: workspace is empty", entities.ErrValidation)
	}

	var added []*entities.CartItem
	for _, componentID := range workspace.Components {
		detail, err := s.catalog.GetComponentByID(ctx, componentID)
		if err != nil {
			return nil, err
		}
		if detail == nil {
			continue
		}
		item, err := s.AddComponent(ctx, userID, componentID, 1)
		if err != nil {
			return nil, err
		}
		added = append(added, item)
	}
	if len(added) == 0 {
		return nil, fmt.Errorf("%w: workspace has no resolvable components", entities.ErrValidation)
	}

	if err := s.workspaces.Clear(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to clear workspace: %w", err)
	}
	return added, nil
}

// Decrement lowers a line's quantity by one, removing the row when the
// quantity would reach zero. Bundle lines are removed outright.
func (s *Service) Decrement(ctx context.Context, userID string, itemID uuid.UUID) error {
	item, err := s.carts.GetItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if item.IsBundle() || item.Quantity <= 1 {
		if err := s.carts.Delete(ctx, userID, itemID); err != nil {
			return fmt.Errorf("failed to delete cart item: %w", err)
		}
		return nil
	}

	item.Quantity--
	if err := s.carts.Update(ctx, item); err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	return nil
}

// DeleteRow removes a whole line regardless of quantity
func (s *Service) DeleteRow(ctx context.Context, userID string, itemID uuid.UUID) error {
	if _, err := s.carts.GetItem(ctx, userID, itemID); err != nil {
		return err
	}
	if err := s.carts.Delete(ctx, userID, itemID); err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	return nil
}
